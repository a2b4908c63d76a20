package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContactEmailAliasOrder(t *testing.T) {
	form := map[string]interface{}{
		"residentEmail": "third@example.com",
		"contactEmail":  "second@example.com",
		"email":         "first@example.com",
	}
	assert.Equal(t, "first@example.com", ContactEmail(form))

	delete(form, "email")
	assert.Equal(t, "second@example.com", ContactEmail(form))

	delete(form, "contactEmail")
	assert.Equal(t, "third@example.com", ContactEmail(form))

	delete(form, "residentEmail")
	assert.Equal(t, "", ContactEmail(form))
}

func TestContactPhoneSkipsEmptyAndNonString(t *testing.T) {
	form := map[string]interface{}{
		"phone":        "",
		"contactPhone": 42,
		"mobile":       "+639170000000",
	}
	assert.Equal(t, "+639170000000", ContactPhone(form))
	assert.Equal(t, "", ContactPhone(nil))
}

func TestResolveResidentNameFallsBackToFormFields(t *testing.T) {
	doc := &Document{ResidentName: "Maria Clara"}
	assert.Equal(t, "Maria Clara", ResolveResidentName(doc))

	doc = &Document{FormData: map[string]interface{}{"fullName": "Juan Dela Cruz"}}
	assert.Equal(t, "Juan Dela Cruz", ResolveResidentName(doc))

	doc = &Document{FormData: map[string]interface{}{"name": "Jose Rizal"}}
	assert.Equal(t, "Jose Rizal", ResolveResidentName(doc))
}

func TestResolveAppointmentParsesFormValue(t *testing.T) {
	when := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)

	doc := &Document{AppointmentDatetime: &when}
	assert.Equal(t, &when, ResolveAppointment(doc))

	doc = &Document{FormData: map[string]interface{}{"appointment_datetime": when.Format(time.RFC3339)}}
	got := ResolveAppointment(doc)
	assert.NotNil(t, got)
	assert.True(t, got.Equal(when))

	doc = &Document{}
	assert.Nil(t, ResolveAppointment(doc))
}
