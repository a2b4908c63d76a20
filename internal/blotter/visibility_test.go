package blotter

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleBlotter() *Blotter {
	return &Blotter{
		ID:              primitive.NewObjectID(),
		Title:           "Vandalism at the covered court",
		Description:     strings.Repeat("spray paint on the walls ", 30),
		ReporterName:    "Juan Dela Cruz",
		ReporterContact: "09171234567",
		IncidentDate:    time.Date(2025, 3, 2, 21, 0, 0, 0, time.UTC),
		Status:          StatusPending,
		PublicToken:     "deadbeefdeadbeefdead",
		Attachments: []Attachment{
			{OriginalName: "wall.jpg", URL: "https://b.s3.ap-southeast-1.amazonaws.com/blotter/wall.jpg", Format: "jpg", PublicID: "blotter/wall.jpg"},
		},
		CreatedAt: time.Now(),
	}
}

func TestRedactHidesReporterByDefault(t *testing.T) {
	b := sampleBlotter()
	b.ShowReporter = false

	view := Redact(b, "http://localhost:5000")
	assert.Empty(t, view.ReporterName)
	assert.Empty(t, view.ReporterContact)
	assert.Equal(t, b.Title, view.Title)
	assert.Equal(t, 1, view.AttachmentsCount)
}

func TestRedactShowsReporterWhenOptedIn(t *testing.T) {
	b := sampleBlotter()
	b.ShowReporter = true

	view := Redact(b, "http://localhost:5000")
	assert.Equal(t, "Juan Dela Cruz", view.ReporterName)
	assert.Equal(t, "09171234567", view.ReporterContact)
}

func TestRedactTruncatesLongDescriptions(t *testing.T) {
	b := sampleBlotter()

	view := Redact(b, "http://localhost:5000")
	assert.Len(t, view.ShortDescription, shortDescriptionLimit)
	assert.Equal(t, b.Description, view.Description)
	assert.True(t, strings.HasPrefix(b.Description, view.ShortDescription))
}

func TestRedactTruncatesOnRunes(t *testing.T) {
	b := sampleBlotter()
	b.Description = strings.Repeat("ñ", shortDescriptionLimit+50)

	view := Redact(b, "http://localhost:5000")
	assert.True(t, utf8.ValidString(view.ShortDescription))
	assert.Equal(t, shortDescriptionLimit, utf8.RuneCountInString(view.ShortDescription))
	assert.NotContains(t, view.ShortDescription, "�")
}

func TestRedactNeverLeaksToken(t *testing.T) {
	b := sampleBlotter()

	view := Redact(b, "http://localhost:5000")
	assert.NotContains(t, view.ShortDescription, b.PublicToken)
	// The projection type has no token field at all; spot-check the id survives.
	assert.Equal(t, b.ID.Hex(), view.ID)
}

func TestRedactResolvesLegacyLocalAttachments(t *testing.T) {
	b := sampleBlotter()
	b.Attachments = []Attachment{
		{Filename: "1709400000-wall.jpg", OriginalName: "wall.jpg"},
		{}, // nothing to serve, dropped
	}

	view := Redact(b, "http://localhost:5000/")
	assert.Equal(t, 1, view.AttachmentsCount)
	assert.Equal(t, "http://localhost:5000/uploads/blotter/1709400000-wall.jpg", view.Attachments[0].URL)
	assert.Equal(t, "wall.jpg", view.Attachments[0].OriginalName)
}

func TestHasFullAccess(t *testing.T) {
	b := sampleBlotter()

	assert.True(t, HasFullAccess(b, true, ""))
	assert.True(t, HasFullAccess(b, false, b.PublicToken))
	assert.False(t, HasFullAccess(b, false, "wrong-token"))
	assert.False(t, HasFullAccess(b, false, ""))

	// Records without a token never match the token path.
	b.PublicToken = ""
	assert.False(t, HasFullAccess(b, false, ""))
}
