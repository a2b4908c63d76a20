package documents

import (
	"time"
)

// Clients submit the same logical contact fields under several historical
// names. Each logical field has one ordered alias list, resolved first-match;
// handlers never probe the form map directly.
var (
	emailAliases       = []string{"email", "contactEmail", "residentEmail"}
	phoneAliases       = []string{"phone", "contactPhone", "mobile"}
	nameAliases        = []string{"fullName", "name"}
	appointmentAliases = []string{"appointmentDatetime", "appointment_datetime"}
)

// ContactEmail resolves the requester's email from the form fields.
func ContactEmail(form map[string]interface{}) string {
	return resolveString(form, emailAliases)
}

// ContactPhone resolves the requester's phone number from the form fields.
func ContactPhone(form map[string]interface{}) string {
	return resolveString(form, phoneAliases)
}

// ResolveResidentName prefers the dedicated field and falls back to the name
// aliases inside the form map.
func ResolveResidentName(d *Document) string {
	if d.ResidentName != "" {
		return d.ResidentName
	}
	return resolveString(d.FormData, nameAliases)
}

// ResolveAppointment prefers the dedicated field and falls back to the
// appointment aliases inside the form map.
func ResolveAppointment(d *Document) *time.Time {
	if d.AppointmentDatetime != nil {
		return d.AppointmentDatetime
	}
	for _, key := range appointmentAliases {
		v, ok := d.FormData[key]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case time.Time:
			return &t
		case string:
			if parsed, err := time.Parse(time.RFC3339, t); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

func resolveString(form map[string]interface{}, aliases []string) string {
	if form == nil {
		return ""
	}
	for _, key := range aliases {
		if v, ok := form[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
