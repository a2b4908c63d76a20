package blotter

import (
	"strings"
	"time"
)

const shortDescriptionLimit = 400

// PublicAttachment is the attachment projection safe for unauthenticated
// callers.
type PublicAttachment struct {
	URL          string `json:"url"`
	OriginalName string `json:"originalname,omitempty"`
	Format       string `json:"format,omitempty"`
	PublicID     string `json:"public_id,omitempty"`
}

// PublicView is the redacted projection returned to callers holding neither
// an admin credential nor the record's token. Reporter identity appears only
// when the record allows public disclosure.
type PublicView struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	Description      string             `json:"description"`
	ShortDescription string             `json:"shortDescription"`
	IncidentDate     time.Time          `json:"incidentDate"`
	Status           Status             `json:"status"`
	CreatedAt        time.Time          `json:"createdAt"`
	ReporterName     string             `json:"reporterName,omitempty"`
	ReporterContact  string             `json:"reporterContact,omitempty"`
	AttachmentsCount int                `json:"attachmentsCount"`
	Attachments      []PublicAttachment `json:"attachments"`
}

// HasFullAccess resolves the caller's tier: admins and holders of the
// record's own token see everything, in that precedence order.
func HasFullAccess(b *Blotter, isAdmin bool, token string) bool {
	if isAdmin {
		return true
	}
	return token != "" && b.PublicToken != "" && token == b.PublicToken
}

// Redact builds the public projection. Attachments lacking a store URL are
// resolved against the locally served uploads path, or dropped when no
// filename survives either.
func Redact(b *Blotter, baseURL string) PublicView {
	view := PublicView{
		ID:               b.ID.Hex(),
		Title:            b.Title,
		Description:      b.Description,
		ShortDescription: truncate(b.Description, shortDescriptionLimit),
		IncidentDate:     b.IncidentDate,
		Status:           b.Status,
		CreatedAt:        b.CreatedAt,
		Attachments:      []PublicAttachment{},
	}

	if b.ShowReporter {
		view.ReporterName = b.ReporterName
		view.ReporterContact = b.ReporterContact
	}

	for _, att := range b.Attachments {
		if pub, ok := publicAttachment(att, baseURL); ok {
			view.Attachments = append(view.Attachments, pub)
		}
	}
	view.AttachmentsCount = len(view.Attachments)
	return view
}

func publicAttachment(att Attachment, baseURL string) (PublicAttachment, bool) {
	if att.URL != "" {
		return PublicAttachment{
			URL:          att.URL,
			OriginalName: att.OriginalName,
			Format:       att.Format,
			PublicID:     att.PublicID,
		}, true
	}
	if att.Filename != "" {
		name := att.OriginalName
		if name == "" {
			name = att.Filename
		}
		return PublicAttachment{
			URL:          strings.TrimSuffix(baseURL, "/") + localAttachmentRoute + att.Filename,
			OriginalName: name,
		}, true
	}
	return PublicAttachment{}, false
}

// truncate cuts on runes; slicing bytes could split a multi-byte character
// and emit a replacement rune in the JSON.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
