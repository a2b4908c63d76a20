package documents

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderClearancePDF synthesizes the clearance document from current record
// state. Sections whose source fields are all empty are omitted, so the
// fallback works for minimal records too.
func RenderClearancePDF(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 7, "REPUBLIC OF THE PHILIPPINES", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, "BARANGAY CLEARANCE", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	writeSection(pdf, "Request Details", [][2]string{
		{"Tracking #", doc.TrackingNumber},
		{"Requested by", ResolveResidentName(doc)},
		{"Document Type", doc.DocType},
		{"Status", string(doc.Status)},
		{"Request Date", formatDate(&doc.CreatedAt)},
		{"Issued At", formatDate(doc.IssuedAt)},
	})

	purpose, _ := doc.FormData["purpose"].(string)
	writeSection(pdf, "Purpose / Remarks", [][2]string{
		{"Purpose", purpose},
		{"Remarks", doc.Remarks},
	})

	crime := ""
	if doc.CrimeRecordStatus != "" && doc.CrimeRecordStatus != CrimeRecordUnknown {
		crime = string(doc.CrimeRecordStatus)
	}
	certCount := ""
	if doc.CertificationCount > 0 {
		certCount = fmt.Sprintf("%d", doc.CertificationCount)
	}
	writeSection(pdf, "Certification Record", [][2]string{
		{"Crime Record on File", crime},
		{"Times Certified", certCount},
	})

	method := ""
	if doc.PaymentMethod != "" && doc.PaymentMethod != PaymentNone {
		method = string(doc.PaymentMethod)
	}
	writeSection(pdf, "Payment", [][2]string{
		{"Method", method},
		{"Status", string(doc.PaymentStatus)},
	})

	pdf.Ln(6)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, "This is to certify that the above-named person has requested the document listed.", "", "L", false)
	pdf.Ln(16)
	pdf.CellFormat(0, 6, "___________________________", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Barangay Captain / Authorized Official", "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeSection renders a bordered label/value block, skipping empty rows.
// A section with no populated rows is dropped entirely.
func writeSection(pdf *gofpdf.Fpdf, title string, rows [][2]string) {
	filled := rows[:0:0]
	for _, row := range rows {
		if row[1] != "" {
			filled = append(filled, row)
		}
	}
	if len(filled) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "1", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	for _, row := range filled {
		pdf.CellFormat(55, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "1", 1, "L", false, 0, "")
	}
	pdf.Ln(3)
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}
