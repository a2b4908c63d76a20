package reports

import (
	"strings"
	"time"

	"barangay-abis/backend/internal/blotter"
	"barangay-abis/backend/internal/documents"
)

// Table is a flat, already-stringified export: one header row plus data rows.
// Both the CSV and the spreadsheet writers consume it unchanged.
type Table struct {
	Columns []string
	Rows    [][]string
}

var documentColumns = []string{
	"trackingNumber", "requestDate", "residentName", "documentType",
	"status", "pickupCode", "remarks",
}

var blotterColumns = []string{
	"id", "title", "description", "reporterName", "incidentDate", "status",
}

// DocumentTable maps document requests to the export shape. The resident name
// falls back to the form aliases the way tracking lookups do.
func DocumentTable(docs []documents.Document) *Table {
	rows := make([][]string, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		rows = append(rows, []string{
			d.TrackingNumber,
			formatTime(d.CreatedAt),
			documents.ResolveResidentName(d),
			d.DocType,
			string(d.Status),
			d.PickupCode,
			d.Remarks,
		})
	}
	return &Table{Columns: documentColumns, Rows: rows}
}

// BlotterTable maps incident reports to the export shape. Newlines inside
// descriptions are flattened so one record stays one spreadsheet row.
func BlotterTable(list []blotter.Blotter) *Table {
	rows := make([][]string, 0, len(list))
	for i := range list {
		b := &list[i]
		rows = append(rows, []string{
			b.ID.Hex(),
			b.Title,
			strings.ReplaceAll(b.Description, "\n", " "),
			b.ReporterName,
			formatTime(b.IncidentDate),
			string(b.Status),
		})
	}
	return &Table{Columns: blotterColumns, Rows: rows}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
