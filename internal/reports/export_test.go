package reports

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"barangay-abis/backend/internal/blotter"
	"barangay-abis/backend/internal/documents"
)

func TestWriteCSVQuotingRoundTrip(t *testing.T) {
	table := &Table{
		Columns: []string{"trackingNumber", "remarks"},
		Rows: [][]string{
			{"ABIS-1-AAAAAA", `bring valid ID, "original" copy`},
			{"ABIS-2-BBBBBB", "line one\nline two"},
			{"ABIS-3-CCCCCC", "plain"},
		},
	}

	out, err := WriteCSV(table)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, table.Columns, records[0])
	assert.Equal(t, `bring valid ID, "original" copy`, records[1][1])
	assert.Equal(t, "line one\nline two", records[2][1])
	assert.Equal(t, "plain", records[3][1])
}

func TestDocumentTableFallsBackToFormName(t *testing.T) {
	created := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)
	table := DocumentTable([]documents.Document{
		{
			TrackingNumber: "ABIS-1-AAAAAA",
			DocType:        "clearance",
			ResidentName:   "Maria Santos",
			Status:         documents.StatusPending,
			PickupCode:     "AB12CD",
			CreatedAt:      created,
		},
		{
			TrackingNumber: "ABIS-2-BBBBBB",
			DocType:        "indigency",
			FormData:       map[string]interface{}{"fullName": "Pedro Reyes"},
			Status:         documents.StatusIssued,
			CreatedAt:      created,
		},
	})

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Maria Santos", table.Rows[0][2])
	assert.Equal(t, "Pedro Reyes", table.Rows[1][2])
	assert.Equal(t, "2025-04-01T08:00:00Z", table.Rows[0][1])
}

func TestBlotterTableFlattensNewlines(t *testing.T) {
	table := BlotterTable([]blotter.Blotter{
		{
			ID:           primitive.NewObjectID(),
			Title:        "Dispute",
			Description:  "first line\nsecond line",
			ReporterName: "Anonymous",
			Status:       blotter.StatusPending,
			IncidentDate: time.Date(2025, 4, 2, 20, 0, 0, 0, time.UTC),
		},
	})

	require.Len(t, table.Rows, 1)
	assert.Equal(t, "first line second line", table.Rows[0][2])
}

func TestWriteXLSXProducesReadableWorkbook(t *testing.T) {
	table := &Table{
		Columns: []string{"id", "title"},
		Rows:    [][]string{{"1", "Noise complaint"}},
	}

	out, err := WriteXLSX(table)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Noise complaint", got)
}
