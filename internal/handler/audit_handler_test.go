package handler

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/coffee-audit-api/internal/handler/dto"
)

func exportRows() []dto.AuditExportRow {
	return []dto.AuditExportRow{
		{
			ID:                7,
			CreatedAt:         time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC),
			CoffeeName:        "ANFA",
			AuditorName:       "Salma",
			Score:             87.5,
			Shift:             "matin",
			CorrectiveActions: "=HYPERLINK(\"http://evil\")",
		},
		{ID: 8, CreatedAt: time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC), CoffeeName: "MAARIF", Score: 100},
	}
}

func TestWriteAuditsCSV(t *testing.T) {
	// Arrange
	var buf bytes.Buffer

	// Act
	err := writeAuditsCSV(&buf, exportRows())

	// Assert
	require.NoError(t, err)
	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "CSV должен начинаться с BOM")

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, auditExportHeaders, records[0])
	assert.Equal(t, []string{"7", "2026-03-02 09:30", "ANFA", "Salma", "87.50", "matin", "", "'=HYPERLINK(\"http://evil\")", "", ""}, records[1])
	assert.Equal(t, "100.00", records[2][4])
}

func TestWriteAuditsXLSX(t *testing.T) {
	// Arrange
	var buf bytes.Buffer

	// Act
	err := writeAuditsXLSX(&buf, exportRows())

	// Assert
	require.NoError(t, err)
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Audits"}, f.GetSheetList())
	rows, err := f.GetRows("Audits")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Café", rows[0][2])
	assert.Equal(t, "7", rows[1][0])
	assert.Equal(t, "87.5", rows[1][4])
	assert.Equal(t, "'=HYPERLINK(\"http://evil\")", rows[1][7])
	assert.Equal(t, "MAARIF", rows[2][2])
}

func TestWriteAuditsXLSX_EmptyExportHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeAuditsXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Audits")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
