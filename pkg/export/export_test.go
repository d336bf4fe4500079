package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSheet() Sheet {
	return Sheet{
		Title: "Schedule",
		Columns: []Column{
			{Key: "date", Title: "Date", Width: 30},
			{Key: "subject", Title: "Subject"},
			{Key: "item", Title: "Item"},
		},
		Rows: []Row{
			{Group: "2024-03-04", Values: map[string]string{"date": "2024-03-04", "subject": "Math", "item": "Week 1"}},
			{Group: "2024-03-04", Values: map[string]string{"date": "2024-03-04", "subject": "Math", "item": "Week 2, review"}},
			{Group: "2024-03-05", Values: map[string]string{"date": "2024-03-05", "subject": "History"}},
		},
	}
}

func TestCSV(t *testing.T) {
	out, err := CSV(sampleSheet())
	require.NoError(t, err)

	expected := "Date,Subject,Item\n" +
		"2024-03-04,Math,Week 1\n" +
		"2024-03-04,Math,\"Week 2, review\"\n" +
		"2024-03-05,History,\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVRequiresColumns(t *testing.T) {
	_, err := CSV(Sheet{Title: "empty"})
	require.Error(t, err)
}

func TestPDF(t *testing.T) {
	out, err := PDF(sampleSheet())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFWithoutRows(t *testing.T) {
	sheet := sampleSheet()
	sheet.Rows = nil
	out, err := PDF(sheet)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths(sampleSheet().Columns)
	assert.Equal(t, []float64{30, 80, 80}, widths)
}
