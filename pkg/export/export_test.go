package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Student", "2024-05-01", "2024-05-02"},
		Rows: []map[string]string{
			{"Student": "Иванов Пётр", "2024-05-01": "+", "2024-05-02": "-"},
			{"Student": "Smith Anna", "2024-05-01": "+"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	text := strings.TrimPrefix(string(out), "\ufeff")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student,2024-05-01,2024-05-02", lines[0])
	assert.Equal(t, "Иванов Пётр,+,-", lines[1])
	assert.Equal(t, "Smith Anna,+,", lines[2])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
	_, err = NewXLSXExporter("").Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{Headers: []string{"Student", "2024-05-01"}, Rows: []map[string]string{{"Student": "Smith Anna", "2024-05-01": "5"}}}
	out, err := NewPDFExporter().Render(data, "Grades 7A")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	exporter := NewXLSXExporter("Journal")
	out, err := exporter.Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exporter.Sheet())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Student", "2024-05-01", "2024-05-02"}, rows[0])
	assert.Equal(t, []string{"Иванов Пётр", "+", "-"}, rows[1])
	assert.Equal(t, "Smith Anna", rows[2][0])
}
