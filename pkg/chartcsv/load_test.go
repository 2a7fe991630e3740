package chartcsv

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadChartYAML(t *testing.T) {
	path := writeFile(t, "chart.yaml", `
type: pie
title:
  text: Fruit share
exporting:
  csv:
    includePiePercentages: true
    itemDelimiter: ";"
series:
  - name: Fruit
    xData: [0, 1, 2]
    yData: [10, 30, ~]
    points:
      - name: Apples
      - name: Pears
      - name: Plums
`)

	chart, err := LoadChart(path, LoadOptions{})
	require.NoError(t, err)
	require.Len(t, chart.Series, 1)
	assert.Nil(t, chart.Series[0].YData[2])

	// Totals are filled from the y-values.
	require.NotNil(t, chart.Series[0].Points[0].Total)
	assert.Equal(t, 40.0, *chart.Series[0].Points[0].Total)

	assert.Equal(t, "Fruit share;Fruit;Percent of Chart\nApples;10;25\nPears;30;75\nPlums;;0\n", GetCSV(chart))
}

func TestLoadChartJSON(t *testing.T) {
	path := writeFile(t, "chart.json", `{
  "type": "line",
  "title": {"text": "Visits"},
  "series": [{
    "name": "Daily",
    "xData": [1704067200000],
    "yData": [42],
    "xAxis": {"type": "datetime"}
  }]
}`)

	chart, err := LoadChart(path, LoadOptions{})
	require.NoError(t, err)
	export := Build(chart, chart.Exporting.CSV)
	assert.Equal(t, "DateTime,Daily\n2024-01-01 00:00:00,42\n", export.CSV)
	assert.Equal(t, "Visits", export.Filename)
}

func TestLoadChartErrors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadChart(writeFile(t, "chart.txt", "x"), LoadOptions{})
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadChart(filepath.Join(t.TempDir(), "missing.json"), LoadOptions{})
		var loadErr *LoadError
		assert.ErrorAs(t, err, &loadErr)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := LoadChart(writeFile(t, "chart.json", "{"), LoadOptions{})
		assert.Error(t, err)
	})

	t.Run("unknown chart", func(t *testing.T) {
		_, err := LoadChart(writeFile(t, "chart.yaml", "type: line\n"), LoadOptions{Chart: "nope"})
		assert.ErrorIs(t, err, ErrNoChart)
	})
}

func TestLoadChartXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Fruit", "Count"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Apples", 1}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"Pears", 3}))
	require.NoError(t, f.AddChart(sheet, "D1", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       "Sheet1!$B$1",
			Categories: "Sheet1!$A$2:$A$3",
			Values:     "Sheet1!$B$2:$B$3",
		}},
		Title: []excelize.RichTextRun{{Text: "Fruit"}},
	}))
	path := filepath.Join(t.TempDir(), "fruit.xlsx")
	require.NoError(t, f.SaveAs(path))

	chart, err := LoadChart(path, LoadOptions{Chart: "0"})
	require.NoError(t, err)
	assert.Equal(t, models.TypePie, chart.Type)

	export := Build(chart, models.CSVOptions{IncludePiePercentages: true})
	assert.Equal(t, "Fruit,Count,Percent of Chart\nApples,1,25\nPears,3,75\n", export.CSV)
}

func TestWriteXLSX(t *testing.T) {
	var table Table
	table.Add("Category", []string{"Jan", "Feb"})
	table.Add("Sales", []string{"10", "2.5"})
	table.Add("Percent of Chart", nil)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Category", "Sales", "Percent of Chart"}, rows[0])
	assert.Equal(t, []string{"Feb", "2.5"}, rows[2])

	v, err := f.GetCellValue(DefaultSheetName, "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "10", v)
}

func TestWriteXLSXNonFinite(t *testing.T) {
	var table Table
	table.Add("Category", []string{"inf", "nan"})
	table.Add("Y", []string{"Infinity", "-Infinity"})

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	for cell, want := range map[string]string{"A2": "inf", "A3": "nan", "B2": "Infinity", "B3": "-Infinity"} {
		typ, err := f.GetCellType(DefaultSheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, excelize.CellTypeSharedString, typ, cell)

		v, err := f.GetCellValue(DefaultSheetName, cell)
		require.NoError(t, err)
		assert.Equal(t, want, v, cell)
	}
}
