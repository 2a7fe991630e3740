package parser

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/models"
	"github.com/xuri/excelize/v2"
)

// ChartTypeMap maps OOXML chart element tags to chart type names.
var ChartTypeMap = map[string]string{
	"lineChart":      models.TypeLine,
	"line3DChart":    models.TypeLine,
	"barChart":       models.TypeColumn,
	"bar3DChart":     models.TypeColumn,
	"areaChart":      models.TypeArea,
	"area3DChart":    models.TypeArea,
	"pieChart":       models.TypePie,
	"pie3DChart":     models.TypePie,
	"doughnutChart":  models.TypePie,
	"ofPieChart":     models.TypePie,
	"scatterChart":   models.TypeScatter,
	"bubbleChart":    "bubble",
	"radarChart":     "radar",
	"surfaceChart":   "surface",
	"surface3DChart": "surface",
	"stockChart":     "stock",
}

// resolver returns the cell values of a range reference such as Sheet1!$A$2:$A$5.
type resolver interface {
	Resolve(ref string) ([]string, error)
}

// ExtractCharts extracts charts with their series data from an xlsx file.
// The result maps sheet name to the charts drawn on it, in drawing order.
// Sheets are listed in workbook order.
func ExtractCharts(xlsxPath string) (map[string][]models.Chart, []string, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheetChartMap, order, err := getSheetChartMap(&r.Reader)
	if err != nil {
		return nil, nil, err
	}

	res := &workbookResolver{f: f}
	result := make(map[string][]models.Chart)
	var sheets []string
	for _, sheetName := range order {
		refs, ok := sheetChartMap[sheetName]
		if !ok {
			continue
		}
		var charts []models.Chart
		for _, ref := range refs {
			chartXML, err := readZipFile(&r.Reader, ref.chartPath)
			if err != nil || chartXML == nil {
				continue
			}
			if chart := parseChartXML(chartXML, ref.name, res); chart != nil {
				charts = append(charts, *chart)
			}
		}
		if len(charts) > 0 {
			result[sheetName] = charts
			sheets = append(sheets, sheetName)
		}
	}

	return result, sheets, nil
}

// rawSeries holds one <c:ser> element before value resolution.
type rawSeries struct {
	name     string
	nameRef  string
	catRef   string
	catCache []string
	valRef   string
	valCache []string
}

// rawAxis holds one axis element of the plot area.
type rawAxis struct {
	kind  string // catAx, dateAx, valAx, serAx
	pos   string
	title string
}

// parseChartXML parses chart XML content and resolves series values.
func parseChartXML(data []byte, name string, res resolver) *models.Chart {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var chartType, title string
	var hasTitle bool
	var series []rawSeries
	var axes []rawAxis

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "chart" {
			chartType, title, hasTitle, series, axes = parseChartElement(decoder)
		}
	}

	if chartType == "" {
		return nil
	}

	chart := &models.Chart{
		Name: name,
		Type: chartType,
	}
	if hasTitle {
		chart.Title = &models.Title{Text: title}
	}

	xAxis := horizontalAxis(axes)
	for _, rs := range series {
		chart.Series = append(chart.Series, buildSeries(rs, xAxis, chart.IsPie(), res))
	}

	return chart
}

// horizontalAxis picks the axis x-values are plotted against.
func horizontalAxis(axes []rawAxis) *rawAxis {
	for i := range axes {
		if axes[i].kind == "catAx" || axes[i].kind == "dateAx" {
			return &axes[i]
		}
	}
	for i := range axes {
		if axes[i].kind == "valAx" && (axes[i].pos == "b" || axes[i].pos == "t") {
			return &axes[i]
		}
	}
	for i := range axes {
		if axes[i].kind == "valAx" {
			return &axes[i]
		}
	}
	return nil
}

// buildSeries resolves a raw series into models.Series.
func buildSeries(rs rawSeries, ax *rawAxis, pie bool, res resolver) models.Series {
	s := models.Series{Name: rs.name}
	if s.Name == "" && rs.nameRef != "" {
		if vals := resolveValues(rs.nameRef, nil, res); len(vals) > 0 {
			s.Name = vals[0]
		}
	}

	for _, v := range resolveValues(rs.valRef, rs.valCache, res) {
		s.YData = append(s.YData, parseNumber(v))
	}

	cats := resolveValues(rs.catRef, rs.catCache, res)
	kind := ""
	if ax != nil {
		axis := &models.Axis{Type: models.AxisLinear}
		if ax.title != "" {
			axis.Title = &models.Title{Text: ax.title}
		}
		switch ax.kind {
		case "catAx":
			axis.Type = models.AxisCategory
			axis.Categories = cats
		case "dateAx":
			axis.Type = models.AxisDatetime
		}
		kind = axis.Type
		if !pie {
			s.XAxis = axis
		}
	}

	n := len(s.YData)
	if len(cats) > n {
		n = len(cats)
	}
	s.XData = make([]float64, n)

	switch {
	case kind == models.AxisDatetime:
		for i := range s.XData {
			s.XData[i] = float64(i)
			if i < len(cats) {
				if serial, err := strconv.ParseFloat(cats[i], 64); err == nil {
					if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
						s.XData[i] = float64(t.UnixMilli())
					}
				}
			}
		}
	case kind == models.AxisLinear && !pie && len(cats) > 0:
		for i := range s.XData {
			s.XData[i] = float64(i)
			if i < len(cats) {
				if x := parseNumber(cats[i]); x != nil {
					s.XData[i] = *x
				}
			}
		}
	default:
		for i := range s.XData {
			s.XData[i] = float64(i)
		}
		if len(cats) > 0 {
			s.Points = make([]*models.Point, n)
			for i := range s.Points {
				p := &models.Point{}
				if i < len(cats) {
					p.Name = cats[i]
				}
				if i < len(s.YData) {
					p.Y = s.YData[i]
				}
				s.Points[i] = p
			}
		}
	}

	return s
}

// resolveValues reads a range through the workbook, falling back to the
// chart's cached values.
func resolveValues(ref string, cache []string, res resolver) []string {
	if ref != "" && res != nil {
		if vals, err := res.Resolve(ref); err == nil && len(vals) > 0 {
			return vals
		}
	}
	return cache
}

// parseChartElement parses c:chart element.
func parseChartElement(decoder *xml.Decoder) (chartType, title string, hasTitle bool, series []rawSeries, axes []rawAxis) {
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "title":
				title = parseTitle(decoder)
				hasTitle = true
				depth--
			case "plotArea":
				chartType, series, axes = parsePlotArea(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return
}

// parseTitle parses a title element, joining its text runs.
func parseTitle(decoder *xml.Decoder) string {
	var sb strings.Builder
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t", "v":
				if txt, err := readElementText(decoder); err == nil {
					sb.WriteString(txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return strings.TrimSpace(sb.String())
}

// parsePlotArea parses plot area element.
func parsePlotArea(decoder *xml.Decoder) (chartType string, series []rawSeries, axes []rawAxis) {
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			if ct, ok := ChartTypeMap[t.Name.Local]; ok {
				s, barDir := parseChartSeries(decoder)
				if chartType == "" {
					chartType = ct
					if ct == models.TypeColumn && barDir == "bar" {
						chartType = models.TypeBar
					}
				}
				series = append(series, s...)
				depth--
			} else {
				switch t.Name.Local {
				case "catAx", "dateAx", "valAx", "serAx":
					axes = append(axes, parseAxis(decoder, t.Name.Local))
					depth--
				}
			}
		case xml.EndElement:
			depth--
		}
	}

	return
}

// parseChartSeries parses series elements within a chart type.
func parseChartSeries(decoder *xml.Decoder) (series []rawSeries, barDir string) {
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "ser":
				series = append(series, parseSingleSeries(decoder))
				depth--
			case "barDir":
				barDir = attrValue(t, "val")
			}
		case xml.EndElement:
			depth--
		}
	}

	return
}

// parseSingleSeries parses a single series element.
func parseSingleSeries(decoder *xml.Decoder) rawSeries {
	var s rawSeries
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "tx":
				s.name, s.nameRef = parseSeriesName(decoder)
				depth--
			case "cat", "xVal":
				s.catRef, s.catCache = parseDataSource(decoder)
				depth--
			case "val", "yVal":
				s.valRef, s.valCache = parseDataSource(decoder)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return s
}

// parseSeriesName parses series name from tx element.
func parseSeriesName(decoder *xml.Decoder) (name, nameRange string) {
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "f":
				if txt, err := readElementText(decoder); err == nil {
					nameRange = strings.TrimSpace(txt)
				}
				depth--
			case "v":
				if txt, err := readElementText(decoder); err == nil {
					name = strings.TrimSpace(txt)
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	return
}

// parseDataSource parses the range reference and point cache of a cat/val element.
func parseDataSource(decoder *xml.Decoder) (ref string, cache []string) {
	depth := 1
	size := 0
	points := make(map[int]string)

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "f":
				if txt, err := readElementText(decoder); err == nil {
					ref = strings.TrimSpace(txt)
				}
				depth--
			case "ptCount":
				if n, err := strconv.Atoi(attrValue(t, "val")); err == nil {
					size = n
				}
			case "pt":
				idx, err := strconv.Atoi(attrValue(t, "idx"))
				if txt, terr := readElementText(decoder); terr == nil && err == nil {
					points[idx] = strings.TrimSpace(txt)
					if idx+1 > size {
						size = idx + 1
					}
				}
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	if size > 0 {
		cache = make([]string, size)
		for idx, v := range points {
			if idx >= 0 && idx < size {
				cache[idx] = v
			}
		}
	}
	return
}

// parseAxis parses an axis element.
func parseAxis(decoder *xml.Decoder, kind string) rawAxis {
	ax := rawAxis{kind: kind}
	depth := 1

	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "title":
				ax.title = parseTitle(decoder)
				depth--
			case "axPos":
				ax.pos = attrValue(t, "val")
			}
		case xml.EndElement:
			depth--
		}
	}

	return ax
}

// parseNumber parses a cell value as a number. Empty or non-numeric values
// are null points.
func parseNumber(s string) *float64 {
	switch v := parseValue(strings.TrimSpace(s)).(type) {
	case int64:
		f := float64(v)
		return &f
	case float64:
		return &v
	}
	return nil
}

// workbookResolver resolves range references against an open workbook.
type workbookResolver struct {
	f *excelize.File
}

// Resolve returns raw cell values of the range in row-major order.
func (w *workbookResolver) Resolve(ref string) ([]string, error) {
	sheet, cells, err := splitReference(ref)
	if err != nil {
		return nil, err
	}
	vals := make([]string, 0, len(cells))
	for _, cell := range cells {
		v, err := w.f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// splitReference expands 'Sheet'!$A$1:$A$3 into its sheet name and cell names.
func splitReference(ref string) (string, []string, error) {
	idx := strings.LastIndex(ref, "!")
	if idx < 0 {
		return "", nil, fmt.Errorf("reference %q has no sheet", ref)
	}
	sheet := strings.Trim(ref[:idx], "'")
	sheet = strings.ReplaceAll(sheet, "''", "'")
	rangeStr := strings.ReplaceAll(ref[idx+1:], "$", "")

	parts := strings.Split(rangeStr, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return "", nil, fmt.Errorf("invalid range %q", rangeStr)
	}

	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return "", nil, err
	}
	c2, r2, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return "", nil, err
	}
	if c1 > c2 {
		c1, c2 = c2, c1
	}
	if r1 > r2 {
		r1, r2 = r2, r1
	}

	var cells []string
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			name, err := excelize.CoordinatesToCellName(c, r)
			if err != nil {
				return "", nil, err
			}
			cells = append(cells, name)
		}
	}
	return sheet, cells, nil
}
