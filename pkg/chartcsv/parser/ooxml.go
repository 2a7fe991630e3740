// Package parser provides xlsx chart parsing utilities.
package parser

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"
)

// chartRef locates one chart of a drawing.
type chartRef struct {
	name      string
	chartPath string
}

// getSheetChartMap returns a mapping of sheet names to their charts, plus the
// sheet order of the workbook.
func getSheetChartMap(r *zip.Reader) (map[string][]chartRef, []string, error) {
	result := make(map[string][]chartRef)

	// Read workbook.xml to get sheet names and rIds
	workbookXML, err := readZipFile(r, "xl/workbook.xml")
	if err != nil || workbookXML == nil {
		return result, nil, err
	}

	sheetIDs, order := parseWorkbookSheets(workbookXML)
	if len(sheetIDs) == 0 {
		return result, nil, nil
	}

	// Read workbook.xml.rels to map rId to sheet file
	wbRelsXML, err := readZipFile(r, "xl/_rels/workbook.xml.rels")
	if err != nil || wbRelsXML == nil {
		return result, order, err
	}

	sheetFiles := parseWorkbookRels(wbRelsXML, sheetIDs)

	for sheetName, sheetPath := range sheetFiles {
		relsPath := strings.Replace(sheetPath, "worksheets/", "worksheets/_rels/", 1)
		relsPath = strings.Replace(relsPath, ".xml", ".xml.rels", 1)

		sheetRelsXML, err := readZipFile(r, relsPath)
		if err != nil || sheetRelsXML == nil {
			continue
		}

		drawingPath := findDrawingRelationship(sheetRelsXML)
		if drawingPath == "" {
			continue
		}

		refs := getChartRefsFromDrawing(r, resolveRelativePath(drawingPath, "xl/drawings"))
		if len(refs) > 0 {
			result[sheetName] = refs
		}
	}

	return result, order, nil
}

// getChartRefsFromDrawing lists the charts of a drawing in document order.
func getChartRefsFromDrawing(r *zip.Reader, drawingPath string) []chartRef {
	var result []chartRef

	drawingXML, err := readZipFile(r, drawingPath)
	if err != nil || drawingXML == nil {
		return result
	}

	frames := parseDrawingForCharts(drawingXML)
	if len(frames) == 0 {
		return result
	}

	relsPath := strings.Replace(drawingPath, "drawings/", "drawings/_rels/", 1)
	relsPath = strings.Replace(relsPath, ".xml", ".xml.rels", 1)

	relsXML, err := readZipFile(r, relsPath)
	if err != nil || relsXML == nil {
		return result
	}

	chartPaths := parseDrawingRels(relsXML)
	for _, fr := range frames {
		if chartPath, ok := chartPaths[fr.rID]; ok {
			result = append(result, chartRef{
				name:      fr.name,
				chartPath: resolveRelativePath(chartPath, "xl/charts"),
			})
		}
	}

	return result
}

// graphicFrame is a chart placeholder found in drawing.xml.
type graphicFrame struct {
	rID  string
	name string
}

// parseDrawingForCharts finds graphic frames that hold charts.
func parseDrawingForCharts(data []byte) []graphicFrame {
	var result []graphicFrame
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	var current graphicFrame
	inFrame := false
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "graphicFrame":
				inFrame = true
				current = graphicFrame{}
			case "cNvPr":
				if inFrame {
					current.name = attrValue(t, "name")
				}
			case "chart":
				if inFrame {
					current.rID = attrValue(t, "id")
				}
			}
		case xml.EndElement:
			if t.Name.Local == "graphicFrame" {
				inFrame = false
				if current.rID != "" {
					result = append(result, current)
				}
			}
		}
	}

	return result
}

// parseDrawingRels parses drawing rels to get chart paths.
func parseDrawingRels(data []byte) map[string]string {
	result := make(map[string]string)
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}

		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			if strings.Contains(strings.ToLower(attrValue(se, "Type")), "chart") {
				result[attrValue(se, "Id")] = attrValue(se, "Target")
			}
		}
	}

	return result
}

// parseWorkbookSheets returns rId -> sheet name and the sheet order.
func parseWorkbookSheets(data []byte) (map[string]string, []string) {
	result := make(map[string]string)
	var order []string
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "sheet" {
			name, rID := attrValue(se, "name"), attrValue(se, "id")
			if name != "" && rID != "" {
				result[rID] = name
				order = append(order, name)
			}
		}
	}

	return result, order
}

// parseWorkbookRels returns sheet name -> worksheet part path.
func parseWorkbookRels(data []byte, sheetIDs map[string]string) map[string]string {
	result := make(map[string]string)
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			target := attrValue(se, "Target")
			if sheetName, ok := sheetIDs[attrValue(se, "Id")]; ok && strings.Contains(strings.ToLower(target), "worksheet") {
				result[sheetName] = resolveRelativePath(target, "xl")
			}
		}
	}

	return result
}

func findDrawingRelationship(data []byte) string {
	decoder := xml.NewDecoder(strings.NewReader(string(data)))

	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			if strings.Contains(strings.ToLower(attrValue(se, "Type")), "drawing") {
				return attrValue(se, "Target")
			}
		}
	}

	return ""
}

// Helper functions

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, nil
}

func readElementText(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return sb.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sb.String(), nil
}

func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "../") {
		clean := target
		for strings.HasPrefix(clean, "../") {
			clean = strings.TrimPrefix(clean, "../")
		}
		return "xl/" + clean
	}
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return baseDir + "/" + target
}

func attrValue(se xml.StartElement, local string) string {
	for _, attr := range se.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}
