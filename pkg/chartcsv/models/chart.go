// Package models defines the chart data structures read by the CSV builder.
package models

// Chart type names recognized by the builder.
const (
	TypeLine    = "line"
	TypeSpline  = "spline"
	TypeArea    = "area"
	TypeColumn  = "column"
	TypeBar     = "bar"
	TypeScatter = "scatter"
	TypePie     = "pie"
)

// Title holds display text for a chart or an axis.
type Title struct {
	// Text is the title text.
	Text string `json:"text" yaml:"text"`
}

// Chart represents a rendered chart and its series collection.
type Chart struct {
	// Name identifies the chart in its source (e.g. the drawing name in a workbook).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Type is the chart type (e.g., line, pie).
	Type string `json:"type" yaml:"type"`
	// Title is the chart title (nil when the chart has none).
	Title *Title `json:"title,omitempty" yaml:"title,omitempty"`
	// Series is the list of series belonging to the chart.
	Series []Series `json:"series" yaml:"series"`
	// Exporting holds export configuration attached to the chart.
	Exporting Exporting `json:"exporting,omitempty" yaml:"exporting,omitempty"`
}

// IsPie reports whether the chart is a pie chart.
func (c *Chart) IsPie() bool {
	return c.Type == TypePie
}

// TitleText returns the title text, or "" when the chart has no title.
func (c *Chart) TitleText() string {
	if c.Title == nil {
		return ""
	}
	return c.Title.Text
}

// FillPieTotals sets the total of pie points that have none to the sum of the
// series' y-values. Pie series without points get one point per y-value.
// Nil points stay nil.
func (c *Chart) FillPieTotals() {
	if !c.IsPie() {
		return
	}
	for i := range c.Series {
		s := &c.Series[i]
		var sum float64
		for _, y := range s.YData {
			if y != nil {
				sum += *y
			}
		}

		if len(s.Points) == 0 {
			s.Points = make([]*Point, len(s.YData))
			for j, y := range s.YData {
				s.Points[j] = &Point{Y: y}
			}
		}
		for j, p := range s.Points {
			if p == nil || p.Total != nil {
				continue
			}
			total := sum
			p.Total = &total
			if p.Y == nil && j < len(s.YData) {
				p.Y = s.YData[j]
			}
		}
	}
}
