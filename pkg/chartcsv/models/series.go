package models

// Axis types.
const (
	AxisLinear   = "linear"
	AxisDatetime = "datetime"
	AxisCategory = "category"
)

// Axis represents the x axis a series is plotted against.
type Axis struct {
	// Type is the axis type (linear, datetime, category).
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	// Categories maps index to category label.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	// Title is the axis title (optional).
	Title *Title `json:"title,omitempty" yaml:"title,omitempty"`
}

// IsDatetime reports whether the axis is a datetime axis.
func (a *Axis) IsDatetime() bool {
	return a != nil && a.Type == AxisDatetime
}

// HasCategories reports whether the axis is categorical.
func (a *Axis) HasCategories() bool {
	return a != nil && (a.Type == AxisCategory || len(a.Categories) > 0)
}

// TitleText returns the axis title text, or "" when unset.
func (a *Axis) TitleText() string {
	if a == nil || a.Title == nil {
		return ""
	}
	return a.Title.Text
}

// Point represents per-point data of a series.
type Point struct {
	// Name is the point's assigned name (optional).
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Y is the point value (nil for a null point).
	Y *float64 `json:"y" yaml:"y"`
	// Total is the sum of the series, used for pie percentages (optional).
	Total *float64 `json:"total,omitempty" yaml:"total,omitempty"`
}

// Series represents one named data series belonging to a chart.
type Series struct {
	// Name is the series display name.
	Name string `json:"name" yaml:"name"`
	// XData is the ordered sequence of x-values.
	// Datetime axes carry milliseconds since the Unix epoch.
	XData []float64 `json:"xData" yaml:"xData"`
	// YData is the ordered sequence of y-values (nil entries are null points).
	YData []*float64 `json:"yData" yaml:"yData"`
	// XAxis is the axis the series is plotted against (optional).
	XAxis *Axis `json:"xAxis,omitempty" yaml:"xAxis,omitempty"`
	// Points carries per-point names and totals (optional, may contain nil).
	Points []*Point `json:"points,omitempty" yaml:"points,omitempty"`
	// IncludeInCSVExport excludes the series from export when explicitly false.
	IncludeInCSVExport *bool `json:"includeInCSVExport,omitempty" yaml:"includeInCSVExport,omitempty"`
}

// Exported reports whether the series takes part in CSV export.
func (s *Series) Exported() bool {
	return s.IncludeInCSVExport == nil || *s.IncludeInCSVExport
}

// PointName returns the assigned name of the point at index i, or "" when
// there is no such point or it has no name.
func (s *Series) PointName(i int) string {
	if i < 0 || i >= len(s.Points) || s.Points[i] == nil {
		return ""
	}
	return s.Points[i].Name
}
