package chartcsv

import (
	"log/slog"
	"math"

	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/models"
)

// Column headers produced by the builder.
const (
	HeaderXValues  = "X values"
	HeaderDateTime = "DateTime"
	HeaderCategory = "Category"
	HeaderPercent  = "Percent of Chart"
)

const utf8BOM = "\ufeff"

// Export is the result of one export call.
type Export struct {
	// CSV is the delimited text.
	CSV string
	// Filename is the chart title text, or "data" when the chart has no title.
	Filename string
	// Table is the column table the CSV was flattened from.
	Table Table
}

// Builder turns chart series into a column table.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder. A nil logger uses slog.Default().
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "csv_builder"))}
}

// Build serializes the chart with the given options.
func Build(chart *models.Chart, opts models.CSVOptions) Export {
	return NewBuilder(nil).Build(chart, opts)
}

// GetCSV serializes the chart using its own attached export options.
func GetCSV(chart *models.Chart) string {
	return Build(chart, chart.Exporting.CSV).CSV
}

// Build serializes the chart with the given options.
func (b *Builder) Build(chart *models.Chart, o models.CSVOptions) Export {
	opts := ResolveOptions(o)
	table := b.Table(chart, opts)

	csv := table.Encode(opts.ItemDelimiter, opts.LineDelimiter)
	if opts.BOM {
		csv = utf8BOM + csv
	}

	return Export{
		CSV:      csv,
		Filename: Filename(chart),
		Table:    table,
	}
}

// Filename returns the export filename for the chart.
func Filename(chart *models.Chart) string {
	if chart.Title == nil {
		return DefaultFilename
	}
	return chart.Title.Text
}

// Table builds the ragged column table for the chart.
func (b *Builder) Table(chart *models.Chart, opts Options) Table {
	var t Table
	pie := chart.IsPie()

	for i := range chart.Series {
		s := &chart.Series[i]
		if !s.Exported() {
			continue
		}

		// X axis
		if pie {
			t.Add(chart.TitleText(), pointNames(s))
		} else if s.XAxis != nil {
			header, cells := xColumn(s, opts.DateFormat)
			t.Add(header, cells)
		}

		// Y axis
		y := make([]string, len(s.YData))
		for j, v := range s.YData {
			y[j] = formatNullable(v)
		}
		t.Add(s.Name, y)

		if pie && opts.IncludePiePercentages {
			pct, ok := percentages(s)
			if !ok {
				b.logger.Debug("dropping pie percentages",
					slog.String("series", s.Name),
					slog.Int("point_count", len(s.Points)))
			}
			t.Add(HeaderPercent, pct)
		}
	}

	return t
}

// xColumn builds the X column of a non-pie series.
func xColumn(s *models.Series, dateFormat string) (string, []string) {
	cells := make([]string, len(s.XData))
	header := HeaderXValues

	switch {
	case s.XAxis.IsDatetime():
		for i, x := range s.XData {
			cells[i] = formatDate(dateFormat, x)
		}
		header = HeaderDateTime
	case s.XAxis.HasCategories():
		cells = pointNames(s)
		header = HeaderCategory
	default:
		for i, x := range s.XData {
			cells[i] = formatNumber(x)
		}
	}

	if title := s.XAxis.TitleText(); title != "" {
		header = title
	}
	return header, cells
}

// pointNames maps each x-value to the name of the point it indexes, falling
// back to the raw value.
func pointNames(s *models.Series) []string {
	cells := make([]string, len(s.XData))
	for i, x := range s.XData {
		name := ""
		if idx, ok := index(x); ok {
			name = s.PointName(idx)
		}
		if name == "" {
			name = formatNumber(x)
		}
		cells[i] = name
	}
	return cells
}

// percentages derives y/total*100 for every point. Any point without a
// positive total voids the whole column.
func percentages(s *models.Series) ([]string, bool) {
	cells := make([]string, 0, len(s.Points))
	for _, p := range s.Points {
		if p == nil || p.Total == nil || !(*p.Total > 0) {
			return nil, false
		}
		var y float64
		if p.Y != nil {
			y = *p.Y
		}
		cells = append(cells, formatNumber(y / *p.Total * 100))
	}
	return cells, true
}

// index converts an x-value to a point index when it is a non-negative integer.
func index(x float64) (int, bool) {
	if x < 0 || x != math.Trunc(x) || x > math.MaxInt32 {
		return 0, false
	}
	return int(x), true
}
