// Package chartcsv serializes chart series data into CSV text and posts it
// to a download endpoint.
package chartcsv

import "github.com/ukaji3/chartcsv-go/pkg/chartcsv/models"

const (
	// DefaultDateFormat is the strftime pattern used for datetime x-values.
	DefaultDateFormat = "%Y-%m-%d %H:%M:%S"
	// DefaultItemDelimiter separates cells. Use ";" for direct import into Excel.
	DefaultItemDelimiter = ","
	// DefaultLineDelimiter terminates rows.
	DefaultLineDelimiter = "\n"
	// DefaultFilename is used when the chart has no title.
	DefaultFilename = "data"
)

// Options is the resolved form of models.CSVOptions with defaults applied.
type Options struct {
	DateFormat            string
	ItemDelimiter         string
	LineDelimiter         string
	IncludePiePercentages bool
	BOM                   bool
}

// ResolveOptions applies defaults to absent (empty) options.
// The misspelled lineDelimeter key wins over the lineDelimiter alias.
func ResolveOptions(o models.CSVOptions) Options {
	opts := Options{
		DateFormat:            o.DateFormat,
		ItemDelimiter:         o.ItemDelimiter,
		LineDelimiter:         o.LineDelimeter,
		IncludePiePercentages: o.IncludePiePercentages,
		BOM:                   o.BOM,
	}
	if opts.DateFormat == "" {
		opts.DateFormat = DefaultDateFormat
	}
	if opts.ItemDelimiter == "" {
		opts.ItemDelimiter = DefaultItemDelimiter
	}
	if opts.LineDelimiter == "" {
		opts.LineDelimiter = o.LineDelimiter
	}
	if opts.LineDelimiter == "" {
		opts.LineDelimiter = DefaultLineDelimiter
	}
	return opts
}
