package models

// Exporting holds the export configuration block of a chart.
type Exporting struct {
	// CSV configures CSV export.
	CSV CSVOptions `json:"csv,omitempty" yaml:"csv,omitempty"`
}

// CSVOptions configures CSV export. Empty values fall back to defaults.
type CSVOptions struct {
	// DateFormat is the strftime pattern for datetime x-values.
	DateFormat string `json:"dateFormat,omitempty" yaml:"dateFormat,omitempty"`
	// ItemDelimiter separates cells within a row.
	ItemDelimiter string `json:"itemDelimiter,omitempty" yaml:"itemDelimiter,omitempty"`
	// LineDelimeter terminates each row. The misspelled key is the one hosts read.
	LineDelimeter string `json:"lineDelimeter,omitempty" yaml:"lineDelimeter,omitempty"`
	// LineDelimiter is accepted as an alias when LineDelimeter is unset.
	LineDelimiter string `json:"lineDelimiter,omitempty" yaml:"lineDelimiter,omitempty"`
	// IncludePiePercentages adds a "Percent of Chart" column to pie series.
	IncludePiePercentages bool `json:"includePiePercentages,omitempty" yaml:"includePiePercentages,omitempty"`
	// URL is the download endpoint the CSV is posted to.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// BOM prefixes the output with a UTF-8 byte order mark.
	BOM bool `json:"bom,omitempty" yaml:"bom,omitempty"`
}
