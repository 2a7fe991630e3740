package chartcsv

import "strings"

// Column is one table column: a header followed by its cells.
type Column struct {
	Header string
	Cells  []string
}

// Len returns the column length including the header row.
func (c Column) Len() int {
	return len(c.Cells) + 1
}

// At returns the cell at row index i (row 0 is the header), or "" beyond the
// end of the column.
func (c Column) At(i int) string {
	if i == 0 {
		return c.Header
	}
	if i-1 < len(c.Cells) {
		return c.Cells[i-1]
	}
	return ""
}

// Table is a ragged table of columns. Row i across all columns refers to the
// same data point; shorter columns are padded with empty cells on output.
type Table struct {
	Columns []Column
}

// Add appends a column.
func (t *Table) Add(header string, cells []string) {
	t.Columns = append(t.Columns, Column{Header: header, Cells: cells})
}

// MaxLen returns the length of the longest column including the header row.
func (t *Table) MaxLen() int {
	max := 0
	for _, c := range t.Columns {
		if c.Len() > max {
			max = c.Len()
		}
	}
	return max
}

// Headers returns the header row.
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Header
	}
	return headers
}

// Rows returns the padded, rectangular form of the table with the header row first.
func (t *Table) Rows() [][]string {
	n := t.MaxLen()
	rows := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(t.Columns))
		for c, col := range t.Columns {
			row[c] = col.At(r)
		}
		rows[r] = row
	}
	return rows
}

// Encode joins each row with item and terminates every row, including the
// last one, with line.
func (t *Table) Encode(item, line string) string {
	var sb strings.Builder
	for _, row := range t.Rows() {
		sb.WriteString(strings.Join(row, item))
		sb.WriteString(line)
	}
	return sb.String()
}
