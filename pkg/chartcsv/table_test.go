package chartcsv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableRowsPadsShortColumns(t *testing.T) {
	var table Table
	table.Add("a", []string{"1", "2", "3"})
	table.Add("b", nil)
	table.Add("c", []string{"x"})

	assert.Equal(t, 4, table.MaxLen())
	assert.Equal(t, [][]string{
		{"a", "b", "c"},
		{"1", "", "x"},
		{"2", "", ""},
		{"3", "", ""},
	}, table.Rows())
}

func TestTableEncode(t *testing.T) {
	var table Table
	table.Add("h1", []string{"1"})
	table.Add("h2", []string{"2"})

	assert.Equal(t, "h1\th2\r\n1\t2\r\n", table.Encode("\t", "\r\n"))
}

func TestEmptyTable(t *testing.T) {
	var table Table
	assert.Equal(t, 0, table.MaxLen())
	assert.Empty(t, table.Rows())
	assert.Equal(t, "", table.Encode(",", "\n"))
}

func TestColumnAt(t *testing.T) {
	col := Column{Header: "h", Cells: []string{"v"}}
	assert.Equal(t, "h", col.At(0))
	assert.Equal(t, "v", col.At(1))
	assert.Equal(t, "", col.At(2))
	assert.Equal(t, 2, col.Len())
}
