package chartcsv

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/chartcsv-go/pkg/chartcsv/parser"
)

// DefaultSheetName is the sheet the table is written to.
const DefaultSheetName = "Sheet1"

// WriteXLSX writes the table as a single-sheet workbook. Numeric cells are
// stored as numbers; missing cells of short columns are left blank.
func WriteXLSX(w io.Writer, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for c, col := range table.Columns {
		for r := 0; r < col.Len(); r++ {
			v := col.At(r)
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}

			var value interface{} = v
			if r > 0 {
				value = parser.ParseValue(v)
			}
			if err := f.SetCellValue(DefaultSheetName, cell, value); err != nil {
				return fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
