package sheets

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Helper functions for building A1 notation ranges.
// Rows and columns are 1-based, matching what users see in the sheet.

// QuoteSheetName wraps a sheet title in single quotes, doubling embedded quotes
func QuoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// CellRef converts a row and column into a cell name like C7
func CellRef(row, col int) (string, error) {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("invalid cell coordinates row %d, column %d: %w", row, col, err)
	}
	return ref, nil
}

// RangeRef builds a sheet-qualified rectangular range like 'Data'!A2:F501
func RangeRef(sheetName string, startRow, startCol, endRow, endCol int) (string, error) {
	start, err := CellRef(startRow, startCol)
	if err != nil {
		return "", err
	}
	end, err := CellRef(endRow, endCol)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s!%s:%s", QuoteSheetName(sheetName), start, end), nil
}

// RowRef builds a range covering one whole row like 'Data'!1:1
func RowRef(sheetName string, row int) string {
	return fmt.Sprintf("%s!%d:%d", QuoteSheetName(sheetName), row, row)
}

// isEmptyRow reports whether every cell in the row is empty
func isEmptyRow(row []interface{}) bool {
	for _, raw := range row {
		if !NewCell(raw).IsEmpty() {
			return false
		}
	}
	return true
}
