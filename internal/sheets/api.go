package sheets

import (
	"context"
	"errors"
)

// ErrSheetNotFound is returned by GetSheetInfo when no sheet has the requested title
var ErrSheetNotFound = errors.New("sheet not found")

// SheetInfo describes a single sheet (tab) of a spreadsheet
type SheetInfo struct {
	ID          int64
	Title       string
	RowCount    int
	ColumnCount int
}

// SheetsAPI defines the interface for interacting with Google Sheets.
// This separates infrastructure concerns from business logic.
//
// Note on interface{} usage:
// The Google Sheets API (google.golang.org/api/sheets/v4) uses [][]interface{}
// for cell values. This is outside our control and required for API compatibility.
// Use the Cell type wrapper for type-safe value extraction.
type SheetsAPI interface {
	// GetSheetInfo looks up a sheet by title. An empty title selects the first sheet.
	GetSheetInfo(ctx context.Context, spreadsheetID, sheetName string) (*SheetInfo, error)

	// CreateSheet adds a new sheet to the spreadsheet
	CreateSheet(ctx context.Context, spreadsheetID, sheetName string) (*SheetInfo, error)

	// ReadSheet reads unformatted values from a sheet range.
	// Trailing empty rows and cells are omitted by the platform.
	ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error)

	// UpdateRange writes values into a sheet range as if typed by a user
	UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error

	// EnsureSheetCapacity ensures a sheet has at least the required number of rows and columns
	EnsureSheetCapacity(ctx context.Context, spreadsheetID, sheetName string, requiredRows, requiredCols int) error

	// CopyFormatAndFormulas pastes the format and formulas of sourceRow onto
	// numRows rows starting at targetRow. Rows are 1-based.
	CopyFormatAndFormulas(ctx context.Context, spreadsheetID string, sheetID int64, sourceRow, targetRow, numRows, numCols int) error

	// DeleteRow removes a 1-based row, shifting the rows below it up
	DeleteRow(ctx context.Context, spreadsheetID string, sheetID int64, row int) error
}
