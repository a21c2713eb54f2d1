package sheets

import (
	"context"
	"fmt"

	"sheet_manager/internal/config"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client implements the SheetsAPI interface using Google Sheets API.
//
// Note: This client uses [][]interface{} as required by the Google Sheets API.
// This is the only layer where interface{} should appear. All other code should
// use the Cell type wrapper for type-safe access to cell values.
type Client struct {
	service    *sheets.Service
	resilience config.ResilienceConfig
	tracker    *CallTracker
}

// NewClient creates a new Google Sheets client with the provided credentials
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	return NewClientWithOptions(ctx, config.DefaultResilienceConfig, option.WithCredentialsFile(credentialsFile))
}

// NewClientWithOptions creates a client from arbitrary client options and retry settings
func NewClientWithOptions(ctx context.Context, resilience config.ResilienceConfig, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:    service,
		resilience: resilience,
		tracker:    NewCallTracker(),
	}, nil
}

// Calls returns the tracker counting this client's API requests
func (c *Client) Calls() *CallTracker {
	return c.tracker
}

// call runs fn under the retry policy cfg, counting every attempt
func (c *Client) call(ctx context.Context, cfg config.RetryConfig, operation string, fn func(ctx context.Context) error) error {
	attempt := 0
	return withRetry(ctx, cfg, operation, func(ctx context.Context) error {
		c.tracker.Record(operation, attempt)
		attempt++
		return fn(ctx)
	})
}

func toSheetInfo(props *sheets.SheetProperties) *SheetInfo {
	info := &SheetInfo{
		ID:    props.SheetId,
		Title: props.Title,
	}
	if props.GridProperties != nil {
		info.RowCount = int(props.GridProperties.RowCount)
		info.ColumnCount = int(props.GridProperties.ColumnCount)
	}
	return info
}

// GetSheetInfo looks up a sheet by title; an empty title selects the first sheet
func (c *Client) GetSheetInfo(ctx context.Context, spreadsheetID, sheetName string) (*SheetInfo, error) {
	var spreadsheet *sheets.Spreadsheet
	err := c.call(ctx, c.resilience.SheetRead, "get_spreadsheet", func(ctx context.Context) error {
		var err error
		spreadsheet, err = c.service.Spreadsheets.Get(spreadsheetID).
			Fields("sheets.properties").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties == nil {
			continue
		}
		if sheetName == "" || sheet.Properties.Title == sheetName {
			return toSheetInfo(sheet.Properties), nil
		}
	}

	return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
}

// CreateSheet creates a new sheet with the specified name
func (c *Client) CreateSheet(ctx context.Context, spreadsheetID, sheetName string) (*SheetInfo, error) {
	req := &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: sheetName,
			},
		},
	}

	var resp *sheets.BatchUpdateSpreadsheetResponse
	err := c.call(ctx, c.resilience.SheetWrite, "create_sheet", func(ctx context.Context) error {
		var err error
		resp, err = c.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{req},
		}).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet %s: %w", sheetName, err)
	}

	if len(resp.Replies) > 0 && resp.Replies[0].AddSheet != nil && resp.Replies[0].AddSheet.Properties != nil {
		return toSheetInfo(resp.Replies[0].AddSheet.Properties), nil
	}

	return c.GetSheetInfo(ctx, spreadsheetID, sheetName)
}

// ReadSheet reads values from the specified sheet range.
// Returns [][]interface{} as mandated by Google Sheets API.
// Numbers come back as float64 and booleans as bool; dates are rendered as strings.
func (c *Client) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	var resp *sheets.ValueRange
	err := c.call(ctx, c.resilience.SheetRead, "read_sheet", func(ctx context.Context) error {
		var err error
		resp, err = c.service.Spreadsheets.Values.Get(spreadsheetID, range_).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("FORMATTED_STRING").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	return resp.Values, nil
}

// UpdateRange updates the specified sheet range with the provided values.
// Accepts [][]interface{} as mandated by Google Sheets API.
func (c *Client) UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	err := c.call(ctx, c.resilience.SheetWrite, "update_range", func(ctx context.Context) error {
		_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, range_, valueRange).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update range: %w", err)
	}

	return nil
}

// EnsureSheetCapacity ensures the sheet has at least the required number of rows and columns.
// Automatically adds a buffer for future growth.
func (c *Client) EnsureSheetCapacity(ctx context.Context, spreadsheetID, sheetName string, requiredRows, requiredCols int) error {
	target, err := c.GetSheetInfo(ctx, spreadsheetID, sheetName)
	if err != nil {
		return err
	}

	newRows, newCols, needsResize := growGrid(target.RowCount, target.ColumnCount, requiredRows, requiredCols)
	if !needsResize {
		return nil
	}

	log.Debug().
		Str("sheet_name", sheetName).
		Int("current_rows", target.RowCount).
		Int("current_cols", target.ColumnCount).
		Int("required_rows", requiredRows).
		Int("required_cols", requiredCols).
		Int("new_rows", newRows).
		Int("new_cols", newCols).
		Msg("Expanding sheet capacity")

	req := &sheets.Request{
		UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
			Properties: &sheets.SheetProperties{
				SheetId: target.ID,
				GridProperties: &sheets.GridProperties{
					RowCount:    int64(newRows),
					ColumnCount: int64(newCols),
				},
				ForceSendFields: []string{"SheetId"},
			},
			Fields: "gridProperties.rowCount,gridProperties.columnCount",
		},
	}

	if err := c.batchUpdate(ctx, spreadsheetID, "resize_sheet", req); err != nil {
		return fmt.Errorf("failed to resize sheet %s: %w", sheetName, err)
	}

	log.Info().
		Str("sheet_name", sheetName).
		Int("new_rows", newRows).
		Int("new_cols", newCols).
		Msg("Successfully expanded sheet capacity")

	return nil
}

// growGrid computes the grid size needed to hold the required rows and columns.
// Growth adds a buffer of 100 rows or 10 columns on the dimension that grows.
func growGrid(currentRows, currentCols, requiredRows, requiredCols int) (rows, cols int, grow bool) {
	rows, cols = currentRows, currentCols
	if requiredRows > currentRows {
		rows = requiredRows + 100
		grow = true
	}
	if requiredCols > currentCols {
		cols = requiredCols + 10
		grow = true
	}
	return rows, cols, grow
}

// CopyFormatAndFormulas pastes the format and the formulas of one row onto a block of rows
func (c *Client) CopyFormatAndFormulas(ctx context.Context, spreadsheetID string, sheetID int64, sourceRow, targetRow, numRows, numCols int) error {
	source := gridRange(sheetID, sourceRow, 1, numCols)
	target := gridRange(sheetID, targetRow, numRows, numCols)

	requests := []*sheets.Request{
		{CopyPaste: &sheets.CopyPasteRequest{Source: source, Destination: target, PasteType: "PASTE_FORMAT", PasteOrientation: "NORMAL"}},
		{CopyPaste: &sheets.CopyPasteRequest{Source: source, Destination: target, PasteType: "PASTE_FORMULA", PasteOrientation: "NORMAL"}},
	}

	if err := c.batchUpdate(ctx, spreadsheetID, "copy_format", requests...); err != nil {
		return fmt.Errorf("failed to copy format from row %d: %w", sourceRow, err)
	}

	return nil
}

// DeleteRow deletes a single 1-based row from the sheet
func (c *Client) DeleteRow(ctx context.Context, spreadsheetID string, sheetID int64, row int) error {
	req := &sheets.Request{
		DeleteDimension: &sheets.DeleteDimensionRequest{
			Range: &sheets.DimensionRange{
				SheetId:         sheetID,
				Dimension:       "ROWS",
				StartIndex:      int64(row - 1),
				EndIndex:        int64(row),
				ForceSendFields: []string{"SheetId", "StartIndex"},
			},
		},
	}

	if err := c.batchUpdate(ctx, spreadsheetID, "delete_row", req); err != nil {
		return fmt.Errorf("failed to delete row %d: %w", row, err)
	}

	return nil
}

func (c *Client) batchUpdate(ctx context.Context, spreadsheetID, operation string, requests ...*sheets.Request) error {
	batchUpdate := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	return c.call(ctx, c.resilience.SheetWrite, operation, func(ctx context.Context) error {
		_, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdate).
			Context(ctx).
			Do()
		return err
	})
}

// gridRange converts 1-based rows into the zero-based, end-exclusive GridRange the API expects
func gridRange(sheetID int64, startRow, numRows, numCols int) *sheets.GridRange {
	return &sheets.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(startRow - 1),
		EndRowIndex:      int64(startRow - 1 + numRows),
		StartColumnIndex: 0,
		EndColumnIndex:   int64(numCols),
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}
