package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"sheet_manager/internal/app"

	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the number of rows fetched per read request
const DefaultBatchSize = 500

// SheetManager reads and writes header-keyed records on a single sheet.
// Every operation returns an app.Response on success and an *app.SheetError on failure.
type SheetManager struct {
	api           SheetsAPI
	spreadsheetID string
	sheetName     string
	sheetID       int64
	headerRow     int
	created       bool
}

type managerOptions struct {
	headerRow     int
	createMissing bool
}

// Option configures a SheetManager
type Option func(*managerOptions)

// WithHeaderRow sets the 1-based row holding the column names
func WithHeaderRow(row int) Option {
	return func(o *managerOptions) {
		if row >= 1 {
			o.headerRow = row
		}
	}
}

// WithCreateMissing controls whether an absent sheet is created or reported as 404
func WithCreateMissing(create bool) Option {
	return func(o *managerOptions) {
		o.createMissing = create
	}
}

// NewSheetManager opens a sheet of the given spreadsheet. An empty sheet name selects the first sheet.
func NewSheetManager(ctx context.Context, api SheetsAPI, spreadsheetID, sheetName string, opts ...Option) (*SheetManager, error) {
	options := managerOptions{headerRow: 1, createMissing: true}
	for _, opt := range opts {
		opt(&options)
	}

	if spreadsheetID == "" {
		return nil, app.BadRequest("Spreadsheet ID is required")
	}

	m := &SheetManager{
		api:           api,
		spreadsheetID: spreadsheetID,
		headerRow:     options.headerRow,
	}

	info, err := api.GetSheetInfo(ctx, spreadsheetID, sheetName)
	switch {
	case err == nil:
	case errors.Is(err, ErrSheetNotFound) && sheetName != "":
		if !options.createMissing {
			return nil, app.NewSheetError(http.StatusNotFound, fmt.Sprintf("Sheet %q could not be found.", sheetName), err)
		}

		log.Info().
			Str("spreadsheet_id", spreadsheetID).
			Str("sheet_name", sheetName).
			Msg("Creating missing sheet")

		info, err = api.CreateSheet(ctx, spreadsheetID, sheetName)
		if err != nil {
			return nil, app.NewSheetError(http.StatusInternalServerError,
				fmt.Sprintf("Failed to create or access sheet %q: %s", sheetName, err.Error()), err)
		}
		m.created = true
	default:
		return nil, app.NewSheetError(http.StatusInternalServerError,
			fmt.Sprintf("Failed to create or access sheet %q: %s", sheetName, err.Error()), err)
	}

	m.sheetName = info.Title
	m.sheetID = info.ID

	return m, nil
}

// SheetName returns the title of the managed sheet
func (m *SheetManager) SheetName() string {
	return m.sheetName
}

// HeaderRow returns the 1-based header row number
func (m *SheetManager) HeaderRow() int {
	return m.headerRow
}

// IsSheetCreated reports whether the sheet was created when the manager was opened
func (m *SheetManager) IsSheetCreated() bool {
	return m.created
}

func (m *SheetManager) firstDataRow() int {
	return m.headerRow + 1
}

// CreateHeaders writes the given column names into the header row
func (m *SheetManager) CreateHeaders(ctx context.Context, headers []string) (*app.Response, error) {
	if len(headers) == 0 {
		return nil, app.BadRequest("No headers provided to create")
	}

	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}

	rangeSpec, err := RangeRef(m.sheetName, m.headerRow, 1, m.headerRow, len(headers))
	if err != nil {
		return nil, app.WrapError(err)
	}

	if err := m.api.EnsureSheetCapacity(ctx, m.spreadsheetID, m.sheetName, m.headerRow, len(headers)); err != nil {
		return nil, app.WrapError(err)
	}
	if err := m.api.UpdateRange(ctx, m.spreadsheetID, rangeSpec, [][]interface{}{row}); err != nil {
		return nil, app.WrapError(err)
	}

	log.Debug().
		Str("sheet_name", m.sheetName).
		Int("header_row", m.headerRow).
		Int("columns", len(headers)).
		Msg("Created header row")

	return app.NewResponse(http.StatusOK, headers, "Headers created successfully"), nil
}

// GetHeaders builds the header map from the given row; 0 selects the manager's header row.
// Only non-blank string cells are mapped, keyed by their trimmed lower-case text.
func (m *SheetManager) GetHeaders(ctx context.Context, row int) (*app.Response, error) {
	if row < 0 {
		return nil, app.BadRequest("Header row must be a positive integer (1-based index)")
	}
	if row == 0 {
		row = m.headerRow
	}

	values, err := m.api.ReadSheet(ctx, m.spreadsheetID, RowRef(m.sheetName, row))
	if err != nil {
		return nil, app.WrapError(err)
	}

	if len(values) == 0 {
		return app.NewResponse(http.StatusOK, app.HeaderMap{}, "No headers found in the sheet"), nil
	}

	return app.NewResponse(http.StatusOK, buildHeaderMap(values[0]), "Headers fetched successfully"), nil
}

func buildHeaderMap(row []interface{}) app.HeaderMap {
	headers := app.HeaderMap{}
	for idx, raw := range row {
		name, ok := raw.(string)
		if !ok {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		headers[key] = idx
	}
	return headers
}

// scanDataRows reads every row below the header in chunks of batchSize and
// returns them trimmed to the last non-empty row. Row i of the result is sheet
// row firstDataRow()+i. A chunk that comes back empty doubles the next one, so
// an unused grid tail costs a logarithmic number of reads; any data found
// resets the chunk to batchSize.
func (m *SheetManager) scanDataRows(ctx context.Context, batchSize int) ([][]interface{}, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	info, err := m.api.GetSheetInfo(ctx, m.spreadsheetID, m.sheetName)
	if err != nil {
		return nil, err
	}

	first := m.firstDataRow()
	columns := info.ColumnCount
	if columns < 1 {
		columns = 1
	}

	var grid [][]interface{}
	used := 0
	batches := 0
	span := batchSize
	for start := first; start <= info.RowCount; {
		end := start + span - 1
		if end > info.RowCount {
			end = info.RowCount
		}

		rangeSpec, err := RangeRef(m.sheetName, start, 1, end, columns)
		if err != nil {
			return nil, err
		}
		rows, err := m.api.ReadSheet(ctx, m.spreadsheetID, rangeSpec)
		if err != nil {
			return nil, err
		}
		batches++

		// Pad for rows the platform trimmed off the end of earlier batches
		for len(grid) < start-first {
			grid = append(grid, nil)
		}
		found := false
		for i, row := range rows {
			if i > end-start {
				break
			}
			grid = append(grid, row)
			if !isEmptyRow(row) {
				used = len(grid)
				found = true
			}
		}

		start = end + 1
		if found {
			span = batchSize
		} else {
			span *= 2
		}
	}

	log.Debug().
		Str("sheet_name", m.sheetName).
		Int("batch_size", batchSize).
		Int("batches", batches).
		Int("data_rows", used).
		Msg("Scanned sheet data rows")

	return grid[:used], nil
}

// GetDataInBatches maps every data row to a record keyed by the given header map
func (m *SheetManager) GetDataInBatches(ctx context.Context, header app.HeaderMap, batchSize int) (*app.Response, error) {
	if len(header) == 0 {
		return nil, app.BadRequest("Header cannot be empty")
	}

	rows, err := m.scanDataRows(ctx, batchSize)
	if err != nil {
		return nil, app.WrapError(err)
	}

	if len(rows) == 0 {
		return app.NewResponse(http.StatusOK, []app.Record{}, "No data found"), nil
	}

	records := make([]app.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapRow(row, header))
	}

	return app.NewResponse(http.StatusOK, records, "Data fetched in batches successfully"), nil
}

// mapRow picks each header's column out of a raw row; cells past the row's end read as ""
func mapRow(row []interface{}, header app.HeaderMap) app.Record {
	record := make(app.Record, len(header))
	for key, idx := range header {
		if idx >= 0 && idx < len(row) && row[idx] != nil {
			record[key] = row[idx]
		} else {
			record[key] = ""
		}
	}
	return record
}

// GetData reads the header row and returns all records
func (m *SheetManager) GetData(ctx context.Context) (*app.Response, error) {
	headerResp, err := m.GetHeaders(ctx, 0)
	if err != nil {
		return nil, err
	}

	header, _ := headerResp.Data.(app.HeaderMap)
	if len(header) == 0 {
		return nil, app.BadRequest("Header row could not be read or is empty")
	}

	return m.GetDataInBatches(ctx, header, DefaultBatchSize)
}

// GetLastEmptyRow finds the first fully empty row below the header,
// or the row just after the last used one
func (m *SheetManager) GetLastEmptyRow(ctx context.Context) (*app.Response, error) {
	next, err := m.nextEmptyRow(ctx)
	if err != nil {
		return nil, app.WrapError(err)
	}
	return app.NewResponse(http.StatusOK, next, "Next empty row identified"), nil
}

func (m *SheetManager) nextEmptyRow(ctx context.Context) (int, error) {
	rows, err := m.scanDataRows(ctx, DefaultBatchSize)
	if err != nil {
		return 0, err
	}

	first := m.firstDataRow()
	for i, row := range rows {
		if isEmptyRow(row) {
			return first + i, nil
		}
	}
	return first + len(rows), nil
}

// AppendRowData writes records into the sheet starting at the next empty row.
// When headers is empty the sheet's own header row is used. Formatting and
// formulas of the row above are copied onto the new rows first.
func (m *SheetManager) AppendRowData(ctx context.Context, records []app.Record, headers app.HeaderMap) (*app.Response, error) {
	if len(records) == 0 {
		return nil, app.BadRequest("No data provided to append to sheet")
	}

	if len(headers) == 0 {
		headerResp, err := m.GetHeaders(ctx, 0)
		if err != nil {
			return nil, err
		}
		headers, _ = headerResp.Data.(app.HeaderMap)
		if len(headers) == 0 {
			return nil, app.BadRequest("No headers found to append data")
		}
	}

	width := headers.Width()
	newRows := make([][]interface{}, 0, len(records))
	for _, record := range records {
		row := make([]interface{}, width)
		for i := range row {
			row[i] = ""
		}
		for name, idx := range headers {
			if idx < 0 {
				continue
			}
			if v, ok := record[name]; ok && v != nil {
				row[idx] = v
			}
		}
		newRows = append(newRows, row)
	}

	startRow, err := m.nextEmptyRow(ctx)
	if err != nil {
		return nil, app.WrapError(err)
	}
	endRow := startRow + len(newRows) - 1

	if err := m.api.EnsureSheetCapacity(ctx, m.spreadsheetID, m.sheetName, endRow, width); err != nil {
		return nil, app.WrapError(err)
	}

	if startRow > m.firstDataRow() {
		if err := m.api.CopyFormatAndFormulas(ctx, m.spreadsheetID, m.sheetID, startRow-1, startRow, len(newRows), width); err != nil {
			return nil, app.WrapError(err)
		}
	}

	rangeSpec, err := RangeRef(m.sheetName, startRow, 1, endRow, width)
	if err != nil {
		return nil, app.WrapError(err)
	}
	if err := m.api.UpdateRange(ctx, m.spreadsheetID, rangeSpec, newRows); err != nil {
		return nil, app.WrapError(err)
	}

	log.Debug().
		Str("sheet_name", m.sheetName).
		Int("start_row", startRow).
		Int("rows", len(newRows)).
		Msg("Appended rows")

	return app.NewResponse(http.StatusOK, app.AppendResult{StartRow: startRow},
		fmt.Sprintf("Rows appended successfully at row no: %d", startRow)), nil
}

func validateAnchor(row, column int) error {
	if row < 1 {
		return app.BadRequest("Row number must be a positive integer (1-based index)")
	}
	if column < 1 {
		return app.BadRequest("Column number must be a positive integer (1-based index)")
	}
	return nil
}

// UpdateCell overwrites a single 1-based cell
func (m *SheetManager) UpdateCell(ctx context.Context, row, column int, value interface{}) (*app.Response, error) {
	if err := validateAnchor(row, column); err != nil {
		return nil, err
	}
	if value == nil {
		return nil, app.BadRequest("Value is required to update the cell")
	}

	rangeSpec, err := RangeRef(m.sheetName, row, column, row, column)
	if err != nil {
		return nil, app.WrapError(err)
	}
	if err := m.api.UpdateRange(ctx, m.spreadsheetID, rangeSpec, [][]interface{}{{value}}); err != nil {
		return nil, app.WrapError(err)
	}

	return app.NewResponse(http.StatusOK, value,
		fmt.Sprintf("Cell updated successfully at row: %d, column: %d", row, column)), nil
}

// UpdateMultipleCells writes a 2-D block of values anchored at the given cell
func (m *SheetManager) UpdateMultipleCells(ctx context.Context, row, column int, values [][]interface{}) (*app.Response, error) {
	if err := validateAnchor(row, column); err != nil {
		return nil, err
	}
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, app.BadRequest("Value is required to update the cell")
	}

	width := 0
	for _, r := range values {
		if len(r) > width {
			width = len(r)
		}
	}

	rangeSpec, err := RangeRef(m.sheetName, row, column, row+len(values)-1, column+width-1)
	if err != nil {
		return nil, app.WrapError(err)
	}
	if err := m.api.UpdateRange(ctx, m.spreadsheetID, rangeSpec, values); err != nil {
		return nil, app.WrapError(err)
	}

	return app.NewResponse(http.StatusOK, values,
		fmt.Sprintf("Cell updated successfully at row: %d, column: %d", row, column)), nil
}

// DeleteRow removes a data row; the header row and anything above it are protected
func (m *SheetManager) DeleteRow(ctx context.Context, row int) (*app.Response, error) {
	if row <= m.headerRow {
		return nil, app.BadRequest(fmt.Sprintf(
			"Row number must be greater than or equal to %d (cannot delete header row)", m.firstDataRow()))
	}

	if err := m.api.DeleteRow(ctx, m.spreadsheetID, m.sheetID, row); err != nil {
		return nil, app.WrapError(err)
	}

	log.Debug().
		Str("sheet_name", m.sheetName).
		Int("row", row).
		Msg("Deleted row")

	return app.NewResponse(http.StatusOK, row, fmt.Sprintf("Row %d deleted successfully.", row)), nil
}

// FilterRowsByColumnValues returns the records whose columns strictly equal every criterion.
// Criterion keys are matched case-insensitively against the header names.
func (m *SheetManager) FilterRowsByColumnValues(ctx context.Context, criteria app.Criteria) (*app.Response, error) {
	dataResp, err := m.GetData(ctx)
	if err != nil {
		return nil, err
	}
	if !dataResp.Success {
		return nil, app.NewSheetError(http.StatusInternalServerError, "Failed to fetch sheet data", nil)
	}

	records, _ := dataResp.Data.([]app.Record)
	filtered := FilterRecords(records, criteria)

	return app.NewResponse(http.StatusOK, filtered, "Filtered rows by provided criteria"), nil
}

// FilterRecords keeps the records matching every criterion; empty criteria match all
func FilterRecords(records []app.Record, criteria app.Criteria) []app.Record {
	filtered := make([]app.Record, 0, len(records))
	for _, record := range records {
		if matches(record, criteria) {
			filtered = append(filtered, record)
		}
	}
	return filtered
}

func matches(record app.Record, criteria app.Criteria) bool {
	for key, want := range criteria {
		got, ok := record[strings.ToLower(key)]
		if !ok || !NewCell(got).Equal(want) {
			return false
		}
	}
	return true
}
