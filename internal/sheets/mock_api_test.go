package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// mockSheet is an in-memory sheet; grid is row-major and zero-based
type mockSheet struct {
	info SheetInfo
	grid [][]interface{}
}

type copyCall struct {
	SheetID   int64
	SourceRow int
	TargetRow int
	NumRows   int
	NumCols   int
}

// MockSheetsAPI implements SheetsAPI for testing with an in-memory grid
type MockSheetsAPI struct {
	sheets  map[string]*mockSheet
	order   []string
	nextID  int64
	errors  map[string]error
	reads   []string
	updates []string
	copies  []copyCall
	deletes []int
	created []string
}

func NewMockSheetsAPI() *MockSheetsAPI {
	return &MockSheetsAPI{
		sheets: make(map[string]*mockSheet),
		errors: make(map[string]error),
	}
}

// AddSheet registers a sheet with a 1000x26 grid seeded with rows starting at A1
func (m *MockSheetsAPI) AddSheet(title string, rows [][]interface{}) *mockSheet {
	sheet := &mockSheet{
		info: SheetInfo{ID: m.nextID, Title: title, RowCount: 1000, ColumnCount: 26},
	}
	m.nextID++
	for i, row := range rows {
		for j, v := range row {
			sheet.set(i+1, j+1, v)
		}
	}
	m.sheets[title] = sheet
	m.order = append(m.order, title)
	return sheet
}

// FailOn makes the named method return err
func (m *MockSheetsAPI) FailOn(method string, err error) {
	m.errors[method] = err
}

func (s *mockSheet) set(row, col int, v interface{}) {
	for len(s.grid) < row {
		s.grid = append(s.grid, nil)
	}
	r := s.grid[row-1]
	for len(r) < col {
		r = append(r, nil)
	}
	r[col-1] = v
	s.grid[row-1] = r
}

func (s *mockSheet) get(row, col int) interface{} {
	if row-1 >= len(s.grid) || col-1 >= len(s.grid[row-1]) {
		return nil
	}
	return s.grid[row-1][col-1]
}

// Value returns the cell at a 1-based position, "" when never written
func (s *mockSheet) Value(row, col int) interface{} {
	if v := s.get(row, col); v != nil {
		return v
	}
	return ""
}

// unquoteSheetName extracts the sheet title from an A1 range such as 'My Sheet'!A1:B2
func unquoteSheetName(range_ string) string {
	name := range_
	if idx := strings.LastIndex(range_, "!"); idx != -1 {
		name = range_[:idx]
	}
	if len(name) >= 2 && strings.HasPrefix(name, "'") && strings.HasSuffix(name, "'") {
		name = strings.ReplaceAll(name[1:len(name)-1], "''", "'")
	}
	return name
}

func (m *MockSheetsAPI) lookup(range_ string) (*mockSheet, int, int, int, int, error) {
	title := unquoteSheetName(range_)
	sheet, ok := m.sheets[title]
	if !ok {
		return nil, 0, 0, 0, 0, fmt.Errorf("unable to parse range: %s", range_)
	}

	ref := range_[strings.LastIndex(range_, "!")+1:]
	parts := strings.Split(ref, ":")

	// Whole-row reference like 3:3
	if r1, err := strconv.Atoi(parts[0]); err == nil {
		r2 := r1
		if len(parts) == 2 {
			if r2, err = strconv.Atoi(parts[1]); err != nil {
				return nil, 0, 0, 0, 0, err
			}
		}
		return sheet, r1, 1, r2, sheet.info.ColumnCount, nil
	}

	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return nil, 0, 0, 0, 0, err
	}
	c2, r2 := c1, r1
	if len(parts) == 2 {
		if c2, r2, err = excelize.CellNameToCoordinates(parts[1]); err != nil {
			return nil, 0, 0, 0, 0, err
		}
	}
	return sheet, r1, c1, r2, c2, nil
}

func (m *MockSheetsAPI) GetSheetInfo(ctx context.Context, spreadsheetID, sheetName string) (*SheetInfo, error) {
	if err := m.errors["GetSheetInfo"]; err != nil {
		return nil, err
	}
	if sheetName == "" {
		if len(m.order) == 0 {
			return nil, ErrSheetNotFound
		}
		sheetName = m.order[0]
	}
	sheet, ok := m.sheets[sheetName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}
	info := sheet.info
	return &info, nil
}

func (m *MockSheetsAPI) CreateSheet(ctx context.Context, spreadsheetID, sheetName string) (*SheetInfo, error) {
	if err := m.errors["CreateSheet"]; err != nil {
		return nil, err
	}
	m.created = append(m.created, sheetName)
	sheet := m.AddSheet(sheetName, nil)
	info := sheet.info
	return &info, nil
}

// ReadSheet mimics the platform by trimming trailing empty cells and rows
func (m *MockSheetsAPI) ReadSheet(ctx context.Context, spreadsheetID, range_ string) ([][]interface{}, error) {
	if err := m.errors["ReadSheet"]; err != nil {
		return nil, err
	}
	m.reads = append(m.reads, range_)

	sheet, r1, c1, r2, c2, err := m.lookup(range_)
	if err != nil {
		return nil, err
	}
	if r2 > sheet.info.RowCount {
		r2 = sheet.info.RowCount
	}

	var out [][]interface{}
	used := 0
	for r := r1; r <= r2; r++ {
		var row []interface{}
		last := 0
		for c := c1; c <= c2; c++ {
			v := sheet.get(r, c)
			if v == nil {
				v = ""
			} else if v != "" {
				last = c - c1 + 1
			}
			row = append(row, v)
		}
		row = row[:last]
		out = append(out, row)
		if len(row) > 0 {
			used = len(out)
		}
	}
	return out[:used], nil
}

func (m *MockSheetsAPI) UpdateRange(ctx context.Context, spreadsheetID, range_ string, values [][]interface{}) error {
	if err := m.errors["UpdateRange"]; err != nil {
		return err
	}
	m.updates = append(m.updates, range_)

	sheet, r1, c1, _, _, err := m.lookup(range_)
	if err != nil {
		return err
	}
	for i, row := range values {
		if r1+i > sheet.info.RowCount {
			return fmt.Errorf("range %s exceeds grid limits", range_)
		}
		for j, v := range row {
			if c1+j > sheet.info.ColumnCount {
				return fmt.Errorf("range %s exceeds grid limits", range_)
			}
			sheet.set(r1+i, c1+j, v)
		}
	}
	return nil
}

func (m *MockSheetsAPI) EnsureSheetCapacity(ctx context.Context, spreadsheetID, sheetName string, requiredRows, requiredCols int) error {
	if err := m.errors["EnsureSheetCapacity"]; err != nil {
		return err
	}
	sheet, ok := m.sheets[sheetName]
	if !ok {
		return fmt.Errorf("sheet %s not found", sheetName)
	}
	rows, cols, grow := growGrid(sheet.info.RowCount, sheet.info.ColumnCount, requiredRows, requiredCols)
	if grow {
		sheet.info.RowCount = rows
		sheet.info.ColumnCount = cols
	}
	return nil
}

func (m *MockSheetsAPI) CopyFormatAndFormulas(ctx context.Context, spreadsheetID string, sheetID int64, sourceRow, targetRow, numRows, numCols int) error {
	if err := m.errors["CopyFormatAndFormulas"]; err != nil {
		return err
	}
	m.copies = append(m.copies, copyCall{sheetID, sourceRow, targetRow, numRows, numCols})
	return nil
}

func (m *MockSheetsAPI) DeleteRow(ctx context.Context, spreadsheetID string, sheetID int64, row int) error {
	if err := m.errors["DeleteRow"]; err != nil {
		return err
	}
	for _, sheet := range m.sheets {
		if sheet.info.ID != sheetID {
			continue
		}
		m.deletes = append(m.deletes, row)
		if row-1 < len(sheet.grid) {
			sheet.grid = append(sheet.grid[:row-1], sheet.grid[row:]...)
		}
		sheet.info.RowCount--
		return nil
	}
	return fmt.Errorf("no sheet with id %d", sheetID)
}
