package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"sheet_manager/internal/app"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	defaultSheetName = "Sheet1"
	// maxSheetNameLength is the longest worksheet name a workbook accepts
	maxSheetNameLength = 31
)

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "(", "]", ")",
)

// WorkbookSheetName maps a Google Sheets title onto a legal worksheet name.
// Forbidden characters are replaced, edge apostrophes dropped and the result
// cut to 31 characters; nothing usable left gives Sheet1.
func WorkbookSheetName(title string) string {
	name := sheetNameReplacer.Replace(title)
	if utf8.RuneCountInString(name) > maxSheetNameLength {
		name = string([]rune(name)[:maxSheetNameLength])
	}
	name = strings.Trim(name, "'")
	if strings.TrimSpace(name) == "" {
		return defaultSheetName
	}
	return name
}

// WriteRecords renders records as an xlsx workbook with one header row.
// Each header lands in the column its index names, so gaps in the sheet are kept.
func WriteRecords(w io.Writer, sheetName string, headers app.HeaderMap, records []app.Record) error {
	f, err := build(sheetName, headers, records)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveRecords writes the workbook to a file path
func SaveRecords(path, sheetName string, headers app.HeaderMap, records []app.Record) error {
	f, err := build(sheetName, headers, records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	log.Info().
		Str("path", path).
		Str("sheet_name", sheetName).
		Int("records", len(records)).
		Msg("Exported records")

	return nil
}

func build(sheetName string, headers app.HeaderMap, records []app.Record) (*excelize.File, error) {
	if len(headers) == 0 {
		return nil, app.BadRequest("Header cannot be empty")
	}
	sheetName = WorkbookSheetName(sheetName)

	f := excelize.NewFile()
	if sheetName != defaultSheetName {
		if err := f.SetSheetName(defaultSheetName, sheetName); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet %s: %w", sheetName, err)
		}
	}

	names := headers.Ordered()
	for _, name := range names {
		if err := setCell(f, sheetName, 1, headers[name]+1, name); err != nil {
			f.Close()
			return nil, err
		}
	}

	for i, record := range records {
		row := i + 2
		for _, name := range names {
			v, ok := record[name]
			if !ok || v == nil || v == "" {
				continue
			}
			if err := setCell(f, sheetName, row, headers[name]+1, v); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}

func setCell(f *excelize.File, sheetName string, row, col int, value interface{}) error {
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell coordinates row %d, column %d: %w", row, col, err)
	}
	if err := f.SetCellValue(sheetName, ref, value); err != nil {
		return fmt.Errorf("failed to set cell %s: %w", ref, err)
	}
	return nil
}
