package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"sheet_manager/internal/app"
	"sheet_manager/internal/export"
	"sheet_manager/internal/sheets"

	"github.com/spf13/cobra"
)

func (r *runner) headersCommand() *cobra.Command {
	var row int
	cmd := &cobra.Command{
		Use:   "headers",
		Short: "Print the header map of the sheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				return m.GetHeaders(ctx, row)
			})
		},
	}
	cmd.Flags().IntVar(&row, "row", 0, "Row to read headers from (default: the header row)")
	return cmd
}

func (r *runner) createHeadersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-headers NAME...",
		Short: "Write column names into the header row",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				return m.CreateHeaders(ctx, args)
			})
		},
	}
}

func (r *runner) dataCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Print every record below the header row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				header, err := headerMap(ctx, m)
				if err != nil {
					return nil, err
				}
				return m.GetDataInBatches(ctx, header, r.cfg.BatchSize)
			})
		},
	}
	cmd.Flags().IntVar(&r.cfg.BatchSize, "batch-size", r.cfg.BatchSize, "Rows fetched per read request (env BATCH_SIZE)")
	return cmd
}

func (r *runner) filterCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "filter COLUMN=VALUE...",
		Short: "Print the records whose columns equal every given value",
		Long: `Values are read as JSON scalars when they parse as one, so score=5 matches
the number 5 while score='"5"' matches the text 5.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := parseAssignments(args)
			if err != nil {
				return r.print(nil, err)
			}
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				return m.FilterRowsByColumnValues(ctx, app.ParseCriteria(pairs))
			})
		},
	}
}

func (r *runner) nextEmptyRowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "next-empty-row",
		Short: "Print the row the next append would start at",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				return m.GetLastEmptyRow(ctx)
			})
		},
	}
}

func (r *runner) appendCommand() *cobra.Command {
	var input, headersJSON string
	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append records given as a JSON list of objects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []app.Record
			if err := readJSON(cmd.InOrStdin(), input, &records); err != nil {
				return r.print(nil, err)
			}
			var headers app.HeaderMap
			if headersJSON != "" {
				if err := json.Unmarshal([]byte(headersJSON), &headers); err != nil {
					return r.print(nil, app.BadRequest("Invalid headers: "+err.Error()))
				}
			}
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				return m.AppendRowData(ctx, records, headers)
			})
		},
	}
	cmd.Flags().StringVar(&input, "data", "-", "JSON records, @file to read a file, - for stdin")
	cmd.Flags().StringVar(&headersJSON, "headers", "", `Header map to write with, e.g. {"name":0} (default: the sheet's header row)`)
	return cmd
}

func (r *runner) updateCellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update-cell ROW COLUMN VALUE",
		Short: "Overwrite a single cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, column, err := parseAnchor(args[0], args[1])
			if err != nil {
				return r.print(nil, err)
			}
			value := app.ParseScalar(args[2])
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				return m.UpdateCell(ctx, row, column, value)
			})
		},
	}
}

func (r *runner) updateRangeCommand() *cobra.Command {
	var input string
	cmd := &cobra.Command{
		Use:   "update-range ROW COLUMN",
		Short: "Write a JSON 2-D array of values anchored at a cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, column, err := parseAnchor(args[0], args[1])
			if err != nil {
				return r.print(nil, err)
			}
			var values [][]interface{}
			if err := readJSON(cmd.InOrStdin(), input, &values); err != nil {
				return r.print(nil, err)
			}
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				return m.UpdateMultipleCells(ctx, row, column, values)
			})
		},
	}
	cmd.Flags().StringVar(&input, "data", "-", "JSON values, @file to read a file, - for stdin")
	return cmd
}

func (r *runner) deleteRowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-row ROW",
		Short: "Delete a data row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[0])
			if err != nil {
				return r.print(nil, app.BadRequest("Row number must be an integer"))
			}
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				return m.DeleteRow(ctx, row)
			})
		},
	}
}

func (r *runner) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export PATH",
		Short: "Save every record of the sheet into an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return r.run(cmd, func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error) {
				header, err := headerMap(ctx, m)
				if err != nil {
					return nil, err
				}
				dataResp, err := m.GetDataInBatches(ctx, header, r.cfg.BatchSize)
				if err != nil {
					return nil, err
				}
				records, _ := dataResp.Data.([]app.Record)
				if err := export.SaveRecords(path, m.SheetName(), header, records); err != nil {
					return nil, app.WrapError(err)
				}
				return app.NewResponse(http.StatusOK, path,
					fmt.Sprintf("Exported %d records to %s", len(records), path)), nil
			})
		},
	}
	cmd.Flags().IntVar(&r.cfg.BatchSize, "batch-size", r.cfg.BatchSize, "Rows fetched per read request (env BATCH_SIZE)")
	return cmd
}

// headerMap reads the header row and rejects an empty one
func headerMap(ctx context.Context, m *sheets.SheetManager) (app.HeaderMap, error) {
	resp, err := m.GetHeaders(ctx, 0)
	if err != nil {
		return nil, err
	}
	header, _ := resp.Data.(app.HeaderMap)
	if len(header) == 0 {
		return nil, app.BadRequest("Header row could not be read or is empty")
	}
	return header, nil
}

func parseAnchor(rowArg, columnArg string) (int, int, error) {
	row, err := strconv.Atoi(rowArg)
	if err != nil {
		return 0, 0, app.BadRequest("Row number must be a positive integer (1-based index)")
	}
	column, err := strconv.Atoi(columnArg)
	if err != nil {
		return 0, 0, app.BadRequest("Column number must be a positive integer (1-based index)")
	}
	return row, column, nil
}

// parseAssignments splits COLUMN=VALUE arguments; a later column wins
func parseAssignments(args []string) (map[string]string, error) {
	pairs := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, app.BadRequest(fmt.Sprintf("Invalid criterion %q, expected COLUMN=VALUE", arg))
		}
		pairs[strings.TrimSpace(key)] = value
	}
	return pairs, nil
}

// readJSON decodes source into v: "-" reads stdin, "@path" reads a file, anything else is inline JSON
func readJSON(stdin io.Reader, source string, v interface{}) error {
	var data []byte
	var err error
	switch {
	case source == "-":
		data, err = io.ReadAll(stdin)
	case strings.HasPrefix(source, "@"):
		data, err = os.ReadFile(source[1:])
	default:
		data = []byte(source)
	}
	if err != nil {
		return app.BadRequest("Failed to read input: " + err.Error())
	}
	if err := json.Unmarshal(data, v); err != nil {
		return app.BadRequest("Invalid JSON input: " + err.Error())
	}
	return nil
}
