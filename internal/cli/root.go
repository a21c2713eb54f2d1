// Package cli provides the sheet_manager command line interface.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"sheet_manager/internal/app"
	"sheet_manager/internal/sheets"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// ErrFailed is returned after a failed envelope has already been printed
var ErrFailed = errors.New("sheet operation failed")

// Connector creates the platform client on first use
type Connector func(ctx context.Context) (sheets.SheetsAPI, error)

// GoogleConnector connects with the service account credentials named in cfg
func GoogleConnector(cfg *app.Config) Connector {
	return func(ctx context.Context) (sheets.SheetsAPI, error) {
		return sheets.NewClient(ctx, cfg.CredentialsFile)
	}
}

// offlineCommands never open a sheet, so they run without a spreadsheet ID
var offlineCommands = map[string]bool{
	"help":                          true,
	"completion":                    true,
	cobra.ShellCompRequestCmd:       true,
	cobra.ShellCompNoDescRequestCmd: true,
}

func needsSpreadsheet(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if offlineCommands[c.Name()] {
			return false
		}
	}
	return true
}

type runner struct {
	cfg     *app.Config
	connect Connector
	api     sheets.SheetsAPI
	out     io.Writer
	pretty  bool
}

// NewRootCommand builds the command tree. Flags default to the values in cfg.
func NewRootCommand(cfg *app.Config, connect Connector, out io.Writer) *cobra.Command {
	r := &runner{cfg: cfg, connect: connect, out: out}

	root := &cobra.Command{
		Use:   "sheet_manager",
		Short: "Read and write header-keyed records in a Google Sheet",
		Long: `sheet_manager treats a sheet as a table: the header row names the columns
and every row below it is a record. Each command prints a JSON envelope.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsSpreadsheet(cmd) {
				return nil
			}
			if err := cfg.Validate(); err != nil {
				r.print(nil, app.BadRequest(err.Error()))
				return ErrFailed
			}
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.SpreadsheetID, "spreadsheet", cfg.SpreadsheetID, "Spreadsheet ID (env SPREADSHEET_ID)")
	flags.StringVar(&cfg.SheetName, "sheet", cfg.SheetName, "Sheet name, empty selects the first sheet (env SHEET_NAME)")
	flags.IntVar(&cfg.HeaderRow, "header-row", cfg.HeaderRow, "1-based row holding the column names (env HEADER_ROW)")
	flags.BoolVar(&cfg.CreateMissingSheet, "create-missing", cfg.CreateMissingSheet, "Create the sheet when it does not exist (env CREATE_MISSING_SHEET)")
	flags.BoolVar(&r.pretty, "pretty", false, "Pretty-print JSON output")

	root.AddCommand(
		r.headersCommand(),
		r.createHeadersCommand(),
		r.dataCommand(),
		r.filterCommand(),
		r.nextEmptyRowCommand(),
		r.appendCommand(),
		r.updateCellCommand(),
		r.updateRangeCommand(),
		r.deleteRowCommand(),
		r.exportCommand(),
		r.serveCommand(),
	)

	return root
}

func (r *runner) client(ctx context.Context) (sheets.SheetsAPI, error) {
	if r.api != nil {
		return r.api, nil
	}
	api, err := r.connect(ctx)
	if err != nil {
		return nil, app.WrapError(err)
	}
	r.api = api
	return api, nil
}

// open returns a manager for sheetName of spreadsheetID, using the configured header row
func (r *runner) open(ctx context.Context, spreadsheetID, sheetName string) (*sheets.SheetManager, error) {
	api, err := r.client(ctx)
	if err != nil {
		return nil, err
	}
	return sheets.NewSheetManager(ctx, api, spreadsheetID, sheetName,
		sheets.WithHeaderRow(r.cfg.HeaderRow),
		sheets.WithCreateMissing(r.cfg.CreateMissingSheet),
	)
}

func (r *runner) openConfigured(ctx context.Context) (*sheets.SheetManager, error) {
	return r.open(ctx, r.cfg.SpreadsheetID, r.cfg.SheetName)
}

// print writes the envelope for resp, or the failed envelope for err
func (r *runner) print(resp *app.Response, err error) error {
	if err != nil {
		log.Debug().Err(err).Int("status", app.StatusCodeOf(err)).Msg("Command failed")
		resp = app.ErrorResponse(err)
	}

	var data []byte
	var encErr error
	if r.pretty {
		data, encErr = json.MarshalIndent(resp, "", "  ")
	} else {
		data, encErr = json.Marshal(resp)
	}
	if encErr != nil {
		return fmt.Errorf("failed to encode response: %w", encErr)
	}
	fmt.Fprintln(r.out, string(data))

	if !resp.Success {
		return ErrFailed
	}
	return nil
}

// run opens the configured sheet and prints the result of op
func (r *runner) run(cmd *cobra.Command, op func(ctx context.Context, m *sheets.SheetManager) (*app.Response, error)) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer r.logCalls()

	m, err := r.openConfigured(ctx)
	if err != nil {
		return r.print(nil, err)
	}
	return r.print(op(ctx, m))
}

// logCalls logs the platform request counts when the client tracks them
func (r *runner) logCalls() {
	if tracked, ok := r.api.(interface{ Calls() *sheets.CallTracker }); ok {
		tracked.Calls().LogSummary()
	}
}
