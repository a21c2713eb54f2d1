package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheet_manager/internal/web"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func (r *runner) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve sheet operations over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			// connect once up front so request handlers share one client
			if _, err := r.client(ctx); err != nil {
				return r.print(nil, err)
			}

			server := web.NewServer(r.opener(), r.cfg.SpreadsheetID)

			go func() {
				sigCh := make(chan os.Signal, 1)
				signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
				<-sigCh

				log.Info().Msg("Shutting down sheet server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Shutdown error")
				}
			}()

			if err := server.Start(r.cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			log.Info().Msg("Sheet server stopped")
			r.logCalls()
			return nil
		},
	}
	cmd.Flags().StringVar(&r.cfg.ListenAddr, "addr", r.cfg.ListenAddr, "Address to listen on (env LISTEN_ADDR)")
	return cmd
}

// opener adapts the runner's sheet opening to the web layer
func (r *runner) opener() web.Opener {
	return func(ctx context.Context, spreadsheetID, sheetName string) (web.Manager, error) {
		m, err := r.open(ctx, spreadsheetID, sheetName)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}
