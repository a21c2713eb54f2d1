// Package web exposes sheet operations over a JSON HTTP API.
package web

import (
	"context"
	"net/http"
	"time"

	"sheet_manager/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// requestTimeout bounds a single request, including every batch read it triggers
const requestTimeout = 60 * time.Second

// Manager is the set of sheet operations served over HTTP
type Manager interface {
	SheetName() string
	CreateHeaders(ctx context.Context, headers []string) (*app.Response, error)
	GetHeaders(ctx context.Context, row int) (*app.Response, error)
	GetData(ctx context.Context) (*app.Response, error)
	GetDataInBatches(ctx context.Context, header app.HeaderMap, batchSize int) (*app.Response, error)
	GetLastEmptyRow(ctx context.Context) (*app.Response, error)
	AppendRowData(ctx context.Context, records []app.Record, headers app.HeaderMap) (*app.Response, error)
	UpdateCell(ctx context.Context, row, column int, value interface{}) (*app.Response, error)
	UpdateMultipleCells(ctx context.Context, row, column int, values [][]interface{}) (*app.Response, error)
	DeleteRow(ctx context.Context, row int) (*app.Response, error)
	FilterRowsByColumnValues(ctx context.Context, criteria app.Criteria) (*app.Response, error)
}

// Opener returns a Manager for one sheet of a spreadsheet
type Opener func(ctx context.Context, spreadsheetID, sheetName string) (Manager, error)

// Server is the HTTP server for sheet operations
type Server struct {
	open          Opener
	spreadsheetID string
	router        *chi.Mux
	server        *http.Server
}

// NewServer creates a server that opens sheets of spreadsheetID unless a request overrides it
func NewServer(open Opener, spreadsheetID string) *Server {
	s := &Server{
		open:          open,
		spreadsheetID: spreadsheetID,
		router:        chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(requestTimeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/sheets/{sheet}", func(r chi.Router) {
		r.Get("/headers", s.handleGetHeaders)
		r.Put("/headers", s.handleCreateHeaders)

		r.Get("/records", s.handleGetRecords)
		r.Post("/records", s.handleAppendRecords)
		r.Get("/records/filter", s.handleFilterQuery)
		r.Post("/records/filter", s.handleFilterBody)

		r.Get("/next-empty-row", s.handleNextEmptyRow)
		r.Get("/export.xlsx", s.handleExport)

		r.Put("/cells", s.handleUpdateCell)
		r.Put("/cells/range", s.handleUpdateRange)

		r.Delete("/rows/{row}", s.handleDeleteRow)
	})
}

// Start begins listening for HTTP requests
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().
		Str("addr", addr).
		Str("spreadsheet_id", s.spreadsheetID).
		Msg("Starting sheet server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestLogger logs every request with its status and duration
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("Handled request")
	})
}
