package web

import (
	"bytes"
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"sheet_manager/internal/app"
	"sheet_manager/internal/export"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const (
	// maxBodyBytes caps request bodies
	maxBodyBytes = 10 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type appendRequest struct {
	Rows    []app.Record  `json:"rows"`
	Headers app.HeaderMap `json:"headers"`
}

type cellRequest struct {
	Row    int         `json:"row"`
	Column int         `json:"column"`
	Value  interface{} `json:"value"`
}

type rangeRequest struct {
	Row    int             `json:"row"`
	Column int             `json:"column"`
	Values [][]interface{} `json:"values"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respond writes the operation's envelope, or the failed envelope for err
func respond(w http.ResponseWriter, r *http.Request, resp *app.Response, err error) {
	if err != nil {
		resp = app.ErrorResponse(err)

		event := log.Warn()
		if resp.StatusCode >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("path", r.URL.Path).
			Int("status", resp.StatusCode).
			Msg("Sheet operation failed")
	}
	writeJSON(w, resp.StatusCode, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return app.BadRequest("Invalid request body: " + err.Error())
	}
	return nil
}

// manager opens the sheet named in the route, honoring ?spreadsheet=
func (s *Server) manager(r *http.Request) (Manager, error) {
	spreadsheetID := s.spreadsheetID
	if override := r.URL.Query().Get("spreadsheet"); override != "" {
		spreadsheetID = override
	}
	return s.open(r.Context(), spreadsheetID, sheetParam(r))
}

// sheetParam returns the decoded sheet title. chi matches on the raw path when
// it holds escapes such as %2F, leaving the parameter encoded.
func sheetParam(r *http.Request) string {
	name := chi.URLParam(r, "sheet")
	if r.URL.RawPath == "" {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func intQuery(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, app.BadRequest("Query parameter " + key + " must be an integer")
	}
	return n, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.NewResponse(http.StatusOK, nil, "OK"))
}

func (s *Server) handleGetHeaders(w http.ResponseWriter, r *http.Request) {
	row, err := intQuery(r, "row")
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	resp, err := m.GetHeaders(r.Context(), row)
	respond(w, r, resp, err)
}

func (s *Server) handleCreateHeaders(w http.ResponseWriter, r *http.Request) {
	var headers []string
	if err := decodeBody(w, r, &headers); err != nil {
		respond(w, r, nil, err)
		return
	}
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	resp, err := m.CreateHeaders(r.Context(), headers)
	respond(w, r, resp, err)
}

func (s *Server) handleGetRecords(w http.ResponseWriter, r *http.Request) {
	batchSize, err := intQuery(r, "batch_size")
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}

	if batchSize == 0 {
		resp, err := m.GetData(r.Context())
		respond(w, r, resp, err)
		return
	}

	headerResp, err := m.GetHeaders(r.Context(), 0)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	header, _ := headerResp.Data.(app.HeaderMap)
	resp, err := m.GetDataInBatches(r.Context(), header, batchSize)
	respond(w, r, resp, err)
}

func (s *Server) handleAppendRecords(w http.ResponseWriter, r *http.Request) {
	var req appendRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond(w, r, nil, err)
		return
	}
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	resp, err := m.AppendRowData(r.Context(), req.Rows, req.Headers)
	respond(w, r, resp, err)
}

func (s *Server) handleFilterQuery(w http.ResponseWriter, r *http.Request) {
	pairs := map[string]string{}
	for key, values := range r.URL.Query() {
		if key == "spreadsheet" || len(values) == 0 {
			continue
		}
		pairs[key] = values[0]
	}
	s.filter(w, r, app.ParseCriteria(pairs))
}

func (s *Server) handleFilterBody(w http.ResponseWriter, r *http.Request) {
	var criteria app.Criteria
	if err := decodeBody(w, r, &criteria); err != nil {
		respond(w, r, nil, err)
		return
	}
	s.filter(w, r, criteria)
}

func (s *Server) filter(w http.ResponseWriter, r *http.Request, criteria app.Criteria) {
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	resp, err := m.FilterRowsByColumnValues(r.Context(), criteria)
	respond(w, r, resp, err)
}

func (s *Server) handleNextEmptyRow(w http.ResponseWriter, r *http.Request) {
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	resp, err := m.GetLastEmptyRow(r.Context())
	respond(w, r, resp, err)
}

// handleExport streams every record of the sheet as an xlsx workbook.
// Failures before the workbook is built still reply with the JSON envelope.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	batchSize, err := intQuery(r, "batch_size")
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}

	headerResp, err := m.GetHeaders(r.Context(), 0)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	header, _ := headerResp.Data.(app.HeaderMap)
	if len(header) == 0 {
		respond(w, r, nil, app.BadRequest("Header row could not be read or is empty"))
		return
	}

	dataResp, err := m.GetDataInBatches(r.Context(), header, batchSize)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	records, _ := dataResp.Data.([]app.Record)

	var buf bytes.Buffer
	if err := export.WriteRecords(&buf, m.SheetName(), header, records); err != nil {
		respond(w, r, nil, app.WrapError(err))
		return
	}

	filename := export.WorkbookSheetName(m.SheetName()) + ".xlsx"
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Str("sheet_name", m.SheetName()).Msg("Failed to write workbook")
	}
}

func (s *Server) handleUpdateCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond(w, r, nil, err)
		return
	}
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	resp, err := m.UpdateCell(r.Context(), req.Row, req.Column, req.Value)
	respond(w, r, resp, err)
}

func (s *Server) handleUpdateRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := decodeBody(w, r, &req); err != nil {
		respond(w, r, nil, err)
		return
	}
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	resp, err := m.UpdateMultipleCells(r.Context(), req.Row, req.Column, req.Values)
	respond(w, r, resp, err)
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		respond(w, r, nil, app.BadRequest("Row number must be an integer"))
		return
	}
	m, err := s.manager(r)
	if err != nil {
		respond(w, r, nil, err)
		return
	}
	resp, err := m.DeleteRow(r.Context(), row)
	respond(w, r, resp, err)
}
