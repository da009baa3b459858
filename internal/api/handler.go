package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"blasting_tracker/internal/reconcile"
	"blasting_tracker/internal/records"
	"blasting_tracker/internal/status"
	"blasting_tracker/internal/summary"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type tableInfo struct {
	Worksheet string    `json:"worksheet"`
	LoadID    string    `json:"load_id"`
	LoadedAt  time.Time `json:"loaded_at"`
	Trips     int       `json:"trips"`
}

type filterOptions struct {
	Blasters []string `json:"blasters"`
	Markets  []string `json:"markets"`
	Statuses []string `json:"statuses"`
}

type summaryResponse struct {
	tableInfo
	KPI     summary.KPI   `json:"kpi"`
	Options filterOptions `json:"options"`
}

type bucketResponse struct {
	status.Bucket
	Count int            `json:"count"`
	Trips []records.Trip `json:"trips"`
}

type recordResponse struct {
	LoadID   string         `json:"load_id"`
	Trip     records.Trip   `json:"trip"`
	Editable map[string]any `json:"editable"`
}

type patchRequest struct {
	LoadID string         `json:"load_id"`
	Fields map[string]any `json:"fields"`
}

type errorResponse struct {
	Error  string            `json:"error"`
	Result *reconcile.Result `json:"result,omitempty"`
}

func sendJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func sendError(w http.ResponseWriter, code int, err error) {
	sendJSON(w, code, errorResponse{Error: err.Error()})
}

func withAll(values []string) []string {
	return append([]string{summary.AllOption}, values...)
}

func (h *Handler) getHealth(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, map[string]string{"status": "ok", "worksheet": h.session.Worksheet()})
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	table, err := h.session.Table(r.Context())
	if err != nil {
		sendError(w, loadErrorStatus(err), err)
		return
	}

	q := r.URL.Query()
	filtered := summary.Filter(table.Records,
		summary.ByBlaster(q.Get("blaster")),
		summary.ByMarket(q.Get("market")),
		summary.ByStatus(q.Get("status")),
	)

	sendJSON(w, http.StatusOK, summaryResponse{
		tableInfo: infoOf(table),
		KPI:       summary.KPIs(filtered),
		Options: filterOptions{
			Blasters: withAll(summary.Distinct(table.Records, records.FieldBlaster)),
			Markets:  withAll(summary.Distinct(table.Records, records.FieldMarket)),
			Statuses: withAll(status.Vocabulary),
		},
	})
}

func (h *Handler) getBuckets(w http.ResponseWriter, r *http.Request) {
	table, err := h.session.Table(r.Context())
	if err != nil {
		sendError(w, loadErrorStatus(err), err)
		return
	}

	q := r.URL.Query()
	filtered := summary.Filter(table.Records,
		summary.ByBlaster(q.Get("blaster")),
		summary.ByMarket(q.Get("market")),
	)

	buckets := []bucketResponse{}
	for _, b := range status.Group(filtered) {
		buckets = append(buckets, bucketResponse{
			Bucket: b,
			Count:  len(b.Records),
			Trips:  records.Trips(b.Records),
		})
	}
	sendJSON(w, http.StatusOK, buckets)
}

func (h *Handler) getRecord(w http.ResponseWriter, r *http.Request) {
	trackingID := chi.URLParam(r, "trackingID")
	table, err := h.session.Table(r.Context())
	if err != nil {
		sendError(w, loadErrorStatus(err), err)
		return
	}

	rec, ok := table.Lookup(trackingID)
	if !ok {
		sendError(w, http.StatusNotFound, &reconcile.NotFoundError{TrackingID: trackingID})
		return
	}

	editable := make(map[string]any, len(reconcile.EditableFields))
	for _, f := range reconcile.EditableFields {
		if _, ok := table.Columns[f]; ok {
			editable[f] = rec[f]
		}
	}
	sendJSON(w, http.StatusOK, recordResponse{
		LoadID:   table.LoadID,
		Trip:     records.TripFrom(rec),
		Editable: editable,
	})
}

func (h *Handler) patchRecord(w http.ResponseWriter, r *http.Request) {
	var body patchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		sendError(w, http.StatusBadRequest, err)
		return
	}

	edit := reconcile.EditRequest{
		TrackingID: chi.URLParam(r, "trackingID"),
		LoadID:     body.LoadID,
		Fields:     body.Fields,
	}
	result, change, err := h.session.Edit(r.Context(), edit)
	if err != nil {
		code := editErrorStatus(err)
		if result.Outcome == "" {
			sendError(w, code, err)
			return
		}
		sendJSON(w, code, errorResponse{Error: err.Error(), Result: &result})
		return
	}

	if change != nil && h.notifier != nil {
		h.notifier.NotifyStatusChange(r.Context(), change.TrackingID, change.From, change.To)
	}
	sendJSON(w, http.StatusOK, result)
}

func (h *Handler) postReload(w http.ResponseWriter, r *http.Request) {
	table, err := h.session.Load(r.Context())
	if err != nil {
		sendError(w, loadErrorStatus(err), err)
		return
	}
	sendJSON(w, http.StatusOK, infoOf(table))
}

func infoOf(t *records.Table) tableInfo {
	return tableInfo{
		Worksheet: t.Worksheet,
		LoadID:    t.LoadID,
		LoadedAt:  t.LoadedAt,
		Trips:     len(t.Records),
	}
}

// loadErrorStatus maps a failed table load: malformed data is a server-side
// problem, anything else came from the record source.
func loadErrorStatus(err error) int {
	var perr *records.ParseError
	if errors.As(err, &perr) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

func editErrorStatus(err error) int {
	var (
		verr  *reconcile.ValidationError
		nferr *reconcile.NotFoundError
		aerr  *reconcile.AmbiguousKeyError
		serr  *reconcile.StaleTableError
		terr  *reconcile.TransportError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &nferr):
		return http.StatusNotFound
	case errors.As(err, &aerr), errors.As(err, &serr):
		return http.StatusConflict
	case errors.As(err, &terr):
		return http.StatusBadGateway
	default:
		return loadErrorStatus(err)
	}
}
