// Package session ties a record source to the canonical table loaded from
// it. A session replaces process-wide state: every caller goes through one
// Session, which knows when its table is stale and must be fetched again.
package session

import (
	"context"
	"fmt"
	"sync"

	"blasting_tracker/internal/reconcile"
	"blasting_tracker/internal/records"
	"blasting_tracker/internal/status"

	"github.com/rs/zerolog/log"
)

// Source is a worksheet the dashboard can read from and write back to.
type Source interface {
	reconcile.Source
	ListAllRecords(ctx context.Context) ([]string, []records.Raw, error)
}

// StatusChange describes a committed edit that moved a trip between buckets.
type StatusChange struct {
	TrackingID string
	From       string
	To         string
}

type Session struct {
	source    Source
	worksheet string

	mu    sync.Mutex
	table *records.Table
	stale bool
}

func New(source Source, worksheet string) *Session {
	return &Session{source: source, worksheet: worksheet}
}

func (s *Session) Worksheet() string {
	return s.worksheet
}

// Load fetches and normalizes the worksheet, replacing the current table.
// On error the previous table is kept but marked stale.
func (s *Session) Load(ctx context.Context) (*records.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Session) loadLocked(ctx context.Context) (*records.Table, error) {
	headers, rows, err := s.source.ListAllRecords(ctx)
	if err != nil {
		s.stale = true
		return nil, fmt.Errorf("failed to load worksheet %q: %w", s.worksheet, err)
	}
	table, err := records.Normalize(s.worksheet, headers, rows)
	if err != nil {
		s.stale = true
		return nil, fmt.Errorf("failed to normalize worksheet %q: %w", s.worksheet, err)
	}

	s.table = table
	s.stale = false
	log.Info().
		Str("worksheet", s.worksheet).
		Str("load_id", table.LoadID).
		Int("records", len(table.Records)).
		Msg("Loaded worksheet")
	return table, nil
}

// Table returns the current table, loading it first if it is missing or stale.
func (s *Session) Table(ctx context.Context) (*records.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.table != nil && !s.stale {
		return s.table, nil
	}
	return s.loadLocked(ctx)
}

// Invalidate forces the next Table call to reload.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.stale = true
	s.mu.Unlock()
}

// Edit applies an edit against the current table. An edit carrying the load
// ID of an older table is rejected. Once any cell has been written the table
// is stale.
func (s *Session) Edit(ctx context.Context, edit reconcile.EditRequest) (reconcile.Result, *StatusChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table := s.table
	if table == nil || s.stale {
		var err error
		if table, err = s.loadLocked(ctx); err != nil {
			return reconcile.Result{TrackingID: edit.TrackingID}, nil, err
		}
	}
	if edit.LoadID != "" && edit.LoadID != table.LoadID {
		log.Warn().
			Str("tracking_id", edit.TrackingID).
			Str("edit_load_id", edit.LoadID).
			Str("current_load_id", table.LoadID).
			Msg("Rejecting edit made against an older table")
		return reconcile.Result{TrackingID: edit.TrackingID, Outcome: reconcile.Rejected}, nil,
			&reconcile.StaleTableError{EditLoadID: edit.LoadID, CurrentLoadID: table.LoadID}
	}

	result, err := reconcile.Apply(ctx, s.source, table, edit)
	if len(result.Written) > 0 {
		s.stale = true
	}
	if err != nil {
		return result, nil, err
	}

	return result, statusChange(table, result, edit), nil
}

func statusChange(table *records.Table, result reconcile.Result, edit reconcile.EditRequest) *StatusChange {
	written := false
	for _, f := range result.Written {
		if f == records.FieldStatus {
			written = true
		}
	}
	if !written {
		return nil
	}

	raw, _ := edit.Fields[records.FieldStatus].(string)
	to := status.Canonical(raw)
	from := ""
	if rec, ok := table.Lookup(edit.TrackingID); ok {
		from = rec.Status()
	}
	if from == to {
		return nil
	}
	return &StatusChange{TrackingID: edit.TrackingID, From: from, To: to}
}
