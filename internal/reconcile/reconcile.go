package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"blasting_tracker/internal/records"
	"blasting_tracker/internal/status"

	"github.com/rs/zerolog/log"
)

// Source is the part of a record source the reconciler writes through.
// Rows and columns are 1-based sheet positions.
type Source interface {
	FindRows(ctx context.Context, text string) ([]int, error)
	WriteCell(ctx context.Context, row, col int, value any) error
}

// Outcome is the terminal state of one edit.
type Outcome string

const (
	Rejected       Outcome = "rejected"
	NotFound       Outcome = "not_found"
	// PartialFailure means a source call failed. Result.Written lists the
	// cells that landed before it, and is empty when the row could not be
	// located at all.
	PartialFailure Outcome = "partial_failure"
	Committed      Outcome = "committed"
)

// EditableFields may be changed through an EditRequest.
var EditableFields = []string{
	records.FieldStatus,
	records.FieldBlastingStage,
	records.FieldEstCharge,
	records.FieldBaseEarnings1,
	records.FieldBaseEarnings2,
	records.FieldCurrentEarnings1,
	records.FieldCurrentEarnings2,
	records.FieldDriverAssigned,
}

// RequiredPositive fields must be strictly positive whenever they are saved.
var RequiredPositive = []string{
	records.FieldEstCharge,
	records.FieldBaseEarnings1,
	records.FieldCurrentEarnings1,
}

// EditRequest is a set of field changes for one tracking ID. LoadID, when
// set, names the table load the edit was prepared against.
type EditRequest struct {
	TrackingID string         `json:"tracking_id"`
	LoadID     string         `json:"load_id,omitempty"`
	Fields     map[string]any `json:"fields"`
}

// Result reports how far an edit got. Row is 0 until the row is located;
// Written is nil unless at least one cell was written.
type Result struct {
	Outcome    Outcome  `json:"outcome"`
	TrackingID string   `json:"tracking_id"`
	Row        int      `json:"row,omitempty"`
	Written    []string `json:"written,omitempty"`
	Skipped    []string `json:"skipped,omitempty"`
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks every field of an edit against its canonical type and
// returns the values as they will be written.
func Validate(edit EditRequest) (map[string]any, error) {
	if edit.TrackingID == "" {
		return nil, &ValidationError{Field: records.FieldTrackingID, Reason: "is required"}
	}
	if len(edit.Fields) == 0 {
		return nil, &ValidationError{Reason: "no fields to update"}
	}

	values := make(map[string]any, len(edit.Fields))
	for field, raw := range edit.Fields {
		if !contains(EditableFields, field) {
			return nil, &ValidationError{Field: field, Reason: "is not editable"}
		}

		switch {
		case records.IsMonetary(field):
			f, err := records.ParseMoney(raw)
			if err != nil {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("not a number: %v", err)}
			}
			if contains(RequiredPositive, field) && f <= 0 {
				return nil, &ValidationError{Field: field, Reason: "must be greater than zero"}
			}
			values[field] = f

		case field == records.FieldStatus:
			s, ok := raw.(string)
			if !ok || status.Canonical(s) == "" {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("must be one of %v", status.Vocabulary)}
			}
			values[field] = status.Label(status.Canonical(s))

		case field == records.FieldBlastingStage:
			s, ok := raw.(string)
			stage, known := status.CanonicalStage(s)
			if !ok || !known {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("must be one of %q", status.Stages)}
			}
			values[field] = stage

		default:
			s, ok := raw.(string)
			if !ok {
				return nil, &ValidationError{Field: field, Reason: "must be text"}
			}
			values[field] = s
		}
	}
	return values, nil
}

// Apply validates an edit, locates its row in src and writes one cell per
// field present in the table's headers, in header order. Fields missing from
// the headers are skipped. A failed write stops the edit; earlier writes are
// not rolled back.
func Apply(ctx context.Context, src Source, table *records.Table, edit EditRequest) (Result, error) {
	result := Result{TrackingID: edit.TrackingID}
	if table == nil {
		return result, errors.New("no table loaded")
	}

	logger := log.With().
		Str("tracking_id", edit.TrackingID).
		Str("load_id", table.LoadID).
		Logger()

	logger.Debug().Int("fields", len(edit.Fields)).Msg("Validating edit")
	values, err := Validate(edit)
	if err != nil {
		result.Outcome = Rejected
		logger.Info().Err(err).Msg("Edit rejected")
		return result, err
	}

	logger.Debug().Msg("Locating row")
	rows, err := src.FindRows(ctx, edit.TrackingID)
	if err != nil {
		result.Outcome = PartialFailure
		logger.Error().Err(err).Msg("Failed to locate row")
		return result, &TransportError{Op: "find", Err: err}
	}
	switch len(rows) {
	case 0:
		result.Outcome = NotFound
		logger.Warn().Msg("Tracking id not found in source")
		return result, &NotFoundError{TrackingID: edit.TrackingID}
	case 1:
		result.Row = rows[0]
	default:
		result.Outcome = NotFound
		logger.Warn().Ints("rows", rows).Msg("Tracking id matches several rows")
		return result, &AmbiguousKeyError{TrackingID: edit.TrackingID, Rows: rows}
	}

	for field := range values {
		if _, ok := table.Columns[field]; !ok {
			result.Skipped = append(result.Skipped, field)
			logger.Warn().Str("field", field).Msg("Field not in worksheet headers; skipping")
		}
	}
	sort.Strings(result.Skipped)

	for _, field := range table.Headers {
		value, ok := values[field]
		if !ok {
			continue
		}
		col := table.Columns[field]
		logger.Debug().
			Int("row", result.Row).
			Int("column", col).
			Str("field", field).
			Interface("value", value).
			Msg("Writing cell")

		if err := src.WriteCell(ctx, result.Row, col, value); err != nil {
			result.Outcome = PartialFailure
			logger.Error().
				Err(err).
				Str("field", field).
				Strs("written", result.Written).
				Msg("Failed to write cell")
			return result, &TransportError{Op: "write", Field: field, Written: append([]string(nil), result.Written...), Err: err}
		}
		result.Written = append(result.Written, field)
	}

	result.Outcome = Committed
	logger.Info().
		Int("row", result.Row).
		Strs("written", result.Written).
		Strs("skipped", result.Skipped).
		Msg("Edit committed")
	return result, nil
}
