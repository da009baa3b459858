package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MonetaryFields are coerced to float64 during normalization.
var MonetaryFields = []string{
	FieldMargin,
	"bonus_driver1",
	"bonus_driver2",
	FieldEstCharge,
	FieldBaseEarnings1,
	FieldBaseEarnings2,
	FieldCurrentEarnings1,
	FieldCurrentEarnings2,
	"total_current_earnings",
}

var headerReplacer = strings.NewReplacer(" ", "_", "-", "_", "(", "", ")", "")

// Table is the canonical view of one worksheet load. Columns is captured once
// per load and must not change while the table is in use.
type Table struct {
	Worksheet string
	Headers   []string
	Columns   map[string]int // 1-based sheet column per normalized header
	Records   []Record
	LoadID    string
	LoadedAt  time.Time
}

// Lookup returns the record with the given tracking ID, if any.
func (t *Table) Lookup(trackingID string) (Record, bool) {
	for _, r := range t.Records {
		if r.TrackingID() == trackingID {
			return r, true
		}
	}
	return nil, false
}

// ParseError is returned when a monetary cell cannot be read as a number.
// It aborts the whole load.
type ParseError struct {
	Row   int // 1-based position among data rows
	Field string
	Value any
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d: field %q: cannot parse %q as money: %v", e.Row, e.Field, stringify(e.Value), e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NormalizeHeader lower-cases and trims a header, maps spaces and hyphens to
// underscores and drops parentheses. Whitespace uncovered by dropping a
// parenthesis is trimmed too, so the result normalizes to itself.
func NormalizeHeader(h string) string {
	return strings.TrimSpace(headerReplacer.Replace(strings.ToLower(strings.TrimSpace(h))))
}

func IsMonetary(field string) bool {
	for _, f := range MonetaryFields {
		if f == field {
			return true
		}
	}
	return false
}

// ParseMoney reads a currency value such as "$1,234.50" or "-$5.00". Every
// "$" and "," is dropped; an empty string is 0.
func ParseMoney(v any) (float64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return checkFinite(t)
	case float32:
		return checkFinite(float64(t))
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		s := strings.TrimSpace(t)
		s = strings.NewReplacer("$", "", ",", "").Replace(s)
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return checkFinite(f)
	default:
		return ParseMoney(stringify(t))
	}
}

func checkFinite(f float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	return f, nil
}

// Normalize builds the canonical table from a header row and the raw records
// keyed by those headers. Rows without a tracking ID are dropped. The first
// malformed monetary value aborts the load with a *ParseError.
func Normalize(worksheet string, headers []string, rows []Raw) (*Table, error) {
	log.Debug().
		Str("worksheet", worksheet).
		Int("headers", len(headers)).
		Int("rows", len(rows)).
		Msg("Normalizing records")

	normalized := make([]string, len(headers))
	columns := make(map[string]int, len(headers))
	for i, h := range headers {
		n := NormalizeHeader(h)
		normalized[i] = n
		if n == "" {
			continue
		}
		if prev, ok := columns[n]; ok {
			return nil, fmt.Errorf("duplicate column %q (columns %d and %d)", n, prev, i+1)
		}
		columns[n] = i + 1
	}
	if _, ok := columns[FieldTrackingID]; !ok {
		log.Warn().Str("worksheet", worksheet).Msg("Worksheet has no tracking_id column; every row will be dropped")
	}

	table := &Table{
		Worksheet: worksheet,
		Headers:   normalized,
		Columns:   columns,
		Records:   make([]Record, 0, len(rows)),
		LoadID:    uuid.NewString(),
		LoadedAt:  time.Now(),
	}

	dropped := 0
	for i, raw := range rows {
		rec := make(Record, len(headers))
		for j, h := range headers {
			n := normalized[j]
			if n == "" {
				continue
			}
			rec[n] = stringify(raw[h])
		}
		if rec.TrackingID() == "" {
			dropped++
			continue
		}
		for _, field := range MonetaryFields {
			if _, ok := columns[field]; !ok {
				continue
			}
			f, err := ParseMoney(raw[headers[columns[field]-1]])
			if err != nil {
				return nil, &ParseError{Row: i + 1, Field: field, Value: raw[headers[columns[field]-1]], Err: err}
			}
			rec[field] = f
		}
		table.Records = append(table.Records, rec)
	}

	log.Debug().
		Str("worksheet", worksheet).
		Str("load_id", table.LoadID).
		Int("records", len(table.Records)).
		Int("dropped", dropped).
		Msg("Normalized records")
	return table, nil
}
