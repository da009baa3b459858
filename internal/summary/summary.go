package summary

import (
	"math"
	"strings"

	"blasting_tracker/internal/records"
	"blasting_tracker/internal/status"
)

// AllOption is the filter value meaning "no filter".
const AllOption = "All"

type Predicate func(records.Record) bool

// KPI is the headline block of the dashboard.
type KPI struct {
	TotalTrips  int     `json:"total_trips"`
	AssignedPct float64 `json:"assigned_pct"`
	AvgMargin   float64 `json:"avg_margin"`
}

func fieldEquals(field, value string) Predicate {
	if value == "" || value == AllOption {
		return nil
	}
	return func(r records.Record) bool {
		return r.String(field) == value
	}
}

func ByBlaster(blaster string) Predicate {
	return fieldEquals(records.FieldBlaster, blaster)
}

func ByMarket(market string) Predicate {
	return fieldEquals(records.FieldMarket, market)
}

// ByStatus matches case-insensitively.
func ByStatus(s string) Predicate {
	if s == "" || s == AllOption {
		return nil
	}
	want := strings.ToLower(strings.TrimSpace(s))
	return func(r records.Record) bool {
		return r.Status() == want
	}
}

// Filter keeps the records matching every predicate. Nil predicates are ignored.
func Filter(recs []records.Record, preds ...Predicate) []records.Record {
	active := preds[:0:0]
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return recs
	}

	out := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		keep := true
		for _, p := range active {
			if !p(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out
}

// PercentageMatching returns the share of records matching pred, in percent,
// rounded to one decimal. It is 0 for an empty slice.
func PercentageMatching(recs []records.Record, pred Predicate) float64 {
	if len(recs) == 0 {
		return 0
	}
	n := 0
	for _, r := range recs {
		if pred == nil || pred(r) {
			n++
		}
	}
	return round(100*float64(n)/float64(len(recs)), 1)
}

// Average is the mean of the numeric values of field. Records where the
// field is missing or not numeric are skipped; with none left it returns 0.
func Average(recs []records.Record, field string) float64 {
	var sum float64
	n := 0
	for _, r := range recs {
		if _, ok := r[field]; !ok {
			continue
		}
		v, ok := r.Number(field)
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func KPIs(recs []records.Record) KPI {
	return KPI{
		TotalTrips:  len(recs),
		AssignedPct: PercentageMatching(recs, ByStatus(status.Assigned)),
		AvgMargin:   round(Average(recs, records.FieldMargin), 2),
	}
}

// Distinct lists the non-empty values of field in first-seen order.
func Distinct(recs []records.Record, field string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, r := range recs {
		v := r.String(field)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
