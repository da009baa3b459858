package status

import (
	"strings"

	"blasting_tracker/internal/records"
)

const (
	Pending  = "pending"
	Blasting = "blasting"
	Assigned = "assigned"
	Dropped  = "dropped"
)

// Vocabulary is the fixed display order of status buckets.
var Vocabulary = []string{Pending, Blasting, Assigned, Dropped}

// Stages are the accepted values for the blasting_stage field.
var Stages = []string{"Initial offer", "Bonus adjustment", "Follow - up", "Assigned"}

const DefaultColor = "#DDDDDD"

var colors = map[string]string{
	Pending:  "#FFD43B",
	Blasting: "#FFA500",
	Assigned: "#00C49A",
	Dropped:  "#FF6B6B",
}

// Bucket holds the records of one status, in source order.
type Bucket struct {
	Status  string           `json:"status"`
	Label   string           `json:"label"`
	Color   string           `json:"color"`
	Records []records.Record `json:"-"`
}

// Canonical maps a status to its vocabulary value, case-insensitively.
// It returns "" for statuses outside the vocabulary.
func Canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, v := range Vocabulary {
		if v == s {
			return v
		}
	}
	return ""
}

func Color(s string) string {
	if c, ok := colors[Canonical(s)]; ok {
		return c
	}
	return DefaultColor
}

// Label capitalizes a status the way it is written back to the sheet.
func Label(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// CanonicalStage returns the stage spelled as in Stages, matching case-insensitively.
func CanonicalStage(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Stages {
		if strings.EqualFold(st, s) {
			return st, true
		}
	}
	return "", false
}

// Group partitions records into vocabulary-ordered buckets. Buckets without
// records are omitted and records with an unknown status are left out.
func Group(recs []records.Record) []Bucket {
	byStatus := make(map[string][]records.Record, len(Vocabulary))
	for _, r := range recs {
		s := Canonical(r.Status())
		if s == "" {
			continue
		}
		byStatus[s] = append(byStatus[s], r)
	}

	var buckets []Bucket
	for _, s := range Vocabulary {
		rs := byStatus[s]
		if len(rs) == 0 {
			continue
		}
		buckets = append(buckets, Bucket{
			Status:  s,
			Label:   Label(s),
			Color:   colors[s],
			Records: rs,
		})
	}
	return buckets
}
