package session

import (
	"fmt"
	"strings"
	"time"

	"blasting_tracker/internal/config"
)

// worksheetDateLayouts are the title formats of dated worksheets. Layouts
// without a year are taken to be in the current year.
var worksheetDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2",
	"January 2",
	"01/02",
	"1/2",
}

func parseWorksheetDate(name string, now time.Time) (time.Time, bool) {
	name = strings.TrimSpace(strings.ReplaceAll(name, ",", ""))
	for _, layout := range worksheetDateLayouts {
		t, err := time.Parse(layout, name)
		if err != nil {
			continue
		}
		if !strings.Contains(layout, "2006") {
			t = t.AddDate(now.Year(), 0, 0)
		}
		return t, true
	}
	return time.Time{}, false
}

// PickWorksheet selects which worksheet to load. want is matched by name,
// case-insensitively; "latest" picks the worksheet whose title is the most
// recent date.
func PickWorksheet(names []string, want string, now time.Time) (string, error) {
	if !strings.EqualFold(want, config.LatestWorksheet) {
		for _, n := range names {
			if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(want)) {
				return n, nil
			}
		}
		return "", fmt.Errorf("worksheet %q not found (available: %s)", want, strings.Join(names, ", "))
	}

	best := ""
	var bestDate time.Time
	for _, n := range names {
		d, ok := parseWorksheetDate(n, now)
		if !ok {
			continue
		}
		if best == "" || d.After(bestDate) {
			best, bestDate = n, d
		}
	}
	if best == "" {
		return "", fmt.Errorf("no dated worksheet among %s", strings.Join(names, ", "))
	}
	return best, nil
}
