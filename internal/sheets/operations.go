package sheets

import (
	"context"
	"fmt"
	"strings"

	"blasting_tracker/internal/records"

	"github.com/rs/zerolog/log"
)

// Worksheet is one tab of a spreadsheet used as a record source. The first
// row holds the headers; every following row is one record.
type Worksheet struct {
	client        *Client
	spreadsheetID string
	title         string
}

func (w *Worksheet) Title() string {
	return w.title
}

// readAll reads the used range of the worksheet.
func (w *Worksheet) readAll(ctx context.Context) ([][]interface{}, error) {
	log.Debug().
		Str("spreadsheet_id", w.spreadsheetID).
		Str("worksheet", w.title).
		Msg("Reading worksheet")

	values, err := w.client.readRange(ctx, w.spreadsheetID, quoteTitle(w.title))
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", w.title, err)
	}
	log.Debug().Int("rows", len(values)).Str("worksheet", w.title).Msg("Retrieved worksheet data")
	return values, nil
}

// ListAllRecords returns the header row and one record per data row. Short
// rows are padded with empty strings.
func (w *Worksheet) ListAllRecords(ctx context.Context) ([]string, []records.Raw, error) {
	values, err := w.readAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	headers, rows := ParseRecords(values)
	return headers, rows, nil
}

// ParseRecords splits raw sheet values into the header row and keyed records.
func ParseRecords(values [][]interface{}) ([]string, []records.Raw) {
	if len(values) == 0 {
		return nil, nil
	}

	headers := make([]string, len(values[0]))
	for i := range values[0] {
		headers[i] = extractStringField(values[0], i)
	}

	rows := make([]records.Raw, 0, len(values)-1)
	for _, row := range values[1:] {
		raw := make(records.Raw, len(headers))
		for i, h := range headers {
			raw[h] = extractStringField(row, i)
		}
		rows = append(rows, raw)
	}
	return headers, rows
}

// FindRows returns the distinct 1-based rows holding a cell equal to text.
func (w *Worksheet) FindRows(ctx context.Context, text string) ([]int, error) {
	values, err := w.readAll(ctx)
	if err != nil {
		return nil, err
	}

	var rows []int
	for i, row := range values {
		for j := range row {
			if extractStringField(row, j) == text {
				rows = append(rows, i+1)
				break
			}
		}
	}
	log.Debug().
		Str("text", text).
		Ints("rows", rows).
		Msg("Searched worksheet")
	return rows, nil
}

// extractStringField safely extracts a string field from a row at the given index
func extractStringField(row []interface{}, index int) string {
	if len(row) > index && row[index] != nil {
		if s, ok := row[index].(string); ok {
			return s
		}
		return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
	}
	return ""
}
