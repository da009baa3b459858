package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// WriteCell writes a single value at a 1-based row and column.
func (w *Worksheet) WriteCell(ctx context.Context, row, col int, value any) error {
	if row < 1 || col < 1 {
		return fmt.Errorf("invalid cell position row=%d col=%d", row, col)
	}

	cellRange := fmt.Sprintf("%s!%s%d", quoteTitle(w.title), ColumnName(col), row)
	values := [][]interface{}{
		{value},
	}

	log.Debug().
		Str("range", cellRange).
		Interface("value", value).
		Msg("Updating cell")

	if err := w.client.updateRange(ctx, w.spreadsheetID, cellRange, values); err != nil {
		log.Error().Err(err).Int("row", row).Int("column", col).Msg("Failed to update cell")
		return fmt.Errorf("failed to update %s: %w", cellRange, err)
	}
	return nil
}
