// Package export writes trips as CSV, one row per trip with the canonical
// field names as the header.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"blasting_tracker/internal/records"

	"github.com/jszwec/csvutil"
	"github.com/rs/zerolog/log"
)

func WriteCSV(w io.Writer, trips []records.Trip) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if len(trips) == 0 {
		if err := enc.EncodeHeader(records.Trip{}); err != nil {
			return fmt.Errorf("failed to encode CSV header: %w", err)
		}
	} else if err := enc.Encode(trips); err != nil {
		return fmt.Errorf("failed to encode trips: %w", err)
	}

	cw.Flush()
	return cw.Error()
}

// ToFile writes trips to path, replacing any existing file.
func ToFile(path string, trips []records.Trip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, trips); err != nil {
		return err
	}
	log.Info().Str("path", path).Int("trips", len(trips)).Msg("Exported trips")
	return f.Close()
}
