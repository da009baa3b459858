// Package workbook reads and writes trips in a local .xlsx file, laid out the
// same way as the shared spreadsheet: headers in row 1, one trip per row.
package workbook

import (
	"context"
	"fmt"
	"sync"

	"blasting_tracker/internal/records"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

type Workbook struct {
	path string
	mu   sync.Mutex
	file *excelize.File
}

func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %q: %w", path, err)
	}
	log.Debug().Str("path", path).Strs("worksheets", f.GetSheetList()).Msg("Opened workbook")
	return &Workbook{path: path, file: f}, nil
}

func (b *Workbook) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.Close()
}

// ListWorksheetNames returns the sheet names in tab order.
func (b *Workbook) ListWorksheetNames(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.file.GetSheetList(), nil
}

func (b *Workbook) Worksheet(name string) (*Worksheet, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	idx, err := b.file.GetSheetIndex(name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up worksheet %q: %w", name, err)
	}
	if idx < 0 {
		return nil, fmt.Errorf("worksheet %q not found in %s", name, b.path)
	}
	return &Worksheet{book: b, name: name}, nil
}

type Worksheet struct {
	book *Workbook
	name string
}

func (w *Worksheet) Title() string {
	return w.name
}

func (w *Worksheet) rows() ([][]string, error) {
	w.book.mu.Lock()
	defer w.book.mu.Unlock()
	rows, err := w.book.file.GetRows(w.name)
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", w.name, err)
	}
	return rows, nil
}

// ListAllRecords returns the header row and one record per data row.
func (w *Worksheet) ListAllRecords(ctx context.Context) ([]string, []records.Raw, error) {
	rows, err := w.rows()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	headers := rows[0]
	out := make([]records.Raw, 0, len(rows)-1)
	for _, row := range rows[1:] {
		raw := make(records.Raw, len(headers))
		for i, h := range headers {
			if i < len(row) {
				raw[h] = row[i]
			} else {
				raw[h] = ""
			}
		}
		out = append(out, raw)
	}
	log.Debug().Str("worksheet", w.name).Int("rows", len(out)).Msg("Read workbook records")
	return headers, out, nil
}

// FindRows returns the distinct 1-based rows holding a cell equal to text.
func (w *Worksheet) FindRows(ctx context.Context, text string) ([]int, error) {
	rows, err := w.rows()
	if err != nil {
		return nil, err
	}
	var found []int
	for i, row := range rows {
		for _, cell := range row {
			if cell == text {
				found = append(found, i+1)
				break
			}
		}
	}
	return found, nil
}

// WriteCell sets one cell and saves the workbook.
func (w *Worksheet) WriteCell(ctx context.Context, row, col int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	w.book.mu.Lock()
	defer w.book.mu.Unlock()
	if err := w.book.file.SetCellValue(w.name, cell, value); err != nil {
		return fmt.Errorf("failed to set %s!%s: %w", w.name, cell, err)
	}
	if err := w.book.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook %q: %w", w.book.path, err)
	}
	log.Debug().Str("worksheet", w.name).Str("cell", cell).Interface("value", value).Msg("Wrote workbook cell")
	return nil
}
