package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"blasting_tracker/internal/reconcile"
	"blasting_tracker/internal/records"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gridSource is an in-memory worksheet.
type gridSource struct {
	grid     [][]string
	lists    int
	writes   int
	writeErr error
}

func (g *gridSource) ListAllRecords(ctx context.Context) ([]string, []records.Raw, error) {
	g.lists++
	headers := g.grid[0]
	var rows []records.Raw
	for _, row := range g.grid[1:] {
		raw := records.Raw{}
		for i, h := range headers {
			if i < len(row) {
				raw[h] = row[i]
			}
		}
		rows = append(rows, raw)
	}
	return headers, rows, nil
}

func (g *gridSource) FindRows(ctx context.Context, text string) ([]int, error) {
	var rows []int
	for i, row := range g.grid {
		for _, c := range row {
			if c == text {
				rows = append(rows, i+1)
				break
			}
		}
	}
	return rows, nil
}

func (g *gridSource) WriteCell(ctx context.Context, row, col int, value any) error {
	if g.writeErr != nil {
		return g.writeErr
	}
	g.writes++
	for len(g.grid[row-1]) < col {
		g.grid[row-1] = append(g.grid[row-1], "")
	}
	g.grid[row-1][col-1] = fmt.Sprintf("%v", value)
	return nil
}

func newGrid() *gridSource {
	return &gridSource{grid: [][]string{
		{"Tracking ID", "Status", "Est Charge", "Base Driver Earnings 1", "Current Driver Earnings 1"},
		{"T1", "Pending", "$100", "$50", "$60"},
		{"T2", "Blasting", "$200", "$80", "$90"},
	}}
}

func TestTableLoadsOnceUntilStale(t *testing.T) {
	src := newGrid()
	s := New(src, "draft")

	t1, err := s.Table(context.Background())
	require.NoError(t, err)
	t2, err := s.Table(context.Background())
	require.NoError(t, err)
	assert.Same(t, t1, t2)
	assert.Equal(t, 1, src.lists)

	s.Invalidate()
	t3, err := s.Table(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, t1.LoadID, t3.LoadID)
	assert.Equal(t, 2, src.lists)
}

func TestEditMarksTableStaleAndReportsStatusChange(t *testing.T) {
	src := newGrid()
	s := New(src, "draft")
	table, err := s.Table(context.Background())
	require.NoError(t, err)

	res, change, err := s.Edit(context.Background(), reconcile.EditRequest{
		TrackingID: "T2",
		LoadID:     table.LoadID,
		Fields:     map[string]any{"status": "assigned", "est_charge": 210.0},
	})
	require.NoError(t, err)
	assert.Equal(t, reconcile.Committed, res.Outcome)
	assert.Equal(t, 3, res.Row)
	require.NotNil(t, change)
	assert.Equal(t, StatusChange{TrackingID: "T2", From: "blasting", To: "assigned"}, *change)

	fresh, err := s.Table(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, table.LoadID, fresh.LoadID)
	rec, ok := fresh.Lookup("T2")
	require.True(t, ok)
	assert.Equal(t, "assigned", rec.Status())
	assert.Equal(t, 210.0, rec["est_charge"])
}

func TestEditRejectsOlderLoad(t *testing.T) {
	src := newGrid()
	s := New(src, "draft")
	old, err := s.Table(context.Background())
	require.NoError(t, err)
	_, err = s.Load(context.Background())
	require.NoError(t, err)

	res, _, err := s.Edit(context.Background(), reconcile.EditRequest{
		TrackingID: "T1",
		LoadID:     old.LoadID,
		Fields:     map[string]any{"status": "dropped"},
	})
	var stale *reconcile.StaleTableError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, reconcile.Rejected, res.Outcome)
	assert.Zero(t, src.writes)
}

func TestEditWithoutStatusChange(t *testing.T) {
	s := New(newGrid(), "draft")
	_, change, err := s.Edit(context.Background(), reconcile.EditRequest{
		TrackingID: "T1",
		Fields:     map[string]any{"status": "PENDING", "driver_assigned": "Ana"},
	})
	require.NoError(t, err)
	assert.Nil(t, change)
}

func TestFailedWriteLeavesTableStale(t *testing.T) {
	src := newGrid()
	s := New(src, "draft")
	_, err := s.Table(context.Background())
	require.NoError(t, err)

	src.writeErr = errors.New("backend unavailable")
	res, _, err := s.Edit(context.Background(), reconcile.EditRequest{
		TrackingID: "T1",
		Fields:     map[string]any{"status": "dropped"},
	})
	var terr *reconcile.TransportError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, reconcile.PartialFailure, res.Outcome)

	// nothing landed, so the loaded table is still current
	_, err = s.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.lists)
}

func TestLoadFailsOnMalformedMoney(t *testing.T) {
	src := newGrid()
	src.grid[2][2] = "two hundred"
	s := New(src, "draft")

	_, err := s.Table(context.Background())
	var perr *records.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "est_charge", perr.Field)
}

func TestPickWorksheet(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	names := []string{"draft", "2025-03-01", "Mar 15", "03/10/2025", "notes"}

	got, err := PickWorksheet(names, "latest", now)
	require.NoError(t, err)
	assert.Equal(t, "Mar 15", got)

	got, err = PickWorksheet(names, "DRAFT", now)
	require.NoError(t, err)
	assert.Equal(t, "draft", got)

	_, err = PickWorksheet(names, "archive", now)
	assert.Error(t, err)

	_, err = PickWorksheet([]string{"draft", "notes"}, "latest", now)
	assert.Error(t, err)
}
