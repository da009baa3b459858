package records

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tracking ID", "tracking_id"},
		{"  Status ", "status"},
		{"Delivery Datetime (CST)", "delivery_datetime_cst"},
		{"Follow-up", "follow_up"},
		{"Bonus Driver1", "bonus_driver1"},
		{"Base Driver Earnings 1", "base_driver_earnings_1"},
		{"Margin (\n)", "margin_"},
		{"(\t)", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := NormalizeHeader(tt.in)
		assert.Equal(t, tt.want, got, "NormalizeHeader(%q)", tt.in)
	}
}

func TestNormalizeHeaderIdempotent(t *testing.T) {
	inputs := []string{"Tracking ID", " Est. Charge ", "(a) - b", "  X-Y (Z) ", "already_normal", "Ünïcode Name", "(\t)", "Margin (\n)", "x(\u00a0)"}
	for _, h := range inputs {
		once := NormalizeHeader(h)
		assert.Equal(t, once, NormalizeHeader(once), "header %q", h)
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{"$1,234.50", 1234.50},
		{"", 0},
		{"0", 0},
		{" $ 12 ", 12},
		{"1,000,000", 1000000},
		{"-5.25", -5.25},
		{"-$5.00", -5},
		{"-$1,234.50", -1234.5},
		{"$-7", -7},
		{float64(42.5), 42.5},
		{7, 7},
		{nil, 0},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		require.NoError(t, err, "ParseMoney(%v)", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "ParseMoney(%v)", tt.in)
	}
}

func TestParseMoneyRejectsText(t *testing.T) {
	for _, in := range []any{"abc", "$12abc", "N/A", "1.2.3"} {
		_, err := ParseMoney(in)
		assert.Error(t, err, "ParseMoney(%v)", in)
	}
}

func sampleHeaders() []string {
	return []string{"Tracking ID", "Status", "Market", "Blaster", "Margin", "Est Charge", "Base Driver Earnings 1", "Comments"}
}

func TestNormalize(t *testing.T) {
	rows := []Raw{
		{"Tracking ID": "T1", "Status": "Pending", "Market": "DAL", "Blaster": "ana", "Margin": "$1,234.50", "Est Charge": "100", "Base Driver Earnings 1": "", "Comments": "x"},
		{"Tracking ID": "", "Status": "Assigned", "Margin": "junk"},
		{"Tracking ID": "T2", "Status": "ASSIGNED", "Market": "HOU", "Blaster": "bo", "Margin": 12.5, "Est Charge": "$3", "Base Driver Earnings 1": "4"},
	}

	table, err := Normalize("draft", sampleHeaders(), rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"tracking_id", "status", "market", "blaster", "margin", "est_charge", "base_driver_earnings_1", "comments"}, table.Headers)
	assert.Equal(t, 1, table.Columns["tracking_id"])
	assert.Equal(t, 7, table.Columns["base_driver_earnings_1"])
	assert.NotEmpty(t, table.LoadID)

	require.Len(t, table.Records, 2)
	first := table.Records[0]
	assert.Equal(t, "T1", first.TrackingID())
	assert.Equal(t, 1234.50, first["margin"])
	assert.Equal(t, 0.0, first["base_driver_earnings_1"])
	assert.Equal(t, "x", first["comments"])

	second := table.Records[1]
	assert.Equal(t, "assigned", second.Status())
	assert.Equal(t, "", second.String("comments"))
	assert.Equal(t, 12.5, second["margin"])
}

func TestNormalizeFailsOnMalformedMoney(t *testing.T) {
	rows := []Raw{
		{"Tracking ID": "T1", "Margin": "10"},
		{"Tracking ID": "T2", "Margin": "ten dollars"},
	}
	table, err := Normalize("draft", []string{"Tracking ID", "Margin"}, rows)
	assert.Nil(t, table)

	var perr *ParseError
	require.True(t, errors.As(err, &perr), "expected *ParseError, got %v", err)
	assert.Equal(t, 2, perr.Row)
	assert.Equal(t, "margin", perr.Field)

	var numErr *strconv.NumError
	assert.True(t, errors.As(err, &numErr))
}

func TestNormalizeNegativeMargin(t *testing.T) {
	rows := []Raw{
		{"Tracking ID": "T1", "Margin": "$10.00"},
		{"Tracking ID": "T2", "Margin": "-$5.00"},
	}
	table, err := Normalize("draft", []string{"Tracking ID", "Margin"}, rows)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, 10.0, table.Records[0]["margin"])
	assert.Equal(t, -5.0, table.Records[1]["margin"])
}

func TestNormalizeRejectsDuplicateColumns(t *testing.T) {
	_, err := Normalize("draft", []string{"Tracking ID", "tracking-id"}, nil)
	assert.Error(t, err)
}

func TestNormalizeWithoutTrackingColumn(t *testing.T) {
	table, err := Normalize("draft", []string{"Status"}, []Raw{{"Status": "pending"}})
	require.NoError(t, err)
	assert.Empty(t, table.Records)
}

func TestTableLookup(t *testing.T) {
	table, err := Normalize("draft", []string{"Tracking ID", "Status"}, []Raw{
		{"Tracking ID": "A", "Status": "pending"},
		{"Tracking ID": "B", "Status": "dropped"},
	})
	require.NoError(t, err)

	rec, ok := table.Lookup("B")
	require.True(t, ok)
	assert.Equal(t, "dropped", rec.Status())

	_, ok = table.Lookup("C")
	assert.False(t, ok)
}

func TestTripFrom(t *testing.T) {
	rec := Record{
		"tracking_id": " T9 ",
		"market":      "DAL",
		"margin":      15.5,
		"est_charge":  200.0,
		"status":      "Blasting",
	}
	trip := TripFrom(rec)
	assert.Equal(t, "T9", trip.TrackingID)
	assert.Equal(t, "DAL", trip.Market)
	assert.Equal(t, 15.5, trip.Margin)
	assert.Equal(t, 200.0, trip.EstCharge)
	assert.Equal(t, "Blasting", trip.Status)
	assert.Equal(t, 0.0, trip.BaseDriverEarnings1)
}
