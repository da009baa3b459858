package records

import (
	"fmt"
	"strconv"
	"strings"
)

// Field names used across the dashboard after header normalization.
const (
	FieldTrackingID          = "tracking_id"
	FieldStatus              = "status"
	FieldBlastingStage       = "blasting_stage"
	FieldMarket              = "market"
	FieldPartner             = "partner"
	FieldBlaster             = "blaster"
	FieldMargin              = "margin"
	FieldEstCharge           = "est_charge"
	FieldBaseEarnings1       = "base_driver_earnings_1"
	FieldBaseEarnings2       = "base_driver_earnings_2"
	FieldCurrentEarnings1    = "current_driver_earnings_1"
	FieldCurrentEarnings2    = "current_driver_earnings_2"
	FieldDriverAssigned      = "driver_assigned"
	FieldDeliveryDatetimeCST = "delivery_datetime_cst"
	FieldTypeOfDelivery      = "type_of_delivery"
	FieldComments            = "comments"
)

// Raw is one row as delivered by a record source, keyed by the header text
// exactly as it appears in the sheet.
type Raw map[string]any

// Record is one normalized row. Monetary fields hold float64, everything
// else holds the source value as a string.
type Record map[string]any

// String returns the field as text, or "" when it is missing.
func (r Record) String(field string) string {
	return stringify(r[field])
}

// Number returns the field as a float64 if it holds or parses as a number.
func (r Record) Number(field string) (float64, bool) {
	switch v := r[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Money returns a monetary field, 0 when absent.
func (r Record) Money(field string) float64 {
	f, _ := r.Number(field)
	return f
}

func (r Record) TrackingID() string {
	return strings.TrimSpace(r.String(FieldTrackingID))
}

// Status is lower-cased and trimmed; status comparisons are case-insensitive.
func (r Record) Status() string {
	return strings.ToLower(strings.TrimSpace(r.String(FieldStatus)))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Trip is the detail view of a record shown on the dashboard and exported.
type Trip struct {
	TrackingID             string  `json:"tracking_id" csv:"tracking_id"`
	Market                 string  `json:"market" csv:"market"`
	Partner                string  `json:"partner" csv:"partner"`
	Status                 string  `json:"status" csv:"status"`
	BlastingStage          string  `json:"blasting_stage" csv:"blasting_stage"`
	DeliveryDatetimeCST    string  `json:"delivery_datetime_cst" csv:"delivery_datetime_cst"`
	TypeOfDelivery         string  `json:"type_of_delivery" csv:"type_of_delivery"`
	EstCharge              float64 `json:"est_charge" csv:"est_charge"`
	BaseDriverEarnings1    float64 `json:"base_driver_earnings_1" csv:"base_driver_earnings_1"`
	BaseDriverEarnings2    float64 `json:"base_driver_earnings_2" csv:"base_driver_earnings_2"`
	CurrentDriverEarnings1 float64 `json:"current_driver_earnings_1" csv:"current_driver_earnings_1"`
	CurrentDriverEarnings2 float64 `json:"current_driver_earnings_2" csv:"current_driver_earnings_2"`
	Margin                 float64 `json:"margin" csv:"margin"`
	DriverAssigned         string  `json:"driver_assigned" csv:"driver_assigned"`
	Blaster                string  `json:"blaster" csv:"blaster"`
	Comments               string  `json:"comments" csv:"comments"`
}

func TripFrom(r Record) Trip {
	return Trip{
		TrackingID:             r.TrackingID(),
		Market:                 r.String(FieldMarket),
		Partner:                r.String(FieldPartner),
		Status:                 r.String(FieldStatus),
		BlastingStage:          r.String(FieldBlastingStage),
		DeliveryDatetimeCST:    r.String(FieldDeliveryDatetimeCST),
		TypeOfDelivery:         r.String(FieldTypeOfDelivery),
		EstCharge:              r.Money(FieldEstCharge),
		BaseDriverEarnings1:    r.Money(FieldBaseEarnings1),
		BaseDriverEarnings2:    r.Money(FieldBaseEarnings2),
		CurrentDriverEarnings1: r.Money(FieldCurrentEarnings1),
		CurrentDriverEarnings2: r.Money(FieldCurrentEarnings2),
		Margin:                 r.Money(FieldMargin),
		DriverAssigned:         r.String(FieldDriverAssigned),
		Blaster:                r.String(FieldBlaster),
		Comments:               r.String(FieldComments),
	}
}

// Trips converts records to their detail views, preserving order.
func Trips(recs []Record) []Trip {
	trips := make([]Trip, 0, len(recs))
	for _, r := range recs {
		trips = append(trips, TripFrom(r))
	}
	return trips
}
