package model

import (
	"strconv"
	"strings"
	"time"
)

// Reading is a single immutable sensor sample in a user's partition.
// Both timestamp forms are assigned at write time from the server clock (UTC).
type Reading struct {
	ID            string
	UserID        string
	IOP           *float64
	BlueLight     *float64
	ScreenTime    *float64
	BlinkRate     *float64
	DeviceID      string
	RecordedAt    time.Time
	RecordedEpoch int64
}

// JSONFloat decodes a JSON number, or a string holding one, into an optional
// float. Anything else is treated as absent; Malformed records that a value
// was present but not coercible so the caller can log it.
type JSONFloat struct {
	Value     float64
	Valid     bool
	Malformed bool
}

func (f *JSONFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.Malformed = true
		return nil
	}
	f.Value = v
	f.Valid = true
	return nil
}

// Ptr returns the decoded value as an optional field, nil when absent.
func (f JSONFloat) Ptr() *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// IngestRequest is the device-facing write payload.
type IngestRequest struct {
	Email      string    `json:"email"`
	IOP        JSONFloat `json:"iop"`
	BlueLight  JSONFloat `json:"blue_light"`
	ScreenTime JSONFloat `json:"screen_time"`
	BlinkRate  JSONFloat `json:"blink_rate"`
	DeviceID   string    `json:"device_id"`
}

// ReadingResponse represents a stored reading in API responses.
type ReadingResponse struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	IOP            *float64 `json:"iop"`
	BlueLight      *float64 `json:"blue_light"`
	ScreenTime     *float64 `json:"screen_time"`
	BlinkRate      *float64 `json:"blink_rate,omitempty"`
	DeviceID       string   `json:"device_id"`
	TimestampISO   string   `json:"timestamp_iso"`
	TimestampEpoch int64    `json:"timestamp_epoch"`
}

// Series is a chart-ready column of values with matching time labels.
type Series struct {
	Values     []*float64 `json:"values"`
	Timestamps []string   `json:"timestamps"`
}

// DashboardResponse carries the data behind the dashboard page.
type DashboardResponse struct {
	Latest     *ReadingResponse `json:"latest"`
	Alerts     []string         `json:"alerts"`
	IOP        Series           `json:"iop"`
	BlueLight  Series           `json:"blue_light"`
	ScreenTime Series           `json:"screen_time"`
}

// HistoryResponse carries a time window of readings, newest first.
type HistoryResponse struct {
	Logs  []ReadingResponse `json:"logs"`
	Start string            `json:"start"`
	End   string            `json:"end"`
}

// ReportResponse carries the data behind the report page.
type ReportResponse struct {
	Latest *ReadingResponse `json:"latest"`
	Alerts []string         `json:"alerts"`
	IOP    Series           `json:"iop"`
}
