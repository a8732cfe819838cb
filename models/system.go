package models

import (
	"database/sql/driver"
	"errors"
)

// SystemSample is one persisted telemetry reading. The headline numbers get
// their own columns for querying while the full record rides along as JSON.
type SystemSample struct {
	ID          int64   `json:"id" db:"id"`
	SampledAt   int64   `json:"sampledAt" db:"sampled_at"`
	Hostname    string  `json:"hostname" db:"hostname"`
	CPUUsage    float64 `json:"cpuUsage" db:"cpu_usage"`
	MemoryTotal int64   `json:"memoryTotal" db:"memory_total"`
	MemoryFree  int64   `json:"memoryFree" db:"memory_free"`
	DiskTotal   int64   `json:"diskTotal" db:"disk_total"`
	DiskFree    int64   `json:"diskFree" db:"disk_free"`
	AvgLoad     float64 `json:"avgLoad" db:"avg_load"`
	ProcTotal   int64   `json:"procTotal" db:"proc_total"`
	Payload     RawJSON `json:"payload" db:"payload"`
}

// RawJSON is stored as TEXT and emitted verbatim when serialised.
type RawJSON []byte

func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "null", nil
	}
	return string(r), nil
}

func (r *RawJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*r = RawJSON(v)
	case []byte:
		*r = append(RawJSON(nil), v...)
	case nil:
		*r = nil
	default:
		return errors.New("incompatible type for RawJSON")
	}
	return nil
}

func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

func (r *RawJSON) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = nil
		return nil
	}
	*r = append(RawJSON(nil), data...)
	return nil
}
