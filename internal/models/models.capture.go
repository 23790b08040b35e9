// FilePath: internal/models/models.capture.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CaptureStatus is the processing state of a captured image.
type CaptureStatus string

const (
	StatusPending    CaptureStatus = "pending"
	StatusProcessing CaptureStatus = "processing"
	StatusCompleted  CaptureStatus = "completed"
	StatusFailed     CaptureStatus = "failed"
)

// CanTransitionTo reports whether the status may move to next.
// Allowed: pending -> processing -> completed, or any non-terminal
// state -> failed. No transition is reversible.
func (s CaptureStatus) CanTransitionTo(next CaptureStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusProcessing || next == StatusCompleted || next == StatusFailed
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s CaptureStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// JSONMap is an open key-value bag stored as JSONB.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}
	return json.Unmarshal(data, m)
}

// CapturedImage is a raw motion capture uploaded by a field camera,
// pending classification by an external worker.
type CapturedImage struct {
	ID                 string        `json:"id" db:"id"`
	UserID             string        `json:"user_id" db:"user_id"`
	ImageURL           string        `json:"image_url" db:"image_url"`
	ThingSpeakURL      *string       `json:"thingspeak_url" db:"thingspeak_url"`
	DetectionTimestamp time.Time     `json:"detection_timestamp" db:"detection_timestamp"`
	UploadedAt         time.Time     `json:"uploaded_at" db:"uploaded_at"`
	Status             CaptureStatus `json:"status" db:"status"`
	Metadata           JSONMap       `json:"metadata" db:"metadata"`
}
