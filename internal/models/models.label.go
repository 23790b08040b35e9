// FilePath: internal/models/models.label.go
package models

import "time"

// LabeledImage is the classification outcome for one captured image.
// Rows are insert-only; exactly one row exists per successful
// classification.
type LabeledImage struct {
	ID              string     `json:"id" db:"id"`
	CapturedImageID string     `json:"captured_image_id" db:"captured_image_id"`
	UserID          string     `json:"user_id" db:"user_id"`
	LabeledImageURL string     `json:"labeled_image_url" db:"labeled_image_url"`
	AnimalDetected  string     `json:"animal_detected" db:"animal_detected"`
	ConfidenceScore *float64   `json:"confidence_score" db:"confidence_score"`
	ProcessedAt     time.Time  `json:"processed_at" db:"processed_at"`
	ColabNotebookID *string    `json:"colab_notebook_id" db:"colab_notebook_id"`
	ThingSpeakURL   *string    `json:"thingspeak_url" db:"thingspeak_url"`
	SMSSent         bool       `json:"sms_sent" db:"sms_sent"`
	SMSSentAt       *time.Time `json:"sms_sent_at" db:"sms_sent_at"`
}
