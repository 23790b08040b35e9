// FilePath: internal/models/models.task.go
package models

// Task is an ephemeral work item handed to a polling worker. It is
// synthesized from the oldest pending capture on every poll and never
// persisted; the ID is freshly generated per poll, so two polls for the
// same capture yield different task IDs.
type Task struct {
	ID              string `json:"id"`
	CapturedImageID string `json:"captured_image_id"`
	UserID          string `json:"user_id"`
	ImageURL        string `json:"image_url"`
}
