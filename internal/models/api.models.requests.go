// FilePath: internal/models/api.models.requests.go
package models

// Request and response payloads for the public HTTP surface. Field
// names follow the wire contract used by the camera firmware and the
// dashboard, hence the camelCase json tags.

// IntakeRequest is the body of POST /captures.
type IntakeRequest struct {
	Image               string  `json:"image"`
	UserID              string  `json:"userId"`
	Metadata            JSONMap `json:"metadata,omitempty"`
	ThingSpeakAPIKey    string  `json:"thingspeakApiKey,omitempty"`
	ThingSpeakChannelID string  `json:"thingspeakChannelId,omitempty"`
	ColabWebhookURL     string  `json:"colabWebhookUrl,omitempty"`
}

// IntakeResponse is the success body of POST /captures.
type IntakeResponse struct {
	Success         bool    `json:"success"`
	CapturedImageID string  `json:"capturedImageId"`
	ImageURL        string  `json:"imageUrl"`
	ThingSpeakURL   *string `json:"thingspeakUrl"`
}

// ResultRequest is the body of POST /results.
type ResultRequest struct {
	CapturedImageID     string   `json:"capturedImageId"`
	UserID              string   `json:"userId"`
	LabeledImage        string   `json:"labeledImage"`
	AnimalDetected      string   `json:"animalDetected"`
	ConfidenceScore     *float64 `json:"confidenceScore,omitempty"`
	ColabNotebookID     string   `json:"colabNotebookId,omitempty"`
	ThingSpeakAPIKey    string   `json:"thingspeakApiKey,omitempty"`
	ThingSpeakChannelID string   `json:"thingspeakChannelId,omitempty"`
	SMSAPIKey           string   `json:"smsApiKey,omitempty"`
	SMSPhone            string   `json:"smsPhone,omitempty"`
	SMSService          string   `json:"smsService,omitempty"`
	TwilioAccountSID    string   `json:"twilioAccountSid,omitempty"`
	TwilioPhone         string   `json:"twilioPhone,omitempty"`
}

// ResultResponse is the success body of POST /results.
type ResultResponse struct {
	Success         bool    `json:"success"`
	LabeledImageID  string  `json:"labeledImageId"`
	LabeledImageURL string  `json:"labeledImageUrl"`
	ThingSpeakURL   *string `json:"thingspeakUrl"`
	SMSSent         bool    `json:"smsSent"`
	SMSError        *string `json:"smsError"`
}

// PendingTaskResponse wraps the single task handed to a polling
// worker. Task is null when no capture is pending.
type PendingTaskResponse struct {
	Task *Task `json:"task"`
}

// SubmitResultsRequest is the body of POST /submit-results. The
// polling worker reports either a classification (success true) or a
// failure reason (success false).
type SubmitResultsRequest struct {
	TaskID             string   `json:"task_id"`
	CapturedImageID    string   `json:"captured_image_id"`
	UserID             string   `json:"user_id"`
	Success            bool     `json:"success"`
	AnimalDetected     string   `json:"animal_detected,omitempty"`
	ConfidenceScore    *float64 `json:"confidence_score,omitempty"`
	LabeledImageBase64 string   `json:"labeled_image_base64,omitempty"`
	ColabNotebookID    string   `json:"colab_notebook_id,omitempty"`
	Error              string   `json:"error,omitempty"`
}

// SubmitResultsResponse is the body returned to the polling worker.
type SubmitResultsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PredictResponse is the body of POST /predict, mirroring the model
// relay contract used by the direct dashboard path.
type PredictResponse struct {
	Status     string  `json:"status"`
	Animal     string  `json:"animal"`
	Confidence float64 `json:"confidence"`
}

// SaveDetectionRequest is the body of POST /save-detection.
type SaveDetectionRequest struct {
	UserID          string   `json:"userId"`
	Image           string   `json:"image"`
	AnimalDetected  string   `json:"animalDetected"`
	ConfidenceScore *float64 `json:"confidenceScore,omitempty"`
}

// CaptureFilters are the query parameters of the gallery list
// endpoints, decoded with gorilla/schema.
type CaptureFilters struct {
	UserID string `schema:"user_id"`
	Status string `schema:"status"`
	Offset int    `schema:"offset"`
	Limit  int    `schema:"limit"`
}
