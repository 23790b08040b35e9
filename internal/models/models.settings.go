// FilePath: internal/models/models.settings.go
package models

import "time"

// UserSettings holds one row of integration credentials per account.
// Secret-bearing fields carry readxs/writexs tags so handlers can
// filter them with struccy before returning the row to a caller.
type UserSettings struct {
	ID                  string    `json:"id" db:"id"`
	UserID              string    `json:"user_id" db:"user_id"`
	ThingSpeakAPIKey    string    `json:"thingspeak_api_key" db:"thingspeak_api_key" readxs:"owner,system" writexs:"owner,system"`
	ThingSpeakChannelID string    `json:"thingspeak_channel_id" db:"thingspeak_channel_id"`
	ColabWebhookURL     string    `json:"colab_webhook_url" db:"colab_webhook_url" readxs:"owner,system" writexs:"owner,system"`
	SMSAPIKey           string    `json:"sms_api_key" db:"sms_api_key" readxs:"owner,system" writexs:"owner,system"`
	SMSPhone            string    `json:"sms_phone" db:"sms_phone"`
	SMSService          string    `json:"sms_service" db:"sms_service"`
	TwilioAccountSID    string    `json:"twilio_account_sid" db:"twilio_account_sid" readxs:"owner,system" writexs:"owner,system"`
	TwilioPhone         string    `json:"twilio_phone" db:"twilio_phone"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
