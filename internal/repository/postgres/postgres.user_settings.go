// FilePath: internal/repository/postgres/postgres.user_settings.go
package postgres

import (
	"context"
	"database/sql"

	"github.com/fieldwatch/fieldwatch-hub/internal/database"
	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

type UserSettingsRepo struct {
	PostgresBaseRepo
}

func NewUserSettingsRepository(db database.DB) *UserSettingsRepo {
	repo := &PostgresBaseRepo{db: db}
	return &UserSettingsRepo{PostgresBaseRepo: *repo}
}

// Upsert creates or replaces the single settings row of a user.
func (r *UserSettingsRepo) Upsert(ctx context.Context, settings *models.UserSettings) error {
	query := `
		INSERT INTO user_settings (
			id, user_id, thingspeak_api_key, thingspeak_channel_id,
			colab_webhook_url, sms_api_key, sms_phone, sms_service,
			twilio_account_sid, twilio_phone, created_at, updated_at
		) VALUES (
			:id, :user_id, :thingspeak_api_key, :thingspeak_channel_id,
			:colab_webhook_url, :sms_api_key, :sms_phone, :sms_service,
			:twilio_account_sid, :twilio_phone, :created_at, :updated_at
		)
		ON CONFLICT (user_id) DO UPDATE SET
			thingspeak_api_key = EXCLUDED.thingspeak_api_key,
			thingspeak_channel_id = EXCLUDED.thingspeak_channel_id,
			colab_webhook_url = EXCLUDED.colab_webhook_url,
			sms_api_key = EXCLUDED.sms_api_key,
			sms_phone = EXCLUDED.sms_phone,
			sms_service = EXCLUDED.sms_service,
			twilio_account_sid = EXCLUDED.twilio_account_sid,
			twilio_phone = EXCLUDED.twilio_phone,
			updated_at = EXCLUDED.updated_at`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, settings)
	if err != nil {
		return errors.NewDatabaseError("failed to upsert user settings", err)
	}
	return nil
}

func (r *UserSettingsRepo) GetByUser(ctx context.Context, userID string) (*models.UserSettings, error) {
	settings := &models.UserSettings{}
	query := `SELECT * FROM user_settings WHERE user_id = $1`

	err := r.db.GetDB().GetContext(ctx, settings, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NewNotFoundError("user settings not found", err)
		}
		return nil, errors.NewDatabaseError("failed to get user settings", err)
	}
	return settings, nil
}

func (r *UserSettingsRepo) DeleteByUser(ctx context.Context, userID string) error {
	query := `DELETE FROM user_settings WHERE user_id = $1`

	if _, err := r.db.GetDB().ExecContext(ctx, query, userID); err != nil {
		return errors.NewDatabaseError("failed to delete user settings", err)
	}
	return nil
}
