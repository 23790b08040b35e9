// FilePath: internal/hubservice/hubservice.settings.go
package hubservice

import (
	"context"
	"time"

	"github.com/itsatony/struccy"
	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
	"github.com/fieldwatch/fieldwatch-hub/internal/integrations"
	"github.com/fieldwatch/fieldwatch-hub/internal/models"
)

// UpsertSettings creates or replaces the single settings row of a
// user. Credential formats are not validated beyond the provider name;
// credentials are only exercised when a relay is attempted.
func (s *HubService) UpsertSettings(ctx context.Context, settings *models.UserSettings) error {
	if settings.UserID == "" {
		return errors.NewValidationError("Missing required field: userId", nil)
	}
	if svc := settings.SMSService; svc != "" &&
		svc != integrations.SMSServiceTwilio && svc != integrations.SMSServiceFast2SMS {
		return errors.NewValidationError("smsService must be 'twilio' or 'fast2sms'", nil)
	}

	if settings.ID == "" {
		settings.ID = nuts.NID("set", 12)
	}
	now := time.Now().UTC()
	if settings.CreatedAt.IsZero() {
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	nuts.L.Infof("[Settings] Upserting settings for user %s", settings.UserID)
	return s.Settings.Upsert(ctx, settings)
}

// GetSettings retrieves a user's settings row with role-based field
// filtering: secret-bearing fields are blanked unless the caller holds
// a role listed in the field's readxs tag.
func (s *HubService) GetSettings(ctx context.Context, userID string, roles []string) (*models.UserSettings, error) {
	settings, err := s.Settings.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	filteredMap, err := struccy.StructToMapFieldsWithReadXS(settings, roles)
	if err != nil {
		return nil, errors.NewInternalError("failed to filter settings fields", err)
	}
	filtered := &models.UserSettings{}
	if _, err := struccy.MergeMapStringFieldsToStruct(filtered, filteredMap, roles); err != nil {
		return nil, errors.NewInternalError("failed to map filtered settings fields", err)
	}

	return filtered, nil
}
