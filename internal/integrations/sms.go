// FilePath: internal/integrations/sms.go
package integrations

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
)

// SMS provider identifiers as they appear on the wire.
const (
	SMSServiceTwilio   = "twilio"
	SMSServiceFast2SMS = "fast2sms"
)

// SMSRequest carries everything needed for one alert dispatch.
type SMSRequest struct {
	Service          string
	APIKey           string
	Phone            string
	TwilioAccountSID string
	TwilioPhone      string
	Message          string
}

// ShouldDispatch reports whether an SMS is attempted at all: both an
// API key and a destination phone number must be present, and the
// service must be one of the known providers. Anything else means no
// dispatch, not an error.
func (r SMSRequest) ShouldDispatch() bool {
	if r.APIKey == "" || r.Phone == "" {
		return false
	}
	return r.Service == SMSServiceTwilio || r.Service == SMSServiceFast2SMS
}

// ComposeAlert builds the fixed-template alert message. A missing
// confidence renders as "N/A".
func ComposeAlert(animal string, confidence *float64) string {
	pct := "N/A"
	if confidence != nil {
		pct = fmt.Sprintf("%.1f", *confidence)
	}
	return fmt.Sprintf("Alert! A %s has entered your field. Detection confidence: %s%%", animal, pct)
}

// SMSDispatcher sends one alert through exactly one provider.
type SMSDispatcher interface {
	Send(ctx context.Context, req SMSRequest) error
}

type smsDispatcher struct {
	http        *resty.Client
	twilioBase  string
	fast2smsURL string
}

// NewSMSDispatcher creates a dispatcher with the production provider
// endpoints.
func NewSMSDispatcher(timeout time.Duration) SMSDispatcher {
	return &smsDispatcher{
		http:        newHTTPClient(timeout),
		twilioBase:  "https://api.twilio.com/2010-04-01",
		fast2smsURL: "https://www.fast2sms.com/dev/bulkV2",
	}
}

// NewSMSDispatcherWithEndpoints overrides the provider URLs; used by tests.
func NewSMSDispatcherWithEndpoints(http *resty.Client, twilioBase, fast2smsURL string) SMSDispatcher {
	return &smsDispatcher{http: http, twilioBase: twilioBase, fast2smsURL: fast2smsURL}
}

func (d *smsDispatcher) Send(ctx context.Context, req SMSRequest) error {
	switch req.Service {
	case SMSServiceTwilio:
		return d.sendTwilio(ctx, req)
	case SMSServiceFast2SMS:
		return d.sendFast2SMS(ctx, req)
	default:
		return errors.NewUpstreamError(fmt.Sprintf("unknown sms service: %s", req.Service), nil)
	}
}

// sendTwilio posts a form-encoded message with HTTP basic auth
// (account SID as user, API key as password).
func (d *smsDispatcher) sendTwilio(ctx context.Context, req SMSRequest) error {
	if req.TwilioAccountSID == "" || req.TwilioPhone == "" {
		return errors.NewUpstreamError("twilio account sid and sender phone are required", nil)
	}

	url := fmt.Sprintf("%s/Accounts/%s/Messages.json", d.twilioBase, req.TwilioAccountSID)
	resp, err := d.http.R().
		SetContext(ctx).
		SetBasicAuth(req.TwilioAccountSID, req.APIKey).
		SetFormData(map[string]string{
			"To":   req.Phone,
			"From": req.TwilioPhone,
			"Body": req.Message,
		}).
		Post(url)
	if err != nil {
		return errors.NewUpstreamError("twilio dispatch failed", err)
	}
	if resp.IsError() {
		return errors.NewUpstreamError(
			fmt.Sprintf("twilio dispatch returned %d", resp.StatusCode()), nil)
	}
	return nil
}

// sendFast2SMS posts a JSON body authenticated by a custom header.
func (d *smsDispatcher) sendFast2SMS(ctx context.Context, req SMSRequest) error {
	resp, err := d.http.R().
		SetContext(ctx).
		SetHeader("authorization", req.APIKey).
		SetBody(map[string]string{
			"route":   "q",
			"message": req.Message,
			"numbers": req.Phone,
		}).
		Post(d.fast2smsURL)
	if err != nil {
		return errors.NewUpstreamError("fast2sms dispatch failed", err)
	}
	if resp.IsError() {
		return errors.NewUpstreamError(
			fmt.Sprintf("fast2sms dispatch returned %d", resp.StatusCode()), nil)
	}
	return nil
}
