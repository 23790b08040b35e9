// FilePath: internal/integrations/thingspeak.go
package integrations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
)

// ThingSpeakCredentials identify one metrics channel. Both fields must
// be present for a relay to be attempted.
type ThingSpeakCredentials struct {
	APIKey    string
	ChannelID string
}

// Configured reports whether both credential fields are present.
func (c ThingSpeakCredentials) Configured() bool {
	return c.APIKey != "" && c.ChannelID != ""
}

// ThingSpeakClient mirrors image URLs (and detected classes) into a
// ThingSpeak channel.
type ThingSpeakClient interface {
	// PushCapture posts a raw capture URL to the channel and returns
	// the public channel URL.
	PushCapture(ctx context.Context, creds ThingSpeakCredentials, imageURL string) (string, error)
	// PushResult posts a labeled image URL plus the detected class.
	PushResult(ctx context.Context, creds ThingSpeakCredentials, imageURL, animal string) (string, error)
}

type thingSpeakClient struct {
	http    *resty.Client
	baseURL string
}

// NewThingSpeakClient creates a ThingSpeak relay against baseURL
// (normally https://api.thingspeak.com).
func NewThingSpeakClient(baseURL string, timeout time.Duration) ThingSpeakClient {
	return &thingSpeakClient{
		http:    newHTTPClient(timeout),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// NewThingSpeakClientWithHTTP wires a custom resty client; used by tests.
func NewThingSpeakClientWithHTTP(http *resty.Client, baseURL string) ThingSpeakClient {
	return &thingSpeakClient{http: http, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *thingSpeakClient) PushCapture(ctx context.Context, creds ThingSpeakCredentials, imageURL string) (string, error) {
	return c.push(ctx, creds, map[string]string{
		"api_key": creds.APIKey,
		"field1":  imageURL,
	})
}

func (c *thingSpeakClient) PushResult(ctx context.Context, creds ThingSpeakCredentials, imageURL, animal string) (string, error) {
	return c.push(ctx, creds, map[string]string{
		"api_key": creds.APIKey,
		"field1":  imageURL,
		"field2":  animal,
	})
}

func (c *thingSpeakClient) push(ctx context.Context, creds ThingSpeakCredentials, fields map[string]string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(fields).
		Post(c.baseURL + "/update.json")
	if err != nil {
		return "", errors.NewUpstreamError("thingspeak update failed", err)
	}
	if resp.IsError() {
		return "", errors.NewUpstreamError(
			fmt.Sprintf("thingspeak update returned %d", resp.StatusCode()), nil)
	}
	// ThingSpeak answers the created entry id; a literal "0" means the
	// update was rejected (bad key, rate limit).
	if strings.TrimSpace(resp.String()) == "0" {
		return "", errors.NewUpstreamError("thingspeak rejected the update", nil)
	}

	return fmt.Sprintf("https://thingspeak.com/channels/%s", creds.ChannelID), nil
}
