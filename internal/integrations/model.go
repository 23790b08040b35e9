// FilePath: internal/integrations/model.go
package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
)

// Prediction is the raw model answer: a class label and a 0..1
// confidence.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// ModelClient relays an image to the external inference endpoint and
// returns its prediction. The inference call can be slow, so the
// client carries its own long timeout.
type ModelClient interface {
	Predict(ctx context.Context, filename, mimeType string, image []byte) (*Prediction, error)
}

type modelClient struct {
	http       *resty.Client
	predictURL string
}

func NewModelClient(predictURL string, timeout time.Duration) ModelClient {
	return &modelClient{
		http:       newHTTPClient(timeout),
		predictURL: predictURL,
	}
}

func NewModelClientWithHTTP(http *resty.Client, predictURL string) ModelClient {
	return &modelClient{http: http, predictURL: predictURL}
}

func (c *modelClient) Predict(ctx context.Context, filename, mimeType string, image []byte) (*Prediction, error) {
	if c.predictURL == "" {
		return nil, errors.NewUpstreamError("model predict URL is not configured", nil)
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("image", filename, mimeType, bytes.NewReader(image)).
		Post(c.predictURL)
	if err != nil {
		return nil, errors.NewUpstreamError("model inference failed", err)
	}
	if resp.IsError() {
		return nil, errors.NewUpstreamError(
			fmt.Sprintf("model inference returned %d", resp.StatusCode()), nil)
	}

	var prediction Prediction
	if err := json.Unmarshal(resp.Body(), &prediction); err != nil {
		return nil, errors.NewUpstreamError("model returned an unparseable prediction", err)
	}
	if prediction.Label == "" {
		prediction.Label = "Unknown"
	}
	return &prediction, nil
}
