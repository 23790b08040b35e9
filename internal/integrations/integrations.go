// FilePath: internal/integrations/integrations.go
// Package integrations holds the outbound third-party relay clients.
// Every relay is best-effort and attempted exactly once: callers get
// an explicit value-or-error outcome and decide how to degrade, the
// overall request never fails because a relay did.
package integrations

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// newHTTPClient builds a resty client with the shared relay settings.
// Retries are deliberately disabled; every outbound call is attempted
// once.
func newHTTPClient(timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", "fieldwatch-hub")
}
