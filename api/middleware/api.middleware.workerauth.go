package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	nuts "github.com/vaudience/go-nuts"

	"github.com/fieldwatch/fieldwatch-hub/internal/errors"
)

// SecretHeader is the header polling workers present.
const SecretHeader = "X-Colab-Secret"

// WorkerAuthMiddleware gates the polling-worker endpoints behind a
// shared secret. An empty configured secret disables the check
// entirely: the endpoints fail open, matching the deployment mode
// where the hub is only reachable inside a private network.
type WorkerAuthMiddleware struct {
	secret string
}

func NewWorkerAuthMiddleware(secret string) *WorkerAuthMiddleware {
	if secret == "" {
		nuts.L.Warnf("[WorkerAuth] No shared secret configured; worker endpoints are open")
	}
	return &WorkerAuthMiddleware{secret: secret}
}

// Authenticate validates the shared-secret header.
func (m *WorkerAuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.secret == "" {
			next.ServeHTTP(w, r)
			return
		}

		presented := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(m.secret)) != 1 {
			handleError(w, errors.NewAuthError("invalid worker secret", nil))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func handleError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(err)
	nuts.L.Errorf("[WorkerAuth] %s", err.Error())
}
