package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	healthResponse    = `{"status":"ok"}`
	unhealthyResponse = `{"status":"unavailable"}`
)

// Pinger checks a backing dependency, e.g. the session store.
type Pinger func(ctx context.Context) error

// healthHandler returns 200 when ping succeeds (or is nil) and 503 otherwise.
// It is served for readiness/liveness checks and is never redirected.
func healthHandler(ping Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, healthResponse
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			err := ping(ctx)
			cancel()
			if err != nil {
				logger.WarnContext(r.Context(), "health check failed", "error", err)
				status, body = http.StatusServiceUnavailable, unhealthyResponse
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if r.Method == http.MethodHead {
			return
		}
		if _, err := io.WriteString(w, body); err != nil {
			// Nothing more to do if the client connection is gone.
			return
		}
	}
}
