package adminapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/detectpanel/internal/logging"
)

const requestIDHeader = "X-Request-ID"

// tracingTransport tags each outbound request with a request ID and logs the
// round trip with method, path, status, and duration.
type tracingTransport struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func newTracingTransport(next http.RoundTripper, logger *slog.Logger) *tracingTransport {
	return &tracingTransport{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper. The request is cloned before the
// header is set, as the RoundTripper contract requires.
func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(requestIDHeader)
	if id == "" {
		if cid, ok := logging.CorrelationID(req.Context()); ok {
			id = cid
		} else {
			id = uuid.NewString()
		}
		req = req.Clone(req.Context())
		req.Header.Set(requestIDHeader, id)
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		t.logger.DebugContext(req.Context(), "admin api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"request_id", id,
			"duration", time.Since(start).Round(time.Microsecond),
			"error", err,
		)
		return nil, err
	}

	t.logger.DebugContext(req.Context(), "admin api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"request_id", id,
		"from_cache", resp.Header.Get(httpcache.XFromCache) != "",
		"duration", time.Since(start).Round(time.Microsecond),
	)
	return resp, nil
}
