package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/casauth/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
)

// requestLogger adapts logging.Logger to chi's request logger. Only the path
// is recorded; query strings can carry access tokens.
type requestLogger struct {
	logger logging.Logger
}

func (l *requestLogger) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		logger: l.logger,
		ctx:    r.Context(),
		method: r.Method,
		path:   r.URL.Path,
	}
}

type requestLogEntry struct {
	logger logging.Logger
	ctx    context.Context
	method string
	path   string
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.logger.Info(e.ctx, "request",
		"method", e.method,
		"path", e.path,
		"status", status,
		"bytes", bytes,
		"elapsed", elapsed,
		"request_id", middleware.GetReqID(e.ctx),
	)
}

func (e *requestLogEntry) Panic(v interface{}, _ []byte) {
	e.logger.Error(e.ctx, "panic serving request", "method", e.method, "path", e.path, "panic", v)
}
