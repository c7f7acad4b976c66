package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"call-sentinel/internal/infra/logger"

	"github.com/stretchr/testify/assert"
)

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	handler := LoggingMiddleware(logger.NewNopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	for _, path := range []string{"/voice/incoming", "/metrics", "/healthCheck"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusAccepted, rec.Code, path)
	}
}
