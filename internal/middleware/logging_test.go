package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestRequestLoggingSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	t.Run("generates_v7", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", http.NoBody))

		id, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
		if err != nil {
			t.Fatalf("expected a UUID request id: %v", err)
		}
		if id.Version() != 7 {
			t.Errorf("expected UUIDv7, got v%d", id.Version())
		}
		if rec.Body.String() != id.String() {
			t.Errorf("expected context request id %s, got %s", id, rec.Body.String())
		}
	})

	t.Run("reuses_incoming", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", incoming)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Header().Get("X-Request-ID") != incoming {
			t.Errorf("expected %s, got %s", incoming, rec.Header().Get("X-Request-ID"))
		}
	})

	t.Run("replaces_malformed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", http.NoBody)
		req.Header.Set("X-Request-ID", "<script>")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Header().Get("X-Request-ID") == "<script>" {
			t.Error("expected malformed request id to be replaced")
		}
	})
}
