package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"revenue_radar_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Validation failures return before the service is touched, so a nil service
// is fine here. The key-auth middleware is replaced by a stub that seeds the
// org id the way apiKeyAuth would.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(nil, validator.New())
	r := gin.New()
	r.POST("/webhook", func(c *gin.Context) {
		c.Set(contextIngestOrgKey, uuid.New())
	}, h.ingest)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestIngestRejectsUnknownMode(t *testing.T) {
	r := newTestRouter()

	w := postJSON(r, "/webhook", `{"provider":"generic","mode":"merge"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for unknown mode", w.Code)
	}
}

func TestIngestRejectsMalformedJSON(t *testing.T) {
	r := newTestRouter()

	w := postJSON(r, "/webhook", `{"provider":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
