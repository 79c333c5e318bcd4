package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"revenue_radar_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// The rejection paths below never reach the service, so a nil service is fine.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(nil, validator.New())
	r := gin.New()
	r.POST("/leads/score", h.scoreLeads)
	r.POST("/deals/prioritize", h.prioritizeDeals)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestScoreLeadsRejectsEmptyLeadList(t *testing.T) {
	r := newTestRouter()

	for _, body := range []string{`{}`, `{"leads":[]}`} {
		w := postJSON(r, "/leads/score", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestPrioritizeDealsRejectsMissingOpportunities(t *testing.T) {
	r := newTestRouter()

	w := postJSON(r, "/deals/prioritize", `{"activities":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestScoreLeadsRejectsMalformedJSON(t *testing.T) {
	r := newTestRouter()

	w := postJSON(r, "/leads/score", `{"leads":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
