package http

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cybersturmer/pmdragon-core-api/internal/auth"
	"github.com/cybersturmer/pmdragon-core-api/internal/domain"
)

func testRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", requireAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"person": callerID(c)})
	})
	return r
}

func TestRequireAuth_RejectsMissingToken(t *testing.T) {
	r := testRouter("secret")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_RejectsBadToken(t *testing.T) {
	r := testRouter("secret")
	token, err := auth.GenerateToken(5, "other-secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireAuth_PassesCallerID(t *testing.T) {
	r := testRouter("secret")
	token, err := auth.GenerateToken(5, "secret", time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if want := `"person":5`; !strings.Contains(w.Body.String(), want) {
		t.Fatalf("expected body to contain %s, got %s", want, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[string]int{
		domain.CodeNotFound:         http.StatusNotFound,
		domain.CodeValidation:       http.StatusBadRequest,
		domain.CodeUnauthorized:     http.StatusUnauthorized,
		domain.CodeForbidden:        http.StatusForbidden,
		domain.CodeConflict:         http.StatusConflict,
		domain.CodeSprintNotStarted: http.StatusConflict,
		domain.CodeMissingBaseline:  http.StatusInternalServerError,
		domain.CodeMissingCalendar:  http.StatusInternalServerError,
		domain.CodeInternal:         http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := statusFor(code); got != want {
			t.Fatalf("code %s: expected %d, got %d", code, want, got)
		}
	}
}

func TestRespondError_KeepsCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/fail", func(c *gin.Context) {
		respondError(c, domain.NewError(domain.CodeMissingBaseline, domain.ErrMissingBaseline))
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), strconv.Quote(domain.CodeMissingBaseline)) {
		t.Fatalf("expected code in body, got %s", w.Body.String())
	}
}
