package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cybersturmer/pmdragon-core-api/internal/config"
)

func TestMustBeAuthor_RejectsForeignCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/core/issue-messages/1", nil)
	c.Set(personIDKey, int64(5))

	if mustBeAuthor(c, 9) {
		t.Fatal("expected foreign caller to be rejected")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestMustBeAuthor_PassesCreator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/core/issue-messages/1", nil)
	c.Set(personIDKey, int64(9))

	if !mustBeAuthor(c, 9) {
		t.Fatal("expected creator to pass")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("expected nothing written, got %d", w.Code)
	}
}

// Every core route has to sit behind the bearer-token middleware, the
// dictionary mutations included.
func TestRouter_CategoryRoutesRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), &Handlers{})

	routes := []struct {
		method, path string
	}{
		{http.MethodPost, "/api/core/issue-type-categories"},
		{http.MethodDelete, "/api/core/issue-type-categories/1"},
		{http.MethodPost, "/api/core/issue-state-categories"},
		{http.MethodDelete, "/api/core/issue-state-categories/1"},
		{http.MethodPost, "/api/core/issue-estimation-categories"},
		{http.MethodDelete, "/api/core/issue-estimation-categories/1"},
		{http.MethodDelete, "/api/core/non-working-days/1"},
		{http.MethodPut, "/api/core/issue-messages/1"},
		{http.MethodDelete, "/api/core/issue-messages/1"},
	}
	for _, route := range routes {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(route.method, route.path, nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, w.Code)
		}
	}
}
