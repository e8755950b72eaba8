package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/grayola/task-manager/internal/apperr"
	"github.com/grayola/task-manager/internal/auth"
	"github.com/grayola/task-manager/internal/auth/domain"
)

// stubResolver is keyed by the presented token, source included.
type stubResolver map[domain.SessionToken]domain.Caller

func (s stubResolver) ResolveCaller(_ context.Context, token domain.SessionToken) (domain.Caller, error) {
	c, ok := s[token]
	if !ok {
		return domain.Caller{}, apperr.Auth("invalid session", nil)
	}
	return c, nil
}

func TestRequireCaller(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := stubResolver{
		domain.BearerToken("good"):      {UserID: "u1", Role: domain.RoleDesigner},
		domain.CookieToken("good-sess"): {UserID: "u2", Role: domain.RoleClient},
	}

	r := gin.New()
	r.GET("/me", RequireCaller(resolver, "session"), func(c *gin.Context) {
		caller, _ := auth.CallerFrom(c)
		c.String(http.StatusOK, caller.UserID+":"+string(caller.Role))
	})

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u1:designer", w.Body.String())
	})

	t.Run("session cookie", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "good-sess"})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u2:client", w.Body.String())
	})

	t.Run("id token in the cookie is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: "good"})
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"ok":false,"error":"missing session","kind":"auth"}`, w.Body.String())
	})

	t.Run("invalid token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer bad")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestExtractToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	extract := func(req *http.Request) domain.SessionToken {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		return ExtractToken(c, "session")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	req.AddCookie(&http.Cookie{Name: "session", Value: "sess"})
	assert.Equal(t, domain.BearerToken("abc"), extract(req), "header wins over cookie")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "sess"})
	assert.Equal(t, domain.CookieToken("sess"), extract(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer ")
	assert.Equal(t, domain.SessionToken{}, extract(req))
}
