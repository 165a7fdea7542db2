package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-jewel-billing/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	iss, err := auth.NewIssuer("middleware-secret", time.Hour)
	require.NoError(t, err)
	return iss
}

func protectedRouter(iss *auth.Issuer) *gin.Engine {
	r := gin.New()
	g := r.Group("/", AuthMiddleware(iss))
	g.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.MustGet(CtxUserID), "role": c.MustGet(CtxRole)})
	})
	g.GET("/admin", RequireRole(auth.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	iss := newIssuer(t)
	r := protectedRouter(iss)
	token, err := iss.GenerateToken(3, auth.RoleStaff)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"no bearer prefix", token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	iss := newIssuer(t)
	r := protectedRouter(iss)

	staff, err := iss.GenerateToken(1, auth.RoleStaff)
	require.NoError(t, err)
	admin, err := iss.GenerateToken(2, auth.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+staff)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestSameOrigin(t *testing.T) {
	r := gin.New()
	r.Use(SameOrigin([]string{"http://localhost:5173"}))
	r.POST("/write", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/read", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	tests := []struct {
		name, method, path, origin string
		want                       int
	}{
		{"no origin", http.MethodPost, "/write", "", http.StatusNoContent},
		{"same host", http.MethodPost, "/write", "http://shop.local", http.StatusNoContent},
		{"dev frontend", http.MethodPost, "/write", "http://localhost:5173/", http.StatusNoContent},
		{"foreign", http.MethodPost, "/write", "https://evil.example", http.StatusForbidden},
		{"foreign read", http.MethodGet, "/read", "https://evil.example", http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Host = "shop.local"
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	mw, err := RateLimit("2-M")
	require.NoError(t, err)

	r := gin.New()
	r.POST("/assistant", mw, func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/assistant", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another client has its own budget
	req := httptest.NewRequest(http.MethodPost, "/assistant", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	_, err = RateLimit("lots")
	require.Error(t, err)
}
