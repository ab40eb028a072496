package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	pkgjwt "idservices-admin/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticValidator struct {
	token string
}

func (s staticValidator) ValidateAccessToken(token string) (*pkgjwt.Claims, error) {
	if token != s.token {
		return nil, errors.New("bad token")
	}
	c := &pkgjwt.Claims{Name: "staff"}
	c.Subject = "u1"
	return c, nil
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/x", func(c *gin.Context) {
		claims, ok := Claims(c)
		if ok {
			c.String(http.StatusOK, claims.Subject)
			return
		}
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func TestAuthMiddleware(t *testing.T) {
	r := newRouter(AuthMiddleware(staticValidator{token: "good"}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
		{"ok", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "u1", w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "6f1c2a1e-8d5b-4a57-9c55-0b3f0b9f7d11")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "6f1c2a1e-8d5b-4a57-9c55-0b3f0b9f7d11", w.Body.String())
	assert.Equal(t, "6f1c2a1e-8d5b-4a57-9c55-0b3f0b9f7d11", w.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS([]string{"http://console.example/"}))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://console.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://console.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecovery(t *testing.T) {
	r := newRouter(Recovery(), Logger())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_001")
}
