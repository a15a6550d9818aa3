package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"propertybooking-backend/models"
	"propertybooking-backend/services"
	"propertybooking-backend/utils"
)

// fakeAuthenticator implements Authenticator for testing
type fakeAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, authorization string) (services.Identity, error)
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, authorization string) (services.Identity, error) {
	if f.AuthenticateFunc != nil {
		return f.AuthenticateFunc(ctx, authorization)
	}
	return services.Identity{}, utils.Unauthenticated("Invalid or expired token")
}

func newRouter(auth Authenticator, guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/whoami", Authenticate(auth, false), guard, func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"role": id.Role})
	})
	r.NoRoute(RouteNotFound)
	return r
}

func roleAuth(role models.Role) *fakeAuthenticator {
	return &fakeAuthenticator{
		AuthenticateFunc: func(_ context.Context, h string) (services.Identity, error) {
			if h != "Bearer ok" {
				return services.Identity{}, utils.Unauthenticated("Invalid or expired token")
			}
			return services.Identity{ID: uuid.New(), Role: role}, nil
		},
	}
}

func do(r http.Handler, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateAndRoles(t *testing.T) {
	tests := []struct {
		name   string
		role   models.Role
		guard  gin.HandlerFunc
		header string
		want   int
	}{
		{"no token", models.RoleAdmin, RequireAdmin(), "", http.StatusUnauthorized},
		{"bad token", models.RoleAdmin, RequireAdmin(), "Bearer nope", http.StatusUnauthorized},
		{"admin on admin route", models.RoleAdmin, RequireAdmin(), "Bearer ok", http.StatusOK},
		{"contractor on admin route", models.RoleContractor, RequireAdmin(), "Bearer ok", http.StatusForbidden},
		{"contractor on contractor route", models.RoleContractor, RequireContractor(), "Bearer ok", http.StatusOK},
		{"admin on contractor route", models.RoleAdmin, RequireContractor(), "Bearer ok", http.StatusOK},
		{"landlord on contractor route", models.RoleLandlord, RequireContractor(), "Bearer ok", http.StatusForbidden},
		{"landlord on landlord route", models.RoleLandlord, RequireLandlord(), "Bearer ok", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newRouter(roleAuth(tt.role), tt.guard), "/whoami", tt.header)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestForbiddenBody(t *testing.T) {
	w := do(newRouter(roleAuth(models.RoleContractor), RequireAdmin()), "/whoami", "Bearer ok")

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Insufficient permissions" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newRouter(roleAuth(models.RoleAdmin), RequireAdmin())

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get(HeaderRequestID); got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}

	w = do(r, "/whoami", "")
	if w.Header().Get(HeaderRequestID) == "" {
		t.Error("request id should be generated when absent")
	}
}

func TestRouteNotFound(t *testing.T) {
	w := do(newRouter(roleAuth(models.RoleAdmin), RequireAdmin()), "/api/nothing?x=1", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Route not found" || body["path"] != "/api/nothing" || body["method"] != "GET" {
		t.Errorf("body = %v", body)
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logged bytes.Buffer
	log := logrus.New()
	log.SetOutput(&logged)
	log.SetFormatter(&logrus.JSONFormatter{})

	var ginOut bytes.Buffer
	prev := gin.DefaultErrorWriter
	gin.DefaultErrorWriter = &ginOut
	defer func() { gin.DefaultErrorWriter = prev }()

	r := gin.New()
	r.Use(RequestID(), Recovery(log, false))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := do(r, "/panic", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Errorf("error = %v", body["error"])
	}

	if ginOut.Len() != 0 {
		t.Errorf("gin error writer got %q, want nothing", ginOut.String())
	}
	if n := strings.Count(logged.String(), "panic recovered"); n != 1 {
		t.Fatalf("panic logged %d times, want 1", n)
	}
	var entry map[string]any
	if err := json.Unmarshal(logged.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v", err)
	}
	if entry["panic"] != "kaboom" {
		t.Errorf("panic field = %v", entry["panic"])
	}
	if entry["request_id"] != w.Header().Get(HeaderRequestID) {
		t.Errorf("request_id = %v, want %q", entry["request_id"], w.Header().Get(HeaderRequestID))
	}
}
