package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pagecraft/core/internal/pkg/access"
	"github.com/pagecraft/core/internal/pkg/jwt"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *jwt.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := jwt.NewSigner("test", time.Hour)
	if err != nil {
		t.Fatalf("signer: %v", err)
	}
	r := gin.New()
	r.GET("/read", Auth(signer), Require(access.ActionRead), func(c *gin.Context) {
		ac, _ := Access(c)
		fromCtx, _ := access.From(c.Request.Context())
		if fromCtx != ac {
			t.Errorf("request context %+v != gin context %+v", fromCtx, ac)
		}
		c.String(http.StatusOK, ac.OrganizationID)
	})
	r.GET("/write", Auth(signer), Require(access.ActionWrite), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r, signer
}

func TestAuthAndRequire(t *testing.T) {
	r, signer := newAuthRouter(t)
	token := func(role, org string) string {
		tok, err := signer.Sign("u1", role, org)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return "Bearer " + tok
	}

	tests := []struct {
		name   string
		path   string
		auth   string
		org    string
		status int
		body   string
	}{
		{name: "no token", path: "/read", status: http.StatusUnauthorized},
		{name: "bound org", path: "/read", auth: token("viewer", "o1"), status: http.StatusOK, body: "o1"},
		{name: "bound org header match", path: "/read", auth: token("viewer", "o1"), org: "o1", status: http.StatusOK, body: "o1"},
		{name: "foreign org", path: "/read", auth: token("editor", "o1"), org: "o2", status: http.StatusForbidden},
		{name: "unbound admin selects org", path: "/read", auth: token("admin", ""), org: "o9", status: http.StatusOK, body: "o9"},
		{name: "unbound editor", path: "/read", auth: token("editor", ""), org: "o9", status: http.StatusForbidden},
		{name: "no org selected", path: "/read", auth: token("admin", ""), status: http.StatusBadRequest},
		{name: "viewer cannot write", path: "/write", auth: token("viewer", "o1"), status: http.StatusForbidden},
		{name: "editor writes", path: "/write", auth: token("editor", "o1"), status: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.org != "" {
				req.Header.Set(HeaderOrganization, tt.org)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tt.status, w.Body.String())
			}
			if tt.body != "" && w.Body.String() != tt.body {
				t.Fatalf("body = %q, want %q", w.Body.String(), tt.body)
			}
		})
	}
}

func TestNormalizeToken(t *testing.T) {
	for raw, want := range map[string]string{
		"  Bearer abc ": "abc",
		"bearer xyz":    "xyz",
		"plain":         "plain",
		"":              "",
	} {
		if got := NormalizeToken(raw); got != want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", raw, got, want)
		}
	}
}
