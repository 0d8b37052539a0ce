package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"vendorfill/api/models"

	"github.com/gin-gonic/gin"
)

func TestExtractToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"bearer abc123", ""},
		{"Bearer", ""},
		{"Basic abc123", ""},
		{"", ""},
		{"Bearer abc 123", ""},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		if got := extractToken(r); got != tc.want {
			t.Errorf("extractToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestIsAdminEmail(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "admin@vendorfill.io, ops@vendorfill.io")

	cases := []struct {
		email string
		want  bool
	}{
		{"admin@vendorfill.io", true},
		{"ADMIN@vendorfill.io", true},
		{"ops@vendorfill.io", true},
		{"user@vendorfill.io", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := isAdminEmail(tc.email); got != tc.want {
			t.Errorf("isAdminEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestIsAdminEmailUnset(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", "")
	if isAdminEmail("admin@vendorfill.io") {
		t.Fatal("no allow list configured, nobody is admin")
	}
}

func TestAdminOnlyRejectsNonAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("ADMIN_EMAILS", "admin@vendorfill.io")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/metrics", nil)
	c.Set("user", &models.SupabaseClaims{Email: "user@vendorfill.io"})

	AdminOnly(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAdminOnlyRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/admin/metrics", nil)

	AdminOnly(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/profile", nil)

	AuthMiddleware(c)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
