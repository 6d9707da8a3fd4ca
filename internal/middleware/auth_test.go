package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/floodwatch/flood-alert/internal/utils"
)

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

func runJWT(t *testing.T, secret, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := JWTAuth(secret)(okHandler)(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 7, "admin", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec, c := runJWT(t, "secret", "Bearer "+at.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if sub, _ := c.Get("user_id").(float64); uint64(sub) != 7 {
		t.Fatalf("user_id = %v, want 7", c.Get("user_id"))
	}
	if c.Get("role") != "admin" {
		t.Fatalf("role = %v, want admin", c.Get("role"))
	}
}

func TestJWTAuthRejects(t *testing.T) {
	at, err := utils.NewAccessToken("secret", 7, "user", 15)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + at.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			secret := "secret"
			if tc.name == "wrong secret" {
				secret = "other"
			}
			rec, _ := runJWT(t, secret, tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	mw := RequireRole("admin")

	run := func(role any) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if role != nil {
			c.Set("role", role)
		}
		if err := mw(okHandler)(c); err != nil {
			t.Fatalf("middleware: %v", err)
		}
		return rec
	}

	if rec := run("admin"); rec.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", rec.Code)
	}
	if rec := run("user"); rec.Code != http.StatusForbidden {
		t.Fatalf("user status = %d, want 403", rec.Code)
	}
	if rec := run(nil); rec.Code != http.StatusForbidden {
		t.Fatalf("missing role status = %d, want 403", rec.Code)
	}
}
