package middleware_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Amityadav08/SLVNK-Backend/internal/auth"
	"github.com/Amityadav08/SLVNK-Backend/internal/logging"
	"github.com/Amityadav08/SLVNK-Backend/internal/middleware"
	"github.com/Amityadav08/SLVNK-Backend/internal/routes"
)

func newGateApp(t *testing.T, tokens *auth.Tokens) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{ErrorHandler: routes.ErrorHandler(logging.Discard())})

	app.Get("/protected", middleware.Authenticated(tokens.Verify), func(c *fiber.Ctx) error {
		identity, ok := middleware.IdentityFrom(c)
		if !ok {
			return c.JSON(fiber.Map{"admin": middleware.IsAdmin(c)})
		}
		return c.JSON(fiber.Map{"subject": identity.SubjectID, "role": identity.Role})
	})

	app.Get("/admin-only", middleware.AdminOnly(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	return app
}

func body(t *testing.T, resp io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(resp)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func TestGateRejectsMissingCredentials(t *testing.T) {
	app := newGateApp(t, auth.NewTokens("secret", time.Hour))

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGateAcceptsValidToken(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	app := newGateApp(t, tokens)

	signed, err := tokens.Issue("u1", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGateExpiredAndMalformedIndistinguishable(t *testing.T) {
	expiredTokens := auth.NewTokens("secret", -time.Minute)
	app := newGateApp(t, auth.NewTokens("secret", time.Hour))

	expired, err := expiredTokens.Issue("u1", "user")
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	responses := make([]string, 0, 2)
	for _, token := range []string{expired, "garbage.not.jwt"} {
		req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
		responses = append(responses, body(t, resp.Body))
		resp.Body.Close()
	}

	if responses[0] != responses[1] {
		t.Fatalf("expired and malformed must be indistinguishable: %q vs %q", responses[0], responses[1])
	}
}

func TestGateAdminBypassIgnoresToken(t *testing.T) {
	app := newGateApp(t, auth.NewTokens("secret", time.Hour))

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(auth.AdminHeader, auth.AdminHeaderValue)
	req.Header.Set("Authorization", "Bearer totally-invalid")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected admin bypass to win, got %d", resp.StatusCode)
	}
}

func TestAdminOnlyRejectsValidUserToken(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	app := newGateApp(t, tokens)

	signed, err := tokens.Issue("u1", "user")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// A perfectly valid token is irrelevant on the header-only gate.
	req := httptest.NewRequest(fiber.MethodGet, "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestAdminOnlyAcceptsHeader(t *testing.T) {
	app := newGateApp(t, auth.NewTokens("secret", time.Hour))

	req := httptest.NewRequest(fiber.MethodGet, "/admin-only", nil)
	req.Header.Set(auth.AdminHeader, auth.AdminHeaderValue)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
