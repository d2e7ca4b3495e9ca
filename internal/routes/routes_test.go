package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Amityadav08/SLVNK-Backend/internal/auth"
	"github.com/Amityadav08/SLVNK-Backend/internal/config"
	"github.com/Amityadav08/SLVNK-Backend/internal/logging"
)

func newTestApp(t *testing.T) (*fiber.App, config.Config) {
	t.Helper()

	cfg := config.Config{
		AppName:   "slvnk-test",
		AppEnv:    "development",
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
		UploadDir: t.TempDir(),
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logging.Discard())})
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}

	return app, cfg
}

type registration struct {
	email   string
	mobile  string
	photo   string // original filename; empty means no file
	content []byte
}

func multipartBody(t *testing.T, r registration) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"firstName": "Asha",
		"lastName":  "Rao",
		"email":     r.email,
		"mobile":    r.mobile,
		"password":  "secret-pass",
		"gender":    "female",
		"age":       "27",
		"religion":  "Hindu",
		"city":      "Bengaluru",
	}
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}

	if r.photo != "" {
		fw, err := w.CreateFormFile("profileImage", r.photo)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		content := r.content
		if content == nil {
			content = []byte("image-bytes")
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	return &buf, w.FormDataContentType()
}

func doRegister(t *testing.T, app *fiber.App, r registration) *http.Response {
	t.Helper()

	body, contentType := multipartBody(t, r)
	req := httptest.NewRequest(fiber.MethodPost, "/api/users/register", body)
	req.Header.Set(fiber.HeaderContentType, contentType)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type authPayload struct {
	Token string `json:"token"`
	User  struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		ProfileImage string `json:"profileImage"`
	} `json:"user"`
}

func registerUser(t *testing.T, app *fiber.App, r registration) authPayload {
	t.Helper()

	resp := doRegister(t, app, r)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var payload authPayload
	decodeBody(t, resp, &payload)
	if payload.Token == "" {
		t.Fatal("expected token in registration response")
	}
	return payload
}

func pictureDir(cfg config.Config) string {
	return filepath.Join(cfg.UploadDir, "profile-pictures")
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0
		}
		t.Fatalf("read dir: %v", err)
	}
	return len(entries)
}

func TestRegisterWithPhoto(t *testing.T) {
	app, cfg := newTestApp(t)

	payload := registerUser(t, app, registration{email: "asha@x.com", mobile: "9800000001", photo: "me.jpg"})

	if !strings.HasPrefix(payload.User.ProfileImage, "/uploads/profile-pictures/") {
		t.Fatalf("unexpected profile image path %q", payload.User.ProfileImage)
	}
	if n := countFiles(t, pictureDir(cfg)); n != 1 {
		t.Fatalf("expected one stored file, found %d", n)
	}
}

func TestRegisterPasswordNeverSerialized(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRegister(t, app, registration{email: "asha@x.com", mobile: "9800000001"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(raw), "password") || strings.Contains(string(raw), "secret-pass") {
		t.Fatalf("response leaks password material: %s", raw)
	}
}

func TestRegisterRejectsTextAttachment(t *testing.T) {
	app, cfg := newTestApp(t)

	resp := doRegister(t, app, registration{email: "asha@x.com", mobile: "9800000001", photo: "notes.txt"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if n := countFiles(t, pictureDir(cfg)); n != 0 {
		t.Fatalf("expected no stored files, found %d", n)
	}
}

func TestRegisterConflictRollsBackUpload(t *testing.T) {
	app, cfg := newTestApp(t)

	registerUser(t, app, registration{email: "a@x.com", mobile: "9800000001"})

	resp := doRegister(t, app, registration{email: "a@x.com", mobile: "9800000002", photo: "me.png"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 conflict, got %d", resp.StatusCode)
	}

	// Zero files: the winner had no photo and the loser's was rolled back.
	if n := countFiles(t, pictureDir(cfg)); n != 0 {
		t.Fatalf("expected zero files after rollback, found %d", n)
	}
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("email", "not-an-email")
	_ = w.Close()

	req := httptest.NewRequest(fiber.MethodPost, "/api/users/register", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var payload struct {
		Fields map[string]string `json:"fields"`
	}
	decodeBody(t, resp, &payload)
	if len(payload.Fields) == 0 {
		t.Fatal("expected per-field validation detail")
	}
}

func TestLoginRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)

	registerUser(t, app, registration{email: "asha@x.com", mobile: "9800000001"})

	login := func(password string) *http.Response {
		req := httptest.NewRequest(fiber.MethodPost, "/api/users/login",
			strings.NewReader(fmt.Sprintf(`{"email":"asha@x.com","password":%q}`, password)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("login request: %v", err)
		}
		return resp
	}

	resp := login("secret-pass")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var payload authPayload
	decodeBody(t, resp, &payload)
	if payload.Token == "" {
		t.Fatal("expected token on login")
	}

	resp = login("wrong-pass")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", resp.StatusCode)
	}
}

func TestPublicListingNeedsNoAuth(t *testing.T) {
	app, _ := newTestApp(t)

	registerUser(t, app, registration{email: "asha@x.com", mobile: "9800000001"})

	req := httptest.NewRequest(fiber.MethodGet, "/api/users/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page struct {
		Total int64 `json:"total"`
		Limit int64 `json:"limit"`
	}
	decodeBody(t, resp, &page)
	if page.Total != 1 || page.Limit != 10 {
		t.Fatalf("unexpected page total=%d limit=%d", page.Total, page.Limit)
	}
}

func TestSearchRequiresCredentialsAndExcludesCaller(t *testing.T) {
	app, _ := newTestApp(t)

	caller := registerUser(t, app, registration{email: "caller@x.com", mobile: "9800000001"})
	registerUser(t, app, registration{email: "other@x.com", mobile: "9800000002"})

	req := httptest.NewRequest(fiber.MethodGet, "/api/users/search?gender=female", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/api/users/search?gender=female", nil)
	req.Header.Set("Authorization", "Bearer "+caller.Token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
		Total int64 `json:"total"`
	}
	decodeBody(t, resp, &page)
	if page.Total != 1 {
		t.Fatalf("expected one result excluding caller, got %d", page.Total)
	}
	for _, u := range page.Users {
		if u.ID == caller.User.ID {
			t.Fatal("search must exclude the caller's own record")
		}
	}
}

func TestGetMalformedIDIsBadRequest(t *testing.T) {
	app, _ := newTestApp(t)

	caller := registerUser(t, app, registration{email: "asha@x.com", mobile: "9800000001"})

	req := httptest.NewRequest(fiber.MethodGet, "/api/users/not-a-key", nil)
	req.Header.Set("Authorization", "Bearer "+caller.Token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateOwnershipAndStrictBody(t *testing.T) {
	app, _ := newTestApp(t)

	owner := registerUser(t, app, registration{email: "owner@x.com", mobile: "9800000001"})
	stranger := registerUser(t, app, registration{email: "stranger@x.com", mobile: "9800000002"})

	put := func(token, id, body string) *http.Response {
		req := httptest.NewRequest(fiber.MethodPut, "/api/users/"+id, strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("put: %v", err)
		}
		return resp
	}

	resp := put(stranger.Token, owner.User.ID, `{"city":"Pune"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign record, got %d", resp.StatusCode)
	}

	resp = put(owner.Token, owner.User.ID, `{"city":"Pune"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for own record, got %d", resp.StatusCode)
	}

	// Privileged fields are unknown to this route and rejected outright.
	resp = put(owner.Token, owner.User.ID, `{"role":"admin"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
}

func TestAdminRoutesHeaderOnly(t *testing.T) {
	app, _ := newTestApp(t)

	caller := registerUser(t, app, registration{email: "asha@x.com", mobile: "9800000001"})

	// A valid user token is not a substitute for the admin header.
	req := httptest.NewRequest(fiber.MethodGet, "/api/admin/users/", nil)
	req.Header.Set("Authorization", "Bearer "+caller.Token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 without admin header, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/api/admin/users/", nil)
	req.Header.Set(auth.AdminHeader, auth.AdminHeaderValue)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with admin header, got %d", resp.StatusCode)
	}

	var page struct {
		Limit int64 `json:"limit"`
	}
	decodeBody(t, resp, &page)
	if page.Limit != 9 {
		t.Fatalf("expected admin default limit 9, got %d", page.Limit)
	}
}

func TestAdminListRejectsUnknownFilter(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/api/admin/users/?filter=yesterday", nil)
	req.Header.Set(auth.AdminHeader, auth.AdminHeaderValue)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown filter, got %d", resp.StatusCode)
	}
}

func TestAdminDeleteRemovesPhoto(t *testing.T) {
	app, cfg := newTestApp(t)

	created := registerUser(t, app, registration{email: "asha@x.com", mobile: "9800000001", photo: "me.jpg"})
	if n := countFiles(t, pictureDir(cfg)); n != 1 {
		t.Fatalf("expected one stored file, found %d", n)
	}

	req := httptest.NewRequest(fiber.MethodDelete, "/api/admin/users/"+created.User.ID, nil)
	req.Header.Set(auth.AdminHeader, auth.AdminHeaderValue)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	if n := countFiles(t, pictureDir(cfg)); n != 0 {
		t.Fatalf("expected photo removed with record, found %d files", n)
	}

	req = httptest.NewRequest(fiber.MethodGet, "/api/admin/users/"+created.User.ID, nil)
	req.Header.Set(auth.AdminHeader, auth.AdminHeaderValue)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestAdminCreateSetsPrivilegedFields(t *testing.T) {
	app, _ := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, value := range map[string]string{
		"firstName": "Admin",
		"lastName":  "Made",
		"email":     "made@x.com",
		"mobile":    "9800000009",
		"password":  "secret-pass",
		"gender":    "male",
		"role":      "admin",
		"isActive":  "true",
	} {
		_ = w.WriteField(key, value)
	}
	_ = w.Close()

	req := httptest.NewRequest(fiber.MethodPost, "/api/admin/users/", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(auth.AdminHeader, auth.AdminHeaderValue)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created struct {
		Role string `json:"role"`
	}
	decodeBody(t, resp, &created)
	if created.Role != "admin" {
		t.Fatalf("expected admin role, got %q", created.Role)
	}
}

func TestHealthz(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/healthz", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
