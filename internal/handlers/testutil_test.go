package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/config"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/database"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/identity"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/middleware"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/models"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/photos"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/services"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/internal/storage"
	"github.com/phaze-the-dumb/VRChat-Photo-Server/pkg/logger"
	"gorm.io/gorm"
)

const (
	testPrefix   = "photos/"
	testCallback = "http://127.0.0.1:53413/api/v1/auth/callback"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	store    *storage.MemoryStore
	accounts *services.AccountService
	provider *fakeProvider
}

// fakeProvider stands in for the identity provider. Sessions maps a session
// token to the profile JSON returned for it.
type fakeProvider struct {
	server *httptest.Server

	mu          sync.Mutex
	sessions    map[string]string
	invalidated []string
	failDelete  bool
}

func (p *fakeProvider) addSession(token, profileJSON string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[token] = profileJSON
}

func (p *fakeProvider) setFailDelete(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failDelete = fail
}

func (p *fakeProvider) invalidatedTokens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.invalidated...)
}

func newFakeProvider(t *testing.T) *fakeProvider {
	t.Helper()
	p := &fakeProvider{sessions: map[string]string{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/user/@me", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		body, ok := p.sessions[r.Header.Get("auth")]
		p.mu.Unlock()
		if !ok || r.Header.Get("oauth") != "app-secret" {
			w.Write([]byte(`{"ok":false,"error":"Invalid token"}`))
			return
		}
		w.Write([]byte(body))
	})
	mux.HandleFunc("/api/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.invalidated = append(p.invalidated, r.Header.Get("auth"))
		fail := p.failDelete
		p.mu.Unlock()
		if fail {
			w.Write([]byte(`{"ok":false}`))
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})

	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger.SetOutput(io.Discard)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	provider := newFakeProvider(t)
	handle := database.FromDB(db)
	store := storage.NewMemoryStore()

	accounts := services.NewAccountService(handle, nil)
	photoService := services.NewPhotoService(accounts, store, testPrefix, 2, 100)
	sharing := services.NewSharingService(handle, accounts, photoService)
	identityClient := identity.NewClient(config.IdentityConfig{
		BaseURL:  provider.server.URL,
		AppID:    "app-123",
		AppToken: "app-secret",
	}, provider.server.Client())

	authHandler := NewAuthHandler(identityClient, accounts, testCallback)
	accountHandler := NewAccountHandler(accounts)
	photosHandler := NewPhotosHandler(photoService)
	sharesHandler := NewSharesHandler(sharing)
	authMiddleware := middleware.NewAuthMiddleware(accounts)

	app := fiber.New(fiber.Config{BodyLimit: 16 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	api := app.Group("/api/v1")
	api.Get("/status", Status)
	api.Get("/auth", authHandler.Authenticate)
	api.Get("/account", authMiddleware.RequireAccount, accountHandler.Get)
	api.Put("/account/settings", authMiddleware.RequireAccount, accountHandler.UpdateSettings)
	api.Get("/photos/exists", authMiddleware.RequireAccount, photosHandler.Exists)
	api.Get("/photos", authMiddleware.RequireAccount, photosHandler.Get)
	api.Put("/photos", photosHandler.ValidateUpload, authMiddleware.RequireAccount, photosHandler.Upload)
	api.Delete("/photos", photosHandler.ValidateDelete, authMiddleware.RequireAccount, photosHandler.Delete)
	api.Delete("/allphotos", authMiddleware.RequireAccount, photosHandler.DeleteAll)
	api.Get("/user/byCode", authMiddleware.RequireAccount, sharesHandler.UserByCode)
	api.Get("/share", authMiddleware.RequireAccount, sharesHandler.Grant)
	api.Delete("/share", authMiddleware.RequireAccount, sharesHandler.Revoke)
	api.Get("/shares", authMiddleware.RequireAccount, sharesHandler.List)
	api.Get("/shares/photo", authMiddleware.RequireAccount, sharesHandler.GetSharedPhoto)
	api.Get("/blocks", authMiddleware.RequireAccount, sharesHandler.ListBlocks)
	api.Put("/blocks", authMiddleware.RequireAccount, sharesHandler.Block)
	api.Delete("/blocks", authMiddleware.RequireAccount, sharesHandler.Unblock)

	return &testEnv{app: app, db: db, store: store, accounts: accounts, provider: provider}
}

func createTestAccount(t *testing.T, db *gorm.DB, id string, quota int64, sync bool) *models.Account {
	t.Helper()

	account := &models.Account{
		ID:       id,
		Username: id,
		Token:    services.NewSessionToken(),
		Storage:  quota,
		Settings: models.Settings{EnableSync: sync},
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed creating test account: %v", err)
	}
	return account
}

func loadAccount(t *testing.T, db *gorm.DB, id string) *models.Account {
	t.Helper()
	var account models.Account
	if err := db.First(&account, "id = ?", id).Error; err != nil {
		t.Fatalf("failed loading account %s: %v", id, err)
	}
	return &account
}

func authHeaders(token string) map[string]string {
	return map[string]string{"auth": token}
}

func testPhotoName(i int) string {
	return fmt.Sprintf("VRChat_2024-01-31_21-05-44.%03d_1920x1080.png", i)
}

func uploadHeaders(token, filename string) map[string]string {
	return map[string]string{
		"auth":         token,
		"filename":     filename,
		"Content-Type": photos.ContentType,
	}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	return string(raw)
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()
	if ok, _ := body["ok"].(bool); ok {
		t.Fatalf("expected ok=false, got %+v", body)
	}
	if got, _ := body["error"].(string); got != expected {
		t.Fatalf("expected error %q, got %q", expected, got)
	}
}
