package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

func TestNewClient(t *testing.T) {
	t.Run("creates client with correct base URL", func(t *testing.T) {
		client := NewClient("http://localhost:8080/", "test-token")
		if client.BaseURL != "http://localhost:8080/api/v1" {
			t.Errorf("expected BaseURL 'http://localhost:8080/api/v1', got %s", client.BaseURL)
		}
		if client.Token != "test-token" {
			t.Errorf("expected Token 'test-token', got %s", client.Token)
		}
	})

	t.Run("removes trailing slashes from base URL", func(t *testing.T) {
		client := NewClient("http://example.com///", "")
		if client.BaseURL != "http://example.com/api/v1" {
			t.Errorf("expected BaseURL 'http://example.com/api/v1', got %s", client.BaseURL)
		}
		if client.AuthURL() != "http://example.com/api/v1/auth" {
			t.Errorf("unexpected auth URL %s", client.AuthURL())
		}
	})

	t.Run("sets default HTTP client timeout", func(t *testing.T) {
		client := NewClient("http://localhost:8080", "")
		if client.HTTPClient == nil || client.HTTPClient.Timeout == 0 {
			t.Error("expected HTTPClient with a timeout")
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{Status: 404, Message: "Photo doesn't exist"}
	if err.Error() != "api: 404: Photo doesn't exist" {
		t.Errorf("unexpected error message %q", err.Error())
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("sends token in auth header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("expected GET request, got %s", r.Method)
			}
			if r.URL.Path != "/api/v1/account" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if r.Header.Get("auth") != "test-token" {
				t.Errorf("expected auth header 'test-token', got %s", r.Header.Get("auth"))
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"ok":   true,
				"user": map[string]any{"_id": "usr_1", "username": "alice", "used": 10, "storage": 100, "shareCode": "12345678"},
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "test-token")
		var resp AccountResponse
		if err := client.Get("/account", nil, &resp); err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if !resp.OK || resp.User.ID != "usr_1" || resp.User.Storage != 100 || resp.User.ShareCode != "12345678" {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("omits auth header without token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Header["Auth"]; ok {
				t.Error("expected no auth header")
			}
			_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		}))
		defer server.Close()

		if err := NewClient(server.URL, "").Get("/status", nil, nil); err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
	})

	t.Run("appends query parameters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("photo") != "VRChat_a.png" {
				t.Errorf("expected photo param, got %s", r.URL.RawQuery)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "exists": true})
		}))
		defer server.Close()

		var resp ExistsResponse
		if err := NewClient(server.URL, "").Get("/photos/exists", url.Values{"photo": {"VRChat_a.png"}}, &resp); err != nil {
			t.Fatalf("Get() returned error: %v", err)
		}
		if !resp.Exists {
			t.Error("expected exists=true")
		}
	})

	t.Run("returns APIError with server message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "Invalid token"})
		}))
		defer server.Close()

		err := NewClient(server.URL, "bad").Get("/account", nil, nil)
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %T", err)
		}
		if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid token" {
			t.Errorf("unexpected error %+v", apiErr)
		}
	})

	t.Run("falls back to raw body for plain text errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		err := NewClient(server.URL, "").Get("/nope", nil, nil)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != "404 Not Found" {
			t.Fatalf("unexpected error %v", err)
		}
	})
}

func TestClient_Put(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT request, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
		}
		var body map[string]bool
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "settings": map[string]bool{"enableSync": body["enableSync"]}})
	}))
	defer server.Close()

	var resp SettingsResponse
	if err := NewClient(server.URL, "tok").Put("/account/settings", nil, map[string]bool{"enableSync": true}, &resp); err != nil {
		t.Fatalf("Put() returned error: %v", err)
	}
	if !resp.Settings.EnableSync {
		t.Error("expected enableSync=true")
	}
}

func TestClient_Delete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("expected DELETE request, got %s", r.Method)
		}
		if r.URL.Query().Get("user") != "usr_2" {
			t.Errorf("expected user param, got %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))
	defer server.Close()

	var resp Response
	if err := NewClient(server.URL, "tok").Delete("/blocks", url.Values{"user": {"usr_2"}}, &resp); err != nil {
		t.Fatalf("Delete() returned error: %v", err)
	}
	if !resp.OK {
		t.Error("expected ok=true")
	}
}

func TestClient_UploadPhoto(t *testing.T) {
	const name = "VRChat_2024-01-31_21-05-44.123_1920x1080.png"

	t.Run("streams raw png with filename header", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), name)
		if err := os.WriteFile(filePath, []byte("png-bytes"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/api/v1/photos" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			if r.Header.Get("Content-Type") != "image/png" {
				t.Errorf("expected image/png, got %s", r.Header.Get("Content-Type"))
			}
			if r.Header.Get("filename") != name {
				t.Errorf("expected filename header %s, got %s", name, r.Header.Get("filename"))
			}
			if r.ContentLength != int64(len("png-bytes")) {
				t.Errorf("expected content length %d, got %d", len("png-bytes"), r.ContentLength)
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != "png-bytes" {
				t.Errorf("unexpected body %q", body)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "size": len(body)})
		}))
		defer server.Close()

		resp, err := NewClient(server.URL, "tok").UploadPhoto(filePath)
		if err != nil {
			t.Fatalf("UploadPhoto() returned error: %v", err)
		}
		if resp.Size != int64(len("png-bytes")) || resp.Warning != "" {
			t.Errorf("unexpected response %+v", resp)
		}
	})

	t.Run("surfaces duplicate warning", func(t *testing.T) {
		filePath := filepath.Join(t.TempDir(), name)
		_ = os.WriteFile(filePath, []byte("x"), 0644)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "warning": "File already exists"})
		}))
		defer server.Close()

		resp, err := NewClient(server.URL, "tok").UploadPhoto(filePath)
		if err != nil {
			t.Fatalf("UploadPhoto() returned error: %v", err)
		}
		if resp.Warning != "File already exists" {
			t.Errorf("expected warning, got %+v", resp)
		}
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		if _, err := NewClient("http://localhost:8080", "").UploadPhoto("/nonexistent/" + name); err == nil {
			t.Error("expected error for non-existent file")
		}
	})
}

func TestClient_DownloadToFile(t *testing.T) {
	t.Run("downloads photo to disk", func(t *testing.T) {
		content := []byte("downloaded content")
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("auth") != "tok" {
				t.Errorf("expected auth header, got %q", r.Header.Get("auth"))
			}
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(content)
		}))
		defer server.Close()

		destPath := filepath.Join(t.TempDir(), "photo.png")
		n, err := NewClient(server.URL, "tok").DownloadToFile("/photos", url.Values{"photo": {"p.png"}}, destPath)
		if err != nil {
			t.Fatalf("DownloadToFile() returned error: %v", err)
		}
		if n != int64(len(content)) {
			t.Errorf("expected %d bytes, got %d", len(content), n)
		}
		data, err := os.ReadFile(destPath)
		if err != nil {
			t.Fatalf("failed to read downloaded file: %v", err)
		}
		if string(data) != string(content) {
			t.Errorf("expected content %q, got %q", content, data)
		}
	})

	t.Run("returns APIError and writes nothing on non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "Photo doesn't exist"})
		}))
		defer server.Close()

		destPath := filepath.Join(t.TempDir(), "photo.png")
		_, err := NewClient(server.URL, "").DownloadToFile("/photos", nil, destPath)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			t.Fatalf("expected 404 APIError, got %v", err)
		}
		if _, statErr := os.Stat(destPath); !os.IsNotExist(statErr) {
			t.Error("expected no file to be written")
		}
	})
}
