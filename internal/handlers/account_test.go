package handlers

import (
	"net/http"
	"testing"
)

func TestGetAccount(t *testing.T) {
	env := setupTestEnv(t)
	account := createTestAccount(t, env.db, "user-1", 500, true)

	resp := performRequest(t, env.app, http.MethodGet, "/api/v1/account?token="+account.Token, nil, nil)
	assertStatus(t, resp, http.StatusOK)

	body := decodeJSONMap(t, resp)
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user object, got %v", body)
	}
	if user["_id"] != "user-1" || user["storage"] != float64(500) || user["used"] != float64(0) {
		t.Fatalf("unexpected user %v", user)
	}
	if _, leaked := user["token"]; leaked {
		t.Fatal("token must not be exposed")
	}
	code, _ := user["shareCode"].(string)
	if len(code) != 8 {
		t.Fatalf("expected an 8 digit share code, got %v", user["shareCode"])
	}

	resp = performRequest(t, env.app, http.MethodGet, "/api/v1/account", nil, authHeaders(account.Token))
	assertStatus(t, resp, http.StatusOK)
	again := decodeJSONMap(t, resp)["user"].(map[string]any)
	if again["shareCode"] != code {
		t.Fatalf("expected stable share code, got %v then %v", code, again["shareCode"])
	}
}

func TestGetAccount_Unauthenticated(t *testing.T) {
	env := setupTestEnv(t)

	resp := performRequest(t, env.app, http.MethodGet, "/api/v1/account", nil, nil)
	assertStatus(t, resp, http.StatusUnauthorized)
	assertEnvelopeError(t, decodeJSONMap(t, resp), "No token provided")

	resp = performRequest(t, env.app, http.MethodGet, "/api/v1/account?token=nope", nil, nil)
	assertStatus(t, resp, http.StatusUnauthorized)
	assertEnvelopeError(t, decodeJSONMap(t, resp), "Invalid token")
}

func TestUpdateSettings(t *testing.T) {
	env := setupTestEnv(t)
	account := createTestAccount(t, env.db, "user-1", 0, false)

	resp := performJSONRequest(t, env.app, http.MethodPut, "/api/v1/account/settings", map[string]any{"enableSync": true}, authHeaders(account.Token))
	assertStatus(t, resp, http.StatusOK)
	if !loadAccount(t, env.db, account.ID).Settings.EnableSync {
		t.Fatal("expected sync enabled")
	}

	resp = performJSONRequest(t, env.app, http.MethodPut, "/api/v1/account/settings", map[string]any{}, authHeaders(account.Token))
	assertStatus(t, resp, http.StatusBadRequest)
	assertEnvelopeError(t, decodeJSONMap(t, resp), "enableSync is required")
}
