package integration

import (
	"net/http"
	"testing"
)

func TestAuthFlow_RegisterLoginProfile(t *testing.T) {
	app := setupApp(t)

	token, userID := app.registerUser(t, "auth@test.com", "125.50")
	if token == "" || userID == "" {
		t.Fatal("expected token and user id from registration")
	}

	rec := app.request(http.MethodPost, "/api/v1/auth/login", `{"email":"AUTH@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	loginToken := data(t, rec)["token"].(string)

	rec = app.request(http.MethodGet, "/api/v1/profile", "", loginToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	profile := data(t, rec)
	if profile["email"] != "auth@test.com" || profile["id"] != userID {
		t.Errorf("unexpected profile: %v", profile)
	}
	if profile["budget"] != 125.5 || profile["opening_budget"] != 125.5 {
		t.Errorf("expected budget 125.5, got %v / %v", profile["budget"], profile["opening_budget"])
	}
}

func TestAuthFlow_RegisterDuplicateEmail(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "dup@test.com", "0")

	rec := app.request(http.MethodPost, "/api/v1/auth/register",
		`{"username":"again","email":"dup@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d: %s", rec.Code, rec.Body.String())
	}
	if code := errorCode(t, rec); code != "DUPLICATE_EMAIL" {
		t.Errorf("expected DUPLICATE_EMAIL, got %v", code)
	}
}

func TestAuthFlow_RegisterNegativeBudget(t *testing.T) {
	app := setupApp(t)

	rec := app.request(http.MethodPost, "/api/v1/auth/register",
		`{"username":"neg","email":"neg@test.com","password":"password123","budget":-5}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthFlow_LoginWrongPassword(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "wrong@test.com", "0")

	rec := app.request(http.MethodPost, "/api/v1/auth/login", `{"email":"wrong@test.com","password":"not-the-password"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if code := errorCode(t, rec); code != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %v", code)
	}

	rec = app.request(http.MethodPost, "/api/v1/auth/login", `{"email":"nobody@test.com","password":"password123"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", rec.Code)
	}
}

func TestAuthFlow_GoogleDisabled(t *testing.T) {
	app := setupApp(t)

	rec := app.request(http.MethodPost, "/api/v1/auth/google", `{"id_token":"anything"}`, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestAuthFlow_UpdateProfile(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "profile@test.com", "10")

	rec := app.request(http.MethodPut, "/api/v1/profile", `{"title":"Analyst","password":"new-password-1"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	if data(t, rec)["title"] != "Analyst" {
		t.Error("expected title to change")
	}

	rec = app.request(http.MethodPost, "/api/v1/auth/login", `{"email":"profile@test.com","password":"new-password-1"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected login with new password, got %d", rec.Code)
	}
	if app.budget(t, token) != 10 {
		t.Error("profile update must not touch the budget")
	}
}

func TestAuthFlow_RejectsMissingToken(t *testing.T) {
	app := setupApp(t)

	rec := app.request(http.MethodGet, "/api/v1/profile", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	rec = app.request(http.MethodGet, "/api/v1/profile", "", "not-a-jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
