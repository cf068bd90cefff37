package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/crewcost/crewcost-backend/internal/middleware"
	"github.com/crewcost/crewcost-backend/internal/service"
	"github.com/crewcost/crewcost-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func newAuthHandler() (*AuthHandler, *testutil.MockUserRepository) {
	repo := testutil.NewMockUserRepository()
	svc := service.NewAuthService(repo)
	return NewAuthHandler(svc), repo
}

// authContext builds an echo context carrying validated Auth0 claims, the way
// the auth middleware leaves them after token validation.
func authContext(e *echo.Echo, req *http.Request, rec *httptest.ResponseRecorder, auth0ID, email string) echo.Context {
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
		CustomClaims:     &middleware.CustomClaims{Email: email, Name: "Pat Mason"},
	}
	ctx := context.WithValue(req.Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	return e.NewContext(req.WithContext(ctx), rec)
}

func TestAuthCallback_CreatesUser(t *testing.T) {
	e := echo.New()
	h, repo := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, "auth0|abc123", "pat@example.com")

	if err := h.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Email != "pat@example.com" {
		t.Errorf("Expected email pat@example.com, got %s", response.Email)
	}

	if _, err := repo.GetByAuth0ID("auth0|abc123"); err != nil {
		t.Errorf("Expected user to be persisted: %v", err)
	}
}

func TestAuthCallback_MissingEmail(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, "auth0|abc123", "")

	if err := h.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestAuthCallback_Unauthenticated(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Callback(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestAuthMe_NotFound(t *testing.T) {
	e := echo.New()
	h, _ := newAuthHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, "auth0|unknown", "pat@example.com")

	if err := h.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestAuthMe_ReturnsUser(t *testing.T) {
	e := echo.New()
	h, repo := newAuthHandler()
	repo.CreateOrGetByAuth0ID("auth0|abc123", "pat@example.com", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec := httptest.NewRecorder()
	c := authContext(e, req, rec, "auth0|abc123", "pat@example.com")

	if err := h.Me(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response UserResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Email != "pat@example.com" {
		t.Errorf("Expected email pat@example.com, got %s", response.Email)
	}
}
