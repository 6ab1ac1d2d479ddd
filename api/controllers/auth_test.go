package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	authsvc "github.com/gigadev/qr-order-backend/internal/auth"
	pkgerrors "github.com/gigadev/qr-order-backend/pkg/errors"
)

type stubAuthService struct {
	pair *authsvc.TokenPair
	err  error

	lastLogin   authsvc.LoginInput
	lastAccess  string
	lastRefresh string
	loggedOut   bool
}

func (s *stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.TokenPair, error) {
	s.lastLogin = input
	return s.pair, s.err
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*authsvc.TokenPair, error) {
	s.lastAccess = accessToken
	s.lastRefresh = refreshToken
	return s.pair, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessToken string) error {
	s.lastAccess = accessToken
	s.loggedOut = true
	return s.err
}

func TestLogin(t *testing.T) {
	logg := testControllerLogger()
	storeID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{pair: &authsvc.TokenPair{AccessToken: "access", RefreshToken: "refresh"}}
		body := `{"storeId":"` + storeID.String() + `","password":"owner-password"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		Login(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastLogin.StoreID != storeID {
			t.Fatalf("unexpected store id: %s", stub.lastLogin.StoreID)
		}
		env := decodeEnvelope(t, rec)
		var pair authsvc.TokenPair
		if err := json.Unmarshal(env.Data, &pair); err != nil {
			t.Fatalf("decoding token pair: %v", err)
		}
		if pair.AccessToken != "access" || pair.RefreshToken != "refresh" {
			t.Fatalf("unexpected pair: %+v", pair)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		stub := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
		body := `{"storeId":"` + storeID.String() + `","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		Login(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		stub := &stubAuthService{}
		body := `{"storeId":"` + storeID.String() + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		Login(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRefresh(t *testing.T) {
	logg := testControllerLogger()

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{pair: &authsvc.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refreshToken":"old-refresh"}`))
		req.Header.Set("Authorization", "Bearer stale-access")
		rec := httptest.NewRecorder()
		Refresh(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastAccess != "stale-access" || stub.lastRefresh != "old-refresh" {
			t.Fatalf("unexpected rotation inputs: %q %q", stub.lastAccess, stub.lastRefresh)
		}
	})

	t.Run("missing bearer token", func(t *testing.T) {
		stub := &stubAuthService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refreshToken":"old-refresh"}`))
		rec := httptest.NewRecorder()
		Refresh(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without bearer token, got %d", rec.Code)
		}
	})
}

func TestLogout(t *testing.T) {
	logg := testControllerLogger()

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer some-access")
		rec := httptest.NewRecorder()
		Logout(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !stub.loggedOut || stub.lastAccess != "some-access" {
			t.Fatalf("expected logout with token, got %+v", stub)
		}
	})

	t.Run("missing bearer token", func(t *testing.T) {
		stub := &stubAuthService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
		rec := httptest.NewRecorder()
		Logout(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
