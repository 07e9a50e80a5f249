package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"agenda-service/libs/auth"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("front-desk-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cred := StaffCredential{Email: "staff@clinic.test", Hash: string(hash), Name: "Front Desk"}
	return NewAuthHandler(cred, testJWTSecret, time.Hour, logger)
}

func TestLoginIssuesStaffToken(t *testing.T) {
	handler := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"staff@clinic.test","password":"front-desk-pass"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TokenType != "Bearer" || resp.AccessToken == "" {
		t.Fatalf("response = %+v", resp)
	}

	claims, err := auth.ParseAndVerifyHS256(resp.AccessToken, testJWTSecret)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Role != "staff" {
		t.Errorf("role = %q, want staff", claims.Role)
	}
	if claims.Sub != "staff@clinic.test" {
		t.Errorf("sub = %q", claims.Sub)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	handler := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"staff@clinic.test","password":"nope"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginUnconfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewAuthHandler(StaffCredential{}, testJWTSecret, time.Hour, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
