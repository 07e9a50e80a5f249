package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"agenda-service/libs/auth"
)

// StaffCredential is the single back-office account, loaded from the
// environment at startup. Hash is a bcrypt hash of the password.
type StaffCredential struct {
	Email string
	Hash  string
	Name  string
}

// AuthHandler issues staff session tokens. Patient tokens come from the
// upstream identity provider and are only verified here, never issued.
type AuthHandler struct {
	credential StaffCredential
	secret     string
	tokenTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

func NewAuthHandler(credential StaffCredential, secret string, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		credential: credential,
		secret:     secret,
		tokenTTL:   tokenTTL,
		logger:     logger,
		now:        time.Now,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.credential.Email == "" || h.credential.Hash == "" {
		h.logger.Error("staff login attempted but no credential is configured")
		writeError(w, http.StatusServiceUnavailable, "login not configured")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Password = strings.TrimSpace(req.Password)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	emailMatch := subtle.ConstantTimeCompare([]byte(strings.ToLower(req.Email)), []byte(strings.ToLower(h.credential.Email))) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.credential.Hash), []byte(req.Password))
	if !emailMatch || passErr != nil {
		h.logger.Warn("staff login rejected", "email", req.Email)
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := h.now()
	token, err := auth.SignHS256(auth.Claims{
		Sub:  h.credential.Email,
		Name: h.credential.Name,
		Role: "staff",
		Iat:  now.Unix(),
		Exp:  now.Add(h.tokenTTL).Unix(),
	}, h.secret)
	if err != nil {
		h.logger.Error("staff token signing failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.tokenTTL.Seconds()),
	})
}
