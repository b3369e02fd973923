package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pawferry/pawferry/internal/auth"
	"github.com/pawferry/pawferry/pkg/models"
	"github.com/pawferry/pawferry/pkg/repository"
)

type AuthHandler struct {
	userRepo repository.UserRepo
	issuer   *auth.Issuer
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(ur repository.UserRepo, issuer *auth.Issuer) *AuthHandler {
	return &AuthHandler{userRepo: ur, issuer: issuer}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "unreadable request body")
		return
	}

	ctx := r.Context()
	details, err := validateBody(ctx, registerSchema, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	if len(details) > 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid registration payload", details...)
		return
	}

	var req registerRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if existing, err := h.userRepo.GetUserByEmail(ctx, req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to create account")
		return
	} else if existing != nil {
		writeError(w, http.StatusConflict, CodeConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to hash password")
		return
	}

	// self-registration always creates an owner account; pilot and admin
	// accounts are provisioned out of band
	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleOwner,
	}

	id, err := h.userRepo.CreateUser(ctx, user)
	if err != nil {
		// the unique index can still race the pre-check
		writeError(w, http.StatusConflict, CodeConflict, "email already registered")
		return
	}
	user.ID = id
	user.Active = true

	pair, err := h.issuer.Pair(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to sign token")
		return
	}

	writeJSON(w, authResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "email and password are required")
		return
	}

	ctx := r.Context()

	// unknown email, wrong password and disabled account all collapse into
	// the same response
	user, err := h.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "login failed")
		return
	}
	if user == nil || !user.Active {
		writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "invalid credentials")
		return
	}

	pair, err := h.issuer.Pair(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to sign token")
		return
	}

	writeJSON(w, authResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, http.StatusOK)
}

// Refresh rotates the token pair. The refresh token travels only in the
// request body, never in a header.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "refreshToken is required")
		return
	}

	claims, err := h.issuer.VerifyRefresh(req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "invalid or expired refresh token")
		return
	}

	ctx := r.Context()
	user, err := h.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "refresh failed")
		return
	}
	if user == nil || !user.Active {
		writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "invalid or expired refresh token")
		return
	}

	pair, err := h.issuer.Pair(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to sign token")
		return
	}

	writeJSON(w, authResponse{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, http.StatusOK)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Tokens are self-contained and cannot be revoked server-side; logout is
	// client-side token deletion.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"message":"signed out"}`)
}
