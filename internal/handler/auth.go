package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"prompthub/internal/httputil"
	"prompthub/internal/model"
	"prompthub/internal/service"
	"prompthub/internal/transport/http/middleware"
)

type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidEmail):
			httputil.WriteBadRequest(w, "Invalid email address")
		case errors.Is(err, model.ErrInvalidPassword):
			httputil.WriteBadRequest(w, "Password must be at least 8 characters of letters and digits")
		case errors.Is(err, model.ErrInvalidPhone):
			httputil.WriteBadRequest(w, "Invalid phone number")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteBadRequestWithCode(w, "EMAIL_EXISTS", "Email already registered")
		case errors.Is(err, model.ErrPhoneExists):
			httputil.WriteBadRequestWithCode(w, "PHONE_EXISTS", "Phone number already registered")
		default:
			log.Printf("[ERROR] Register handler: email=%s err=%v", req.Email, err)
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	httputil.WriteData(w, user)
}

// Login handles POST /api/auth/login
// On success it returns the token pair in the body and also sets the
// access token as a cookie for browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		log.Printf("[ERROR] Login handler: email=%s err=%v", req.Email, err)
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	pair, err := h.authService.GenerateTokenPair(r.Context(), user.ID, r.UserAgent(), clientIP(r))
	if err != nil {
		log.Printf("[ERROR] Login handler: user=%s err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	h.setAccessTokenCookie(w, pair)

	httputil.WriteJSON(w, http.StatusOK, &model.LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	})
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		httputil.WriteBadRequest(w, "Refresh token is required")
		return
	}

	pair, userID, err := h.authService.RefreshTokens(r.Context(), req.RefreshToken, r.UserAgent(), clientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrRefreshTokenReused):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenReused, "Refresh token reuse detected, all sessions revoked")
		case errors.Is(err, model.ErrRefreshTokenExpired):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenExpired, "Refresh token has expired")
		case errors.Is(err, model.ErrRefreshTokenNotFound):
			httputil.WriteUnauthorizedWithCode(w, model.CodeTokenInvalid, "Invalid refresh token")
		default:
			log.Printf("[ERROR] Refresh handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to refresh tokens")
		}
		return
	}

	h.setAccessTokenCookie(w, pair)
	httputil.WriteJSON(w, http.StatusOK, pair)
}

// Logout handles POST /api/auth/logout
// Revokes the presented refresh token and clears the cookie. Revocation
// failures are not surfaced: the client is logging out either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req model.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		if err := h.authService.RevokeRefreshToken(r.Context(), req.RefreshToken); err != nil {
			log.Printf("[WARN] Logout handler: revoke failed: %v", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out successfully",
	})
}

// LogoutAll handles POST /api/auth/logout-all
// Revokes every refresh token of the signed-in user.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := h.authService.RevokeAllUserTokens(r.Context(), userID); err != nil {
		log.Printf("[ERROR] LogoutAll handler: user=%s err=%v", userID, err)
		httputil.WriteInternalError(w, "Failed to log out of all sessions")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Logged out of all sessions",
	})
}

func (h *AuthHandler) setAccessTokenCookie(w http.ResponseWriter, pair *model.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   pair.ExpiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientIP extracts the caller's IP, preferring the proxy header.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}
