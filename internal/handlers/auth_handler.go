package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"cogniplay/internal/service"
	"cogniplay/internal/validation"
)

// AuthHandler serves the identity endpoints
type AuthHandler struct {
	authService    *service.AuthService
	oauthProviders map[string]OAuthProvider
	oauthBaseURL   string
	appBaseURL     string
	logger         *zap.Logger
}

// AuthHandlerConfig bundles the optional OAuth settings
type AuthHandlerConfig struct {
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	OAuthBaseURL         string
	AppBaseURL           string
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(authService *service.AuthService, cfg AuthHandlerConfig, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		authService:    authService,
		oauthProviders: buildOAuthProviders(cfg),
		oauthBaseURL:   cfg.OAuthBaseURL,
		appBaseURL:     cfg.AppBaseURL,
		logger:         logger,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authResponse struct {
	User  interface{} `json:"user"`
	Token string      `json:"token"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.respondAuthError(w, err)
		return
	}

	respondData(w, http.StatusCreated, authResponse{User: user.View(), Token: token})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password look the same to the client so
		// the endpoint cannot be used to enumerate accounts
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.respondAuthError(w, err)
		return
	}

	respondData(w, http.StatusOK, authResponse{User: user.View(), Token: token})
}

// Logout handles POST /api/auth/logout. Idempotent.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(); err != nil {
		h.logger.Warn("logout failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to log out")
		return
	}
	respondMessage(w, http.StatusOK, "logged out")
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	respondData(w, http.StatusOK, user.View())
}

// UpdateProfile handles PUT /api/auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var update service.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	updated, err := h.authService.UpdateProfile(user.ID, update)
	if err != nil {
		h.respondAuthError(w, err)
		return
	}

	respondData(w, http.StatusOK, struct {
		User        interface{} `json:"user"`
		Preferences interface{} `json:"preferences"`
	}{User: updated.View(), Preferences: updated.Preferences})
}

func (h *AuthHandler) respondAuthError(w http.ResponseWriter, err error) {
	var validationErr validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrEmailTaken):
		respondError(w, http.StatusBadRequest, "email already taken")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, service.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user not found")
	default:
		h.logger.Error("auth request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func buildOAuthProviders(cfg AuthHandlerConfig) map[string]OAuthProvider {
	return map[string]OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Scopes:       []string{"openid", "email", "profile"},
				Endpoint:     google.Endpoint,
			},
			UserInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		},
		"facebook": {
			Name:  "facebook",
			Label: "Facebook",
			Config: &oauth2.Config{
				ClientID:     cfg.FacebookClientID,
				ClientSecret: cfg.FacebookClientSecret,
				Scopes:       []string{"email", "public_profile"},
				Endpoint:     facebook.Endpoint,
			},
			UserInfoURL: "https://graph.facebook.com/me?fields=id,name,email",
		},
	}
}
