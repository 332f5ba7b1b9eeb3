package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"

	"repairmybike-api/config"
	"repairmybike-api/internal/api/respond"
	"repairmybike-api/internal/domain/users"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

func googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.GOOGLE_CLIENT_ID,
		ClientSecret: config.GOOGLE_CLIENT_SECRET,
		RedirectURL:  config.GOOGLE_REDIRECT_URL,
		Scopes: []string{
			"openid",
			"email",
			"profile",
		},
		Endpoint: google.Endpoint,
	}
}

func googleConfigured() bool {
	return config.GOOGLE_CLIENT_ID != "" && config.GOOGLE_CLIENT_SECRET != "" && config.GOOGLE_REDIRECT_URL != ""
}

func randomState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GET /api/auth/google
func (h *Handler) GoogleStart(c *gin.Context) {
	if !googleConfigured() {
		respond.Error(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state, err := randomState()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "failed to generate state")
		return
	}

	// state lives in an HttpOnly cookie for 5 minutes
	c.SetCookie("oauth_state", state, 300, "/", "", false, true)

	c.Redirect(http.StatusFound, googleOAuthConfig().AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// GET /api/auth/google/callback
func (h *Handler) GoogleCallback(c *gin.Context) {
	if !googleConfigured() {
		respond.Error(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	if code == "" || state == "" {
		respond.Error(c, http.StatusBadRequest, "missing code/state")
		return
	}

	cookieState, err := c.Cookie("oauth_state")
	if err != nil || cookieState != state {
		respond.Error(c, http.StatusBadRequest, "invalid oauth state")
		return
	}

	tok, err := googleOAuthConfig().Exchange(c.Request.Context(), code)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "failed to exchange code")
		return
	}

	rawIDToken, ok := tok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		respond.Error(c, http.StatusUnauthorized, "missing id_token")
		return
	}

	claims, err := verifyGoogleIDToken(c, rawIDToken)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, err.Error())
		return
	}

	user, err := findOrCreateGoogleUser(h.DB, claims)
	if err != nil {
		zap.L().Error("google user provisioning failed", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "failed to create user")
		return
	}
	if !user.IsActive {
		respond.Error(c, http.StatusForbidden, "This account is disabled")
		return
	}

	pair, err := h.startSession(c, user, "", map[string]any{"login_method": "google"})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	redirect := config.GOOGLE_FRONTEND_REDIRECT
	if redirect == "" {
		h.loginResponse(c, http.StatusOK, "Login successful", user, pair)
		return
	}
	q := url.Values{}
	q.Set("session_token", pair.SessionToken)
	q.Set("refresh_token", pair.RefreshToken)
	c.Redirect(http.StatusFound, redirect+"#"+q.Encode())
}

/* ---------------- helpers ---------------- */

type googleIDClaims struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
	Iss           string `json:"iss"`
	Aud           string `json:"aud"`
	Exp           int64  `json:"exp"`
	Iat           int64  `json:"iat"`
}

// verifyGoogleIDToken checks the ID token signature and audience against
// Google's OIDC discovery document.
func verifyGoogleIDToken(c *gin.Context, rawIDToken string) (*googleIDClaims, error) {
	ctx := c.Request.Context()

	provider, err := oidc.NewProvider(ctx, "https://accounts.google.com")
	if err != nil {
		return nil, errors.New("failed to init google oidc provider")
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: config.GOOGLE_CLIENT_ID,
	})

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, errors.New("invalid id_token")
	}

	var claims googleIDClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, errors.New("failed to decode token claims")
	}

	if claims.Email == "" || claims.Sub == "" {
		return nil, errors.New("token missing required claims")
	}

	return &claims, nil
}

func findOrCreateGoogleUser(db *gorm.DB, gc *googleIDClaims) (*users.User, error) {
	var user users.User

	// 1) by google_sub
	if err := db.Where("google_sub = ?", gc.Sub).First(&user).Error; err == nil {
		return &user, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email, err := users.NormalizeEmail(gc.Email)
	if err != nil {
		return nil, err
	}

	// 2) by email, linking google_sub
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		sub := gc.Sub
		updates := map[string]interface{}{"google_sub": sub, "is_verified": true}
		if user.ProfilePicture == "" && gc.Picture != "" {
			updates["profile_picture"] = gc.Picture
		}
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
		user.GoogleSub = &sub
		user.IsVerified = true
		return &user, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 3) new customer
	sub := gc.Sub
	user = users.User{
		Username:       email,
		Email:          &email,
		FirstName:      firstNonEmpty(gc.GivenName, gc.Name),
		LastName:       gc.FamilyName,
		ProfilePicture: gc.Picture,
		AuthProvider:   users.ProviderGoogle,
		GoogleSub:      &sub,
		Role:           users.RoleCustomer,
		IsVerified:     true,
		IsActive:       true,
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
