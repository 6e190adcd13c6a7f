package auth

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"climbprofile/internal/store"
)

const (
	// Strava OAuth endpoints
	AuthURL  = "https://www.strava.com/oauth/authorize"
	TokenURL = "https://www.strava.com/oauth/token"
)

// Scopes needed to list the athlete's routes, including private ones.
// Strava expects them comma-separated in a single value.
var Scopes = []string{
	"read,read_all",
}

// Config holds the OAuth client credentials
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // defaults to the local callback server
}

// NewOAuthConfig creates an oauth2.Config from our Config
func NewOAuthConfig(cfg Config) *oauth2.Config {
	redirect := cfg.RedirectURL
	if redirect == "" {
		redirect = fmt.Sprintf("http://localhost:%d/callback", CallbackPort)
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   AuthURL,
			TokenURL:  TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: redirect,
		Scopes:      Scopes,
	}
}

// AuthResult contains the token and athlete info from successful auth
type AuthResult struct {
	Token     *oauth2.Token
	AthleteID int64
	Scope     string
}

// ExtractAthleteID pulls the athlete ID out of the token response.
// Strava embeds a summary athlete object next to the tokens.
func ExtractAthleteID(token *oauth2.Token) int64 {
	if athlete, ok := token.Extra("athlete").(map[string]interface{}); ok {
		if id, ok := athlete["id"].(float64); ok {
			return int64(id)
		}
	}
	return 0
}

// ToStore converts a successful login for clientID into the stored row
func (r *AuthResult) ToStore(clientID string) *store.Auth {
	return &store.Auth{
		ClientID:     clientID,
		AthleteID:    r.AthleteID,
		AccessToken:  r.Token.AccessToken,
		RefreshToken: r.Token.RefreshToken,
		ExpiresAt:    r.Token.Expiry,
		Scope:        r.Scope,
	}
}

// TokenFromStore rebuilds an oauth2 token from the stored row
func TokenFromStore(a *store.Auth) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       a.ExpiresAt,
	}
}

// PersistTo returns an onRefresh callback that writes refreshed tokens for
// clientID to db
func PersistTo(db *store.DB, clientID string) func(*oauth2.Token) error {
	return func(t *oauth2.Token) error {
		expires := t.Expiry
		if expires.IsZero() {
			expires = time.Now().Add(6 * time.Hour)
		}
		if err := db.UpdateTokens(clientID, t.AccessToken, t.RefreshToken, expires); err != nil {
			return fmt.Errorf("saving refreshed token: %w", err)
		}
		return nil
	}
}
