package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshLeeway is how close to expiry a token gets refreshed
const refreshLeeway = 60 * time.Second

// TokenSource refreshes the Strava token when it is about to expire and
// hands every new token to onRefresh so it survives restarts.
type TokenSource struct {
	ctx       context.Context
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource creates a new TokenSource. ctx is used for refresh requests;
// put an *http.Client under oauth2.HTTPClient to redirect them.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		ctx:       ctx,
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !expiresSoon(ts.token) {
		return ts.token, nil
	}

	// Clear the access token so the oauth2 source always refreshes
	stale := *ts.token
	stale.AccessToken = ""
	newToken, err := ts.config.TokenSource(ts.ctx, &stale).Token()
	if err != nil {
		return nil, err
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}

// IsExpired checks if the current token is expired or will expire shortly
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return expiresSoon(ts.token)
}

func expiresSoon(t *oauth2.Token) bool {
	return time.Until(t.Expiry) <= refreshLeeway
}
