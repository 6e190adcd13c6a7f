package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"climbprofile/internal/store"
)

func TestExtractAthleteID(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]interface{}
		want  int64
	}{
		{"athlete present", map[string]interface{}{"athlete": map[string]interface{}{"id": float64(1234)}}, 1234},
		{"no athlete", map[string]interface{}{}, 0},
		{"athlete without id", map[string]interface{}{"athlete": map[string]interface{}{"firstname": "A"}}, 0},
		{"wrong type", map[string]interface{}{"athlete": "1234"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := (&oauth2.Token{AccessToken: "x"}).WithExtra(tt.extra)
			if got := ExtractAthleteID(token); got != tt.want {
				t.Errorf("ExtractAthleteID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewOAuthConfig(t *testing.T) {
	cfg := NewOAuthConfig(Config{ClientID: "id", ClientSecret: "secret"})

	if cfg.RedirectURL != "http://localhost:8089/callback" {
		t.Errorf("RedirectURL = %q", cfg.RedirectURL)
	}
	if len(cfg.Scopes) != 1 || cfg.Scopes[0] != "read,read_all" {
		t.Errorf("Scopes = %v, want [read,read_all]", cfg.Scopes)
	}

	authURL, err := url.Parse(cfg.AuthCodeURL("state"))
	if err != nil {
		t.Fatal(err)
	}
	if got := authURL.Query().Get("scope"); got != "read,read_all" {
		t.Errorf("scope param = %q", got)
	}
}

// tokenServer answers refresh_token grants with a fresh token and counts them
func tokenServer(t *testing.T, refreshes *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q, want refresh_token", got)
		}
		*refreshes++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"new-access","refresh_token":"new-refresh","token_type":"Bearer","expires_in":21600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTokenSource(t *testing.T) {
	var refreshes int
	srv := tokenServer(t, &refreshes)

	cfg := NewOAuthConfig(Config{ClientID: "id", ClientSecret: "secret"})
	cfg.Endpoint.TokenURL = srv.URL

	t.Run("valid token is returned as is", func(t *testing.T) {
		tok := &oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(time.Hour)}
		ts := NewTokenSource(context.Background(), cfg, tok, nil)

		got, err := ts.Token()
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if got.AccessToken != "old" {
			t.Errorf("AccessToken = %q, want old", got.AccessToken)
		}
		if ts.IsExpired() {
			t.Error("IsExpired() = true for a token valid for an hour")
		}
		if refreshes != 0 {
			t.Errorf("refreshes = %d, want 0", refreshes)
		}
	})

	t.Run("expiring token is refreshed and persisted", func(t *testing.T) {
		tok := &oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(30 * time.Second)}
		var saved *oauth2.Token
		ts := NewTokenSource(context.Background(), cfg, tok, func(nt *oauth2.Token) error {
			saved = nt
			return nil
		})

		if !ts.IsExpired() {
			t.Error("IsExpired() = false for a token expiring in 30s")
		}

		got, err := ts.Token()
		if err != nil {
			t.Fatalf("Token() error = %v", err)
		}
		if got.AccessToken != "new-access" || got.RefreshToken != "new-refresh" {
			t.Errorf("token = %q/%q", got.AccessToken, got.RefreshToken)
		}
		if saved == nil || saved.AccessToken != "new-access" {
			t.Error("onRefresh was not called with the new token")
		}

		// second call uses the cached token
		before := refreshes
		if _, err := ts.Token(); err != nil {
			t.Fatal(err)
		}
		if refreshes != before {
			t.Errorf("refreshed again, refreshes = %d", refreshes)
		}
	})

	t.Run("persist failure is reported", func(t *testing.T) {
		tok := &oauth2.Token{AccessToken: "old", RefreshToken: "r", Expiry: time.Now().Add(-time.Minute)}
		boom := errors.New("disk full")
		ts := NewTokenSource(context.Background(), cfg, tok, func(*oauth2.Token) error { return boom })

		if _, err := ts.Token(); !errors.Is(err, boom) {
			t.Errorf("Token() error = %v, want %v", err, boom)
		}
	})
}

func TestPersistTo(t *testing.T) {
	db, err := store.OpenPath(store.MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	persist := PersistTo(db, "app")
	if err := persist(&oauth2.Token{AccessToken: "a"}); !errors.Is(err, store.ErrNoAuth) {
		t.Errorf("persist without login error = %v, want ErrNoAuth", err)
	}

	login := &AuthResult{
		Token:     &oauth2.Token{AccessToken: "a1", RefreshToken: "r1", Expiry: time.Unix(1700000000, 0)},
		AthleteID: 9,
		Scope:     "read,read_all",
	}
	if err := db.SaveAuth(login.ToStore("app")); err != nil {
		t.Fatal(err)
	}

	expiry := time.Unix(1700021600, 0)
	if err := persist(&oauth2.Token{AccessToken: "a2", RefreshToken: "r2", Expiry: expiry}); err != nil {
		t.Fatalf("persist() error = %v", err)
	}

	a, err := db.GetAuth("app")
	if err != nil {
		t.Fatal(err)
	}
	tok := TokenFromStore(a)
	if tok.AccessToken != "a2" || tok.RefreshToken != "r2" || !tok.Expiry.Equal(expiry) {
		t.Errorf("stored token = %+v", tok)
	}
	if a.AthleteID != 9 || a.Scope != "read,read_all" {
		t.Errorf("athlete/scope = %d/%q, want 9/read,read_all", a.AthleteID, a.Scope)
	}
}

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    string
	}{
		{"success", "state=s1&code=abc&scope=read,read_all", http.StatusOK, "abc", ""},
		{"state mismatch", "state=evil&code=abc", http.StatusBadRequest, "", "state mismatch"},
		{"denied", "state=s1&error=access_denied", http.StatusBadRequest, "", "access_denied"},
		{"missing code", "state=s1", http.StatusBadRequest, "", "no code"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make(chan callback, 1)
			errs := make(chan error, 1)
			h := callbackHandler("s1", results, errs)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?"+tt.query, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			if tt.wantErr != "" {
				select {
				case err := <-errs:
					if !strings.Contains(err.Error(), tt.wantErr) {
						t.Errorf("error %q should contain %q", err, tt.wantErr)
					}
				default:
					t.Error("expected an error on the channel")
				}
				return
			}

			select {
			case cb := <-results:
				if cb.code != tt.wantCode {
					t.Errorf("code = %q, want %q", cb.code, tt.wantCode)
				}
				if cb.scope != "read,read_all" {
					t.Errorf("scope = %q", cb.scope)
				}
			default:
				t.Error("expected a callback result")
			}
		})
	}
}
