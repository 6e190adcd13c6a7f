package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	// CallbackPort is the port for the OAuth callback server
	CallbackPort = 8089
	// AuthTimeout is how long to wait for the user to complete auth
	AuthTimeout = 5 * time.Minute
)

// callback is what the browser redirect delivers
type callback struct {
	code  string
	scope string
}

const successPage = `<!DOCTYPE html>
<html>
<head><title>Climb - Connected to Strava</title></head>
<body style="font-family: system-ui; display: flex; justify-content: center; align-items: center; height: 100vh; margin: 0;">
<div style="text-align: center;">
<h1 style="color: #F97316;">Connected!</h1>
<p>Your routes are ready. Close this window and return to the terminal.</p>
</div>
</body>
</html>`

// Authenticate runs the OAuth flow with a local callback server. The
// authorization URL is written to out for the user to open.
func Authenticate(ctx context.Context, cfg *oauth2.Config, out io.Writer) (*AuthResult, error) {
	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}

	results := make(chan callback, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, results, errs))

	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", CallbackPort))
	if err != nil {
		return nil, fmt.Errorf("starting callback server: %w", err)
	}

	server := &http.Server{Handler: mux}
	defer shutdownServer(server)

	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("server error: %w", err)
		}
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "auto"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To import routes from Strava, open this URL in your browser:")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %s\n", authURL)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Waiting for authorization...")

	var cb callback
	select {
	case cb = <-results:
	case err := <-errs:
		return nil, err
	case <-time.After(AuthTimeout):
		return nil, fmt.Errorf("authentication timeout after %v", AuthTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	token, err := cfg.Exchange(ctx, cb.code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code for token: %w", err)
	}

	return &AuthResult{
		Token:     token,
		AthleteID: ExtractAthleteID(token),
		Scope:     cb.scope,
	}, nil
}

// callbackHandler validates the redirect and forwards the code. Every
// outcome is delivered without blocking; only the first one is read.
func callbackHandler(state string, results chan<- callback, errs chan<- error) http.HandlerFunc {
	fail := func(w http.ResponseWriter, err error, msg string) {
		select {
		case errs <- err:
		default:
		}
		http.Error(w, msg, http.StatusBadRequest)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			fail(w, errors.New("state mismatch - possible CSRF attack"), "State mismatch")
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			fail(w, fmt.Errorf("auth error: %s", errMsg), "Authentication failed")
			return
		}
		code := q.Get("code")
		if code == "" {
			fail(w, errors.New("no code in callback"), "No authorization code")
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, successPage)
		select {
		case results <- callback{code: code, scope: q.Get("scope")}:
		default:
		}
	}
}

// generateState creates a random state string for CSRF protection
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownServer gracefully shuts down the HTTP server
func shutdownServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
