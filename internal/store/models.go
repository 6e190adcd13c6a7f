package store

import "time"

// Auth is the token set granted to one Strava API application. Tokens are
// keyed by client ID so switching applications in the config never reuses a
// refresh token the new application cannot redeem.
type Auth struct {
	ClientID     string
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Scope        string // e.g. "read,read_all"
}
