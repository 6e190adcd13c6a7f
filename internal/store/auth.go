package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetAuth returns the tokens stored for clientID, or ErrNoAuth
func (db *DB) GetAuth(clientID string) (*Auth, error) {
	a := Auth{ClientID: clientID}
	var expires int64
	err := db.QueryRow(
		`SELECT athlete_id, access_token, refresh_token, expires_at, scope
		 FROM strava_auth WHERE client_id = ?`, clientID,
	).Scan(&a.AthleteID, &a.AccessToken, &a.RefreshToken, &expires, &a.Scope)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrNoAuth
	case err != nil:
		return nil, fmt.Errorf("reading tokens: %w", err)
	}

	a.ExpiresAt = time.Unix(expires, 0)
	return &a, nil
}

// SaveAuth stores the result of a login, replacing earlier tokens for the
// same client ID
func (db *DB) SaveAuth(a *Auth) error {
	if a.ClientID == "" {
		return errors.New("saving tokens: missing client ID")
	}
	_, err := db.Exec(
		`INSERT OR REPLACE INTO strava_auth
		 (client_id, athlete_id, access_token, refresh_token, expires_at, scope, saved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ClientID, a.AthleteID, a.AccessToken, a.RefreshToken, a.ExpiresAt.Unix(), a.Scope, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving tokens: %w", err)
	}
	return nil
}

// UpdateTokens records a refreshed token pair. Athlete and scope are kept.
func (db *DB) UpdateTokens(clientID, accessToken, refreshToken string, expiresAt time.Time) error {
	res, err := db.Exec(
		`UPDATE strava_auth
		 SET access_token = ?, refresh_token = ?, expires_at = ?, saved_at = ?
		 WHERE client_id = ?`,
		accessToken, refreshToken, expiresAt.Unix(), time.Now().Unix(), clientID,
	)
	if err != nil {
		return fmt.Errorf("updating tokens: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNoAuth
	}
	return nil
}

// DeleteAuth forgets the tokens of clientID, forcing a new login
func (db *DB) DeleteAuth(clientID string) error {
	_, err := db.Exec(`DELETE FROM strava_auth WHERE client_id = ?`, clientID)
	return err
}
