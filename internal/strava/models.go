package strava

import (
	"fmt"
	"time"
)

// Route types as reported by the API
const (
	RouteTypeRide = 1
	RouteTypeRun  = 2
	RouteTypeWalk = 3
)

// Route represents a saved Strava route from the API
type Route struct {
	ID            int64     `json:"id"`
	IDStr         string    `json:"id_str"` // route IDs can exceed float precision, prefer this one
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Distance      float64   `json:"distance"`       // meters
	ElevationGain float64   `json:"elevation_gain"` // meters
	Type          int       `json:"type"`
	SubType       int       `json:"sub_type"`
	Private       bool      `json:"private"`
	Starred       bool      `json:"starred"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Athlete       Athlete   `json:"athlete"`
}

// Athlete represents a Strava athlete (minimal info in route response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Key returns the identifier used in API paths
func (r Route) Key() string {
	if r.IDStr != "" {
		return r.IDStr
	}
	return formatID(r.ID)
}

// TypeName returns a human readable route type
func (r Route) TypeName() string {
	switch r.Type {
	case RouteTypeRide:
		return "Ride"
	case RouteTypeRun:
		return "Run"
	case RouteTypeWalk:
		return "Walk"
	default:
		return "Route"
	}
}

// APIError is a non-200 response from the Strava API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}
