package service

import (
	"fmt"

	"climbprofile/internal/profile"
	"climbprofile/internal/track"
)

// ProfileService owns one loaded track and builds climb profiles from it.
// The samples are never modified after loading, so every method is safe to
// call from several goroutines.
type ProfileService struct {
	track *track.Track
}

// NewProfileService creates a service around an already loaded track
func NewProfileService(t *track.Track) *ProfileService {
	return &ProfileService{track: t}
}

// Open loads the GPX file at path
func Open(path string) (*ProfileService, error) {
	t, err := track.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewProfileService(t), nil
}

// Track returns the loaded track. Callers must not modify its samples.
func (s *ProfileService) Track() *track.Track {
	return s.track
}

// Name returns the route name, or a fallback when the GPX has none
func (s *ProfileService) Name() string {
	if s.track.Name != "" {
		return s.track.Name
	}
	return "Unnamed route"
}

// TotalKm is the length of the whole route in kilometers
func (s *ProfileService) TotalKm() float64 {
	return s.track.TotalDistance() / MetersPerKm
}

// Profile builds the climb profile for one parameter triple
func (s *ProfileService) Profile(p profile.Params) (*profile.ClimbProfile, error) {
	cp, err := profile.Build(s.track.Samples, p)
	if err != nil {
		return nil, fmt.Errorf("building profile: %w", err)
	}
	return cp, nil
}

// Overview builds the profile of the whole route, used to draw the minimap
func (s *ProfileService) Overview(intervalMeters float64) (*profile.ClimbProfile, error) {
	p := profile.DefaultParams()
	p.IntervalMeters = intervalMeters
	return s.Profile(p)
}

// Overlay builds the gradient coloured polyline of a sub-route
func (s *ProfileService) Overlay(startKm, endKm float64) (*profile.RouteOverlay, error) {
	ov, err := profile.Overlay(s.track.Samples, startKm, endKm)
	if err != nil {
		return nil, fmt.Errorf("building route overlay: %w", err)
	}
	return ov, nil
}
