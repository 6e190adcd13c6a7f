package service

import (
	"context"
	"fmt"

	"climbprofile/internal/strava"
	"climbprofile/internal/track"
)

// RouteSource is where routes are imported from. *strava.Client implements it.
type RouteSource interface {
	GetAllRoutes(ctx context.Context, onProgress func(fetched int)) ([]strava.Route, error)
	ExportRouteGPX(ctx context.Context, routeID string) ([]byte, error)
}

// ImportProgress reports progress while listing routes
type ImportProgress struct {
	Fetched int
}

// ListRoutes fetches every saved route. Progress is sent on progress, which
// is closed when listing finishes.
func ListRoutes(ctx context.Context, src RouteSource, progress chan<- ImportProgress) ([]strava.Route, error) {
	if progress != nil {
		defer close(progress)
	}

	routes, err := src.GetAllRoutes(ctx, func(fetched int) {
		if progress == nil {
			return
		}
		select {
		case progress <- ImportProgress{Fetched: fetched}:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return routes, fmt.Errorf("listing routes: %w", err)
	}
	return routes, nil
}

// Import downloads a route as GPX and loads it like a local file
func Import(ctx context.Context, src RouteSource, routeID string) (*ProfileService, error) {
	data, err := src.ExportRouteGPX(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("downloading route %s: %w", routeID, err)
	}

	t, err := track.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading route %s: %w", routeID, err)
	}
	return NewProfileService(t), nil
}
