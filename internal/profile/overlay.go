package profile

import (
	"math"

	"climbprofile/internal/track"
)

// Bounds is the lat/lon bounding box of a set of samples
type Bounds struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// RouteSegment is one pair of consecutive samples coloured by its gradient
type RouteSegment struct {
	FromLat, FromLon float64
	ToLat, ToLon     float64
	Gradient         float64 // percent
	Class            Class
}

// RouteOverlay is the map view of a sub-route
type RouteOverlay struct {
	Bounds   Bounds
	Segments []RouteSegment
}

// Overlay builds the coloured polyline of the sub-route between startKm and
// endKm from the already loaded samples, reusing their cumulative distances.
func Overlay(samples []track.Sample, startKm, endKm float64) (*RouteOverlay, error) {
	selected, _, err := SelectRange(samples, startKm, endKm)
	if err != nil {
		return nil, err
	}

	ov := &RouteOverlay{
		Bounds: Bounds{
			MinLat: math.Inf(1), MinLon: math.Inf(1),
			MaxLat: math.Inf(-1), MaxLon: math.Inf(-1),
		},
		Segments: make([]RouteSegment, 0, len(selected)),
	}

	for i, s := range selected {
		ov.Bounds.MinLat = math.Min(ov.Bounds.MinLat, s.Lat)
		ov.Bounds.MaxLat = math.Max(ov.Bounds.MaxLat, s.Lat)
		ov.Bounds.MinLon = math.Min(ov.Bounds.MinLon, s.Lon)
		ov.Bounds.MaxLon = math.Max(ov.Bounds.MaxLon, s.Lon)
		if i == 0 {
			continue
		}

		prev := selected[i-1]
		var gradient float64
		if dist := s.Distance - prev.Distance; dist > 0 {
			gradient = (s.Elevation - prev.Elevation) / dist * 100
		}
		ov.Segments = append(ov.Segments, RouteSegment{
			FromLat:  prev.Lat,
			FromLon:  prev.Lon,
			ToLat:    s.Lat,
			ToLon:    s.Lon,
			Gradient: gradient,
			Class:    RouteClass(gradient),
		})
	}

	return ov, nil
}
