package track

import (
	"errors"
	"fmt"
	"os"

	"github.com/tkrajina/gpxgo/gpx"
)

// ErrParse is matched by every error returned from the loaders
var ErrParse = errors.New("invalid GPX")

// ParseError describes why a GPX document could not be turned into samples
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parsing GPX: %s: %v", e.Reason, e.Err)
	}
	return "parsing GPX: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrParse) match any ParseError
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Sample is one trackpoint with its cumulative distance from the start of the track
type Sample struct {
	Lat       float64 // degrees
	Lon       float64 // degrees
	Elevation float64 // meters
	Distance  float64 // cumulative meters
}

// Track is a loaded route. Samples must be treated as read-only once loaded;
// the profile builder and every view share the same slice.
type Track struct {
	Name    string
	Samples []Sample
}

// TotalDistance returns the length of the track in meters
func (t *Track) TotalDistance() float64 {
	if t == nil || len(t.Samples) == 0 {
		return 0
	}
	return t.Samples[len(t.Samples)-1].Distance
}

// Load parses GPX text into a Track
func Load(gpxText string) (*Track, error) {
	return LoadBytes([]byte(gpxText))
}

// LoadFile reads and parses a GPX file
func LoadFile(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a GPX document. Only the first track is used; all of its
// segments are flattened into one point sequence.
func LoadBytes(data []byte) (*Track, error) {
	doc, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, &ParseError{Reason: "malformed document", Err: err}
	}
	if len(doc.Tracks) == 0 {
		return nil, &ParseError{Reason: "no tracks"}
	}

	trk := doc.Tracks[0]
	var points []gpx.GPXPoint
	for _, seg := range trk.Segments {
		points = append(points, seg.Points...)
	}
	if len(points) == 0 {
		return nil, &ParseError{Reason: "first track has no points"}
	}

	name := trk.Name
	if name == "" {
		name = doc.Name
	}

	return &Track{Name: name, Samples: buildSamples(points)}, nil
}

func buildSamples(points []gpx.GPXPoint) []Sample {
	samples := make([]Sample, len(points))
	known := make([]bool, len(points))

	var cumulative float64
	for i, p := range points {
		if i > 0 {
			prev := points[i-1]
			cumulative += Haversine(prev.Latitude, prev.Longitude, p.Latitude, p.Longitude)
		}
		samples[i] = Sample{Lat: p.Latitude, Lon: p.Longitude, Distance: cumulative}
		if p.Elevation.NotNull() {
			samples[i].Elevation = p.Elevation.Value()
			known[i] = true
		}
	}

	fillElevation(samples, known)
	return samples
}

// fillElevation gives points without <ele> the last known elevation, or the
// first known one for leading points.
func fillElevation(samples []Sample, known []bool) {
	first := -1
	for i, ok := range known {
		if ok {
			first = i
			break
		}
	}
	if first < 0 {
		return
	}

	last := samples[first].Elevation
	for i := range samples {
		if known[i] {
			last = samples[i].Elevation
			continue
		}
		samples[i].Elevation = last
	}
}
