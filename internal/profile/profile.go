package profile

import (
	"errors"
	"fmt"
	"math"

	"climbprofile/internal/track"
)

// ToEnd is used as EndKm to select everything up to the end of the route
var ToEnd = math.Inf(1)

// DefaultIntervalMeters is the section length used when none is configured
const DefaultIntervalMeters = 500

// ErrEmptyRange is matched by every EmptyRangeError
var ErrEmptyRange = errors.New("empty range")

// ErrInvalidInterval is returned when the interval length is not a positive finite number
var ErrInvalidInterval = errors.New("interval length must be a positive number of meters")

// EmptyRangeError is returned when [StartKm, EndKm] selects no samples
type EmptyRangeError struct {
	StartKm float64
	EndKm   float64
}

func (e *EmptyRangeError) Error() string {
	if math.IsInf(e.EndKm, 1) {
		return fmt.Sprintf("no track points from %.2f km to the end of the route", e.StartKm)
	}
	return fmt.Sprintf("no track points between %.2f km and %.2f km", e.StartKm, e.EndKm)
}

// Is lets errors.Is(err, ErrEmptyRange) match any EmptyRangeError
func (e *EmptyRangeError) Is(target error) bool { return target == ErrEmptyRange }

// Params selects the sub-route and the section length of a profile
type Params struct {
	StartKm        float64
	EndKm          float64 // ToEnd for an open end
	IntervalMeters float64
}

// DefaultParams covers the whole route in 500 m sections
func DefaultParams() Params {
	return Params{StartKm: 0, EndKm: ToEnd, IntervalMeters: DefaultIntervalMeters}
}

// Section is one fixed-length interval of the selected sub-route
type Section struct {
	Index    int
	Start    float64 // km from the start of the sub-route
	End      float64 // km, clamped to the last sample for the final section
	Delta    float64 // meters, Climbing - Downhill
	Climbing float64 // meters
	Downhill float64 // meters, positive
	Lowest   float64 // meters
	Highest  float64 // meters
	Gradient int     // percent, rounded
	Altitude float64 // meters, elevation of the last sample in the section
	Lat      float64 // last sample in the section
	Lon      float64
	Samples  int // number of track points that fell into the section
}

// Length returns the span of the section in km
func (s Section) Length() float64 {
	return s.End - s.Start
}

// ClimbProfile is the interval-partitioned elevation summary of a sub-route
type ClimbProfile struct {
	MinElevation    float64 // meters
	MaxElevation    float64 // meters
	Distance        float64 // km, sum of section spans
	AverageGradient float64 // TotalClimbing / (Distance * 100)
	TotalClimbing   float64 // meters
	TotalDescending float64 // meters, positive
	Offset          float64 // km, position of the sub-route start within the full route
	Sections        []Section
}

// Build produces the climb profile of the samples between p.StartKm and p.EndKm.
// The samples are never modified, so one loaded track can serve any number of
// concurrent Build calls.
func Build(samples []track.Sample, p Params) (*ClimbProfile, error) {
	if p.IntervalMeters <= 0 || math.IsNaN(p.IntervalMeters) || math.IsInf(p.IntervalMeters, 0) {
		return nil, ErrInvalidInterval
	}

	selected, offset, err := SelectRange(samples, p.StartKm, p.EndKm)
	if err != nil {
		return nil, err
	}

	buckets := partition(selected, p.IntervalMeters)

	prof := &ClimbProfile{
		MinElevation: math.Inf(1),
		MaxElevation: math.Inf(-1),
		Offset:       offset / 1000,
		Sections:     make([]Section, 0, len(buckets)),
	}

	total := selected[len(selected)-1].Distance
	var carry *track.Sample // last sample seen, for buckets without points
	for i, b := range buckets {
		sec := aggregate(i, b, carry)
		if len(b) > 0 {
			carry = &b[len(b)-1]
		}

		sec.Start = float64(i) * p.IntervalMeters / 1000
		spanMeters := p.IntervalMeters
		if i == len(buckets)-1 {
			spanMeters = total - float64(i)*p.IntervalMeters
		}
		sec.End = sec.Start + spanMeters/1000
		if spanMeters > 0 {
			sec.Gradient = int(math.Round(sec.Delta / spanMeters * 100))
		}

		prof.TotalClimbing += sec.Climbing
		prof.TotalDescending += sec.Downhill
		prof.MinElevation = math.Min(prof.MinElevation, sec.Lowest)
		prof.MaxElevation = math.Max(prof.MaxElevation, sec.Highest)
		prof.Distance += sec.End - sec.Start

		prof.Sections = append(prof.Sections, sec)
	}

	if prof.Distance > 0 {
		prof.AverageGradient = prof.TotalClimbing / (prof.Distance * 100)
	}

	return prof, nil
}

// AverageGradientPercent is AverageGradient scaled to a percentage for
// display: climbing per 100 m of distance.
func (cp *ClimbProfile) AverageGradientPercent() float64 {
	return cp.AverageGradient * 10
}

// SelectRange returns a copy of the samples whose distance lies in
// [startKm, endKm], re-based so the first selected sample is at distance 0,
// together with the original distance of that first sample in meters.
func SelectRange(samples []track.Sample, startKm, endKm float64) ([]track.Sample, float64, error) {
	startDistance := startKm * 1000
	endDistance := endKm * 1000
	if math.IsInf(endKm, 1) && len(samples) > 0 {
		endDistance = samples[len(samples)-1].Distance
	}

	var selected []track.Sample
	for _, s := range samples {
		if s.Distance >= startDistance && s.Distance <= endDistance {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return nil, 0, &EmptyRangeError{StartKm: startKm, EndKm: endKm}
	}

	offset := selected[0].Distance
	for i := range selected {
		selected[i].Distance -= offset
	}

	return selected, offset, nil
}

// partition splits re-based samples into buckets of intervalMeters. Buckets are
// indexed by position, so iteration order is the distance order. A final sample
// lying exactly on a bucket boundary closes the previous bucket rather than
// opening an empty one.
func partition(samples []track.Sample, intervalMeters float64) [][]track.Sample {
	total := samples[len(samples)-1].Distance
	n := int(math.Ceil(total / intervalMeters))
	if n < 1 {
		n = 1
	}

	buckets := make([][]track.Sample, n)
	for _, s := range samples {
		idx := int(math.Floor(s.Distance / intervalMeters))
		if idx >= n {
			idx = n - 1
		}
		buckets[idx] = append(buckets[idx], s)
	}
	return buckets
}

// aggregate computes the elevation statistics of one bucket. Only consecutive
// pairs inside the bucket contribute to climbing and downhill.
func aggregate(index int, bucket []track.Sample, carry *track.Sample) Section {
	sec := Section{Index: index, Samples: len(bucket)}

	if len(bucket) == 0 {
		// GPS gap longer than one interval
		if carry != nil {
			sec.Lowest = carry.Elevation
			sec.Highest = carry.Elevation
			sec.Altitude = carry.Elevation
			sec.Lat, sec.Lon = carry.Lat, carry.Lon
		}
		return sec
	}

	sec.Lowest = bucket[0].Elevation
	sec.Highest = bucket[0].Elevation
	for i, s := range bucket {
		sec.Lowest = math.Min(sec.Lowest, s.Elevation)
		sec.Highest = math.Max(sec.Highest, s.Elevation)
		if i == 0 {
			continue
		}
		step := s.Elevation - bucket[i-1].Elevation
		if step > 0 {
			sec.Climbing += step
		} else {
			sec.Downhill -= step
		}
	}

	last := bucket[len(bucket)-1]
	sec.Delta = sec.Climbing - sec.Downhill
	sec.Altitude = last.Elevation
	sec.Lat, sec.Lon = last.Lat, last.Lon

	return sec
}
