package service

import (
	"fmt"
	"math"

	"climbprofile/internal/profile"
)

// Selection holds the parameters the user is looking at. Methods return
// adjusted copies and never produce a start past the end.
type Selection struct {
	StartKm        float64
	EndKm          float64 // profile.ToEnd for the end of the route
	IntervalMeters float64
}

// NewSelection selects the whole route with the given interval
func NewSelection(intervalMeters float64) Selection {
	return Selection{StartKm: 0, EndKm: profile.ToEnd, IntervalMeters: intervalMeters}
}

// Params converts the selection for the profile builder
func (s Selection) Params() profile.Params {
	return profile.Params{StartKm: s.StartKm, EndKm: s.EndKm, IntervalMeters: s.IntervalMeters}
}

// OpenEnded reports whether the selection runs to the end of the route
func (s Selection) OpenEnded() bool {
	return math.IsInf(s.EndKm, 1)
}

// effectiveEnd is the end in km, with an open end resolved to totalKm
func (s Selection) effectiveEnd(totalKm float64) float64 {
	return math.Min(s.EndKm, totalKm)
}

// Clamp keeps the selection inside a route of totalKm. An end at or beyond
// the route end becomes open.
func (s Selection) Clamp(totalKm float64) Selection {
	s.StartKm = clamp(s.StartKm, 0, totalKm)
	if s.EndKm >= totalKm || s.EndKm < s.StartKm {
		s.EndKm = profile.ToEnd
	}
	return s
}

// MoveStart shifts the start by deltaKm, staying before the end
func (s Selection) MoveStart(deltaKm, totalKm float64) Selection {
	s = s.Clamp(totalKm)
	hi := math.Max(0, s.effectiveEnd(totalKm)-MinSpanKm)
	s.StartKm = clamp(s.StartKm+deltaKm, 0, hi)
	return s
}

// MoveEnd shifts the end by deltaKm, staying after the start. Reaching the
// route end opens the selection.
func (s Selection) MoveEnd(deltaKm, totalKm float64) Selection {
	s = s.Clamp(totalKm)
	lo := math.Min(totalKm, s.StartKm+MinSpanKm)
	end := clamp(s.effectiveEnd(totalKm)+deltaKm, lo, totalKm)
	if end >= totalKm {
		s.EndKm = profile.ToEnd
	} else {
		s.EndKm = end
	}
	return s
}

// Reset selects the whole route again, keeping the interval
func (s Selection) Reset() Selection {
	return NewSelection(s.IntervalMeters)
}

// NextInterval moves to the next interval in choices, wrapping around. An
// interval not in the list moves to the first larger choice.
func (s Selection) NextInterval(choices []float64) Selection {
	if len(choices) == 0 {
		return s
	}
	for i, c := range choices {
		if c == s.IntervalMeters {
			s.IntervalMeters = choices[(i+1)%len(choices)]
			return s
		}
	}
	for _, c := range choices {
		if c > s.IntervalMeters {
			s.IntervalMeters = c
			return s
		}
	}
	s.IntervalMeters = choices[0]
	return s
}

// String describes the selection, e.g. "2.0 - 7.5 km every 500 m"
func (s Selection) String() string {
	end := "end"
	if !s.OpenEnded() {
		end = fmt.Sprintf("%.1f km", s.EndKm)
	}
	return fmt.Sprintf("%.1f km - %s every %.0f m", s.StartKm, end, s.IntervalMeters)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
