package export

import (
	"fmt"
	"io"
	"math"

	"github.com/gocarina/gocsv"

	"climbprofile/internal/profile"
)

// sectionRow is one CSV line of the section table
type sectionRow struct {
	Index    int     `csv:"section"`
	StartKm  float64 `csv:"start_km"`
	EndKm    float64 `csv:"end_km"`
	Altitude float64 `csv:"altitude_m"`
	Lowest   float64 `csv:"lowest_m"`
	Highest  float64 `csv:"highest_m"`
	Delta    float64 `csv:"delta_m"`
	Gradient int     `csv:"gradient_pct"`
	Class    string  `csv:"class"`
}

// WriteCSV writes one row per section. Positions are in km from the start
// of the full route so rows line up with the GPX file.
func WriteCSV(w io.Writer, cp *profile.ClimbProfile) error {
	rows := make([]*sectionRow, 0, len(cp.Sections))
	for _, sec := range cp.Sections {
		rows = append(rows, &sectionRow{
			Index:    sec.Index + 1,
			StartKm:  round(cp.Offset+sec.Start, 3),
			EndKm:    round(cp.Offset+sec.End, 3),
			Altitude: round(sec.Altitude, 1),
			Lowest:   round(sec.Lowest, 1),
			Highest:  round(sec.Highest, 1),
			Delta:    round(sec.Delta, 1),
			Gradient: sec.Gradient,
			Class:    profile.GradientClass(float64(sec.Gradient)).String(),
		})
	}

	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
