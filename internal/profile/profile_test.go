package profile

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"climbprofile/internal/track"
)

// line builds samples along a meridian at the given distances (m) and elevations (m)
func line(dist, ele []float64) []track.Sample {
	samples := make([]track.Sample, len(dist))
	for i := range dist {
		samples[i] = track.Sample{
			Lat:       45 + dist[i]/111_195,
			Lon:       7,
			Elevation: ele[i],
			Distance:  dist[i],
		}
	}
	return samples
}

func threePoints() []track.Sample {
	return line([]float64{0, 500, 1000}, []float64{100, 150, 120})
}

func TestBuildSingleInterval(t *testing.T) {
	samples := threePoints()

	got, err := Build(samples, Params{StartKm: 0, EndKm: 1, IntervalMeters: 1000})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := &ClimbProfile{
		MinElevation:    100,
		MaxElevation:    150,
		Distance:        1,
		AverageGradient: 0.5,
		TotalClimbing:   50,
		TotalDescending: 30,
		Offset:          0,
		Sections: []Section{{
			Index:    0,
			Start:    0,
			End:      1,
			Delta:    20,
			Climbing: 50,
			Downhill: 30,
			Lowest:   100,
			Highest:  150,
			Gradient: 2,
			Altitude: 120,
			Lat:      samples[2].Lat,
			Lon:      7,
			Samples:  3,
		}},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}

	// 50 m of climbing over 1 km
	if pct := got.AverageGradientPercent(); math.Abs(pct-5) > 1e-9 {
		t.Errorf("AverageGradientPercent() = %v, want 5", pct)
	}
}

func TestBuildRebasesSelection(t *testing.T) {
	samples := threePoints()

	got, err := Build(samples, Params{StartKm: 0.5, EndKm: 1, IntervalMeters: 1000})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got.Offset != 0.5 {
		t.Errorf("Offset = %v, want 0.5", got.Offset)
	}
	if got.Distance != 0.5 {
		t.Errorf("Distance = %v, want 0.5", got.Distance)
	}
	if len(got.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(got.Sections))
	}

	sec := got.Sections[0]
	if sec.Start != 0 || sec.End != 0.5 {
		t.Errorf("section span = [%v, %v], want [0, 0.5]", sec.Start, sec.End)
	}
	if sec.Delta != -30 {
		t.Errorf("Delta = %v, want -30", sec.Delta)
	}
	if sec.Gradient != -6 {
		t.Errorf("Gradient = %v, want -6", sec.Gradient)
	}
	if got.TotalClimbing != 0 || got.TotalDescending != 30 {
		t.Errorf("climbing/descending = %v/%v, want 0/30", got.TotalClimbing, got.TotalDescending)
	}
	if got.AverageGradient != 0 {
		t.Errorf("AverageGradient = %v, want 0", got.AverageGradient)
	}
}

func TestBuildLeavesSamplesUntouched(t *testing.T) {
	samples := threePoints()
	before := append([]track.Sample(nil), samples...)

	if _, err := Build(samples, Params{StartKm: 0.5, EndKm: ToEnd, IntervalMeters: 250}); err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if diff := cmp.Diff(before, samples); diff != "" {
		t.Errorf("Build() mutated samples (-before +after):\n%s", diff)
	}
}

func TestBuildFinalPartialSection(t *testing.T) {
	samples := line([]float64{0, 500, 1000, 1500}, []float64{100, 110, 130, 140})

	got, err := Build(samples, Params{StartKm: 0, EndKm: ToEnd, IntervalMeters: 1000})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(got.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(got.Sections))
	}

	first, last := got.Sections[0], got.Sections[1]
	if first.Start != 0 || first.End != 1 {
		t.Errorf("first span = [%v, %v], want [0, 1]", first.Start, first.End)
	}
	if first.Gradient != 1 {
		t.Errorf("first Gradient = %v, want 1", first.Gradient)
	}
	if last.Start != 1 || last.End != 1.5 {
		t.Errorf("last span = [%v, %v], want [1, 1.5]", last.Start, last.End)
	}
	// 10 m over the actual 500 m, not the nominal 1000 m
	if last.Gradient != 2 {
		t.Errorf("last Gradient = %v, want 2", last.Gradient)
	}
	if got.Distance != 1.5 {
		t.Errorf("Distance = %v, want 1.5", got.Distance)
	}
}

func TestBuildEmptyRange(t *testing.T) {
	samples := threePoints()

	tests := []struct {
		name   string
		params Params
	}{
		{"start beyond end of route", Params{StartKm: 2, EndKm: 3, IntervalMeters: 1000}},
		{"start beyond end of route, open end", Params{StartKm: 1.2, EndKm: ToEnd, IntervalMeters: 1000}},
		{"start after end", Params{StartKm: 0.8, EndKm: 0.2, IntervalMeters: 1000}},
		{"between two points", Params{StartKm: 0.6, EndKm: 0.9, IntervalMeters: 1000}},
		{"before the route", Params{StartKm: -2, EndKm: -1, IntervalMeters: 1000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(samples, tt.params)
			if got != nil {
				t.Errorf("Build() = %+v, want nil", got)
			}
			if !errors.Is(err, ErrEmptyRange) {
				t.Fatalf("Build() error = %v, want ErrEmptyRange", err)
			}
			var ere *EmptyRangeError
			if !errors.As(err, &ere) {
				t.Fatalf("error %T is not *EmptyRangeError", err)
			}
			if ere.StartKm != tt.params.StartKm || ere.EndKm != tt.params.EndKm {
				t.Errorf("EmptyRangeError = %+v, want range %v-%v", ere, tt.params.StartKm, tt.params.EndKm)
			}
		})
	}

	if _, err := Build(nil, DefaultParams()); !errors.Is(err, ErrEmptyRange) {
		t.Errorf("Build(nil) error = %v, want ErrEmptyRange", err)
	}
}

func TestBuildInvalidInterval(t *testing.T) {
	for _, interval := range []float64{0, -100, math.NaN(), math.Inf(1)} {
		_, err := Build(threePoints(), Params{StartKm: 0, EndKm: ToEnd, IntervalMeters: interval})
		if !errors.Is(err, ErrInvalidInterval) {
			t.Errorf("Build(interval=%v) error = %v, want ErrInvalidInterval", interval, err)
		}
	}
}

func TestBuildSinglePoint(t *testing.T) {
	got, err := Build(threePoints(), Params{StartKm: 0.5, EndKm: 0.5, IntervalMeters: 500})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got.Distance != 0 {
		t.Errorf("Distance = %v, want 0", got.Distance)
	}
	if got.AverageGradient != 0 || math.IsNaN(got.AverageGradient) {
		t.Errorf("AverageGradient = %v, want 0", got.AverageGradient)
	}
	if len(got.Sections) != 1 {
		t.Fatalf("len(Sections) = %d, want 1", len(got.Sections))
	}
	sec := got.Sections[0]
	if sec.Delta != 0 || sec.Gradient != 0 {
		t.Errorf("Delta/Gradient = %v/%v, want 0/0", sec.Delta, sec.Gradient)
	}
	if sec.Lowest != 150 || sec.Highest != 150 {
		t.Errorf("Lowest/Highest = %v/%v, want 150/150", sec.Lowest, sec.Highest)
	}
}

func TestBuildSingleSampleSection(t *testing.T) {
	// nothing between 250 m and 750 m
	samples := line([]float64{0, 100, 200, 900, 1000}, []float64{10, 20, 15, 60, 55})

	got, err := Build(samples, Params{StartKm: 0, EndKm: ToEnd, IntervalMeters: 250})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(got.Sections) != 4 {
		t.Fatalf("len(Sections) = %d, want 4", len(got.Sections))
	}
	// 900 and 1000 share the final section: 1000 lies on the boundary
	want := []struct {
		samples  int
		delta    float64
		altitude float64
	}{
		{3, 5, 15},  // 0, 100, 200
		{0, 0, 15},  // gap
		{0, 0, 15},  // gap
		{2, -5, 55}, // 900, 1000
	}
	for i, w := range want {
		sec := got.Sections[i]
		if sec.Samples != w.samples || sec.Delta != w.delta || sec.Altitude != w.altitude {
			t.Errorf("Sections[%d] = samples %d delta %v altitude %v, want %d %v %v",
				i, sec.Samples, sec.Delta, sec.Altitude, w.samples, w.delta, w.altitude)
		}
	}
}

func TestBuildBoundaryOvershoot(t *testing.T) {
	// the last sample lies a fraction of a millimetre past 1000 m, as summed
	// haversine distances often do, so it opens a second section of its own
	samples := line([]float64{0, 500, 1000.0000001}, []float64{100, 150, 120})

	got, err := Build(samples, Params{StartKm: 0, EndKm: ToEnd, IntervalMeters: 1000})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(got.Sections) != 2 {
		t.Fatalf("len(Sections) = %d, want 2", len(got.Sections))
	}

	first, last := got.Sections[0], got.Sections[1]
	if first.Samples != 2 || first.Climbing != 50 || first.Gradient != 5 {
		t.Errorf("first = samples %d climbing %v gradient %v, want 2 50 5",
			first.Samples, first.Climbing, first.Gradient)
	}
	if last.Samples != 1 || last.Delta != 0 || last.Gradient != 0 || last.Altitude != 120 {
		t.Errorf("last = samples %d delta %v gradient %v altitude %v, want 1 0 0 120",
			last.Samples, last.Delta, last.Gradient, last.Altitude)
	}
	if span := last.Length(); span <= 0 || span > 1e-9 {
		t.Errorf("last Length() = %v km, want a sliver above 0", span)
	}

	// the 150 -> 120 m step crosses the boundary and counts for neither section
	if got.TotalClimbing != 50 || got.TotalDescending != 0 {
		t.Errorf("totals = %v up %v down, want 50 up 0 down", got.TotalClimbing, got.TotalDescending)
	}
	if math.Abs(got.Distance-1) > 1e-9 {
		t.Errorf("Distance = %v, want ~1", got.Distance)
	}
}

func TestBuildGapSections(t *testing.T) {
	samples := line([]float64{0, 2500}, []float64{100, 200})

	got, err := Build(samples, Params{StartKm: 0, EndKm: ToEnd, IntervalMeters: 1000})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(got.Sections) != 3 {
		t.Fatalf("len(Sections) = %d, want 3", len(got.Sections))
	}

	gap := got.Sections[1]
	if gap.Samples != 0 {
		t.Errorf("gap Samples = %d, want 0", gap.Samples)
	}
	if gap.Lowest != 100 || gap.Highest != 100 || gap.Altitude != 100 {
		t.Errorf("gap elevations = %v/%v/%v, want carried 100", gap.Lowest, gap.Highest, gap.Altitude)
	}
	if gap.Lat != samples[0].Lat {
		t.Errorf("gap Lat = %v, want %v", gap.Lat, samples[0].Lat)
	}

	// single-sample sections contribute nothing
	if got.TotalClimbing != 0 {
		t.Errorf("TotalClimbing = %v, want 0", got.TotalClimbing)
	}
	if got.MinElevation != 100 || got.MaxElevation != 200 {
		t.Errorf("Min/MaxElevation = %v/%v, want 100/200", got.MinElevation, got.MaxElevation)
	}
	if last := got.Sections[2]; last.Start != 2 || last.End != 2.5 {
		t.Errorf("last span = [%v, %v], want [2, 2.5]", last.Start, last.End)
	}
}

// rollingRoute returns a deterministic hilly route of n samples with uneven spacing
func rollingRoute(n int) []track.Sample {
	dist := make([]float64, n)
	ele := make([]float64, n)
	var d float64
	for i := 0; i < n; i++ {
		dist[i] = d
		ele[i] = 400 + 80*math.Sin(float64(i)/9) + 15*math.Cos(float64(i)/2.3)
		d += 7 + float64((i*37)%53)
	}
	return line(dist, ele)
}

func TestBuildInvariants(t *testing.T) {
	samples := rollingRoute(600)
	totalKm := samples[len(samples)-1].Distance / 1000

	tests := []Params{
		{StartKm: 0, EndKm: ToEnd, IntervalMeters: 100},
		{StartKm: 0, EndKm: ToEnd, IntervalMeters: 333},
		{StartKm: 1.25, EndKm: 9.5, IntervalMeters: 500},
		{StartKm: 3, EndKm: ToEnd, IntervalMeters: 1000},
		{StartKm: 0, EndKm: ToEnd, IntervalMeters: 1e6},
	}

	for _, p := range tests {
		got, err := Build(samples, p)
		if err != nil {
			t.Fatalf("Build(%+v) error = %v", p, err)
		}

		selected, _, err := SelectRange(samples, p.StartKm, p.EndKm)
		if err != nil {
			t.Fatalf("SelectRange(%+v) error = %v", p, err)
		}
		if selected[0].Distance != 0 {
			t.Errorf("%+v: first selected sample at %v, want 0", p, selected[0].Distance)
		}
		subKm := selected[len(selected)-1].Distance / 1000
		if subKm > totalKm {
			t.Errorf("%+v: sub-route %v km longer than route %v km", p, subKm, totalKm)
		}

		if got.Sections[0].Start != 0 {
			t.Errorf("%+v: first section starts at %v", p, got.Sections[0].Start)
		}
		var span, climbing, downhill float64
		points := 0
		for i, sec := range got.Sections {
			if sec.Index != i {
				t.Errorf("%+v: Sections[%d].Index = %d", p, i, sec.Index)
			}
			if i > 0 && math.Abs(sec.Start-got.Sections[i-1].End) > 1e-9 {
				t.Errorf("%+v: gap/overlap between sections %d and %d", p, i-1, i)
			}
			if sec.End < sec.Start {
				t.Errorf("%+v: Sections[%d] ends before it starts", p, i)
			}
			if sec.Lowest > sec.Highest {
				t.Errorf("%+v: Sections[%d] lowest > highest", p, i)
			}
			span += sec.End - sec.Start
			climbing += sec.Climbing
			downhill += sec.Downhill
			points += sec.Samples
		}

		if math.Abs(span-got.Distance) > 1e-9 {
			t.Errorf("%+v: Distance = %v, sum of spans = %v", p, got.Distance, span)
		}
		if math.Abs(got.Distance-subKm) > 1e-9 {
			t.Errorf("%+v: Distance = %v, want sub-route length %v", p, got.Distance, subKm)
		}
		if points != len(selected) {
			t.Errorf("%+v: sections hold %d samples, want %d", p, points, len(selected))
		}
		if got.TotalClimbing < 0 || got.TotalDescending < 0 {
			t.Errorf("%+v: negative totals %v/%v", p, got.TotalClimbing, got.TotalDescending)
		}
		if math.Abs(climbing-got.TotalClimbing) > 1e-9 || math.Abs(downhill-got.TotalDescending) > 1e-9 {
			t.Errorf("%+v: totals do not match section sums", p)
		}
		if got.MinElevation > got.MaxElevation {
			t.Errorf("%+v: MinElevation %v > MaxElevation %v", p, got.MinElevation, got.MaxElevation)
		}
		wantAvg := got.TotalClimbing / (got.Distance * 100)
		if got.AverageGradient != wantAvg {
			t.Errorf("%+v: AverageGradient = %v, want %v", p, got.AverageGradient, wantAvg)
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	samples := rollingRoute(300)
	p := Params{StartKm: 0.7, EndKm: 6, IntervalMeters: 250}

	first, err := Build(samples, p)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	second, err := Build(samples, p)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Build() not idempotent (-first +second):\n%s", diff)
	}

	// results do not alias each other
	second.Sections[0].Delta = 12345
	if first.Sections[0].Delta == 12345 {
		t.Error("profiles share section storage")
	}
}

func TestBuildConcurrent(t *testing.T) {
	samples := rollingRoute(400)
	want, err := Build(samples, DefaultParams())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// interleave other selections on the same samples
			if _, err := Build(samples, Params{StartKm: float64(i) / 4, EndKm: ToEnd, IntervalMeters: 100}); err != nil {
				errs <- err.Error()
				return
			}
			got, err := Build(samples, DefaultParams())
			if err != nil {
				errs <- err.Error()
				return
			}
			if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
				errs <- diff
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}

func TestSelectRangeOpenEnd(t *testing.T) {
	samples := threePoints()

	selected, offset, err := SelectRange(samples, 0, ToEnd)
	if err != nil {
		t.Fatalf("SelectRange() error = %v", err)
	}
	if len(selected) != 3 || offset != 0 {
		t.Errorf("SelectRange() = %d samples, offset %v; want 3, 0", len(selected), offset)
	}

	selected, offset, err = SelectRange(samples, 0.25, ToEnd)
	if err != nil {
		t.Fatalf("SelectRange() error = %v", err)
	}
	if len(selected) != 2 || offset != 500 {
		t.Errorf("SelectRange() = %d samples, offset %v; want 2, 500", len(selected), offset)
	}
	if selected[0].Distance != 0 || selected[1].Distance != 500 {
		t.Errorf("re-based distances = %v, %v; want 0, 500", selected[0].Distance, selected[1].Distance)
	}
}

func TestSectionLength(t *testing.T) {
	s := Section{Start: 1.5, End: 2}
	if s.Length() != 0.5 {
		t.Errorf("Length() = %v, want 0.5", s.Length())
	}
}

func TestEmptyRangeErrorMessage(t *testing.T) {
	tests := []struct {
		err  *EmptyRangeError
		want string
	}{
		{&EmptyRangeError{StartKm: 2, EndKm: 3}, "no track points between 2.00 km and 3.00 km"},
		{&EmptyRangeError{StartKm: 4, EndKm: ToEnd}, "no track points from 4.00 km to the end of the route"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
