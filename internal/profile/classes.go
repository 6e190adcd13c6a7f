package profile

// Class buckets a gradient for colouring
type Class int

// Chart shading classes
const (
	Easy Class = iota
	Moderate
	Steep
)

// Route colouring classes
const (
	Descent Class = iota + 10
	Flat
	Rolling
	Hard
	VeryHard
	Extreme
)

var classNames = map[Class]string{
	Easy:     "easy",
	Moderate: "moderate",
	Steep:    "steep",
	Descent:  "descent",
	Flat:     "flat",
	Rolling:  "rolling",
	Hard:     "hard",
	VeryHard: "very hard",
	Extreme:  "extreme",
}

func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return "unknown"
}

// GradientClass returns the chart shading class of a section gradient in percent
func GradientClass(gradient float64) Class {
	switch {
	case gradient < 5:
		return Easy
	case gradient < 10:
		return Moderate
	default:
		return Steep
	}
}

// RouteClass returns the map colouring class of a gradient in percent
func RouteClass(gradient float64) Class {
	switch {
	case gradient < -2:
		return Descent
	case gradient < 4:
		return Flat
	case gradient < 7:
		return Rolling
	case gradient < 10:
		return Hard
	case gradient < 14:
		return VeryHard
	default:
		return Extreme
	}
}
