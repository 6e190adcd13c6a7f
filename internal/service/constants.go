package service

const (
	// MinSpanKm is the narrowest range the selection can be squeezed to
	MinSpanKm = 0.1

	// DefaultStepKm is how far MoveStart/MoveEnd travel when no step is configured
	DefaultStepKm = 0.5

	// MetersPerKm for unit conversions
	MetersPerKm = 1000.0
)
