package analytics

import "errors"

var (
	// ErrInsufficientData is returned when a computation needs more
	// observations than the series provides.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrDegenerateInput is returned when the input is numerically unusable,
	// such as a flat series with zero variance where a fit is required.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrMisalignedSeries is returned when two series share too few common
	// trading dates to be compared.
	ErrMisalignedSeries = errors.New("misaligned series")
)
