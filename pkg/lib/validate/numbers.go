package validate

import (
	"github.com/quotient-project/quotient/pkg/lib/math"
)

// IsGreaterThanZero checks if the provided numeric value is greater than zero.
// It returns an error built from the provided message and arguments otherwise.
func IsGreaterThanZero[T math.Number](value T, msg string, args ...any) error {
	if value <= 0 {
		return createError(msg, args...)
	}
	return nil
}

// IsGreaterOrEqualToZero checks if the provided numeric value is greater than
// or equal to zero. It returns an error built from the provided message and
// arguments otherwise.
func IsGreaterOrEqualToZero[T math.Number](value T, msg string, args ...any) error {
	if value < 0 {
		return createError(msg, args...)
	}
	return nil
}
