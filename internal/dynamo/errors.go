package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for solve operations.
var (
	// ErrDimensionMismatch indicates buffers whose length differs from the
	// compiled dimensionality of a problem.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and problem")

	// ErrReachedMaxStepIter indicates that no acceptable step was found within
	// the iteration budget at a single t. The driver turns it into a
	// truncated trajectory.
	ErrReachedMaxStepIter = errors.New("dynamo: reached maximum step iterations")

	// ErrUnimplementedSystem indicates a request for a coupled system of ODEs.
	ErrUnimplementedSystem = errors.New("dynamo: systems of ODEs are not implemented")

	// ErrInvalidConfig indicates integrator settings outside their valid range.
	ErrInvalidConfig = errors.New("dynamo: invalid integrator config")
)

// DimensionError reports which buffer had the wrong length.
type DimensionError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s has the wrong length: expected %d, got %d", e.What, e.Want, e.Got)
}

func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// CheckDim returns a *DimensionError when len(v) != want.
func CheckDim(what string, v []float64, want int) error {
	if len(v) != want {
		return &DimensionError{What: what, Want: want, Got: len(v)}
	}
	return nil
}
