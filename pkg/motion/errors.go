package motion

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel errors for rejected commands. A rejected command never changes
// the robot's state.
var (
	// ErrNonFinite is returned when a distance, angle, speed or duration is NaN or
	// infinite, or when a command would move the robot past the float range.
	ErrNonFinite = errors.New("motion: argument is not a finite number")

	// ErrBadDirection is returned when SetMove or SetTurn gets an unknown direction.
	ErrBadDirection = errors.New("motion: unknown direction")
)

// checkFinite returns ErrNonFinite naming the first argument that is NaN or ±Inf.
// Arguments are passed as name, value pairs.
func checkFinite(args ...any) error {
	for i := 0; i+1 < len(args); i += 2 {
		v, _ := args[i+1].(float64)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrNonFinite, args[i], v)
		}
	}
	return nil
}
