package csg

import "log"

// Epsilon is the default tolerance used for plane-side tests, vertex
// interning and widened bound overlap.
const Epsilon = 1e-10

const (
	defaultMaxSplitFactor = 64
	defaultMaxRayAttempts = 32
	defaultRaySeed        = 0x5eed
	rayPerturbation       = 1e-5
)

// Options configures a boolean operation. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	// Epsilon is the single tolerance for every predicate.
	Epsilon float64

	// MaxSplitFactor bounds triangulation growth: a solid with n faces
	// crossed c times by the other operand may grow to at most
	// n+c*MaxSplitFactor faces before the operation fails with
	// ErrSplitLimit.
	MaxSplitFactor int

	// RaySeed seeds the perturbation of classification rays that lie in a
	// face plane. The same seed always gives the same result.
	RaySeed int64

	// MaxRayAttempts bounds the number of perturbations per face.
	MaxRayAttempts int

	// Trace records split lineage in Face.Name.
	Trace bool

	// Logger receives trace output. Nil is silent.
	Logger *log.Logger
}

// DefaultOptions returns the options used by Union, Intersection and
// Difference.
func DefaultOptions() Options {
	return Options{
		Epsilon:        Epsilon,
		MaxSplitFactor: defaultMaxSplitFactor,
		RaySeed:        defaultRaySeed,
		MaxRayAttempts: defaultMaxRayAttempts,
	}
}

// normalized fills unset fields with defaults.
func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Epsilon <= 0 {
		o.Epsilon = d.Epsilon
	}
	if o.MaxSplitFactor <= 0 {
		o.MaxSplitFactor = d.MaxSplitFactor
	}
	if o.MaxRayAttempts <= 0 {
		o.MaxRayAttempts = d.MaxRayAttempts
	}
	return o
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}
