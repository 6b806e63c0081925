package interp

// DefaultMaxCycles is the cycle budget applied when Options.MaxCycles is
// zero.
const DefaultMaxCycles = 1_000_000

// DefaultMaxCallDepth bounds nested QUOTE dispatch when
// Options.MaxCallDepth is zero.
const DefaultMaxCallDepth = 100

// Options configures a run. The zero value is ready to use.
type Options struct {
	// MaxCycles is the maximum number of cycles a single sequence may
	// consume before the run is aborted with a *CycleLimitError. Zero means
	// DefaultMaxCycles. Each function call runs under its own budget; callee
	// cycles do not flow into the caller's counter.
	MaxCycles uint64

	// AllowNegative disables the saturation of DECREASE (and of the Minus
	// builtin) at zero. The macro expansion recipes assume non-negative
	// values, so runs meant to be compared across expansion levels should
	// leave this off.
	AllowNegative bool

	// MaxCallDepth is the maximum nesting of QUOTE-dispatched function
	// calls. Zero means DefaultMaxCallDepth.
	MaxCallDepth int
}

func (o Options) maxCycles() uint64 {
	if o.MaxCycles == 0 {
		return DefaultMaxCycles
	}
	return o.MaxCycles
}

func (o Options) maxCallDepth() int {
	if o.MaxCallDepth == 0 {
		return DefaultMaxCallDepth
	}
	return o.MaxCallDepth
}
