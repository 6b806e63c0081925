package interp

import "fmt"

// CycleLimitError reports that a run exceeded its cycle budget. The partial
// frame at the point of interruption remains observable for diagnostics.
type CycleLimitError struct {
	Limit uint64
	Frame *Frame
}

func (e *CycleLimitError) Error() string {
	return fmt.Sprintf("cycle limit of %d exceeded", e.Limit)
}

// UnknownFunctionError reports a QUOTE dispatch to a name that is neither a
// user-defined function nor a builtin. The parser rejects such programs, so
// this error is defensive.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("unknown function %q", e.Name)
}

// CallDepthError reports that QUOTE dispatch nested deeper than the
// configured maximum.
type CallDepthError struct {
	Limit int
}

func (e *CallDepthError) Error() string {
	return fmt.Sprintf("function call depth exceeds %d", e.Limit)
}
