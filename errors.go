package dhash

import "errors"

var (
	// ErrProbeExhausted means a probe walk visited every bucket without
	// finding the key or a free slot. The resize policy makes this
	// unreachable, so hitting it indicates a bug.
	ErrProbeExhausted = errors.New("probe sequence exhausted")

	// ErrDestroyed is the panic value of any operation on a destroyed table.
	ErrDestroyed = errors.New("table used after Destroy")

	// ErrInvalidPolicy wraps every resize policy validation failure.
	ErrInvalidPolicy = errors.New("invalid resize policy")
)
