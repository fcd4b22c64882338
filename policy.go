package dhash

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Default resize thresholds, as load factor percentages, and the smallest
// base size a table may shrink to.
const (
	DefaultGrowAt      = 70
	DefaultShrinkBelow = 10
	DefaultMinBaseSize = 50
)

// Policy decides when a table is rebuilt. Load factor is the integer
// percentage count*100/capacity and is the only signal considered.
type Policy struct {
	// GrowAt doubles the base size when an insert finds the load at or
	// above it.
	GrowAt int
	// ShrinkBelow halves the base size when a delete finds the load below it.
	ShrinkBelow int
	// MinBaseSize is the size a table is created at and the floor shrinking
	// never goes under.
	MinBaseSize int
}

// DefaultPolicy returns a grow at 70% / shrink below 10% policy with a floor
// of 50.
func DefaultPolicy() Policy {
	return Policy{
		GrowAt:      DefaultGrowAt,
		ShrinkBelow: DefaultShrinkBelow,
		MinBaseSize: DefaultMinBaseSize,
	}
}

// Validate reports every setting that could let a probe walk exhaust the
// table or the table degenerate below two buckets.
func (p Policy) Validate() error {
	var result *multierror.Error

	if p.GrowAt < 1 || p.GrowAt > 99 {
		result = multierror.Append(result, fmt.Errorf("%w: grow-at must be in [1, 99], got %d", ErrInvalidPolicy, p.GrowAt))
	}
	if p.ShrinkBelow < 0 || p.ShrinkBelow >= p.GrowAt {
		result = multierror.Append(result, fmt.Errorf("%w: shrink-below must be in [0, grow-at), got %d", ErrInvalidPolicy, p.ShrinkBelow))
	}
	if p.MinBaseSize < 2 {
		result = multierror.Append(result, fmt.Errorf("%w: min-base-size must be at least 2, got %d", ErrInvalidPolicy, p.MinBaseSize))
	}

	return result.ErrorOrNil()
}

func loadFactor(count, capacity int) int {
	return count * 100 / capacity
}

func (p Policy) shouldGrow(count, capacity int) bool {
	return loadFactor(count, capacity) >= p.GrowAt
}

func (p Policy) shouldShrink(count, capacity int) bool {
	return loadFactor(count, capacity) < p.ShrinkBelow
}

func (p Policy) grownBase(base int) int {
	return base * 2
}

// shrunkBase returns the halved base size, or false when halving would drop
// below the floor or leave the rebuilt table at or above the grow threshold.
func (p Policy) shrunkBase(base, count int) (int, bool) {
	next := base / 2
	if next < p.MinBaseSize {
		return base, false
	}
	if p.shouldGrow(count, NextPrime(next)) {
		return base, false
	}
	return next, true
}
