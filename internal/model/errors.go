package model

import "errors"

var (
	// ErrInvalidArgument marks a contract violation at a component boundary:
	// non-positive horizon, implausible input, malformed configuration.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInsufficientData marks empty or degenerate balance input.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUndefinedRatio marks a ratio whose denominator is zero.
	ErrUndefinedRatio = errors.New("undefined ratio")
)
