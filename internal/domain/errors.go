package domain

import "errors"

// Shared sentinel errors. Services wrap everything else with context via
// fmt.Errorf("...: %w", err); controllers translate sentinels into stable
// API error codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)
