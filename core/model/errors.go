package model

import "errors"

var (
	// ErrInvalidInput marks malformed or inconsistent input records.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig marks invalid scheduling parameters.
	ErrInvalidConfig = errors.New("invalid configuration")
)
