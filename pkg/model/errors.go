package model

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for classifying generation failures with errors.Is.
var (
	// ErrInvalidArgument is returned for an empty user ID or a non-positive count.
	ErrInvalidArgument = goerr.New("invalid argument")

	// ErrNotFound is returned when the profile store does not know the user.
	ErrNotFound = goerr.New("not found")

	// ErrUpstream is returned when the model call fails or returns no text.
	ErrUpstream = goerr.New("upstream error")
)
