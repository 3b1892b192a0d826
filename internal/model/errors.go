package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrSetup is returned when the run could not be prepared (bad configuration,
	// missing wordlist, no archives...). These errors abort the run before any trial.
	ErrSetup = errors.New("setup failed")
)
