package services

import "errors"

var (
	// ErrInvalidNumber is returned when a phone number has no digits.
	ErrInvalidNumber = errors.New("phone number has no digits")

	// ErrMissingSession marks a request that references no session.
	ErrMissingSession = errors.New("missing session id")

	// ErrHandoffFailed wraps voice-agent platform failures.
	ErrHandoffFailed = errors.New("hand-off to voice agent failed")

	// ErrInvalidCategory is returned for categories outside the known set.
	ErrInvalidCategory = errors.New("unknown knowledge category")
)
