package domain

import "errors"

var (
	ErrNoSession          = errors.New("no active session")
	ErrAuthRequired       = errors.New("authentication required")
	ErrEmptyTopic         = errors.New("topic is required")
	ErrInvalidContentType = errors.New("unsupported content type")
	ErrUsageLimitReached  = errors.New("monthly word limit reached")
	ErrGenerationInFlight = errors.New("a generation is already in progress")
	ErrGenerationFailed   = errors.New("generation failed")
)
