package service

import (
	"errors"

	"arc-backend/internal/repository"
)

var (
	// ErrConsentRequired means the user has not accepted the consent type the
	// operation needs.
	ErrConsentRequired = errors.New("consent required")
	ErrNotFound        = repository.ErrNotFound
	ErrInvalidInput    = errors.New("invalid input")
	ErrAlreadyDone     = errors.New("request already completed")
	// ErrNarrativeUnavailable means no LLM client is configured.
	ErrNarrativeUnavailable = errors.New("narrative generation is not configured")
)
