package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnknownLevel    = errors.New("unknown proficiency level")
	ErrEmptyVocabulary = errors.New("no vocabulary words found")
	ErrInvalidColumn   = errors.New("invalid column number")
	ErrEmptyGeneration = errors.New("generated text is empty")
	ErrMalformedReply  = errors.New("could not parse model reply")
	ErrSessionBusy     = errors.New("session is locked by another operation")
	ErrQueueFull       = errors.New("generation queue is full")
	ErrProviderDown    = errors.New("generation provider unavailable")

	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
)
