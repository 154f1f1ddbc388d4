package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSourceUnavailable is returned when a retailer source fails to answer
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrStoreUnavailable is returned when the snapshot store cannot be reached
	ErrStoreUnavailable = errors.New("snapshot store unavailable")
)
