package domain

import "errors"

var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTimeline indicates a timeline descriptor that cannot be requested,
	// e.g. a hashtag timeline without a tag.
	ErrInvalidTimeline = errors.New("invalid timeline")

	// ErrNotStreamable indicates a timeline kind without a streaming counterpart.
	ErrNotStreamable = errors.New("timeline does not support live updates")
)
