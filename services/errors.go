package services

import "errors"

var (
	// ErrSessionNotFound means the session does not exist or is not visible
	// to the caller; surfaced as a 404 on lookups.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionForbidden means the session exists but belongs to another
	// user; surfaced as a 403 on writes through an existing session.
	ErrSessionForbidden = errors.New("session does not belong to this user")

	// ErrInvalidSubject means the referenced subject does not exist
	ErrInvalidSubject = errors.New("invalid subject")

	// ErrInvalidPeriod means the period is outside the allowed range
	ErrInvalidPeriod = errors.New("period must be between 1 and 12")

	// ErrEmptyUpdate means a partial update carried no fields
	ErrEmptyUpdate = errors.New("no fields to update")
)
