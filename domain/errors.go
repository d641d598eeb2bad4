package domain

import "errors"

var (
	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAuthRequired indicates the action needs a logged-in user. The
	// caller is expected to prompt for login; the action may have been
	// stored for replay.
	ErrAuthRequired = errors.New("authentication required")

	// ErrInvalidUsername indicates an empty or placeholder author username.
	ErrInvalidUsername = errors.New("invalid author username")

	// ErrEmptyComment indicates the user submitted an empty comment.
	ErrEmptyComment = errors.New("comment cannot be empty")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
)
