package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidMediaType   = errors.New("invalid media type")
	ErrInvalidWatchStatus = errors.New("invalid watch status")
)
