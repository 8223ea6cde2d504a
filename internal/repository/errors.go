package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrCorrupted signals a stored value that can no longer be decoded.
	ErrCorrupted = errors.New("repository: corrupted entry")
)
