package store

import "errors"

// Sentinel errors returned by every backend.
var (
	ErrNotFound      = errors.New("restaurant not found")
	ErrAlreadyExists = errors.New("restaurant already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrClosed        = errors.New("store is closed")
)
