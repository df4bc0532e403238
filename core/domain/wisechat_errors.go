package domain

import "errors"

// Repository errors shared by the persistence adapters and the services.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
