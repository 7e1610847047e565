package repository

import "errors"

// Sentinel errors translated to HTTP statuses by the handler layer.
// Everything else coming out of a repository is a database failure and
// propagates unchanged.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)
