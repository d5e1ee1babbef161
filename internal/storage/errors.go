package storage

import "errors"

var ErrNotFound = errors.New("resource not found")
var ErrConflict = errors.New("resource conflict (e.g., duplicate key)")

// ErrReferenced is returned when a row cannot be removed because other rows point at it.
var ErrReferenced = errors.New("resource is still referenced")
