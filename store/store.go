// Package store holds the persistence ports consumed by the HTTP
// handlers and their MongoDB implementations.
package store

import "errors"

// ErrNotFound is returned when the target document (or an embedded
// sub-record) does not exist. Handlers map it to 404.
var ErrNotFound = errors.New("not found")
