package repository

import "errors"

// ErrNotFound is returned when a row lookup by identifier matches nothing.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"
