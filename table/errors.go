package table

import "errors"

// ErrDuplicateKey is returned when two rows share a primary key.
var ErrDuplicateKey = errors.New("duplicate primary key")
