package model

import "errors"

// ErrMalformed marks a stored document that failed read-boundary validation.
var ErrMalformed = errors.New("malformed document")
