package errors

import "errors"

var (
	ErrNotFound = errors.New("company not found")

	ErrInvalidID = errors.New("invalid company identifier")
)
