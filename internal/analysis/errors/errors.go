package errors

import "errors"

var (
	ErrTaskNotFound = errors.New("analysis task not found")
	ErrInvalidName  = errors.New("company name is empty")
	ErrWriteFailed  = errors.New("analysis result write failed")
)
