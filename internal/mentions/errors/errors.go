package errors

import "errors"

var (
	ErrQueryFailed = errors.New("mention query failed")

	ErrStoreDisabled = errors.New("mongo disabled")
)
