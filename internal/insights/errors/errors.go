package errors

import "errors"

var ErrQueryFailed = errors.New("aggregate query failed")
