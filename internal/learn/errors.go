package learn

import "errors"

var (
	ErrCardNotFound    = errors.New("card not found")
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidResult   = errors.New("invalid quiz result")
)
