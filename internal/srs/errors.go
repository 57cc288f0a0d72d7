package srs

import "errors"

var (
	ErrInvalidRating = errors.New("srs: invalid rating")
	ErrInvalidParams = errors.New("srs: invalid parameters")
)
