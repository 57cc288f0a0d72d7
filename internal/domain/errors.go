package domain

import "errors"

var (
	ErrInvalidDifficulty = errors.New("domain: invalid difficulty")
	ErrInvalidCardType   = errors.New("domain: invalid card type")
	ErrInvalidDate       = errors.New("domain: invalid date")
)
