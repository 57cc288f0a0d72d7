package content

import "errors"

// ErrInvalidContent wraps every problem found while loading content.
var ErrInvalidContent = errors.New("invalid content")
