package store

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidImageData = errors.New("invalid image data")
)
