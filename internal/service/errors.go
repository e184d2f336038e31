package service

import "errors"

var (
	// ErrUnsupportedFormat means the payload did not decode as one of the
	// allowed image formats. Maps to 400.
	ErrUnsupportedFormat = errors.New("file type not allowed")

	// ErrNotFound means the requested image does not exist. Maps to 404.
	ErrNotFound = errors.New("image not found")
)
