package collage

import "errors"

var (
	// ErrNoInput is returned when a request carries no image paths.
	ErrNoInput = errors.New("no images provided")
	// ErrInvalidPath is returned when a source path is outside the upload store.
	ErrInvalidPath = errors.New("invalid image path")
	// ErrAssetUnreadable marks a single source image that could not be read or decoded.
	ErrAssetUnreadable = errors.New("asset unreadable")
	// ErrNoValidAssets is returned when every source image is unreadable.
	ErrNoValidAssets = errors.New("no valid images to process")
	// ErrCanvasTooLarge is returned when a collage or one of its sources
	// would exceed the pixel budget.
	ErrCanvasTooLarge = errors.New("collage too large")
	// ErrEncodeFailed is returned when a collage cannot be encoded.
	ErrEncodeFailed = errors.New("encoding collage failed")
	// ErrPersistFailed is returned when an artifact cannot be written to a store.
	ErrPersistFailed = errors.New("persisting collage failed")
)
