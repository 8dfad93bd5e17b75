// Package constants provides shared constants used across the codebase.
package constants

import "time"

// File upload constants
const (
	// MaxUploadSize is the maximum multipart upload size in bytes (100MB)
	MaxUploadSize = 100 << 20

	// MaxUploadFiles is the maximum number of images accepted by one upload request
	MaxUploadFiles = 100

	// UploadFormField is the multipart field that carries the images
	UploadFormField = "images"
)

// Request body constants
const (
	// MaxBuildRequestSize is the maximum size of a collage build JSON body
	MaxBuildRequestSize = 1 << 20

	// RequestTimeout bounds a single HTTP request, including collage builds
	RequestTimeout = 5 * time.Minute
)
