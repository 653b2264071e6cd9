package services

import "errors"

// Report service errors
var (
	// Upload errors
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyUpload       = errors.New("upload is empty")

	// Export errors
	ErrUnknownArtifact    = errors.New("unknown artifact")
	ErrSectionUnavailable = errors.New("report section unavailable")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)
