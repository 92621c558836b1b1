package video

import "errors"

// Sentinel errors for video device operations.
var (
	// ErrCameraClosed indicates the camera service has been shut down.
	ErrCameraClosed = errors.New("camera is closed")

	// ErrCameraNotConfigured indicates Subscribe was called before any
	// capture configuration was applied.
	ErrCameraNotConfigured = errors.New("camera is not configured")

	// ErrNilHandler indicates a nil frame handler was passed to
	// AddFrameHandler.
	ErrNilHandler = errors.New("frame handler cannot be nil")

	// ErrInvalidFrame indicates a frame failed dimension or plane
	// validation.
	ErrInvalidFrame = errors.New("invalid video frame")
)
