package audio

import "errors"

// Sentinel errors for audio device operations.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrDeviceClosed indicates the device service has been shut down
	// and no new subscriptions or handlers can be acquired.
	ErrDeviceClosed = errors.New("audio device is closed")

	// ErrNilHandler indicates a nil frame handler was passed to
	// AddFrameHandler.
	ErrNilHandler = errors.New("frame handler cannot be nil")
)
