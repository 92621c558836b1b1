package callcore

import "errors"

// Sentinel errors for call session construction.
// These errors enable reliable error classification using errors.Is().
var (
	// ErrNilDispatcher indicates no outbound AV dispatcher was supplied.
	ErrNilDispatcher = errors.New("dispatcher cannot be nil")

	// ErrNilAudioDevice indicates no audio device service was supplied.
	ErrNilAudioDevice = errors.New("audio device cannot be nil")

	// ErrNilVideoDevice indicates a video-enabled call was requested
	// without a camera service.
	ErrNilVideoDevice = errors.New("video device cannot be nil for a video call")

	// ErrOutputChannel indicates the dedicated playback channel for a
	// one-to-one call could not be acquired.
	ErrOutputChannel = errors.New("failed to acquire output channel")
)
