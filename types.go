package callcore

// CallState represents the remote party's reported call state,
// modeled on the ToxAV friend call states.
type CallState uint32

const (
	// CallStateNone indicates no call is active
	CallStateNone CallState = iota
	// CallStateError indicates a call error occurred
	CallStateError
	// CallStateFinished indicates the call has ended normally
	CallStateFinished
	// CallStateSendingAudio indicates the peer is sending audio
	CallStateSendingAudio
	// CallStateSendingVideo indicates the peer is sending video
	CallStateSendingVideo
	// CallStatePaused indicates the peer has paused the call
	CallStatePaused
)

// String returns a human-readable name for the call state.
func (s CallState) String() string {
	switch s {
	case CallStateNone:
		return "none"
	case CallStateError:
		return "error"
	case CallStateFinished:
		return "finished"
	case CallStateSendingAudio:
		return "sending_audio"
	case CallStateSendingVideo:
		return "sending_video"
	case CallStatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// MediaStatus describes the outcome of acquiring one media channel
// during session construction. Acquisition failures degrade the session
// rather than abort it, so callers inspect the status instead of an
// error.
type MediaStatus uint8

const (
	// MediaStatusNone indicates the channel was never requested.
	MediaStatusNone MediaStatus = iota
	// MediaStatusActive indicates the channel is acquired and forwarding.
	MediaStatusActive
	// MediaStatusFailed indicates acquisition failed and the channel is
	// non-functional for this session.
	MediaStatusFailed
)

// String returns a human-readable name for the media status.
func (s MediaStatus) String() string {
	switch s {
	case MediaStatusNone:
		return "none"
	case MediaStatusActive:
		return "active"
	case MediaStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
