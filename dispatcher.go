package callcore

import (
	"github.com/opd-ai/callcore/audio"
	"github.com/opd-ai/callcore/video"
)

// Dispatcher is the outbound AV sending facility the core forwards
// captured frames to, and the receiver of ring-timeout notifications.
//
// A Dispatcher must outlive every call session created against it: timer
// and frame-forwarding callbacks capture it together with the call
// identity, independently of the session object. All methods may be
// invoked from frame-delivery or timer goroutines and must not block.
type Dispatcher interface {
	// SendCallAudio transmits captured audio for a one-to-one call.
	SendCallAudio(callID uint32, pcm []int16, sampleCount int, channels uint8, samplingRate uint32)

	// SendGroupCallAudio transmits captured audio for a group call.
	SendGroupCallAudio(callID uint32, pcm []int16, sampleCount int, channels uint8, samplingRate uint32)

	// SendCallVideo transmits a captured video frame for a one-to-one call.
	SendCallVideo(callID uint32, frame *video.Frame)

	// OnCallTimeout reports that the ring/response timer for the given
	// call fired before the remote party answered.
	OnCallTimeout(callID uint32)
}

// AudioDevice is the capability surface the core needs from the shared
// audio device service. *audio.Device satisfies it.
type AudioDevice interface {
	SubscribeInput() error
	UnsubscribeInput()
	AddFrameHandler(h audio.FrameHandler) (uint64, error)
	RemoveFrameHandler(id uint64)
	SubscribeOutput() (uint32, error)
	UnsubscribeOutput(channel uint32)
}

// VideoDevice is the capability surface the core needs from the camera
// capture service. *video.Camera satisfies it.
type VideoDevice interface {
	IsConfigured() bool
	ConfigureDefault() error
	Subscribe() error
	Unsubscribe()
	AddFrameHandler(h video.FrameHandler) (uint64, error)
	RemoveFrameHandler(id uint64)
}
