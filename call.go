package callcore

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/callcore/audio"
	"github.com/opd-ai/callcore/video"
)

// Call is the state shared by every call session variant.
//
// The call identity could be a friend number or a group number; it must
// uniquely identify the call and is immutable for the session's lifetime.
// A session holds its audio input subscription from construction until
// Close: never re-acquired, never double-released. When video is
// enabled, exactly one camera subscription and one video sink exist for
// the session's lifetime; otherwise neither exists.
//
// Call-control code owns all mutation. Frame delivery from the devices is
// a concurrent producer, but its handlers capture only the dispatcher and
// the call identity, so they never race with session state.
type Call struct {
	callID uint32
	av     Dispatcher
	dev    AudioDevice
	camera VideoDevice

	mu sync.RWMutex

	// True once the session is actually participating, not merely
	// ringing or paused.
	active bool

	muteMicrophone bool
	muteSpeaker    bool

	videoEnabled bool

	// True when the video device is logically closed (bitrate forced to
	// zero) while videoEnabled may still be true.
	nullVideoBitrate bool

	closed bool

	audioStatus MediaStatus
	videoStatus MediaStatus

	audioSubscribed bool
	videoSubscribed bool
	audioHandler    uint64
	videoHandler    uint64

	videoSource *video.Source
}

// newCall initializes the shared session state. Device acquisition
// happens afterwards via acquireAudio and acquireVideo so that each
// variant can bind its own forwarding handler.
func newCall(callID uint32, videoEnabled bool, av Dispatcher, dev AudioDevice, camera VideoDevice) Call {
	return Call{
		callID:       callID,
		av:           av,
		dev:          dev,
		camera:       camera,
		videoEnabled: videoEnabled,
	}
}

// acquireAudio subscribes to the shared audio input device and registers
// the variant's forwarding handler.
//
// Failures are logged and degrade the session to MediaStatusFailed for
// the audio channel rather than aborting construction; a call should not
// die merely because no microphone is present.
func (c *Call) acquireAudio(forward audio.FrameHandler) {
	if err := c.dev.SubscribeInput(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "acquireAudio",
			"call_id":  c.callID,
			"error":    err.Error(),
		}).Error("Audio input subscription failed")
		c.audioStatus = MediaStatusFailed
		return
	}
	c.audioSubscribed = true

	id, err := c.dev.AddFrameHandler(forward)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "acquireAudio",
			"call_id":  c.callID,
			"error":    err.Error(),
		}).Error("Audio input connection not working")
		c.audioStatus = MediaStatusFailed
		return
	}

	c.audioHandler = id
	c.audioStatus = MediaStatusActive
}

// acquireVideo sets up the capture device and the owned frame sink for a
// video-enabled session. It is a no-op when video is disabled.
//
// The sink is created unconditionally for video-enabled sessions, before
// any capture setup, so the receiving side always has somewhere to push
// remote frames even when the local camera is unavailable.
func (c *Call) acquireVideo() {
	if !c.videoEnabled {
		return
	}

	c.videoSource = video.NewSource()

	if !c.camera.IsConfigured() {
		if err := c.camera.ConfigureDefault(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "acquireVideo",
				"call_id":  c.callID,
				"error":    err.Error(),
			}).Error("Camera default configuration failed")
			c.videoStatus = MediaStatusFailed
			return
		}
	}

	if err := c.camera.Subscribe(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "acquireVideo",
			"call_id":  c.callID,
			"error":    err.Error(),
		}).Error("Camera subscription failed")
		c.videoStatus = MediaStatusFailed
		return
	}
	c.videoSubscribed = true

	// Capture only plain data; the session may be torn down while a
	// captured frame is still in flight.
	av := c.av
	callID := c.callID
	id, err := c.camera.AddFrameHandler(func(frame *video.Frame) {
		av.SendCallVideo(callID, frame)
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "acquireVideo",
			"call_id":  c.callID,
			"error":    err.Error(),
		}).Error("Video connection not working")
		c.videoStatus = MediaStatusFailed
		return
	}

	c.videoHandler = id
	c.videoStatus = MediaStatusActive
}

// beginClose marks the session closed. It returns false if the session
// was already closed, making every variant's Close idempotent.
func (c *Call) beginClose() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		logrus.WithFields(logrus.Fields{
			"function": "beginClose",
			"call_id":  c.callID,
		}).Debug("Call already closed")
		return false
	}
	c.closed = true
	return true
}

// releaseMedia releases everything acquireAudio and acquireVideo
// acquired. Handler removal comes first: the device services guarantee
// no delivery is in flight once removal returns, so the subscriptions
// can be released without racing the capture goroutines.
//
// Only called from a variant's Close after beginClose succeeded, so each
// resource is released exactly once.
func (c *Call) releaseMedia() {
	if c.audioHandler != 0 {
		c.dev.RemoveFrameHandler(c.audioHandler)
	}
	if c.audioSubscribed {
		c.dev.UnsubscribeInput()
	}

	// Keyed off what was actually acquired, not the mutable videoEnabled
	// flag, so a mid-call flag change can never leak the camera.
	if c.videoHandler != 0 {
		c.camera.RemoveFrameHandler(c.videoHandler)
	}
	if c.videoSubscribed {
		c.camera.Unsubscribe()
	}
	if c.videoSource != nil {
		c.videoSource.Close()
	}

	logrus.WithFields(logrus.Fields{
		"function": "releaseMedia",
		"call_id":  c.callID,
	}).Debug("Call media resources released")
}

// CallID returns the call's immutable identity.
func (c *Call) CallID() uint32 {
	return c.callID
}

// IsActive reports whether the session is actually participating.
func (c *Call) IsActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// SetActive updates the participation flag.
func (c *Call) SetActive(value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = value
}

// GetMuteSpeaker reports the local speaker mute flag.
func (c *Call) GetMuteSpeaker() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.muteSpeaker
}

// SetMuteSpeaker updates the local speaker mute flag. This is a UI-level
// flag only; it does not touch subscription state.
func (c *Call) SetMuteSpeaker(value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muteSpeaker = value
}

// GetMuteMicrophone reports the local microphone mute flag.
func (c *Call) GetMuteMicrophone() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.muteMicrophone
}

// SetMuteMicrophone updates the local microphone mute flag. This is a
// UI-level flag only; it does not touch subscription state.
func (c *Call) SetMuteMicrophone(value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muteMicrophone = value
}

// GetVideoEnabled reports whether this session sends and receives video.
func (c *Call) GetVideoEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.videoEnabled
}

// SetVideoEnabled updates the video flag. Device acquisition happens
// only at construction; this mutator stores the flag and nothing else.
func (c *Call) SetVideoEnabled(value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.videoEnabled = value
}

// GetNullVideoBitrate reports whether the video bitrate is forced to
// zero while the video device is logically closed.
func (c *Call) GetNullVideoBitrate() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nullVideoBitrate
}

// SetNullVideoBitrate updates the zero-bitrate flag.
func (c *Call) SetNullVideoBitrate(value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nullVideoBitrate = value
}

// GetVideoSource returns the session-owned video frame sink, or nil for
// sessions constructed without video.
func (c *Call) GetVideoSource() *video.Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.videoSource
}

// AudioInputStatus reports how audio input acquisition went at
// construction.
func (c *Call) AudioInputStatus() MediaStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.audioStatus
}

// VideoInputStatus reports how video capture acquisition went at
// construction. MediaStatusNone for audio-only sessions.
func (c *Call) VideoInputStatus() MediaStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.videoStatus
}
