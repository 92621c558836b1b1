package callcore

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FriendCall is a call session with exactly one remote party.
//
// Atop the shared Call state it owns a dedicated playback channel for the
// peer's audio, tracks the peer's reported call state, and runs the
// ring/response timeout while waiting for the peer to answer.
type FriendCall struct {
	Call

	// Dedicated playback channel for this peer, acquired at construction
	// and released exactly once at Close.
	outputChannel uint32

	// The peer's reported state, not ours. Purely observational; it
	// never drives local resource acquisition.
	state CallState

	// Lazily created on the first StartTimeout, discarded on StopTimeout.
	timeout *ringTimer

	// Ring duration; CallTimeout outside of tests.
	timeoutDuration time.Duration
}

// NewFriendCall constructs a one-to-one call session.
//
// Construction immediately subscribes to the shared audio input device
// and wires captured frames to av.SendCallAudio tagged with friendNumber.
// If videoEnabled, it additionally configures the camera if needed,
// subscribes to it, creates the owned video sink, and wires captured
// frames to av.SendCallVideo. Subscription failures on those channels
// degrade the session (observable via AudioInputStatus/VideoInputStatus)
// rather than failing construction.
//
// The dedicated playback channel is required: if it cannot be acquired,
// everything already acquired is released and an error is returned, so a
// call that never became active holds nothing.
func NewFriendCall(friendNumber uint32, videoEnabled bool, av Dispatcher, dev AudioDevice, camera VideoDevice) (*FriendCall, error) {
	if av == nil {
		return nil, ErrNilDispatcher
	}
	if dev == nil {
		return nil, ErrNilAudioDevice
	}
	if videoEnabled && camera == nil {
		return nil, ErrNilVideoDevice
	}

	logrus.WithFields(logrus.Fields{
		"function":      "NewFriendCall",
		"friend_number": friendNumber,
		"video_enabled": videoEnabled,
	}).Info("Creating friend call session")

	c := &FriendCall{
		Call:            newCall(friendNumber, videoEnabled, av, dev, camera),
		timeoutDuration: CallTimeout,
	}

	// Forwarders capture only the dispatcher and the identity.
	c.acquireAudio(func(pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
		av.SendCallAudio(friendNumber, pcm, sampleCount, channels, samplingRate)
	})
	c.acquireVideo()

	channel, err := dev.SubscribeOutput()
	if err != nil {
		// Unwind the partial construction; this session must not leak
		// the input subscriptions it already holds.
		c.Close()
		return nil, fmt.Errorf("%w for friend %d: %v", ErrOutputChannel, friendNumber, err)
	}
	c.outputChannel = channel

	logrus.WithFields(logrus.Fields{
		"function":       "NewFriendCall",
		"friend_number":  friendNumber,
		"output_channel": channel,
		"audio_status":   c.audioStatus.String(),
		"video_status":   c.videoStatus.String(),
	}).Debug("Friend call session created")

	return c, nil
}

// OutputChannel returns the peer's dedicated playback channel handle.
func (c *FriendCall) OutputChannel() uint32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.outputChannel
}

// SetOutputChannel rebinds the playback channel handle. Only meaningful
// when the controller migrates the peer to a new device channel; the
// previous handle must already have been released by the caller.
func (c *FriendCall) SetOutputChannel(channel uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputChannel = channel
}

// GetState returns the remote party's reported call state.
func (c *FriendCall) GetState() CallState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetState records the remote party's reported call state. No side
// effects; resource ownership never follows the peer's state.
func (c *FriendCall) SetState(state CallState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = state
}

// StartTimeout arms the ring/response timeout for this call.
//
// The timer is created lazily on first use and binds its fire callback to
// the dispatcher's OnCallTimeout with callID, captured independently of
// this session, which may be gone by the time it fires. Starting while
// already counting down is a no-op; the timer is never double-armed.
func (c *FriendCall) StartTimeout(callID uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeout == nil {
		// The dispatcher outlives any single call; the session may not.
		av := c.av
		c.timeout = newRingTimer(func() {
			logrus.WithFields(logrus.Fields{
				"function": "StartTimeout",
				"call_id":  callID,
			}).Info("Call response timeout fired")
			av.OnCallTimeout(callID)
		})
	}

	c.timeout.Start(c.timeoutDuration)
}

// StopTimeout cancels the ring/response timeout and discards the timer;
// it is lazily recreated on the next StartTimeout. Stopping a never-armed
// timeout is a safe no-op.
func (c *FriendCall) StopTimeout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timeout == nil {
		return
	}

	c.timeout.Stop()
	c.timeout = nil
}

// Close releases everything the session acquired: the ring timer, the
// peer's playback channel, the audio input subscription and, for video
// calls, the camera subscription and frame sink. Safe to call more than
// once; only the first call releases anything.
func (c *FriendCall) Close() {
	if !c.beginClose() {
		return
	}

	logrus.WithFields(logrus.Fields{
		"function":      "Close",
		"friend_number": c.callID,
	}).Info("Closing friend call session")

	c.StopTimeout()

	if c.outputChannel != 0 {
		c.dev.UnsubscribeOutput(c.outputChannel)
	}

	c.releaseMedia()
}
