package video

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Source is the per-call video frame sink.
//
// Each video-enabled call session exclusively owns one Source. The
// receiving side pushes decoded remote frames into it and a single
// consumer (typically a renderer) registers a callback to observe them.
// A stopped source drops frames without error; a closed source drops
// frames permanently.
type Source struct {
	mu sync.Mutex

	onFrame func(*Frame)
	stopped bool
	closed  bool

	delivered uint64
	dropped   uint64
}

// NewSource creates a new frame sink, running and with no consumer.
func NewSource() *Source {
	logrus.WithFields(logrus.Fields{
		"function": "NewSource",
	}).Debug("Creating video frame sink")
	return &Source{}
}

// SetFrameCallback registers the consumer for pushed frames.
// Passing nil unregisters it.
func (s *Source) SetFrameCallback(fn func(*Frame)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFrame = fn
}

// PushFrame hands a decoded remote frame to the consumer.
//
// Frames pushed while the source is stopped or closed, invalid, or while
// no consumer is registered are dropped. The consumer callback runs under
// the source lock so Close acts as a delivery barrier.
func (s *Source) PushFrame(frame *Frame) {
	if frame == nil {
		return
	}
	if err := frame.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "PushFrame",
			"error":    err.Error(),
		}).Warn("Dropping invalid remote frame")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.stopped || s.onFrame == nil {
		s.dropped++
		return
	}

	s.delivered++
	s.onFrame(frame)
}

// Stop pauses frame delivery without discarding the consumer. Used when
// the remote side pauses video mid-call.
func (s *Source) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Restart resumes frame delivery after Stop.
func (s *Source) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.stopped = false
	}
}

// Close permanently shuts the sink down. Pushing after Close is a safe
// no-op; closing twice is a safe no-op.
func (s *Source) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.onFrame = nil

	logrus.WithFields(logrus.Fields{
		"function":  "Close",
		"delivered": s.delivered,
		"dropped":   s.dropped,
	}).Debug("Video frame sink closed")
}

// Delivered returns the number of frames handed to the consumer.
func (s *Source) Delivered() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered
}

// Dropped returns the number of frames discarded.
func (s *Source) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
