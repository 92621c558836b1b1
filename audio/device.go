package audio

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// FrameHandler receives captured audio frames from the input device.
//
// Handlers are invoked on the capture delivery goroutine and must be
// non-blocking forwarders; any heavy processing belongs downstream.
type FrameHandler func(pcm []int16, sampleCount int, channels uint8, samplingRate uint32)

// Device is a thread-safe, reference-counted audio device service.
//
// It tracks three kinds of claims held by call sessions:
//   - input subscriptions: a shared reference count on the capture device
//   - frame handlers: registered forwarders for captured frames
//   - output channels: per-peer playback streams identified by opaque
//     non-zero uint32 handles
//
// The contract toward callers is strictly balanced acquire/release pairs.
// Unbalanced releases are logged and ignored rather than escalated.
type Device struct {
	mu sync.RWMutex

	closed    bool
	inputSubs int

	handlers      map[uint64]FrameHandler
	nextHandlerID uint64

	// Allocated playback channels. Handle 0 is reserved as the
	// "no channel" sentinel and is never handed out.
	outputs     map[uint32]struct{}
	nextChannel uint32
}

// NewDevice creates a new audio device service with no active claims.
func NewDevice() *Device {
	logrus.WithFields(logrus.Fields{
		"function": "NewDevice",
	}).Debug("Creating audio device service")

	return &Device{
		handlers:      make(map[uint64]FrameHandler),
		nextHandlerID: 1,
		outputs:       make(map[uint32]struct{}),
		nextChannel:   1,
	}
}

// SubscribeInput acquires one reference on the shared capture device.
// Every successful call must be balanced by exactly one UnsubscribeInput.
func (d *Device) SubscribeInput() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrDeviceClosed
	}

	d.inputSubs++
	logrus.WithFields(logrus.Fields{
		"function":      "SubscribeInput",
		"subscriptions": d.inputSubs,
	}).Debug("Audio input subscribed")

	return nil
}

// UnsubscribeInput releases one reference on the shared capture device.
// A release with no matching subscription is logged and ignored.
func (d *Device) UnsubscribeInput() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inputSubs == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "UnsubscribeInput",
		}).Warn("Unbalanced audio input unsubscribe ignored")
		return
	}

	d.inputSubs--
	logrus.WithFields(logrus.Fields{
		"function":      "UnsubscribeInput",
		"subscriptions": d.inputSubs,
	}).Debug("Audio input unsubscribed")
}

// AddFrameHandler registers a forwarder for captured audio frames and
// returns its registration handle.
func (d *Device) AddFrameHandler(h FrameHandler) (uint64, error) {
	if h == nil {
		return 0, ErrNilHandler
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrDeviceClosed
	}

	id := d.nextHandlerID
	d.nextHandlerID++
	d.handlers[id] = h

	logrus.WithFields(logrus.Fields{
		"function":   "AddFrameHandler",
		"handler_id": id,
	}).Debug("Audio frame handler registered")

	return id, nil
}

// RemoveFrameHandler unregisters a frame handler.
//
// It takes the write lock, so it blocks until any in-flight DeliverFrame
// completes; once it returns the handler will not be invoked again.
// Removing an unknown handle is a no-op.
func (d *Device) RemoveFrameHandler(id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.handlers[id]; !ok {
		logrus.WithFields(logrus.Fields{
			"function":   "RemoveFrameHandler",
			"handler_id": id,
		}).Debug("No such audio frame handler, nothing to remove")
		return
	}

	delete(d.handlers, id)
	logrus.WithFields(logrus.Fields{
		"function":   "RemoveFrameHandler",
		"handler_id": id,
	}).Debug("Audio frame handler removed")
}

// SubscribeOutput allocates a fresh playback channel and returns its
// handle. Handles are non-zero; 0 is the "no channel" sentinel.
func (d *Device) SubscribeOutput() (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return 0, ErrDeviceClosed
	}

	channel := d.nextChannel
	d.nextChannel++
	d.outputs[channel] = struct{}{}

	logrus.WithFields(logrus.Fields{
		"function":      "SubscribeOutput",
		"channel":       channel,
		"open_channels": len(d.outputs),
	}).Debug("Audio output channel allocated")

	return channel, nil
}

// UnsubscribeOutput releases a playback channel. Releasing an unknown or
// sentinel handle is logged and ignored.
func (d *Device) UnsubscribeOutput(channel uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.outputs[channel]; !ok {
		logrus.WithFields(logrus.Fields{
			"function": "UnsubscribeOutput",
			"channel":  channel,
		}).Warn("Unknown audio output channel, nothing to release")
		return
	}

	delete(d.outputs, channel)
	logrus.WithFields(logrus.Fields{
		"function":      "UnsubscribeOutput",
		"channel":       channel,
		"open_channels": len(d.outputs),
	}).Debug("Audio output channel released")
}

// DeliverFrame fans a captured frame out to every registered handler.
//
// This is the producer entry point; the capture driver calls it from its
// own goroutine. Handlers run under the read lock so that handler removal
// acts as a teardown barrier.
func (d *Device) DeliverFrame(pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return
	}

	for _, h := range d.handlers {
		h(pcm, sampleCount, channels, samplingRate)
	}
}

// Close shuts the device down. Later acquisitions fail with
// ErrDeviceClosed; releases of claims acquired earlier still balance.
func (d *Device) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.closed = true

	logrus.WithFields(logrus.Fields{
		"function":            "Close",
		"input_subscriptions": d.inputSubs,
		"open_channels":       len(d.outputs),
		"frame_handlers":      len(d.handlers),
	}).Info("Audio device service closed")
}

// InputSubscriptions returns the current input reference count.
func (d *Device) InputSubscriptions() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.inputSubs
}

// OpenOutputChannels returns the number of allocated playback channels.
func (d *Device) OpenOutputChannels() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.outputs)
}

// FrameHandlerCount returns the number of registered frame handlers.
func (d *Device) FrameHandlerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}
