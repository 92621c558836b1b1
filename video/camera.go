package video

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// FrameHandler receives captured video frames from the camera.
//
// Handlers run on the capture delivery goroutine and must be
// non-blocking forwarders.
type FrameHandler func(frame *Frame)

// Default capture configuration applied by ConfigureDefault.
const (
	DefaultCaptureWidth  = 640
	DefaultCaptureHeight = 480
)

// Camera is a thread-safe, reference-counted camera capture service.
//
// A camera starts unconfigured; the first video-enabled session applies a
// default configuration before subscribing. Subscriptions are a shared
// reference count, so multiple sessions can legitimately share the one
// capture device.
type Camera struct {
	mu sync.RWMutex

	closed     bool
	configured bool

	captureWidth  uint16
	captureHeight uint16

	subs int

	handlers      map[uint64]FrameHandler
	nextHandlerID uint64
}

// NewCamera creates an unconfigured camera service.
func NewCamera() *Camera {
	logrus.WithFields(logrus.Fields{
		"function": "NewCamera",
	}).Debug("Creating camera service")

	return &Camera{
		handlers:      make(map[uint64]FrameHandler),
		nextHandlerID: 1,
	}
}

// IsConfigured reports whether any capture configuration is set.
func (c *Camera) IsConfigured() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.configured
}

// ConfigureDefault applies the default capture configuration.
// Reconfiguring an already configured camera is a no-op.
func (c *Camera) ConfigureDefault() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCameraClosed
	}
	if c.configured {
		return nil
	}

	c.configured = true
	c.captureWidth = DefaultCaptureWidth
	c.captureHeight = DefaultCaptureHeight

	logrus.WithFields(logrus.Fields{
		"function": "ConfigureDefault",
		"width":    c.captureWidth,
		"height":   c.captureHeight,
	}).Info("Camera configured with defaults")

	return nil
}

// Subscribe acquires one reference on the capture device. The camera must
// be configured first.
func (c *Camera) Subscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCameraClosed
	}
	if !c.configured {
		return ErrCameraNotConfigured
	}

	c.subs++
	logrus.WithFields(logrus.Fields{
		"function":      "Subscribe",
		"subscriptions": c.subs,
	}).Debug("Camera subscribed")

	return nil
}

// Unsubscribe releases one reference on the capture device. An
// unbalanced release is logged and ignored.
func (c *Camera) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs == 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Unsubscribe",
		}).Warn("Unbalanced camera unsubscribe ignored")
		return
	}

	c.subs--
	logrus.WithFields(logrus.Fields{
		"function":      "Unsubscribe",
		"subscriptions": c.subs,
	}).Debug("Camera unsubscribed")
}

// AddFrameHandler registers a forwarder for captured frames and returns
// its registration handle.
func (c *Camera) AddFrameHandler(h FrameHandler) (uint64, error) {
	if h == nil {
		return 0, ErrNilHandler
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, ErrCameraClosed
	}

	id := c.nextHandlerID
	c.nextHandlerID++
	c.handlers[id] = h

	logrus.WithFields(logrus.Fields{
		"function":   "AddFrameHandler",
		"handler_id": id,
	}).Debug("Video frame handler registered")

	return id, nil
}

// RemoveFrameHandler unregisters a frame handler.
//
// Like the audio device, removal takes the write lock and therefore
// blocks until in-flight delivery completes; once it returns the handler
// will not be invoked again.
func (c *Camera) RemoveFrameHandler(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.handlers[id]; !ok {
		logrus.WithFields(logrus.Fields{
			"function":   "RemoveFrameHandler",
			"handler_id": id,
		}).Debug("No such video frame handler, nothing to remove")
		return
	}

	delete(c.handlers, id)
	logrus.WithFields(logrus.Fields{
		"function":   "RemoveFrameHandler",
		"handler_id": id,
	}).Debug("Video frame handler removed")
}

// DeliverFrame fans a captured frame out to every registered handler.
// Invalid frames are dropped with a warning.
func (c *Camera) DeliverFrame(frame *Frame) {
	if frame == nil {
		return
	}
	if err := frame.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "DeliverFrame",
			"error":    err.Error(),
		}).Warn("Dropping invalid captured frame")
		return
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return
	}

	for _, h := range c.handlers {
		h(frame)
	}
}

// Close shuts the camera service down. Later acquisitions fail with
// ErrCameraClosed.
func (c *Camera) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	logrus.WithFields(logrus.Fields{
		"function":       "Close",
		"subscriptions":  c.subs,
		"frame_handlers": len(c.handlers),
	}).Info("Camera service closed")
}

// CaptureSize returns the configured capture dimensions, or zeros when
// the camera is unconfigured.
func (c *Camera) CaptureSize() (width, height uint16) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.captureWidth, c.captureHeight
}

// Subscriptions returns the current capture reference count.
func (c *Camera) Subscriptions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subs
}

// FrameHandlerCount returns the number of registered frame handlers.
func (c *Camera) FrameHandlerCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers)
}
