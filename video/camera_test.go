package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(width, height uint16) *Frame {
	ySize := int(width) * int(height)
	uvSize := int(width/2) * int(height/2)
	return &Frame{
		Width:  width,
		Height: height,
		Y:      make([]byte, ySize),
		U:      make([]byte, uvSize),
		V:      make([]byte, uvSize),
	}
}

func TestCameraConfigureDefault(t *testing.T) {
	cam := NewCamera()
	assert.False(t, cam.IsConfigured())

	require.NoError(t, cam.ConfigureDefault())
	assert.True(t, cam.IsConfigured())

	width, height := cam.CaptureSize()
	assert.Equal(t, uint16(DefaultCaptureWidth), width)
	assert.Equal(t, uint16(DefaultCaptureHeight), height)

	// Reconfiguring is a no-op, not an error.
	require.NoError(t, cam.ConfigureDefault())
}

func TestCameraSubscribeRequiresConfiguration(t *testing.T) {
	cam := NewCamera()

	err := cam.Subscribe()
	assert.ErrorIs(t, err, ErrCameraNotConfigured)
	assert.Equal(t, 0, cam.Subscriptions())

	require.NoError(t, cam.ConfigureDefault())
	require.NoError(t, cam.Subscribe())
	assert.Equal(t, 1, cam.Subscriptions())
}

func TestCameraSubscriptionBalance(t *testing.T) {
	cam := NewCamera()
	require.NoError(t, cam.ConfigureDefault())

	require.NoError(t, cam.Subscribe())
	require.NoError(t, cam.Subscribe())
	assert.Equal(t, 2, cam.Subscriptions())

	cam.Unsubscribe()
	cam.Unsubscribe()
	assert.Equal(t, 0, cam.Subscriptions())

	// Unbalanced release is ignored.
	assert.NotPanics(t, func() {
		cam.Unsubscribe()
	})
	assert.Equal(t, 0, cam.Subscriptions())
}

func TestCameraFrameDelivery(t *testing.T) {
	cam := NewCamera()
	require.NoError(t, cam.ConfigureDefault())

	var got []*Frame
	id, err := cam.AddFrameHandler(func(frame *Frame) {
		got = append(got, frame)
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	frame := testFrame(DefaultCaptureWidth, DefaultCaptureHeight)
	cam.DeliverFrame(frame)
	require.Len(t, got, 1)
	assert.Equal(t, frame, got[0])

	cam.RemoveFrameHandler(id)
	cam.DeliverFrame(frame)
	assert.Len(t, got, 1, "No delivery after handler removal")
}

func TestCameraDropsInvalidFrames(t *testing.T) {
	cam := NewCamera()
	require.NoError(t, cam.ConfigureDefault())

	delivered := 0
	_, err := cam.AddFrameHandler(func(frame *Frame) {
		delivered++
	})
	require.NoError(t, err)

	cam.DeliverFrame(nil)
	cam.DeliverFrame(&Frame{Width: 0, Height: 0})
	cam.DeliverFrame(&Frame{Width: 4, Height: 4, Y: []byte{0}}) // undersized planes

	assert.Zero(t, delivered)
}

func TestCameraClosedAcquisitionsFail(t *testing.T) {
	cam := NewCamera()
	require.NoError(t, cam.ConfigureDefault())
	require.NoError(t, cam.Subscribe())

	cam.Close()

	assert.ErrorIs(t, cam.Subscribe(), ErrCameraClosed)
	assert.ErrorIs(t, cam.ConfigureDefault(), ErrCameraClosed)

	_, err := cam.AddFrameHandler(func(frame *Frame) {})
	assert.ErrorIs(t, err, ErrCameraClosed)

	// Earlier subscriptions still release.
	cam.Unsubscribe()
	assert.Equal(t, 0, cam.Subscriptions())
}

func TestCameraNilHandlerRejected(t *testing.T) {
	cam := NewCamera()

	id, err := cam.AddFrameHandler(nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	assert.Zero(t, id)
}
