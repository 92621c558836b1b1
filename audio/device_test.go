package audio

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceInputSubscriptionBalance(t *testing.T) {
	dev := NewDevice()
	assert.Equal(t, 0, dev.InputSubscriptions())

	require.NoError(t, dev.SubscribeInput())
	require.NoError(t, dev.SubscribeInput())
	assert.Equal(t, 2, dev.InputSubscriptions(), "Two sessions should share the input device")

	dev.UnsubscribeInput()
	assert.Equal(t, 1, dev.InputSubscriptions())

	dev.UnsubscribeInput()
	assert.Equal(t, 0, dev.InputSubscriptions())
}

func TestDeviceUnbalancedInputUnsubscribeIgnored(t *testing.T) {
	dev := NewDevice()

	// An unmatched release must not underflow the reference count.
	assert.NotPanics(t, func() {
		dev.UnsubscribeInput()
	})
	assert.Equal(t, 0, dev.InputSubscriptions())
}

func TestDeviceOutputChannelAllocation(t *testing.T) {
	dev := NewDevice()

	first, err := dev.SubscribeOutput()
	require.NoError(t, err)
	second, err := dev.SubscribeOutput()
	require.NoError(t, err)

	assert.NotZero(t, first, "Channel handles must never be the 0 sentinel")
	assert.NotZero(t, second)
	assert.NotEqual(t, first, second, "Each acquisition gets a fresh handle")
	assert.Equal(t, 2, dev.OpenOutputChannels())

	dev.UnsubscribeOutput(first)
	assert.Equal(t, 1, dev.OpenOutputChannels())

	dev.UnsubscribeOutput(second)
	assert.Equal(t, 0, dev.OpenOutputChannels())
}

func TestDeviceUnknownOutputChannelRelease(t *testing.T) {
	dev := NewDevice()

	ch, err := dev.SubscribeOutput()
	require.NoError(t, err)

	// Unknown and sentinel handles are ignored, acquired ones stay open.
	dev.UnsubscribeOutput(9999)
	dev.UnsubscribeOutput(0)
	assert.Equal(t, 1, dev.OpenOutputChannels())

	// Double release of the same handle only closes it once.
	dev.UnsubscribeOutput(ch)
	dev.UnsubscribeOutput(ch)
	assert.Equal(t, 0, dev.OpenOutputChannels())
}

func TestDeviceFrameDelivery(t *testing.T) {
	dev := NewDevice()

	var mu sync.Mutex
	var got [][]int16
	id, err := dev.AddFrameHandler(func(pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, pcm)
		assert.Equal(t, len(pcm), sampleCount)
		assert.Equal(t, uint8(1), channels)
		assert.Equal(t, uint32(48000), samplingRate)
	})
	require.NoError(t, err)
	require.NotZero(t, id)
	assert.Equal(t, 1, dev.FrameHandlerCount())

	pcm := []int16{1, 2, 3, 4}
	dev.DeliverFrame(pcm, len(pcm), 1, 48000)
	dev.DeliverFrame(pcm, len(pcm), 1, 48000)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2)
}

func TestDeviceRemoveFrameHandlerStopsDelivery(t *testing.T) {
	dev := NewDevice()

	delivered := 0
	id, err := dev.AddFrameHandler(func(pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
		delivered++
	})
	require.NoError(t, err)

	dev.DeliverFrame([]int16{0}, 1, 1, 48000)
	dev.RemoveFrameHandler(id)
	dev.DeliverFrame([]int16{0}, 1, 1, 48000)

	assert.Equal(t, 1, delivered, "No delivery may reach a handler after removal returns")
	assert.Equal(t, 0, dev.FrameHandlerCount())

	// Removing again is a no-op.
	assert.NotPanics(t, func() {
		dev.RemoveFrameHandler(id)
	})
}

func TestDeviceConcurrentDeliveryAndRemoval(t *testing.T) {
	dev := NewDevice()

	id, err := dev.AddFrameHandler(func(pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			dev.DeliverFrame([]int16{0, 0}, 2, 1, 48000)
		}
	}()

	// Removal must block on in-flight delivery, never race it.
	dev.RemoveFrameHandler(id)
	<-done
}

func TestDeviceNilHandlerRejected(t *testing.T) {
	dev := NewDevice()

	id, err := dev.AddFrameHandler(nil)
	assert.ErrorIs(t, err, ErrNilHandler)
	assert.Zero(t, id)
}

func TestDeviceClosedAcquisitionsFail(t *testing.T) {
	dev := NewDevice()
	require.NoError(t, dev.SubscribeInput())
	ch, err := dev.SubscribeOutput()
	require.NoError(t, err)

	dev.Close()

	assert.ErrorIs(t, dev.SubscribeInput(), ErrDeviceClosed)

	_, err = dev.SubscribeOutput()
	assert.ErrorIs(t, err, ErrDeviceClosed)

	_, err = dev.AddFrameHandler(func(pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {})
	assert.ErrorIs(t, err, ErrDeviceClosed)

	// Claims acquired before Close still release cleanly.
	dev.UnsubscribeInput()
	dev.UnsubscribeOutput(ch)
	assert.Equal(t, 0, dev.InputSubscriptions())
	assert.Equal(t, 0, dev.OpenOutputChannels())

	// Closing twice is a no-op.
	assert.NotPanics(t, func() {
		dev.Close()
	})
}

func TestDeviceDeliveryAfterCloseDropped(t *testing.T) {
	dev := NewDevice()

	delivered := 0
	_, err := dev.AddFrameHandler(func(pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
		delivered++
	})
	require.NoError(t, err)

	dev.Close()
	dev.DeliverFrame([]int16{0}, 1, 1, 48000)

	assert.Zero(t, delivered)
}
