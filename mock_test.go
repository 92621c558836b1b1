package callcore

import (
	"errors"
	"sync"

	"github.com/opd-ai/callcore/audio"
	"github.com/opd-ai/callcore/video"
)

// mockDispatcher records every outbound operation. Frame forwarding and
// timer callbacks arrive on their own goroutines, so all counters are
// mutex-guarded.
type mockDispatcher struct {
	mu sync.Mutex

	callAudio  []uint32 // call IDs, one per SendCallAudio
	groupAudio []uint32
	callVideo  []uint32
	timeouts   []uint32

	lastSampleCount  int
	lastSamplingRate uint32
	lastFrame        *video.Frame
}

func newMockDispatcher() *mockDispatcher {
	return &mockDispatcher{}
}

func (m *mockDispatcher) SendCallAudio(callID uint32, pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callAudio = append(m.callAudio, callID)
	m.lastSampleCount = sampleCount
	m.lastSamplingRate = samplingRate
}

func (m *mockDispatcher) SendGroupCallAudio(callID uint32, pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groupAudio = append(m.groupAudio, callID)
	m.lastSampleCount = sampleCount
	m.lastSamplingRate = samplingRate
}

func (m *mockDispatcher) SendCallVideo(callID uint32, frame *video.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callVideo = append(m.callVideo, callID)
	m.lastFrame = frame
}

func (m *mockDispatcher) OnCallTimeout(callID uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeouts = append(m.timeouts, callID)
}

func (m *mockDispatcher) callAudioSends() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.callAudio...)
}

func (m *mockDispatcher) groupAudioSends() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.groupAudio...)
}

func (m *mockDispatcher) callVideoSends() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.callVideo...)
}

func (m *mockDispatcher) timeoutEvents() []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint32(nil), m.timeouts...)
}

// outputFailDevice is a real audio device whose playback channel
// allocation always fails. Used to exercise partial-construction unwind.
type outputFailDevice struct {
	*audio.Device
}

func (d *outputFailDevice) SubscribeOutput() (uint32, error) {
	return 0, errors.New("no playback device present")
}

// inputFailDevice is a real audio device whose capture subscription
// always fails. Used to exercise the degraded audio path.
type inputFailDevice struct {
	*audio.Device
}

func (d *inputFailDevice) SubscribeInput() error {
	return errors.New("no capture device present")
}

func yuvFrame(width, height uint16) *video.Frame {
	ySize := int(width) * int(height)
	uvSize := int(width/2) * int(height/2)
	return &video.Frame{
		Width:  width,
		Height: height,
		Y:      make([]byte, ySize),
		U:      make([]byte, uvSize),
		V:      make([]byte, uvSize),
	}
}
