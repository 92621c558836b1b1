package callcore

import (
	"github.com/sirupsen/logrus"
)

// GroupCall is a call session for a group conversation.
//
// It shares the single audio input subscription of the Call base but
// owns one playback channel per current member, added and removed as
// members join and leave. Group calls never carry video.
type GroupCall struct {
	Call

	// Playback channel per member. Every key present holds exactly one
	// acquired channel; removal always releases the channel first.
	peers map[uint32]uint32
}

// NewGroupCall constructs a group call session.
//
// Construction subscribes to the shared audio input device and wires
// captured frames to av.SendGroupCallAudio tagged with groupNumber. An
// audio subscription failure degrades the session (observable via
// AudioInputStatus) rather than failing construction. The member set
// starts empty.
func NewGroupCall(groupNumber uint32, av Dispatcher, dev AudioDevice) (*GroupCall, error) {
	if av == nil {
		return nil, ErrNilDispatcher
	}
	if dev == nil {
		return nil, ErrNilAudioDevice
	}

	logrus.WithFields(logrus.Fields{
		"function":     "NewGroupCall",
		"group_number": groupNumber,
	}).Info("Creating group call session")

	g := &GroupCall{
		Call:  newCall(groupNumber, false, av, dev, nil),
		peers: make(map[uint32]uint32),
	}

	g.acquireAudio(func(pcm []int16, sampleCount int, channels uint8, samplingRate uint32) {
		av.SendGroupCallAudio(groupNumber, pcm, sampleCount, channels, samplingRate)
	})

	return g, nil
}

// AddPeer acquires a fresh playback channel for a member joining the
// group call.
//
// If the peer already has a channel it is released first and replaced, so
// the one-channel-per-member invariant holds even on redundant joins. A
// channel acquisition failure is logged and the member is not added; the
// shared input subscription is untouched either way.
func (g *GroupCall) AddPeer(peerNumber uint32) {
	channel, err := g.dev.SubscribeOutput()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function":     "AddPeer",
			"group_number": g.callID,
			"peer_number":  peerNumber,
			"error":        err.Error(),
		}).Error("No output channel available for peer")
		return
	}

	g.mu.Lock()
	old, replaced := g.peers[peerNumber]
	g.peers[peerNumber] = channel
	g.mu.Unlock()

	if replaced {
		logrus.WithFields(logrus.Fields{
			"function":     "AddPeer",
			"group_number": g.callID,
			"peer_number":  peerNumber,
			"old_channel":  old,
			"new_channel":  channel,
		}).Warn("Peer already had an output channel, replacing")
		g.dev.UnsubscribeOutput(old)
		return
	}

	logrus.WithFields(logrus.Fields{
		"function":     "AddPeer",
		"group_number": g.callID,
		"peer_number":  peerNumber,
		"channel":      channel,
	}).Debug("Peer output channel acquired")
}

// RemovePeer releases a member's playback channel and drops them from
// the member set. Removing an unknown peer is logged and ignored.
func (g *GroupCall) RemovePeer(peerNumber uint32) {
	g.mu.Lock()
	channel, ok := g.peers[peerNumber]
	if !ok {
		g.mu.Unlock()
		logrus.WithFields(logrus.Fields{
			"function":     "RemovePeer",
			"group_number": g.callID,
			"peer_number":  peerNumber,
		}).Debug("Peer does not have an output channel, can't remove")
		return
	}
	delete(g.peers, peerNumber)
	g.mu.Unlock()

	g.dev.UnsubscribeOutput(channel)

	logrus.WithFields(logrus.Fields{
		"function":     "RemovePeer",
		"group_number": g.callID,
		"peer_number":  peerNumber,
		"channel":      channel,
	}).Debug("Peer output channel released")
}

// HavePeer reports whether the peer currently holds a playback channel.
func (g *GroupCall) HavePeer(peerNumber uint32) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.peers[peerNumber]
	return ok
}

// PeerCount returns the number of members holding playback channels.
func (g *GroupCall) PeerCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.peers)
}

// OutputChannel returns the playback channel handle for a member, or 0
// when the peer has none. Absence is a recoverable caller mistake, not
// an error.
func (g *GroupCall) OutputChannel(peerNumber uint32) uint32 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	channel, ok := g.peers[peerNumber]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function":     "OutputChannel",
			"group_number": g.callID,
			"peer_number":  peerNumber,
		}).Warn("Getting output channel for non-existent peer")
		return 0
	}

	return channel
}

// ClearPeers releases every member's playback channel and empties the
// member set. Used on teardown or when the call ends for all members at
// once.
func (g *GroupCall) ClearPeers() {
	g.mu.Lock()
	released := g.peers
	g.peers = make(map[uint32]uint32)
	g.mu.Unlock()

	for peerNumber, channel := range released {
		g.dev.UnsubscribeOutput(channel)
		logrus.WithFields(logrus.Fields{
			"function":     "ClearPeers",
			"group_number": g.callID,
			"peer_number":  peerNumber,
			"channel":      channel,
		}).Debug("Peer output channel released")
	}
}

// Close releases every remaining member channel, then the audio input
// subscription. Safe to call more than once; only the first call
// releases anything.
func (g *GroupCall) Close() {
	if !g.beginClose() {
		return
	}

	logrus.WithFields(logrus.Fields{
		"function":     "Close",
		"group_number": g.callID,
		"peer_count":   g.PeerCount(),
	}).Info("Closing group call session")

	g.ClearPeers()
	g.releaseMedia()
}
