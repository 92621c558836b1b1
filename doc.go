// Package callcore models the lifecycle of live audio/video call
// sessions and their ownership of shared capture and playback devices.
//
// A call session (one-to-one FriendCall or GroupCall) acquires its device
// resources at construction and releases every one of them exactly once
// at Close, regardless of how the call ended. The design keeps resource
// ownership explicit:
//
//   - every session holds one audio input subscription for its lifetime
//   - a video-enabled session additionally holds one camera subscription
//     and owns one video frame sink
//   - a FriendCall owns one dedicated playback channel for its peer
//   - a GroupCall owns one playback channel per current member
//
// Captured frames are forwarded to a Dispatcher tagged with the session's
// call identity; the forwarding handlers capture only plain data, never
// the session itself, so frame delivery and ring-timeout callbacks stay
// valid however the session is moved or torn down.
//
// The package consumes the device services from callcore/audio and
// callcore/video through narrow interfaces and has no network, codec, or
// UI surface of its own.
package callcore
