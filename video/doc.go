// Package video provides the camera capture service and the per-call
// video frame sink used by call sessions.
//
// Camera is the shared capture device: reference-counted subscriptions,
// lazy default configuration, and frame fan-out to registered handlers.
// Source is the session-owned sink that receiving code pushes decoded
// frames into; exactly one Source exists per video-enabled session and it
// is destroyed with the session.
//
// This package follows the same patterns as the audio package for
// consistency.
package video
