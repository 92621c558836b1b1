// Package audio provides the shared audio device service for call sessions.
//
// The Device type models the capture and playback side of the audio stack
// as a reference-counted subscription service. Call sessions never touch
// raw device state; they hold balanced subscribe/unsubscribe pairs on the
// shared input device, opaque handles for per-peer playback channels, and
// handler registrations for captured frame delivery.
//
// Frame delivery is a concurrent producer path: DeliverFrame may run on
// the capture driver's own goroutine. RemoveFrameHandler takes the write
// lock, so once it returns no further deliveries reach the removed
// handler. That is the synchronization point session teardown relies on.
package audio
