package ecat

import "time"

// Framer is the link-layer transport a Session exchanges frames over.
//
// Implementations carry whole Ethernet frames; the session never performs
// partial reads or writes. The raw AF_PACKET implementation lives in
// raw_linux.go; tests substitute an in-memory simulated device.
type Framer interface {
	// WriteFrame writes one frame to the link.
	WriteFrame(frame []byte) error

	// ReadFrame returns the next inbound frame, waiting no longer than the
	// deadline. An elapsed deadline is reported as ErrTimeout.
	ReadFrame(deadline time.Time) ([]byte, error)

	// Close releases the underlying link resources.
	Close() error
}
