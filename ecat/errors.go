package ecat

import (
	"errors"
	"fmt"
)

// Frame-level errors. Malformed and stale replies are retried in place by
// the session and only surface once a step's retry budget is exhausted.
var (
	// ErrMalformedFrame indicates a reply whose length or fixed header fields
	// do not match the expected values.
	ErrMalformedFrame = errors.New("ecat: malformed frame")

	// ErrStaleReply indicates a reply whose transfer index does not echo the
	// request. The frame itself is well formed; it belongs to a late or
	// duplicate exchange.
	ErrStaleReply = errors.New("ecat: stale or wrong reply")

	// ErrPdoMismatch indicates a run reply carrying a different PDO than the
	// one requested. The device updated its PDO table mid-flight; the run
	// step is repeated.
	ErrPdoMismatch = errors.New("ecat: reply PDO differs from requested PDO")

	// ErrOddLength indicates a byte-flip on an odd-length field, which is a
	// frame template bug.
	ErrOddLength = errors.New("ecat: byte flip requires even length")

	// ErrOversizePayload indicates a payload that does not fit the frame's
	// size class.
	ErrOversizePayload = errors.New("ecat: payload exceeds frame capacity")
)

// Session-level errors.
var (
	// ErrInterfaceResolution indicates the bound interface's hardware address
	// could not be resolved. Fatal at construction.
	ErrInterfaceResolution = errors.New("ecat: cannot resolve interface address")

	// ErrRetriesExhausted indicates a prepare or run step failed validation
	// more times than its retry budget allows.
	ErrRetriesExhausted = errors.New("ecat: retries exhausted")

	// ErrSetpointVerification indicates a downloaded setpoint did not read
	// back within tolerance after all retries.
	ErrSetpointVerification = errors.New("ecat: setpoint verification failed")

	// ErrTimeout indicates an exchange did not complete within its deadline.
	ErrTimeout = errors.New("ecat: exchange deadline exceeded")

	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("ecat: session closed")

	// ErrUnsupportedPlatform indicates the raw link-layer transport is not
	// available on this OS.
	ErrUnsupportedPlatform = errors.New("ecat: raw link-layer sockets require linux")
)

// MalformedFrameError reports a reply whose fixed header fields do not match
// the session's expectations, carrying both tuples for diagnostics.
//
// It unwraps to ErrMalformedFrame.
type MalformedFrameError struct {
	Got  HeaderTuple
	Want HeaderTuple
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("%v: got header %v, want %v", ErrMalformedFrame, e.Got, e.Want)
}

func (e *MalformedFrameError) Unwrap() error { return ErrMalformedFrame }
