package ecat

import (
	"encoding/binary"
	"fmt"
)

// HeaderTuple is the set of fixed header fields checked on every reply.
type HeaderTuple struct {
	Destination MACAddr
	Source      MACAddr
	EtherType   uint16
	HeaderWord  uint16
}

func (t HeaderTuple) String() string {
	return fmt.Sprintf("{dst %s src %s ethertype %#04x header %#04x}",
		t.Destination, t.Source, t.EtherType, t.HeaderWord)
}

// headerOf extracts the header tuple from a frame. The caller must have
// checked the frame length.
func headerOf(frame []byte) HeaderTuple {
	var t HeaderTuple
	copy(t.Destination[:], frame[offDestination:])
	copy(t.Source[:], frame[offSource:])
	t.EtherType = binary.BigEndian.Uint16(frame[offEtherType:])
	t.HeaderWord = binary.BigEndian.Uint16(frame[offHeaderWord:])
	return t
}

// frameValidator checks received frames against the session's fixed header
// expectations.
type frameValidator struct {
	want HeaderTuple
}

// validate classifies a received frame against the expected transfer index.
//
// Checks run in order: length, header identity, working count, index echo.
// Length, header, and working-count failures are malformed frames; an index
// mismatch on an otherwise well-formed frame is a stale or duplicate reply.
func (fv *frameValidator) validate(frame []byte, wantIndex uint8) error {
	if len(frame) != FrameSize {
		return fmt.Errorf("%w: length %d, want %d", ErrMalformedFrame, len(frame), FrameSize)
	}

	got := headerOf(frame)
	if got != fv.want {
		return &MalformedFrameError{Got: got, Want: fv.want}
	}

	if wkc := binary.LittleEndian.Uint16(frame[offWorkingCount:]); wkc == 0 {
		return fmt.Errorf("%w: working count zero, slave did not process frame", ErrMalformedFrame)
	}

	if frame[offIndex] != wantIndex {
		return fmt.Errorf("%w: index %#02x, want %#02x", ErrStaleReply, frame[offIndex], wantIndex)
	}

	return nil
}

// replyPDO extracts the PDO identifier echoed in a run reply.
func replyPDO(frame []byte) (PDO, error) {
	flipped, err := flipBytes(frame[offPDO : offPDO+2])
	if err != nil {
		return 0, err
	}
	return PDO(binary.BigEndian.Uint16(flipped)), nil
}

// replyValue decodes the flow value carried in an upload run reply.
func replyValue(frame []byte) (float64, error) {
	flipped, err := flipBytes(frame[offPayload : offPayload+payloadLen])
	if err != nil {
		return 0, err
	}
	v, err := unpackF32BE(flipped)
	return float64(v), err
}
