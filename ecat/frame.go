package ecat

import (
	"encoding/binary"
	"fmt"
)

// PDO identifies a process value on the device.
type PDO uint16

const (
	// PDOActualFlow is the measured flow process value.
	PDOActualFlow PDO = 0x6000
	// PDOSetpointFlow is the setpoint flow process value.
	PDOSetpointFlow PDO = 0x7003
)

// Command selects the SDO service requested from the slave.
type Command uint8

const (
	// Upload reads a process value from the slave.
	Upload Command = 0x40
	// Download writes a process value to the slave.
	Download Command = 0x23
)

func (c Command) String() string {
	switch c {
	case Upload:
		return "upload"
	case Download:
		return "download"
	default:
		return fmt.Sprintf("command(%#02x)", uint8(c))
	}
}

// Wire constants. These must match the controller firmware exactly.
const (
	// FrameSize is the fixed size of every frame on the wire. Shorter
	// payloads are zero-padded up to it.
	FrameSize = 170

	// EtherTypeEtherCAT is the registered ethertype for EtherCAT frames.
	EtherTypeEtherCAT uint16 = 0x88a4

	// headerWord is the EtherCAT length/type word the controller firmware
	// expects on every frame.
	headerWord uint16 = 0x9a10

	// sizeClassF32 marks a 4-byte expedited transfer.
	sizeClassF32 = 0x04

	// runIndexOffset separates the run exchange's transfer index from the
	// prepare exchange's.
	runIndexOffset = 4
)

// Transfer indexes are drawn from [indexMin, indexMax). The builder also
// encodes index+1 and the run step uses index+runIndexOffset, so the upper
// bound keeps all derived values inside a byte.
const (
	indexMin = 10
	indexMax = 240
)

// Byte offsets of the frame fields: Ethernet header, EtherCAT length/type
// word, then the datagram fields. The working count trails the frame; it is
// written as zero and filled in by the slave.
const (
	offDestination  = 0
	offSource       = 6
	offEtherType    = 12
	offHeaderWord   = 14
	offIndex        = 16
	offIndexPair    = 17
	offPosition     = 18
	offNextPosition = 20
	offCommand      = 22
	offPDO          = 23
	offSizeClass    = 25
	offPayload      = 26
	offWorkingCount = FrameSize - 2

	payloadLen = 4
)

var broadcastAddr = MACAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

// frameBuilder assembles the prepare and run frames for one session. The
// source address and slave position are fixed at session construction; the
// transfer index varies per exchange.
type frameBuilder struct {
	source   MACAddr
	position uint16
}

// header writes the shared Ethernet and EtherCAT header fields into f.
func (fb *frameBuilder) header(f []byte) {
	copy(f[offDestination:], broadcastAddr[:])
	copy(f[offSource:], fb.source[:])
	binary.BigEndian.PutUint16(f[offEtherType:], EtherTypeEtherCAT)
	binary.BigEndian.PutUint16(f[offHeaderWord:], headerWord)
}

// buildPrepare assembles the frame that primes the slave's mailbox for an
// SDO exchange. For downloads, payload carries the packed setpoint.
//
// The output is deterministic given its inputs; building only fails on a
// payload that does not fit the size class.
func (fb *frameBuilder) buildPrepare(index uint8, cmd Command, pdo PDO, payload []byte) ([]byte, error) {
	if len(payload) > payloadLen {
		return nil, fmt.Errorf("%w: %s payload is %d bytes", ErrOversizePayload, cmd, len(payload))
	}

	body := make([]byte, offPayload, offPayload+payloadLen)
	fb.header(body)
	body[offIndex] = index
	body[offIndexPair] = index + 1
	binary.LittleEndian.PutUint16(body[offPosition:], fb.position)
	binary.LittleEndian.PutUint16(body[offNextPosition:], fb.position+1)
	body[offCommand] = byte(cmd)

	pdoBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(pdoBytes, uint16(pdo))
	flipped, err := flipBytes(pdoBytes)
	if err != nil {
		return nil, err
	}
	copy(body[offPDO:], flipped)
	body[offSizeClass] = sizeClassF32
	body = append(body, payload...)

	return zeroPad(body, FrameSize)
}

// buildRun assembles the frame that asks the slave to execute the primed
// operation. The command slot stays zero; the requested PDO is echoed so
// the reply can be checked against it.
func (fb *frameBuilder) buildRun(index uint8, pdo PDO) ([]byte, error) {
	body := make([]byte, offPayload)
	fb.header(body)
	body[offIndex] = index
	body[offIndexPair] = index + 1
	binary.LittleEndian.PutUint16(body[offPosition:], fb.position)
	binary.LittleEndian.PutUint16(body[offNextPosition:], fb.position+1)

	pdoBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(pdoBytes, uint16(pdo))
	flipped, err := flipBytes(pdoBytes)
	if err != nil {
		return nil, err
	}
	copy(body[offPDO:], flipped)
	body[offSizeClass] = sizeClassF32

	return zeroPad(body, FrameSize)
}
