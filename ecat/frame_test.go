package ecat

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMAC = MACAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

func TestBuildPrepareLayout(t *testing.T) {
	fb := frameBuilder{source: testMAC, position: 3}

	frame, err := fb.buildPrepare(20, Download, PDOSetpointFlow, packF32LE(50.0))
	require.NoError(t, err)
	require.Len(t, frame, FrameSize)

	assert.Equal(t, broadcastAddr[:], frame[offDestination:offDestination+6])
	assert.Equal(t, testMAC[:], frame[offSource:offSource+6])
	assert.Equal(t, EtherTypeEtherCAT, binary.BigEndian.Uint16(frame[offEtherType:]))
	assert.Equal(t, headerWord, binary.BigEndian.Uint16(frame[offHeaderWord:]))

	assert.Equal(t, uint8(20), frame[offIndex])
	assert.Equal(t, uint8(21), frame[offIndexPair])
	assert.Equal(t, uint16(3), binary.LittleEndian.Uint16(frame[offPosition:]))
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(frame[offNextPosition:]))
	assert.Equal(t, byte(Download), frame[offCommand])

	// The PDO is byte-flipped on the wire: 0x7003 -> 0x03, 0x70.
	assert.Equal(t, []byte{0x03, 0x70}, frame[offPDO:offPDO+2])
	assert.Equal(t, byte(sizeClassF32), frame[offSizeClass])
	assert.Equal(t, packF32LE(50.0), frame[offPayload:offPayload+4])

	// Working count placeholder and all padding stay zero.
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(frame[offWorkingCount:]))
	for i := offPayload + payloadLen; i < FrameSize; i++ {
		require.Zero(t, frame[i], "byte %d not zero", i)
	}
}

func TestBuildRunLayout(t *testing.T) {
	fb := frameBuilder{source: testMAC, position: 0}

	frame, err := fb.buildRun(24, PDOActualFlow)
	require.NoError(t, err)
	require.Len(t, frame, FrameSize)

	assert.Equal(t, uint8(24), frame[offIndex])
	assert.Equal(t, uint8(25), frame[offIndexPair])
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(frame[offPosition:]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(frame[offNextPosition:]))

	// Run frames leave the command slot zero and echo the PDO.
	assert.Zero(t, frame[offCommand])
	assert.Equal(t, []byte{0x00, 0x60}, frame[offPDO:offPDO+2])
}

func TestFrameSizeForAllPositions(t *testing.T) {
	positions := []uint16{0, 1, 7, 255, 1024, 65534}

	for _, pos := range positions {
		fb := frameBuilder{source: testMAC, position: pos}

		prepare, err := fb.buildPrepare(100, Upload, PDOActualFlow, nil)
		require.NoError(t, err)
		require.Len(t, prepare, FrameSize)

		run, err := fb.buildRun(104, PDOActualFlow)
		require.NoError(t, err)
		require.Len(t, run, FrameSize)
	}
}

func TestBuildPrepareDeterministic(t *testing.T) {
	fb := frameBuilder{source: testMAC, position: 2}

	a, err := fb.buildPrepare(42, Upload, PDOActualFlow, nil)
	require.NoError(t, err)
	b, err := fb.buildPrepare(42, Upload, PDOActualFlow, nil)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestBuildPrepareOversizePayload(t *testing.T) {
	fb := frameBuilder{source: testMAC, position: 0}

	_, err := fb.buildPrepare(20, Download, PDOSetpointFlow, make([]byte, payloadLen+1))
	require.ErrorIs(t, err, ErrOversizePayload)
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "upload", Upload.String())
	assert.Equal(t, "download", Download.String())
	assert.Equal(t, "command(0x07)", Command(7).String())
}
