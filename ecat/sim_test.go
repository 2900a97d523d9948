package ecat

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"
)

// frameKind classifies frames the simulated device receives.
type frameKind int

const (
	kindPrepare frameKind = iota
	kindRun
)

func (k frameKind) String() string {
	if k == kindPrepare {
		return "prepare"
	}
	return "run"
}

// simWrite records one frame written to the simulated device, for
// asserting the exact frame sequence a session produced.
type simWrite struct {
	kind  frameKind
	cmd   Command
	pdo   PDO
	index uint8
}

// primedOp is a mailbox operation primed by a prepare frame, keyed by the
// run index that will execute it.
type primedOp struct {
	cmd     Command
	pdo     PDO
	payload []byte
}

// simDevice is an in-memory Framer that behaves like a single MFC slave:
// it echoes prepare frames, executes primed uploads and downloads on run
// frames, and counts its working counter to 1.
//
// Fault-injection knobs corrupt a bounded number of replies so tests can
// exercise the session's retry paths.
type simDevice struct {
	mu     sync.Mutex
	local  MACAddr
	reply  MACAddr
	primed map[uint8]primedOp

	flow     float64
	setpoint float64

	// dropSetpoint discards downloads so Set never converges.
	dropSetpoint bool
	// silent records writes but never replies.
	silent bool
	// replyDelay stalls every read, simulating a slow device.
	replyDelay time.Duration

	corruptSourceLeft int
	staleIndexLeft    int
	pdoMismatchLeft   int

	writes  []simWrite
	replies chan []byte
}

var _ Framer = (*simDevice)(nil)

func newSimDevice(local MACAddr) *simDevice {
	return &simDevice{
		local:   local,
		reply:   replyAddress(local),
		primed:  make(map[uint8]primedOp),
		flow:    12.5,
		replies: make(chan []byte, 16),
	}
}

func (d *simDevice) WriteFrame(frame []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(frame) != FrameSize {
		return fmt.Errorf("sim: unexpected frame length %d", len(frame))
	}

	index := frame[offIndex]
	cmd := Command(frame[offCommand])
	pdo, err := replyPDO(frame)
	if err != nil {
		return err
	}

	if cmd != 0 {
		// Prepare: prime the mailbox for the matching run index.
		payload := make([]byte, payloadLen)
		copy(payload, frame[offPayload:offPayload+payloadLen])
		d.primed[index+runIndexOffset] = primedOp{cmd: cmd, pdo: pdo, payload: payload}
		d.writes = append(d.writes, simWrite{kind: kindPrepare, cmd: cmd, pdo: pdo, index: index})

		if !d.silent {
			d.enqueue(d.buildReply(index, pdo, nil))
		}
		return nil
	}

	// Run: execute the primed operation.
	d.writes = append(d.writes, simWrite{kind: kindRun, pdo: pdo, index: index})

	op, ok := d.primed[index]
	if !ok {
		return fmt.Errorf("sim: run frame with index %#02x has no primed operation", index)
	}

	if op.cmd == Download && !d.dropSetpoint {
		d.setpoint = float64(math.Float32frombits(binary.LittleEndian.Uint32(op.payload)))
	}

	value := d.flow
	if op.pdo == PDOSetpointFlow {
		value = d.setpoint
	}

	replyPdo := op.pdo
	if d.pdoMismatchLeft > 0 {
		d.pdoMismatchLeft--
		replyPdo = op.pdo + 1
	}

	if !d.silent {
		d.enqueue(d.buildReply(index, replyPdo, packF32LE(float32(value))))
	}
	return nil
}

func (d *simDevice) ReadFrame(deadline time.Time) ([]byte, error) {
	if d.replyDelay > 0 {
		time.Sleep(d.replyDelay)
	}

	select {
	case f := <-d.replies:
		return f, nil
	case <-time.After(time.Until(deadline)):
		return nil, ErrTimeout
	}
}

func (d *simDevice) Close() error { return nil }

// buildReply assembles a well-formed reply frame with working count 1.
func (d *simDevice) buildReply(index uint8, pdo PDO, payload []byte) []byte {
	f := make([]byte, FrameSize)
	copy(f[offDestination:], broadcastAddr[:])
	copy(f[offSource:], d.reply[:])
	binary.BigEndian.PutUint16(f[offEtherType:], EtherTypeEtherCAT)
	binary.BigEndian.PutUint16(f[offHeaderWord:], headerWord)
	f[offIndex] = index
	f[offIndexPair] = index + 1

	pdoBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(pdoBytes, uint16(pdo))
	f[offPDO] = pdoBytes[1]
	f[offPDO+1] = pdoBytes[0]
	f[offSizeClass] = sizeClassF32
	copy(f[offPayload:], payload)
	binary.LittleEndian.PutUint16(f[offWorkingCount:], 1)
	return f
}

// enqueue applies the corruption knobs and queues the reply.
func (d *simDevice) enqueue(f []byte) {
	if d.corruptSourceLeft > 0 {
		d.corruptSourceLeft--
		f[offSource] ^= 0xff
	}
	if d.staleIndexLeft > 0 {
		d.staleIndexLeft--
		f[offIndex]++
	}
	d.replies <- f
}

// writeLog returns a snapshot of the recorded writes.
func (d *simDevice) writeLog() []simWrite {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]simWrite, len(d.writes))
	copy(out, d.writes)
	return out
}
