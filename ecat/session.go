package ecat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/openmfc/go-mfc/internal/pool"
	"github.com/openmfc/go-mfc/logger"
)

// setpointTolerance is the absolute tolerance used when verifying that a
// downloaded setpoint took effect.
const setpointTolerance = 0.01

// Flow is the pair of process values reported by Get.
type Flow struct {
	Actual   float64 `json:"flow"`
	Setpoint float64 `json:"setpoint"`
}

// Session drives SDO exchanges with a single slave over a raw link.
//
// At most one request/response exchange is in flight on the link at any
// time. The same raw socket must not see overlapping writes and reads, so
// this is enforced by the linkBusy and settingFlow flags rather than by
// locking: a public call that would overlap an in-flight exchange defers
// and re-enters at idle after the retry delay.
type Session struct {
	cfg       *SessionConfig
	logger    logger.Logger
	framer    Framer
	builder   frameBuilder
	validator frameValidator

	// linkBusy is true while an exchange holds the link, from its first
	// write until its last read has drained the socket buffer or failed.
	linkBusy atomic.Bool

	// settingFlow is true while a set exchange is in flight; reads observe
	// it and self-defer.
	settingFlow atomic.Bool

	closed atomic.Bool
}

// NewSession resolves the bound interface's hardware address, derives the
// device's expected reply address, and binds a raw socket to the interface.
//
// Construction fails with ErrInterfaceResolution if the interface cannot be
// resolved; no socket is opened in that case.
func NewSession(cfg *SessionConfig) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("ecat: session config is nil")
	}

	local, ifindex, err := resolveInterface(cfg.ifname)
	if err != nil {
		return nil, err
	}

	framer, err := openFramer(ifindex)
	if err != nil {
		return nil, err
	}

	return newSession(cfg, framer, local), nil
}

// newSession wires a session to an already open framer. Tests use it to
// substitute a simulated device for the raw socket.
func newSession(cfg *SessionConfig, framer Framer, local MACAddr) *Session {
	return &Session{
		cfg:    cfg,
		logger: cfg.logger.With("iface", cfg.ifname, "position", cfg.position),
		framer: framer,
		builder: frameBuilder{
			source:   local,
			position: cfg.position,
		},
		validator: frameValidator{
			want: HeaderTuple{
				Destination: broadcastAddr,
				Source:      replyAddress(local),
				EtherType:   EtherTypeEtherCAT,
				HeaderWord:  headerWord,
			},
		},
	}
}

// Close releases the raw socket. Further operations on the session fail
// with ErrSessionClosed.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.framer.Close()
}

// GetActual reads the measured flow.
func (s *Session) GetActual(ctx context.Context) (float64, error) {
	return s.read(ctx, PDOActualFlow)
}

// GetSetpoint reads the setpoint flow.
func (s *Session) GetSetpoint(ctx context.Context) (float64, error) {
	return s.read(ctx, PDOSetpointFlow)
}

// Get reads the measured flow and the setpoint flow.
func (s *Session) Get(ctx context.Context) (Flow, error) {
	actual, err := s.GetActual(ctx)
	if err != nil {
		return Flow{}, err
	}

	setpoint, err := s.GetSetpoint(ctx)
	if err != nil {
		return Flow{}, err
	}

	return Flow{Actual: actual, Setpoint: setpoint}, nil
}

// Set downloads a new setpoint and verifies it took effect.
//
// After the download completes, the setpoint is read back and compared to
// value within an absolute tolerance of 0.01. The whole download repeats up
// to the configured set retry limit before failing with
// ErrSetpointVerification. Transport faults are fatal immediately.
func (s *Session) Set(ctx context.Context, value float64) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}

	if err := s.acquireSetting(ctx); err != nil {
		return err
	}
	defer s.settingFlow.Store(false)

	attempts := s.cfg.setRetryLimit + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := s.download(ctx, PDOSetpointFlow, value); err != nil {
			return err
		}

		got, err := s.upload(ctx, PDOSetpointFlow)
		if err != nil {
			return err
		}

		if math.Abs(got-value) <= setpointTolerance {
			s.logger.Debug("setpoint confirmed", "value", value, "attempt", attempt)
			return nil
		}

		lastErr = fmt.Errorf("read back %v, want %v", got, value)
		s.logger.Info("setpoint not updated, retrying", "attempt", attempt, "got", got, "want", value)
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrSetpointVerification, attempts, lastErr)
}

// acquireSetting claims the settingFlow flag, deferring while another set
// exchange owns the link.
func (s *Session) acquireSetting(ctx context.Context) error {
	deadline := time.Now().Add(s.cfg.exchangeTimeout)
	for !s.settingFlow.CompareAndSwap(false, true) {
		s.logger.Debug("another set in flight, deferring")
		if err := s.deferRetry(ctx, deadline); err != nil {
			return err
		}
	}
	return nil
}

// read is the public upload path. While a set exchange is in flight it
// self-defers rather than interleaving frames on the shared socket.
func (s *Session) read(ctx context.Context, pdo PDO) (float64, error) {
	if s.closed.Load() {
		return 0, ErrSessionClosed
	}

	deadline := time.Now().Add(s.cfg.exchangeTimeout)
	for s.settingFlow.Load() {
		s.logger.Debug("set in flight, deferring read", "pdo", fmt.Sprintf("%#04x", uint16(pdo)))
		if err := s.deferRetry(ctx, deadline); err != nil {
			return 0, err
		}
	}

	return s.upload(ctx, pdo)
}

// upload drives a full upload exchange and decodes the returned value.
func (s *Session) upload(ctx context.Context, pdo PDO) (float64, error) {
	reply, err := s.exchange(ctx, Upload, pdo, nil)
	if err != nil {
		return 0, err
	}
	return replyValue(reply)
}

// download drives a full download exchange carrying the packed value.
func (s *Session) download(ctx context.Context, pdo PDO, value float64) error {
	_, err := s.exchange(ctx, Download, pdo, packF32LE(float32(value)))
	return err
}

// exchange runs the prepare/run state machine for one SDO request and
// returns the validated run reply.
//
// Header and index anomalies are retried in place up to the configured step
// retry limits, invisibly to the caller. Transport faults and an exceeded
// deadline surface immediately.
func (s *Session) exchange(ctx context.Context, cmd Command, pdo PDO, payload []byte) ([]byte, error) {
	deadline := time.Now().Add(s.cfg.exchangeTimeout)

	// Idle: claim the link, deferring while another exchange holds it. The
	// claim is released on every exit so a failed read cannot wedge the
	// session; a late reply left in the buffer is rejected by the index
	// echo check of the next exchange.
	for !s.linkBusy.CompareAndSwap(false, true) {
		s.logger.Debug("link busy, deferring exchange", "command", cmd.String())
		if err := s.deferRetry(ctx, deadline); err != nil {
			return nil, err
		}
	}
	defer s.linkBusy.Store(false)

	index := s.cfg.indexSource()

	prepare, err := s.builder.buildPrepare(index, cmd, pdo, payload)
	if err != nil {
		return nil, err
	}
	run, err := s.builder.buildRun(index+runIndexOffset, pdo)
	if err != nil {
		return nil, err
	}

	// Prepare step: a rejected reply resends the same frame with the same
	// index until the step retry budget is spent.
	if _, err := s.step(ctx, StatePreparePending, prepare, index, deadline, s.cfg.prepareRetryLimit, nil); err != nil {
		return nil, err
	}
	s.logger.Debug("prepare confirmed", "state", StatePrepareConfirmed.String(), "index", index)

	// Run step: additionally, the reply must carry the requested PDO. A
	// mismatch means the device updated its PDO table mid-flight, so the
	// run step repeats rather than failing.
	checkPDO := func(reply []byte) error {
		got, perr := replyPDO(reply)
		if perr != nil {
			return perr
		}
		if got != pdo {
			return fmt.Errorf("%w: got %#04x, want %#04x", ErrPdoMismatch, uint16(got), uint16(pdo))
		}
		return nil
	}

	reply, err := s.step(ctx, StateRunPending, run, index+runIndexOffset, deadline, s.cfg.runRetryLimit, checkPDO)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("exchange complete", "state", StateComplete.String(), "command", cmd.String())

	return reply, nil
}

// step writes frame and reads replies until one validates, resending the
// frame on a retryable rejection. check runs extra per-reply validation for
// the run step. Exceeding the retry budget is fatal for the exchange.
func (s *Session) step(ctx context.Context, state ExchangeState, frame []byte, index uint8, deadline time.Time, limit int, check func([]byte) error) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !time.Now().Before(deadline) {
			return nil, ErrTimeout
		}

		if err := s.framer.WriteFrame(frame); err != nil {
			return nil, fmt.Errorf("ecat: write %s frame: %w", state, err)
		}

		reply, err := s.framer.ReadFrame(deadline)
		if err != nil {
			return nil, fmt.Errorf("ecat: read %s reply: %w", state, err)
		}

		err = s.validator.validate(reply, index)
		if err == nil && check != nil {
			err = check(reply)
		}
		if err == nil {
			return reply, nil
		}
		if !retryable(err) {
			return nil, err
		}

		lastErr = err
		s.logger.Debug("reply rejected, resending", "state", state.String(), "attempt", attempt, "error", err)
	}

	return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrRetriesExhausted, state, limit+1, lastErr)
}

// retryable reports whether a validation failure is retried in place.
func retryable(err error) bool {
	return errors.Is(err, ErrMalformedFrame) ||
		errors.Is(err, ErrStaleReply) ||
		errors.Is(err, ErrPdoMismatch)
}

// deferRetry waits out the fixed retry delay before an exchange re-enters at
// idle, honoring both the context and the exchange deadline.
func (s *Session) deferRetry(ctx context.Context, deadline time.Time) error {
	if !time.Now().Add(s.cfg.retryDelay).Before(deadline) {
		return ErrTimeout
	}

	t := pool.AcquireTimer(s.cfg.retryDelay)
	defer pool.ReleaseTimer(t)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
