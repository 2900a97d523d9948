package ecat

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/openmfc/go-mfc/logger"
)

// SessionConfig holds the configuration parameters for an EtherCAT SDO
// session.
type SessionConfig struct {
	// ifname is the network interface the raw socket binds to.
	ifname string

	// position identifies the target slave on the EtherCAT segment.
	// Defaults to 0.
	position uint16

	// exchangeTimeout is the deadline for one full prepare/run exchange,
	// including any deferrals and step retries. Defaults to 1 second.
	exchangeTimeout time.Duration

	// retryDelay is the fixed wait before a deferred exchange re-enters at
	// idle. Defaults to 100 milliseconds.
	retryDelay time.Duration

	// prepareRetryLimit bounds resends of a rejected prepare reply.
	// Defaults to 3, mirroring the set retry default.
	prepareRetryLimit int

	// runRetryLimit bounds resends of a rejected or PDO-mismatched run
	// reply. Defaults to 3.
	runRetryLimit int

	// setRetryLimit bounds repeats of a whole set exchange whose readback
	// falls outside tolerance. Defaults to 3.
	setRetryLimit int

	// indexSource draws the per-exchange transfer index.
	indexSource func() uint8

	// logger receives session events.
	logger logger.Logger
}

// NewSessionConfig creates a session configuration for the given network
// interface with default values, then applies the provided options.
func NewSessionConfig(ifname string, opts ...SessionOption) (*SessionConfig, error) {
	if ifname == "" {
		return nil, errors.New("ecat: interface name is empty")
	}

	cfg := &SessionConfig{
		ifname:            ifname,
		position:          0,
		exchangeTimeout:   time.Second,
		retryDelay:        100 * time.Millisecond,
		prepareRetryLimit: 3,
		runRetryLimit:     3,
		setRetryLimit:     3,
		indexSource:       randomIndex,
		logger:            logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// SessionOption represents a functional option for configuring a
// SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc func(*SessionConfig) error

func (f sessionOptFunc) apply(cfg *SessionConfig) error { return f(cfg) }

// WithSlavePosition sets the slave position on the EtherCAT segment.
// The position must be in [0, 65534]; the frame also carries position+1.
func WithSlavePosition(position int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if position < 0 || position >= math.MaxUint16 {
			return fmt.Errorf("ecat: slave position %d out of range [0, %d)", position, math.MaxUint16)
		}
		cfg.position = uint16(position)
		return nil
	})
}

// WithExchangeTimeout sets the deadline for one full exchange.
func WithExchangeTimeout(d time.Duration) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d <= 0 {
			return fmt.Errorf("ecat: exchange timeout %v is not positive", d)
		}
		cfg.exchangeTimeout = d
		return nil
	})
}

// WithRetryDelay sets the fixed wait before a deferred exchange re-enters.
func WithRetryDelay(d time.Duration) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d <= 0 {
			return fmt.Errorf("ecat: retry delay %v is not positive", d)
		}
		cfg.retryDelay = d
		return nil
	})
}

// WithPrepareRetryLimit bounds resends of a rejected prepare reply before
// the exchange fails.
func WithPrepareRetryLimit(n int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if n < 0 {
			return fmt.Errorf("ecat: prepare retry limit %d is negative", n)
		}
		cfg.prepareRetryLimit = n
		return nil
	})
}

// WithRunRetryLimit bounds resends of a rejected or PDO-mismatched run
// reply before the exchange fails.
func WithRunRetryLimit(n int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if n < 0 {
			return fmt.Errorf("ecat: run retry limit %d is negative", n)
		}
		cfg.runRetryLimit = n
		return nil
	})
}

// WithSetRetryLimit bounds repeats of a set exchange whose readback falls
// outside tolerance.
func WithSetRetryLimit(n int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if n < 0 {
			return fmt.Errorf("ecat: set retry limit %d is negative", n)
		}
		cfg.setRetryLimit = n
		return nil
	})
}

// WithIndexSource replaces the transfer index source. Sources must return
// values in [10, 240); the default draws them from crypto/rand.
func WithIndexSource(source func() uint8) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if source == nil {
			return errors.New("ecat: index source is nil")
		}
		cfg.indexSource = source
		return nil
	})
}

// WithLogger sets the logger for the session.
func WithLogger(l logger.Logger) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if l == nil {
			return errors.New("ecat: logger is nil")
		}
		cfg.logger = l
		return nil
	})
}
