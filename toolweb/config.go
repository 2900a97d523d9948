package toolweb

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openmfc/go-mfc/logger"
)

// defaultTimeout bounds every device request. The firmware answers fast or
// not at all.
const defaultTimeout = time.Second

// Option represents a functional option for configuring a Client.
type Option interface {
	apply(*Client) error
}

type optFunc func(*Client) error

func (f optFunc) apply(c *Client) error { return f(c) }

// WithTimeout sets the per-request timeout. Defaults to 1 second.
func WithTimeout(d time.Duration) Option {
	return optFunc(func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("toolweb: timeout %v is not positive", d)
		}
		c.httpc.Timeout = d
		return nil
	})
}

// WithPassword sets the password used to access admin settings on the web
// interface. Defaults to "config".
func WithPassword(password string) Option {
	return optFunc(func(c *Client) error {
		c.password = password
		return nil
	})
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return optFunc(func(c *Client) error {
		if httpc == nil {
			return errors.New("toolweb: http client is nil")
		}
		c.httpc = httpc
		return nil
	})
}

// WithRequestRetries bounds retries of requests that come back with an
// empty body. Defaults to 3.
func WithRequestRetries(n int) Option {
	return optFunc(func(c *Client) error {
		if n < 0 {
			return fmt.Errorf("toolweb: request retries %d is negative", n)
		}
		c.requestRetries = n
		return nil
	})
}

// WithLogger sets the logger for the client.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(c *Client) error {
		if l == nil {
			return errors.New("toolweb: logger is nil")
		}
		c.logger = l
		return nil
	})
}
