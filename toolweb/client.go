package toolweb

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/openmfc/go-mfc/internal/pool"
	"github.com/openmfc/go-mfc/logger"
)

// retryPause spaces out retries after the firmware sends an empty body.
const retryPause = 50 * time.Millisecond

// pause waits for d or until the context is canceled.
func pause(ctx context.Context, d time.Duration) error {
	t := pool.AcquireTimer(d)
	defer pool.ReleaseTimer(t)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// State is the device state reported by Get.
type State struct {
	Actual      float64 `json:"actual"`
	Setpoint    float64 `json:"setpoint"`
	Temperature float64 `json:"temperature"`
	Max         float64 `json:"max"`
	Gas         string  `json:"gas"`
}

// Client is a driver for one MKS flow controller's ToolWeb interface.
//
// The zero value is not usable; create clients with NewClient. The first
// operation connects automatically if Connect was not called explicitly.
type Client struct {
	baseURL        string
	password       string
	httpc          *http.Client
	logger         logger.Logger
	requestRetries int
	pollBody       string

	// gases maps configured gas names to their instance commands. Loaded on
	// connect and refreshed after SetGas.
	gases *xsync.MapOf[string, string]

	mu             sync.RWMutex
	connected      bool
	isAnalog       bool
	analogSetpoint float64
	selectedGas    string
	maxFlow        float64
}

// NewClient creates a client for the device at address (an IP address or
// host name, with or without the http:// prefix).
func NewClient(address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, fmt.Errorf("toolweb: device address is empty")
	}

	host := strings.TrimSuffix(strings.TrimPrefix(address, "http://"), "/")

	c := &Client{
		baseURL:        "http://" + host + "/",
		password:       "config",
		httpc:          &http.Client{Timeout: defaultTimeout},
		logger:         logger.GetLogger(),
		requestRetries: 3,
		gases:          xsync.NewMapOf[string, string](),
	}

	var body strings.Builder
	body.WriteString("<PollRequest>")
	for _, evid := range []string{evidActual, evidSetpoint, evidTemperature} {
		fmt.Fprintf(&body, `<V Name="%s"/>`, evid)
	}
	body.WriteString("</PollRequest>")
	c.pollBody = body.String()

	for _, opt := range opts {
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("device", host)

	return c, nil
}

// Connect probes the device and downloads its configuration: whether it is
// an analog controller needing digital override, the configured gas
// instances, and the selected gas with its full-scale flow.
func (c *Client) Connect(ctx context.Context) error {
	resp, err := c.request(ctx, "mfc.js", "")
	if err != nil {
		return err
	}
	// Analog controllers (e.g. piMFC) expose the sp_adc_enable flag and
	// take analog input over digital until it is cleared.
	isAnalog := strings.Contains(resp, "mfc.sp_adc_enable")

	if err := c.loadGasInstances(ctx); err != nil {
		return err
	}

	gas, maxFlow, err := c.loadSelectedGas(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.isAnalog = isAnalog
	c.selectedGas = gas
	c.maxFlow = maxFlow
	c.connected = true
	c.mu.Unlock()

	c.logger.Info("connected", "gas", gas, "max_flow", maxFlow, "analog", isAnalog)

	if isAnalog {
		return c.enableDigital(ctx)
	}
	return nil
}

// Get retrieves the device state through the ToolWeb poll endpoint.
func (c *Client) Get(ctx context.Context) (*State, error) {
	if err := c.ensureConnected(ctx); err != nil {
		return nil, err
	}

	resp, err := c.request(ctx, "ToolWeb/Cmd", c.pollBody)
	if err != nil {
		return nil, err
	}

	values, err := parsePollResponse(resp)
	if err != nil {
		return nil, err
	}
	for _, evid := range []string{evidActual, evidSetpoint, evidTemperature} {
		if _, ok := values[evid]; !ok {
			return nil, fmt.Errorf("toolweb: poll response missing %s", evid)
		}
	}

	c.mu.RLock()
	state := &State{
		Actual:      values[evidActual],
		Setpoint:    values[evidSetpoint],
		Temperature: values[evidTemperature],
		Max:         c.maxFlow,
		Gas:         c.selectedGas,
	}
	c.mu.RUnlock()

	if err := c.handleAnalog(ctx, state.Setpoint); err != nil {
		return nil, err
	}
	return state, nil
}

// Set sets the setpoint flow rate, in sccm.
//
// This uses the undocumented flow_setpoint_html form handler the web
// interface submits to. On analog devices the setpoint is also cached so a
// detected reboot can restore it.
func (c *Client) Set(ctx context.Context, setpoint float64) error {
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	maxFlow := c.maxFlow
	isAnalog := c.isAnalog
	c.mu.RUnlock()

	if setpoint < 0 || setpoint > maxFlow {
		return fmt.Errorf("%w: %v not in [0, %v] sccm", ErrSetpointRange, setpoint, maxFlow)
	}

	if isAnalog {
		c.mu.Lock()
		c.analogSetpoint = setpoint
		c.mu.Unlock()

		if err := c.enableDigital(ctx); err != nil {
			return err
		}
		if err := c.SetDisplay(ctx, "flow"); err != nil {
			return err
		}
	}

	body := fmt.Sprintf("iobuf.setpoint=%.2f&SUBMIT=Submit", setpoint)
	_, err := c.request(ctx, "flow_setpoint_html", body)
	return err
}

// Open sets the flow to its maximum value.
func (c *Client) Open(ctx context.Context) error {
	// The full scale is only known after connecting; reading it earlier
	// would command zero flow.
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}

	c.mu.RLock()
	maxFlow := c.maxFlow
	c.mu.RUnlock()
	return c.Set(ctx, maxFlow)
}

// Close sets the flow to zero.
func (c *Client) Close(ctx context.Context) error {
	return c.Set(ctx, 0)
}

// SetGas selects the gas instance for the given gas name, which affects
// the flow control range.
//
// Gas instances must already be configured through the device website; the
// driver only selects among them.
func (c *Client) SetGas(ctx context.Context, gas string) error {
	if err := c.ensureConnected(ctx); err != nil {
		return err
	}

	cmd, ok := c.gases.Load(gas)
	if !ok {
		return fmt.Errorf("%w: %q (configured: %v)", ErrUnknownGas, gas, c.GasNames())
	}

	if err := c.login(ctx); err != nil {
		return err
	}

	body := "device_html.selected_gas=" + url.QueryEscape(cmd) + "&SUBMIT=Set"
	if _, err := c.request(ctx, "device_html_selected_gas", body); err != nil {
		return err
	}

	selected, maxFlow, err := c.loadSelectedGas(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.selectedGas = selected
	c.maxFlow = maxFlow
	c.mu.Unlock()

	c.logger.Info("gas selected", "gas", selected, "max_flow", maxFlow)
	return nil
}

// SetDisplay sets the display mode on devices with a display. Mode is one
// of "ip", "flow", or "temperature".
func (c *Client) SetDisplay(ctx context.Context, mode string) error {
	modes := map[string]int{"ip": 0, "flow": 1, "temperature": 2}
	index, ok := modes[strings.ToLower(mode)]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDisplayMode, mode)
	}

	if err := c.login(ctx); err != nil {
		return err
	}

	body := fmt.Sprintf("DISPLAY_MODE=%d&SUBMIT=Submit", index)
	_, err := c.request(ctx, "change_display_mode", body)
	return err
}

// GasNames returns the configured gas names, loaded at connect.
func (c *Client) GasNames() []string {
	names := make([]string, 0, c.gases.Size())
	c.gases.Range(func(name, _ string) bool {
		names = append(names, name)
		return true
	})
	return names
}

func (c *Client) ensureConnected(ctx context.Context) error {
	c.mu.RLock()
	connected := c.connected
	c.mu.RUnlock()

	if connected {
		return nil
	}
	return c.Connect(ctx)
}

// login authenticates against the device web UI. Required before gas and
// display settings.
func (c *Client) login(ctx context.Context) error {
	body := "CONFIG_PASSWORD=" + url.QueryEscape(c.password) + "&SUBMIT=Change+Settings"
	_, err := c.request(ctx, "configure_html_check", body)
	return err
}

// enableDigital enables digital setpoints on analog controllers.
func (c *Client) enableDigital(ctx context.Context) error {
	_, err := c.request(ctx, "flow_setpoint_html", "mfc.sp_adc_enable=0")
	return err
}

// handleAnalog restores the cached setpoint after an analog controller
// reboot. Those devices reboot occasionally, dropping the flow to zero.
func (c *Client) handleAnalog(ctx context.Context, setpoint float64) error {
	c.mu.RLock()
	isAnalog := c.isAnalog
	cached := c.analogSetpoint
	c.mu.RUnlock()

	if !isAnalog || math.Abs(setpoint-cached) <= 1e-3 {
		return nil
	}

	c.logger.Warn("analog controller rebooted, restoring setpoint", "setpoint", cached)
	return c.Set(ctx, cached)
}

func (c *Client) loadGasInstances(ctx context.Context) error {
	resp, err := c.request(ctx, "gaslist.js", "")
	if err != nil {
		return err
	}

	gases, err := parseGasList(resp)
	if err != nil {
		return err
	}

	c.gases.Clear()
	for name, cmd := range gases {
		c.gases.Store(name, cmd)
	}
	return nil
}

func (c *Client) loadSelectedGas(ctx context.Context) (string, float64, error) {
	resp, err := c.request(ctx, "device_html.js", "")
	if err != nil {
		return "", 0, err
	}
	return parseSelectedGas(resp)
}

// request performs one device request, retrying on an empty body. The
// Content-Type header matters: the poll endpoint insists on text/xml while
// every form handler wants x-www-form-urlencoded.
func (c *Client) request(ctx context.Context, endpoint, body string) (string, error) {
	method := http.MethodGet
	if body != "" {
		method = http.MethodPost
	}

	contentType := "application/x-www-form-urlencoded"
	if endpoint == "ToolWeb/Cmd" {
		contentType = "text/xml"
	}

	for attempt := 0; attempt <= c.requestRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, strings.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("toolweb: build request for %q: %w", endpoint, err)
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpc.Do(req)
		if err != nil {
			return "", fmt.Errorf("toolweb: request %q: %w", endpoint, err)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("toolweb: read response from %q: %w", endpoint, err)
		}

		if resp.StatusCode > http.StatusOK {
			return "", fmt.Errorf("%w: %q returned status %d", ErrRequestFailed, endpoint, resp.StatusCode)
		}
		if len(data) == 0 {
			c.logger.Debug("empty response, retrying", "endpoint", endpoint, "attempt", attempt)
			if err := pause(ctx, retryPause); err != nil {
				return "", err
			}
			continue
		}

		return string(data), nil
	}

	return "", fmt.Errorf("%w: %q after %d attempts", ErrEmptyResponse, endpoint, c.requestRetries+1)
}
