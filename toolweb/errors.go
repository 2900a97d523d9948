package toolweb

import "errors"

var (
	// ErrEmptyResponse indicates the device returned an empty body after all
	// request retries. The firmware does this intermittently under load.
	ErrEmptyResponse = errors.New("toolweb: device returned empty response")

	// ErrRequestFailed indicates a non-success HTTP status from the device.
	ErrRequestFailed = errors.New("toolweb: device request failed")

	// ErrSetpointRange indicates a setpoint outside [0, max flow].
	ErrSetpointRange = errors.New("toolweb: setpoint out of range")

	// ErrUnknownGas indicates a gas with no configured instance on the
	// device. Instances must be created through the device website first.
	ErrUnknownGas = errors.New("toolweb: gas has no configured instance")

	// ErrUnknownDisplayMode indicates a display mode other than ip, flow, or
	// temperature.
	ErrUnknownDisplayMode = errors.New("toolweb: unknown display mode")
)
