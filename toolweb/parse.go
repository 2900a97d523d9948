package toolweb

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Poll variable names the firmware reports, in the order they are polled.
const (
	evidActual      = "EVID_0" // sccm
	evidSetpoint    = "EVID_1" // sccm
	evidTemperature = "EVID_3" // degC
)

type pollValue struct {
	Name string `xml:"Name,attr"`
	Text string `xml:",chardata"`
}

type pollReply struct {
	Values []pollValue `xml:"V"`
}

// parsePollResponse converts the ToolWeb XML body into values keyed by
// EVID name.
func parsePollResponse(body string) (map[string]float64, error) {
	var reply pollReply
	if err := xml.Unmarshal([]byte(body), &reply); err != nil {
		return nil, fmt.Errorf("toolweb: parse poll response: %w", err)
	}

	out := make(map[string]float64, len(reply.Values))
	for _, v := range reply.Values {
		f, err := parseHexFloat(strings.TrimSpace(v.Text))
		if err != nil {
			return nil, fmt.Errorf("toolweb: poll value %s: %w", v.Name, err)
		}
		out[v.Name] = f
	}

	return out, nil
}

// parseHexFloat decodes the firmware's "0x41c80000" encoding: a hex string
// holding a big-endian IEEE 754 float.
func parseHexFloat(s string) (float64, error) {
	if !strings.HasPrefix(s, "0x") {
		return 0, fmt.Errorf("toolweb: value %q has no 0x prefix", s)
	}

	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return 0, fmt.Errorf("toolweb: value %q: %w", s, err)
	}
	if len(raw) != 4 {
		return 0, fmt.Errorf("toolweb: value %q is not 4 bytes", s)
	}

	return float64(math.Float32frombits(binary.BigEndian.Uint32(raw))), nil
}

// parseSelectedGas extracts the selected gas and full-scale flow from the
// device_html.js script the web UI loads.
func parseSelectedGas(js string) (string, float64, error) {
	var gas string
	var maxFlow float64

	for _, line := range strings.Split(js, "\n") {
		switch {
		case strings.Contains(line, "device_html.selected_gas"):
			if _, after, ok := strings.Cut(line, ": "); ok {
				gas = strings.Trim(strings.TrimSpace(after), `";`)
			}
		case strings.Contains(line, "device_html.full_scale_amount"):
			_, after, ok := strings.Cut(line, "=")
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimRight(strings.TrimSpace(after), ";"), 64)
			if err != nil {
				return "", 0, fmt.Errorf("toolweb: parse full scale amount: %w", err)
			}
			// The firmware reports whole units.
			maxFlow = math.Trunc(v)
		}
	}

	if gas == "" || maxFlow == 0 {
		return "", 0, fmt.Errorf("toolweb: device_html.js missing selected gas or full scale amount")
	}

	return gas, maxFlow, nil
}

// parseGasList extracts the configured gas instances from gaslist.js,
// mapping gas name to the instance command used to select it. The NOGAS
// placeholder instance is skipped.
func parseGasList(js string) (map[string]string, error) {
	lines := strings.Split(js, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "instancelist = new Array();" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("toolweb: gaslist.js has no instance list")
	}

	gases := make(map[string]string)
	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			continue
		}

		// Lines look like: instancelist[0] = "Gas Instance 1: N2";
		parts := strings.Split(line, `"`)
		if len(parts) < 2 {
			continue
		}
		cmd := strings.TrimSpace(strings.TrimRight(parts[1], `";`))

		fields := strings.Split(cmd, ": ")
		if len(fields) < 2 {
			continue
		}
		name := fields[1]
		if name != "NOGAS" {
			gases[name] = cmd
		}
	}

	return gases, nil
}
