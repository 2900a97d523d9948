package toolweb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexFloat(t *testing.T) {
	v, err := parseHexFloat("0x41c80000")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, v, 1e-6)

	v, err = parseHexFloat("0x00000000")
	require.NoError(t, err)
	assert.Zero(t, v)

	for _, bad := range []string{"", "41c80000", "0xzzzz", "0x41c800", "0x41c8000000"} {
		_, err := parseHexFloat(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestParsePollResponse(t *testing.T) {
	body := `<PollResponse>` +
		`<V Name="EVID_0">0x41480000</V>` +
		`<V Name="EVID_1">0x42480000</V>` +
		`<V Name="EVID_3">0x41c80000</V>` +
		`</PollResponse>`

	values, err := parsePollResponse(body)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, values[evidActual], 1e-6)
	assert.InDelta(t, 50.0, values[evidSetpoint], 1e-6)
	assert.InDelta(t, 25.0, values[evidTemperature], 1e-6)

	_, err = parsePollResponse("not xml")
	require.Error(t, err)

	_, err = parsePollResponse(`<PollResponse><V Name="EVID_0">garbage</V></PollResponse>`)
	require.Error(t, err)
}

func TestParseSelectedGas(t *testing.T) {
	js := "something = 1;\n" +
		"device_html.selected_gas: \"N2\";\n" +
		"device_html.full_scale_amount=500.00;\n"

	gas, maxFlow, err := parseSelectedGas(js)
	require.NoError(t, err)
	assert.Equal(t, "N2", gas)
	assert.Equal(t, 500.0, maxFlow)

	_, _, err = parseSelectedGas("nothing useful")
	require.Error(t, err)
}

func TestParseGasList(t *testing.T) {
	js := "junk = 0;\n" +
		"instancelist = new Array();\n" +
		"instancelist[0] = \"Gas Instance 1: N2\";\n" +
		"instancelist[1] = \"Gas Instance 2: CO2\";\n" +
		"instancelist[2] = \"Gas Instance 3: NOGAS\";\n"

	gases, err := parseGasList(js)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"N2":  "Gas Instance 1: N2",
		"CO2": "Gas Instance 2: CO2",
	}, gases)

	_, err = parseGasList("no instance list here")
	require.Error(t, err)
}
