package ecat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplyAddress(t *testing.T) {
	// The device replies from the bound address with the locally
	// administered bit of the first octet set.
	local := MACAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	want := MACAddr{0x02, 0x11, 0x22, 0x33, 0x44, 0x55}
	assert.Equal(t, want, replyAddress(local))
}

func TestReplyAddressCarry(t *testing.T) {
	// The offset is numeric, so a set bit carries into the next octet.
	local := MACAddr{0xff, 0x00, 0x00, 0x00, 0x00, 0x01}
	got := replyAddress(local)
	assert.Equal(t, MACAddr{0x01, 0x00, 0x00, 0x00, 0x00, 0x01}, got)
}

func TestMACRoundTrip(t *testing.T) {
	macs := []MACAddr{
		{},
		{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
	}
	for _, mac := range macs {
		require.Equal(t, mac, macFromUint64(macToUint64(mac)))
	}
}

func TestMACAddrString(t *testing.T) {
	mac := MACAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	assert.Equal(t, "00:11:22:33:44:55", mac.String())
}

func TestResolveInterfaceMissing(t *testing.T) {
	_, _, err := resolveInterface("mfc-missing0")
	require.ErrorIs(t, err, ErrInterfaceResolution)
}
