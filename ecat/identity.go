package ecat

import (
	"encoding/binary"
	"fmt"
	"net"
)

// MACAddr is an Ethernet hardware address.
type MACAddr [6]byte

func (a MACAddr) String() string {
	return net.HardwareAddr(a[:]).String()
}

// replyAddressOffset models the device's reply addressing: frames come back
// from the bound address plus this offset, which sets the locally
// administered bit of the first octet.
const replyAddressOffset uint64 = 0x02 << 40

// resolveInterface looks up the bound interface's hardware address and
// index. Failure is fatal for the session; nothing works without the local
// address.
func resolveInterface(name string) (MACAddr, int, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return MACAddr{}, 0, fmt.Errorf("%w: %q: %v", ErrInterfaceResolution, name, err)
	}
	if len(ifi.HardwareAddr) != len(MACAddr{}) {
		return MACAddr{}, 0, fmt.Errorf("%w: %q has no 6-byte hardware address", ErrInterfaceResolution, name)
	}

	var mac MACAddr
	copy(mac[:], ifi.HardwareAddr)

	return mac, ifi.Index, nil
}

// replyAddress derives the source address expected on frames coming back
// from the device.
func replyAddress(local MACAddr) MACAddr {
	return macFromUint64(macToUint64(local) + replyAddressOffset)
}

func macToUint64(a MACAddr) uint64 {
	var buf [8]byte
	copy(buf[2:], a[:])
	return binary.BigEndian.Uint64(buf[:])
}

func macFromUint64(v uint64) MACAddr {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)

	var a MACAddr
	copy(a[:], buf[2:])
	return a
}
