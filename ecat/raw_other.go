//go:build !linux

package ecat

// openFramer requires AF_PACKET sockets, which only Linux provides.
func openFramer(_ int) (Framer, error) {
	return nil, ErrUnsupportedPlatform
}
