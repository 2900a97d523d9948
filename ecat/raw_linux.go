//go:build linux

package ecat

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// recvBufLen covers a full Ethernet frame; replies are FrameSize bytes but
// the kernel may deliver padding.
const recvBufLen = 1500

// rawFramer is a Framer over an AF_PACKET socket bound to one interface and
// filtered to the EtherCAT ethertype.
//
// The socket is non-blocking and wrapped in an os.File so the runtime
// poller enforces read deadlines.
type rawFramer struct {
	file *os.File
}

var _ Framer = (*rawFramer)(nil)

// htons converts a short to network byte order for the socket layer.
func htons(v uint16) uint16 {
	return v<<8 | v>>8
}

func openFramer(ifindex int) (Framer, error) {
	fd, err := syscall.Socket(syscall.AF_PACKET, syscall.SOCK_RAW, int(htons(EtherTypeEtherCAT)))
	if err != nil {
		return nil, fmt.Errorf("ecat: open raw socket: %w", err)
	}

	sa := &syscall.SockaddrLinklayer{
		Protocol: htons(EtherTypeEtherCAT),
		Ifindex:  ifindex,
	}
	if err := syscall.Bind(fd, sa); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("ecat: bind raw socket: %w", err)
	}

	if err := syscall.SetNonblock(fd, true); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("ecat: set non-blocking: %w", err)
	}

	return &rawFramer{file: os.NewFile(uintptr(fd), "ethercat")}, nil
}

func (r *rawFramer) WriteFrame(frame []byte) error {
	n, err := r.file.Write(frame)
	if err != nil {
		return fmt.Errorf("ecat: write frame: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("ecat: short write: %d of %d bytes", n, len(frame))
	}
	return nil
}

func (r *rawFramer) ReadFrame(deadline time.Time) ([]byte, error) {
	if err := r.file.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("ecat: set read deadline: %w", err)
	}

	buf := make([]byte, recvBufLen)
	n, err := r.file.Read(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("ecat: read frame: %w", err)
	}

	return buf[:n], nil
}

func (r *rawFramer) Close() error {
	return r.file.Close()
}
