package web

import (
	"net"

	"golang.org/x/sys/unix"
)

// roundTrip returns the smoothed round trip time of conn in
// milliseconds, as tracked by the kernel.
func roundTrip(conn net.Conn) (uint16, error) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return 0, nil
	}
	info, err := tcpInfo(tcp)
	if err != nil {
		return 0, err
	}
	return uint16(info.Rtt / 1000), nil
}

func tcpInfo(conn *net.TCPConn) (*unix.TCPInfo, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}

	var info *unix.TCPInfo
	ctrlErr := raw.Control(func(fd uintptr) {
		info, err = unix.GetsockoptTCPInfo(int(fd), unix.IPPROTO_TCP, unix.TCP_INFO)
	})
	switch {
	case ctrlErr != nil:
		return nil, ctrlErr
	case err != nil:
		return nil, err
	}

	return info, nil
}
