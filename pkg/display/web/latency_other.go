//go:build !linux

package web

import "net"

// roundTrip is only available on linux.
func roundTrip(net.Conn) (uint16, error) {
	return 0, nil
}
