//go:build !windows

/*
File Name:  reuseport_unix.go

A TCP listener bound with SO_REUSEADDR/SO_REUSEPORT, letting a restarted
node rebind its port immediately instead of waiting out TIME_WAIT.
*/

package reuseport

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Listen opens a TCP listener on addr with SO_REUSEADDR and SO_REUSEPORT
// set on the underlying socket before bind.
func Listen(network, addr string) (net.Listener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				if sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); sockErr != nil {
					return
				}
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}

	return lc.Listen(context.Background(), network, addr)
}
