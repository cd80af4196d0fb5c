//go:build windows

/*
File Name:  reuseport_windows.go

SO_REUSEPORT has no Windows equivalent; fall back to a plain listener.
*/

package reuseport

import "net"

// Listen opens a plain TCP listener on addr. SO_REUSEPORT is a Unix-only
// socket option; Windows callers get standard bind semantics.
func Listen(network, addr string) (net.Listener, error) {
	return net.Listen(network, addr)
}
