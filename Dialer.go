/*
File Name:  Dialer.go

The dialer resolves an address and connects on the configured port;
on success the resulting socket is served exactly like an inbound one.
*/

package core

import (
	"fmt"
	"net"
)

// ConnectToPeer resolves addr and connects to it on the node's configured
// port. It is non-blocking: the dial itself runs on its own goroutine.
func (b *Backend) ConnectToPeer(addr string) {
	go b.dial(addr)
}

func (b *Backend) dial(addr string) {
	if resolved, err := net.ResolveIPAddr("ip4", addr); err == nil && b.isLocalAddress(resolved.IP) {
		return // avoid a self-dial loop
	}

	port := b.Config.Port
	if port == 0 {
		port = DefaultPort
	}
	target := fmt.Sprintf("%s:%d", addr, port)

	conn, err := net.Dial("tcp", target)
	if err != nil {
		b.Logger.Printf("dialer: connect to %s failed: %v\n", target, err)
		return
	}

	b.serveConnection(conn)
}
