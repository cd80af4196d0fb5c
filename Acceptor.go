/*
File Name:  Acceptor.go

The acceptor binds the configured TCP port on all interfaces and spawns a
connection handler plus gossip driver for every inbound socket.
*/

package core

import (
	"fmt"
	"net"

	"github.com/othiagos/p2p-blockchain-chat/reuseport"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 51511

// StartListener binds the TCP listener and starts the accept loop. It is
// idempotent: calling it more than once has no additional effect.
func (b *Backend) StartListener() (err error) {
	b.listenerOnce.Do(func() {
		port := b.Config.Port
		if port == 0 {
			port = DefaultPort
		}
		addr := fmt.Sprintf("0.0.0.0:%d", port)

		var l net.Listener
		if b.Config.ReusePort {
			l, err = reuseport.Listen("tcp", addr)
		} else {
			l, err = net.Listen("tcp", addr)
		}
		if err != nil {
			return
		}

		b.listener = l
		b.Logger.Printf("listening on %s\n", addr)
		go b.acceptLoop()
	})
	return err
}

func (b *Backend) acceptLoop() {
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			b.Logger.Printf("acceptor: stopped accepting: %v\n", err)
			return
		}
		go b.serveConnection(conn)
	}
}
