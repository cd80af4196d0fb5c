/*
File Name:  Node.go

Backend is the composition root: it owns the peer registry and the
archive behind concurrency guards appropriate to their access patterns,
and exposes the operations used by the command shell and the webapi
package.
*/

package core

import (
	"log"
	"net"
	"sync"

	"github.com/othiagos/p2p-blockchain-chat/chain"
	"github.com/othiagos/p2p-blockchain-chat/peerlist"
	"github.com/othiagos/p2p-blockchain-chat/protocol"
)

// Backend represents a running chat node.
type Backend struct {
	Config *Config
	Logger *log.Logger

	Peers   *peerlist.Registry
	Archive *chain.Archive

	Hooks Hooks

	listenerOnce sync.Once
	listener     net.Listener

	// connsMu guards conns, the set of currently live sockets, used only
	// for the best-effort Notification fan-out on local append (§4.8).
	// It is never held across I/O and never nested with the archive or
	// peer registry locks.
	connsMu sync.Mutex
	conns   map[uint32]net.Conn
}

// Hooks lets external collaborators (the webapi package, tests) observe
// node events without the core depending on them. Every field is optional;
// nil hooks are simply skipped.
type Hooks struct {
	OnPeerConnected    func(ip uint32)
	OnPeerDisconnected func(ip uint32)
	OnNotification     func(text string)
	OnArchiveUpdated   func()
}

func (h Hooks) peerConnected(ip uint32) {
	if h.OnPeerConnected != nil {
		h.OnPeerConnected(ip)
	}
}

func (h Hooks) peerDisconnected(ip uint32) {
	if h.OnPeerDisconnected != nil {
		h.OnPeerDisconnected(ip)
	}
}

func (h Hooks) notification(text string) {
	if h.OnNotification != nil {
		h.OnNotification(text)
	}
}

func (h Hooks) archiveUpdated() {
	if h.OnArchiveUpdated != nil {
		h.OnArchiveUpdated()
	}
}

// NewBackend builds a Backend ready to StartListener/ConnectToPeer.
func NewBackend(cfg *Config, logger *log.Logger) *Backend {
	return &Backend{
		Config:  cfg,
		Logger:  logger,
		Peers:   peerlist.New(),
		Archive: chain.New(),
		conns:   make(map[uint32]net.Conn),
	}
}

// registerConn tracks conn as the live socket for ip, for notification
// fan-out only.
func (b *Backend) registerConn(ip uint32, conn net.Conn) {
	b.connsMu.Lock()
	defer b.connsMu.Unlock()
	b.conns[ip] = conn
}

// unregisterConn stops tracking the live socket for ip.
func (b *Backend) unregisterConn(ip uint32) {
	b.connsMu.Lock()
	defer b.connsMu.Unlock()
	delete(b.conns, ip)
}

// broadcastNotification sends a Notification message to every currently
// connected peer. It is a best-effort, non-authoritative nudge: write
// failures are ignored here, since the matching receive loop will notice
// the broken connection and tear it down.
func (b *Backend) broadcastNotification(text string) {
	b.connsMu.Lock()
	conns := make([]net.Conn, 0, len(b.conns))
	for _, c := range b.conns {
		conns = append(conns, c)
	}
	b.connsMu.Unlock()

	msg := protocol.EncodeNotification(text)
	for _, c := range conns {
		c.Write(msg)
	}
}
