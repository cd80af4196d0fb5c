/*
File Name:  Connection.go

Per-connection state machine: one receive loop dispatching on the leading
kind byte, running alongside an independent gossip driver (Gossip.go) on
the same socket. Any read error terminates the connection and removes the
peer from the registry.
*/

package core

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/othiagos/p2p-blockchain-chat/chain"
	"github.com/othiagos/p2p-blockchain-chat/protocol"
)

// maxArchiveResponseEntries guards against an implausibly large count field
// in a malformed or hostile ArchiveResponse causing a huge allocation.
const maxArchiveResponseEntries = 1 << 20

// remoteIPv4 extracts the remote IPv4 address of conn. IPv6 peers are not
// tracked.
func remoteIPv4(conn net.Conn) (uint32, bool) {
	tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return 0, false
	}
	return ipToUint32(tcpAddr.IP)
}

// serveConnection runs the receive loop and gossip driver for one TCP
// connection, whether it was accepted or dialed. It blocks until the
// connection terminates.
func (b *Backend) serveConnection(conn net.Conn) {
	defer conn.Close()

	ip, ok := remoteIPv4(conn)
	if !ok {
		return
	}

	b.Peers.Add(ip)
	b.registerConn(ip, conn)
	b.Hooks.peerConnected(ip)
	b.Logger.Printf("peer %s connected\n", ipToString(ip))

	done := make(chan struct{})
	go b.gossipDriver(conn, done)

	b.receiveLoop(conn)

	close(done)
	b.Peers.Remove(ip)
	b.unregisterConn(ip)
	b.Hooks.peerDisconnected(ip)
	b.Logger.Printf("peer %s disconnected\n", ipToString(ip))
}

// receiveLoop reads one kind byte at a time and dispatches to the matching
// handler. Any read error, or a handler reporting it should stop, ends the
// loop.
func (b *Backend) receiveLoop(conn net.Conn) {
	var kindBuf [1]byte
	for {
		if _, err := io.ReadFull(conn, kindBuf[:]); err != nil {
			return
		}

		kind := protocol.Kind(kindBuf[0])
		if !kind.Valid() {
			continue // unrecognized kind: drop and keep reading
		}

		var ok bool
		switch kind {
		case protocol.KindPeerRequest:
			ok = b.handlePeerRequest(conn)
		case protocol.KindPeerResponse:
			ok = b.handlePeerResponse(conn)
		case protocol.KindArchiveRequest:
			ok = b.handleArchiveRequest(conn)
		case protocol.KindArchiveResponse:
			ok = b.handleArchiveResponse(conn)
		case protocol.KindNotification:
			ok = b.handleNotification(conn)
		}
		if !ok {
			return
		}
	}
}

func (b *Backend) handlePeerRequest(conn net.Conn) bool {
	_, err := conn.Write(b.Peers.Encode())
	return err == nil
}

func (b *Backend) handlePeerResponse(conn net.Conn) bool {
	ips, err := protocol.DecodePeerResponse(conn)
	if err != nil {
		return false
	}

	for _, ip := range b.Peers.AddNew(ips) {
		if b.isLocalAddress(ipFromUint32(ip)) {
			continue
		}
		b.ConnectToPeer(ipToString(ip))
	}
	return true
}

func (b *Backend) handleArchiveRequest(conn net.Conn) bool {
	if b.Archive.Len() == 0 {
		return true
	}
	_, err := conn.Write(b.Archive.Encode())
	return err == nil
}

func (b *Backend) handleArchiveResponse(conn net.Conn) bool {
	var countBuf [4]byte
	if _, err := io.ReadFull(conn, countBuf[:]); err != nil {
		return false
	}
	count := binary.BigEndian.Uint32(countBuf[:])
	if count > maxArchiveResponseEntries {
		return false
	}

	buf := make([]byte, 0, 5+int(count)*32)
	buf = append(buf, byte(protocol.KindArchiveResponse))
	buf = append(buf, countBuf[:]...)

	for i := uint32(0); i < count; i++ {
		var lenByte [1]byte
		if _, err := io.ReadFull(conn, lenByte[:]); err != nil {
			return false
		}

		rest := make([]byte, int(lenByte[0])+chain.NonceSize+chain.DigestSize)
		if _, err := io.ReadFull(conn, rest); err != nil {
			return false
		}

		buf = append(buf, lenByte[0])
		buf = append(buf, rest...)
	}

	received, err := chain.Decode(buf)
	if err != nil {
		return false
	}

	if b.Archive.ReplaceIfLonger(received) {
		b.Hooks.archiveUpdated()
	}
	return true
}

func (b *Backend) handleNotification(conn net.Conn) bool {
	text, err := protocol.DecodeNotification(conn)
	if err != nil {
		return false
	}
	b.Hooks.notification(text)
	return true
}
