/*
File Name:  Gossip.go

The gossip driver is a per-connection periodic task: every tick it writes
PeerRequest, then ArchiveRequest, then the full local ArchiveResponse. The
cadence is intentionally coupled (not split across separate timers); the
matching receive loop on the same connection observes the peer's replies
without any cross-goroutine coordination.
*/

package core

import (
	"net"
	"time"

	"github.com/othiagos/p2p-blockchain-chat/protocol"
)

// GossipInterval is the fixed per-connection gossip cadence.
const GossipInterval = 5 * time.Second

func (b *Backend) gossipDriver(conn net.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(GossipInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if _, err := conn.Write([]byte{byte(protocol.KindPeerRequest)}); err != nil {
				return
			}
			if _, err := conn.Write([]byte{byte(protocol.KindArchiveRequest)}); err != nil {
				return
			}
			if _, err := conn.Write(b.Archive.Encode()); err != nil {
				return
			}
		}
	}
}
