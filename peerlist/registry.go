/*
File Name:  registry.go

The peer registry tracks IPv4 addresses of known peers by IP only (port
is always the well-known chat port). It never blocks on I/O while holding
its lock and must never be locked while an archive lock is held, to keep
lock ordering simple across the node.
*/

package peerlist

import (
	"sync"

	"github.com/othiagos/p2p-blockchain-chat/protocol"
)

// Registry is a deduplicated, concurrency-safe set of peer IPv4 addresses.
type Registry struct {
	mu   sync.Mutex
	seen map[uint32]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{seen: make(map[uint32]struct{})}
}

// Add inserts ip into the registry. It reports whether ip was not already
// present.
func (r *Registry) Add(ip uint32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.seen[ip]; ok {
		return false
	}
	r.seen[ip] = struct{}{}
	return true
}

// Remove deletes ip from the registry, if present.
func (r *Registry) Remove(ip uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.seen, ip)
}

// AddNew inserts every IP in ips not already known and returns exactly the
// subset that was newly inserted, in the order encountered.
func (r *Registry) AddNew(ips []uint32) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var added []uint32
	for _, ip := range ips {
		if _, ok := r.seen[ip]; ok {
			continue
		}
		r.seen[ip] = struct{}{}
		added = append(added, ip)
	}
	return added
}

// Len returns the number of known peers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

// Snapshot returns the known peer IPs in unspecified order.
func (r *Registry) Snapshot() []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint32, 0, len(r.seen))
	for ip := range r.seen {
		out = append(out, ip)
	}
	return out
}

// Encode returns the PeerResponse wire form of the current registry
// contents.
func (r *Registry) Encode() []byte {
	return protocol.EncodePeerResponse(r.Snapshot())
}
