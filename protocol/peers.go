/*
File Name:  peers.go

Encoding of PeerResponse (kind 0x02 handled by the caller), the wire form of
the peer registry.
*/

package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// EncodePeerResponse builds a complete PeerResponse message (kind byte, u32
// count, then count big-endian u32 IPv4 addresses) for the given addresses.
func EncodePeerResponse(ips []uint32) []byte {
	buf := make([]byte, 1+4+4*len(ips))
	buf[0] = byte(KindPeerResponse)
	binary.BigEndian.PutUint32(buf[1:5], uint32(len(ips)))

	for i, ip := range ips {
		off := 5 + i*4
		binary.BigEndian.PutUint32(buf[off:off+4], ip)
	}
	return buf
}

// DecodePeerResponse reads the count and IPv4 list of a PeerResponse
// payload. The kind byte must already have been consumed by the caller.
func DecodePeerResponse(r io.Reader) ([]uint32, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, err
	}
	count := binary.BigEndian.Uint32(countBuf[:])

	// Guard against absurd counts causing a huge allocation from a
	// malformed or hostile peer; the archive/peer list will never
	// realistically approach this during normal gossip.
	if count > 1<<20 {
		return nil, errors.New("protocol: PeerResponse count implausibly large")
	}

	ips := make([]uint32, 0, count)
	var ipBuf [4]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, ipBuf[:]); err != nil {
			return nil, err
		}
		ips = append(ips, binary.BigEndian.Uint32(ipBuf[:]))
	}
	return ips, nil
}
