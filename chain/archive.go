/*
File Name:  archive.go

The archive is the ordered, append-only chat history shared across the
mesh. Each entry's digest binds it to a bounded window of its predecessors
(see windowPreimage), so validating the whole chain costs O(N) with a small
constant instead of O(N^2).

Encoding of the ArchiveResponse wire form produced by Encode/consumed by
Decode:
Offset  Size  Info
0       1     Kind byte, always KindArchiveResponse
1       4     Count of entries (big-endian u32)
5       ?     Count * ChatEntry (see entry.go)
*/

package chain

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/othiagos/p2p-blockchain-chat/protocol"
)

// WindowSize is the number of predecessor entries folded into an entry's
// window preimage, in addition to the entry itself (20 entries hashed per
// slot once the archive is at least that long).
const WindowSize = 19

// Archive is the ordered sequence of chat entries held by a node. It is
// safe for concurrent use: mining and whole-archive replacement take the
// exclusive lock, every other operation only reads.
type Archive struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty archive. The empty archive is valid.
func New() *Archive {
	return &Archive{}
}

// Len returns the number of entries in the archive.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}

// Entries returns a copy of the archive's entries in order, safe to range
// over outside the lock.
func (a *Archive) Entries() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]Entry, len(a.entries))
	copy(out, a.entries)
	return out
}

// Messages returns the chat text of each entry in archive order.
func (a *Archive) Messages() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]string, len(a.entries))
	for i, e := range a.entries {
		out[i] = string(e.Message)
	}
	return out
}

// IsValid reports whether every entry's digest is the MD5 of its window
// preimage and begins with two zero bytes. The empty archive is valid.
func (a *Archive) IsValid() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return isValid(a.entries)
}

func isValid(entries []Entry) bool {
	for i := range entries {
		if entries[i].Digest[0] != 0 || entries[i].Digest[1] != 0 {
			return false
		}
		if md5.Sum(windowPreimage(entries, i)) != entries[i].Digest {
			return false
		}
	}
	return true
}

// windowPreimage concatenates encode(entries[j]) for j in
// [max(0, i-WindowSize), i], with entries[i] itself encoded without its
// digest field.
func windowPreimage(entries []Entry, i int) []byte {
	start := i - WindowSize
	if start < 0 {
		start = 0
	}

	var buf []byte
	for j := start; j <= i; j++ {
		buf = entries[j].encode(buf, j != i)
	}
	return buf
}

// Encode emits the ArchiveResponse wire form of the archive.
func (a *Archive) Encode() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()

	buf := make([]byte, 0, 5+len(a.entries)*32)
	buf = append(buf, byte(protocol.KindArchiveResponse))

	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(a.entries)))
	buf = append(buf, countBuf[:]...)

	for _, e := range a.entries {
		buf = e.encode(buf, true)
	}
	return buf
}

// Decode parses the ArchiveResponse wire form produced by Encode. It
// returns an error if any structural field is malformed or truncated.
// Decode does NOT verify proof-of-work; callers must call IsValid before
// accepting the result.
func Decode(data []byte) (*Archive, error) {
	if len(data) < 5 {
		return nil, errors.New("chain: archive frame shorter than its header")
	}
	if protocol.Kind(data[0]) != protocol.KindArchiveResponse {
		return nil, errors.New("chain: not an ArchiveResponse frame")
	}

	count := binary.BigEndian.Uint32(data[1:5])
	entries := make([]Entry, 0, count)
	offset := 5
	for i := uint32(0); i < count; i++ {
		e, n, err := decodeEntry(data[offset:])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		offset += n
	}
	return &Archive{entries: entries}, nil
}

// Append validates message, mines a nonce that satisfies the difficulty
// target against the archive's current tail, and appends the resulting
// entry. It blocks until mining succeeds; there is no cap on attempts. It
// returns false without mutating the archive iff message fails input
// validation.
func (a *Archive) Append(message []byte) bool {
	if err := ValidateMessage(message); err != nil {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	start := len(a.entries) - WindowSize
	if start < 0 {
		start = 0
	}

	var prefix []byte
	for _, e := range a.entries[start:] {
		prefix = e.encode(prefix, true)
	}

	header := make([]byte, 0, 1+len(message))
	header = append(header, byte(len(message)))
	header = append(header, message...)

	var nonce [NonceSize]byte
	candidate := make([]byte, 0, len(prefix)+len(header)+NonceSize)

	for {
		if _, err := rand.Read(nonce[:]); err != nil {
			panic("chain: crypto/rand unavailable: " + err.Error())
		}

		candidate = candidate[:0]
		candidate = append(candidate, prefix...)
		candidate = append(candidate, header...)
		candidate = append(candidate, nonce[:]...)

		sum := md5.Sum(candidate)
		if sum[0] == 0 && sum[1] == 0 {
			a.entries = append(a.entries, Entry{
				Message: append([]byte(nil), message...),
				Nonce:   nonce,
				Digest:  sum,
			})
			return true
		}
	}
}

// ReplaceIfLonger atomically replaces the archive's contents with other's
// iff other is valid and strictly longer than the current archive. It
// reports whether the replacement happened. Equal-length archives are left
// unchanged.
func (a *Archive) ReplaceIfLonger(other *Archive) bool {
	other.mu.RLock()
	otherEntries := make([]Entry, len(other.entries))
	copy(otherEntries, other.entries)
	other.mu.RUnlock()

	if !isValid(otherEntries) {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if len(otherEntries) <= len(a.entries) {
		return false
	}
	a.entries = otherEntries
	return true
}
