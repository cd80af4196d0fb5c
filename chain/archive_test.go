package chain

import (
	"bytes"
	"crypto/md5"
	"testing"
)

func TestAppendProducesValidDigest(t *testing.T) {
	a := New()
	if !a.Append([]byte("hello")) {
		t.Fatal("Append(\"hello\") = false, want true")
	}
	if a.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", a.Len())
	}

	entries := a.Entries()
	e := entries[0]
	if e.Digest[0] != 0 || e.Digest[1] != 0 {
		t.Fatalf("digest %x does not start with two zero bytes", e.Digest)
	}

	preimage := append([]byte{byte(len("hello"))}, []byte("hello")...)
	preimage = append(preimage, e.Nonce[:]...)
	want := md5.Sum(preimage)
	if want != e.Digest {
		t.Fatalf("digest %x != MD5(len,message,nonce) %x", e.Digest, want)
	}

	if !a.IsValid() {
		t.Fatal("IsValid() = false, want true")
	}
}

func TestAppendRejectsInvalidMessages(t *testing.T) {
	cases := map[string][]byte{
		"empty":          {},
		"too long":       bytes.Repeat([]byte("a"), 256),
		"below printable": []byte("bad\x19byte"),
		"above printable": []byte("bad\x7Fbyte"),
	}

	for name, msg := range cases {
		a := New()
		if a.Append(msg) {
			t.Errorf("%s: Append(%q) = true, want false", name, msg)
		}
		if a.Len() != 0 {
			t.Errorf("%s: archive mutated on rejected append", name)
		}
	}
}

func TestAppendBoundaryLengths(t *testing.T) {
	a := New()
	if !a.Append([]byte("a")) {
		t.Error("Append of length-1 message rejected")
	}
	if !a.Append(bytes.Repeat([]byte("a"), 255)) {
		t.Error("Append of length-255 message rejected")
	}
	if a.Append(bytes.Repeat([]byte("a"), 256)) {
		t.Error("Append of length-256 message accepted")
	}
}

func TestAppendBoundaryBytes(t *testing.T) {
	a := New()
	if !a.Append([]byte{0x20}) {
		t.Error("Append of 0x20 byte rejected")
	}
	if !a.Append([]byte{0x7E}) {
		t.Error("Append of 0x7E byte rejected")
	}
	if a.Append([]byte{0x19}) {
		t.Error("Append of 0x19 byte accepted")
	}
	if a.Append([]byte{0x7F}) {
		t.Error("Append of 0x7F byte accepted")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := New()
	for _, msg := range []string{"hello", "world", "third message"} {
		if !a.Append([]byte(msg)) {
			t.Fatalf("Append(%q) failed", msg)
		}
	}

	encoded := a.Encode()
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.IsValid() {
		t.Fatal("decoded archive is not valid")
	}
	if decoded.Len() != a.Len() {
		t.Fatalf("decoded.Len() = %d, want %d", decoded.Len(), a.Len())
	}

	want := a.Entries()
	got := decoded.Entries()
	for i := range want {
		if !bytes.Equal(want[i].Message, got[i].Message) || want[i].Nonce != got[i].Nonce || want[i].Digest != got[i].Digest {
			t.Errorf("entry %d mismatch after round trip", i)
		}
	}

	if !bytes.Equal(decoded.Encode(), encoded) {
		t.Error("re-encoding a decoded archive changed the bytes")
	}
}

func TestEmptyArchive(t *testing.T) {
	a := New()
	if !a.IsValid() {
		t.Error("empty archive should be valid")
	}
	if a.Len() != 0 {
		t.Errorf("Len() = %d, want 0", a.Len())
	}
	encoded := a.Encode()
	if len(encoded) != 5 {
		t.Fatalf("empty archive encoding length = %d, want 5", len(encoded))
	}
}

func TestWindowBoundaryAt20And21Entries(t *testing.T) {
	a := New()
	for i := 0; i < 21; i++ {
		if !a.Append([]byte{byte('a' + i%26)}) {
			t.Fatalf("Append #%d failed", i)
		}
	}

	entries := a.Entries()

	// Index 19 (the 20th entry) hashes the full window [0..19].
	got19 := windowPreimage(entries, 19)
	var want19 []byte
	for j := 0; j <= 19; j++ {
		want19 = entries[j].encode(want19, j != 19)
	}
	if !bytes.Equal(got19, want19) {
		t.Error("window preimage at index 19 does not span entries [0..19]")
	}

	// Index 20 (the 21st entry) hashes entries [1..20], dropping entry 0.
	got20 := windowPreimage(entries, 20)
	var want20 []byte
	for j := 1; j <= 20; j++ {
		want20 = entries[j].encode(want20, j != 20)
	}
	if !bytes.Equal(got20, want20) {
		t.Error("window preimage at index 20 does not span entries [1..20]")
	}

	if !a.IsValid() {
		t.Error("21-entry archive should remain valid")
	}
}

func TestReplaceIfLongerRejectsInvalidArchive(t *testing.T) {
	local := New()
	for i := 0; i < 3; i++ {
		local.Append([]byte{byte('a' + i)})
	}
	originalLen := local.Len()

	candidate := New()
	for i := 0; i < 5; i++ {
		candidate.Append([]byte{byte('x' + i)})
	}
	// Corrupt the last entry's digest so it no longer satisfies the
	// difficulty target.
	entries := candidate.Entries()
	entries[len(entries)-1].Digest[0] = 0xFF
	candidate = &Archive{entries: entries}

	if local.ReplaceIfLonger(candidate) {
		t.Fatal("ReplaceIfLonger accepted an invalid archive")
	}
	if local.Len() != originalLen {
		t.Fatalf("local archive mutated despite rejection, len = %d", local.Len())
	}
}

func TestReplaceIfLongerRequiresStrictlyLonger(t *testing.T) {
	local := New()
	for i := 0; i < 5; i++ {
		local.Append([]byte{byte('a' + i)})
	}

	equalLength := New()
	for i := 0; i < 5; i++ {
		equalLength.Append([]byte{byte('m' + i)})
	}

	if local.ReplaceIfLonger(equalLength) {
		t.Fatal("ReplaceIfLonger accepted an equal-length archive")
	}

	longer := New()
	for i := 0; i < 7; i++ {
		longer.Append([]byte{byte('z' - i)})
	}

	if !local.ReplaceIfLonger(longer) {
		t.Fatal("ReplaceIfLonger rejected a strictly longer valid archive")
	}
	if local.Len() != 7 {
		t.Fatalf("local.Len() = %d, want 7", local.Len())
	}
}
