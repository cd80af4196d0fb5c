/*
File Name:  Addr.go

IPv4 helpers: conversion to/from the registry's wire form (u32), and
self-dial detection via comparison against the machine's own interface
addresses, one of the two strategies the design explicitly sanctions.
*/

package core

import (
	"encoding/binary"
	"net"
)

// ipToUint32 converts a 4-byte IPv4 address to its big-endian u32 form. It
// returns 0, false for anything that is not a valid IPv4 address.
func ipToUint32(ip net.IP) (uint32, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return 0, false
	}
	return binary.BigEndian.Uint32(v4), true
}

// ipFromUint32 renders a registry u32 as a net.IP.
func ipFromUint32(ip uint32) net.IP {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], ip)
	return net.IP(b[:])
}

// ipToString renders a registry u32 as a dotted-quad string.
func ipToString(ip uint32) string {
	return ipFromUint32(ip).String()
}

// isLocalAddress reports whether ip belongs to one of this machine's own
// network interfaces, used to avoid dialing ourselves.
func (b *Backend) isLocalAddress(ip net.IP) bool {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return false
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		if ipNet.IP.Equal(ip) {
			return true
		}
	}
	return false
}
