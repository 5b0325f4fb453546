// Package clientip derives the key used to identify a client for rate limiting and logs.
package clientip

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RealClientIP returns the canonical client address from r.RemoteAddr.
// Proxy headers are not read here; mount chi's RealIP in front when the
// service sits behind a trusted proxy.
func RealClientIP(r *http.Request) string {
	return Normalize(r.RemoteAddr)
}

// Normalize strips the port and IPv6 zone and unmaps IPv4-in-IPv6 so one
// client always yields one key. Unparseable input is returned trimmed.
func Normalize(addr string) string {
	addr = strings.TrimSpace(addr)
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return host
	}
	return ip.WithZone("").Unmap().String()
}
