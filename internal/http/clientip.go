package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Forwarding headers are honoured only when the direct peer is loopback or
// on a private network (a local reverse proxy or the container runtime).
func trustedPeer(addr netip.Addr) bool {
	return addr.IsLoopback() || addr.IsPrivate()
}

// clientIP is the rate-limit key of a request.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !trustedPeer(peer) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if addr, err := netip.ParseAddr(xri); err == nil {
			return addr.String()
		}
	}
	return host
}
