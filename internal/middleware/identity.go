package middleware

import (
	"net"
	"net/http"
)

// ClientIdentity returns the host part of the request's remote address. With
// chi's RealIP in front, that is the forwarded client address.
func ClientIdentity(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
