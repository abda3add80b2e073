// Package httpwire speaks just enough HTTP/1.1 to drive a single persistent connection by hand:
// it builds GET requests, frames responses (fixed Content-Length or chunked), and decodes bodies for printing.
//
// It deliberately does not use net/http. Header matching is prefix-based and case-sensitive;
// see ReadResponse for the exact rules.
package httpwire

import "strings"

// Target is where a request goes: a host:port to dial, and a path to ask for.
type Target struct {
	HostPort string // always "hostname:port"; port defaults to 80.
	Path     string // always starts with "/".
}

// ParseTarget splits a user-supplied URL into a Target. It accepts any string.
// The scheme, if any, is stripped and otherwise ignored: https:// does NOT imply port 443 or TLS.
// Query strings and fragments are left in the path, untouched.
//
//	ParseTarget("https://www.example.com:1234/hi/hello") // {"www.example.com:1234", "/hi/hello"}
//	ParseTarget("example.com")                           // {"example.com:80", "/"}
func ParseTarget(raw string) Target {
	for _, scheme := range []string{"https://", "http://"} {
		if after, ok := strings.CutPrefix(raw, scheme); ok {
			raw = after
			break
		}
	}
	host, path := raw, "/"
	if i := strings.IndexByte(raw, '/'); i != -1 {
		host, path = raw[:i], raw[i:]
	}
	if !strings.Contains(host, ":") {
		host += ":80"
	}
	return Target{HostPort: host, Path: path}
}

// Hostname returns the host portion of HostPort, without the port.
func (t Target) Hostname() string {
	if i := strings.LastIndexByte(t.HostPort, ':'); i != -1 {
		return t.HostPort[:i]
	}
	return t.HostPort
}

// Port returns the port portion of HostPort; it may be empty if the user wrote a trailing colon.
func (t Target) Port() string {
	if i := strings.LastIndexByte(t.HostPort, ':'); i != -1 {
		return t.HostPort[i+1:]
	}
	return ""
}

func (t Target) String() string { return t.HostPort + t.Path }
