package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"

	"gitlab.com/efronlicht/httpget/httpwire"
	"golang.org/x/net/idna"
)

// Resolver looks up the IP addresses of a host. *net.Resolver implements it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// ErrNoAddrs is returned by resolve when a lookup succeeds but finds nothing.
var ErrNoAddrs = errors.New("no ip addresses found for host")

// resolve finds the address to dial for target.
// Unicode hostnames are converted to their ASCII (punycode) form for the lookup.
// IP literals skip the lookup entirely; otherwise the first IPv4 address wins, falling back to the first IPv6 address.
func resolve(ctx context.Context, r Resolver, target httpwire.Target) (netip.AddrPort, error) {
	host := strings.Trim(target.Hostname(), "[]")
	port, err := net.LookupPort("tcp", target.Port())
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("port %q: %w", target.Port(), err)
	}
	if ip, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(ip, uint16(port)), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("hostname %q: %w", host, err)
	}
	ips, err := r.LookupNetIP(ctx, "ip", ascii)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("looking up %s: %w", ascii, err)
	}
	if len(ips) == 0 {
		return netip.AddrPort{}, fmt.Errorf("%s: %w", ascii, ErrNoAddrs)
	}
	for _, ip := range ips {
		if ip.Unmap().Is4() {
			return netip.AddrPortFrom(ip.Unmap(), uint16(port)), nil
		}
	}
	// none of them were ipv4, so use the first ipv6 address
	return netip.AddrPortFrom(ips[0], uint16(port)), nil
}

// dial resolves target and opens a TCP connection to it. A zero timeout means no timeout.
func dial(ctx context.Context, r Resolver, target httpwire.Target, timeout time.Duration) (net.Conn, error) {
	addr, err := resolve(ctx, r, target)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", target.HostPort, err)
	}
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr.String())
	if err != nil {
		return nil, fmt.Errorf("connecting to %s (@ %s): %w", target.HostPort, addr, err)
	}
	return conn, nil
}
