package ingest

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"
)

const maxRedirects = 10

// reservedPrefixes are ranges a published feed never lives in. The netip
// predicates below cover most of them; these add carrier-grade NAT and
// spell out the rest for IPv4-mapped addresses.
var reservedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
}

var errBlockedAddress = errors.New("feed host resolves to a private address")

// blockedAddr reports whether a feed may not be fetched from addr.
func blockedAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}
	addr = addr.Unmap()
	if addr.IsLoopback() || addr.IsPrivate() || addr.IsUnspecified() ||
		addr.IsMulticast() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return true
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// resolvePublic resolves host and fails if any address is blocked.
func resolvePublic(ctx context.Context, host string) error {
	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		return fmt.Errorf("%s resolved to no addresses", host)
	}
	for _, a := range addrs {
		if blockedAddr(a) {
			return fmt.Errorf("%w: %s is %s", errBlockedAddress, host, a)
		}
	}
	return nil
}

func newDialer() *net.Dialer {
	return &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
}

// guardedDial refuses connections to private addresses before dialing.
func guardedDial(ctx context.Context, network, addr string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	if err := resolvePublic(ctx, host); err != nil {
		return nil, err
	}
	return newDialer().DialContext(ctx, network, addr)
}

// plainRedirects bounds redirect chains to http(s).
func plainRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	if req.URL == nil || (req.URL.Scheme != "http" && req.URL.Scheme != "https") {
		return errors.New("redirect to a non-http URL")
	}
	return nil
}

// guardedRedirects also refuses redirects into private networks.
func guardedRedirects(req *http.Request, via []*http.Request) error {
	if err := plainRedirects(req, via); err != nil {
		return err
	}
	host := strings.ToLower(req.URL.Hostname())
	if host == "" || host == "localhost" || strings.HasSuffix(host, ".local") {
		return fmt.Errorf("redirect to internal host %q", host)
	}
	return resolvePublic(req.Context(), host)
}
