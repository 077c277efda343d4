package probe

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"
)

// DNSStatus explains why a dead channel's host does or does not resolve.
// Used by diagnostics only; the health verdict never depends on it.
type DNSStatus struct {
	Host          string
	IPs           []net.IP
	CNAME         string
	Class         string // "RESOLVES" | "NXDOMAIN" | "SERVFAIL_or_TIMEOUT" | "INVALID_NAME"
	ResolverError string
}

var dnsTimeout = 3 * time.Second

// DiagnoseDNS resolves the host of a channel URL with the OS resolver.
func DiagnoseDNS(ctx context.Context, target string) DNSStatus {
	s := DNSStatus{Host: Host(target)}
	if s.Host == "" {
		s.Class = "INVALID_NAME"
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", s.Host)
	if err == nil && len(ips) > 0 {
		s.IPs = ips
		s.Class = "RESOLVES"
	} else if err != nil {
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) && de.IsNotFound {
			s.Class = "NXDOMAIN"
		} else {
			s.Class = "SERVFAIL_or_TIMEOUT"
		}
	}

	if cname, err := r.LookupCNAME(ctx, s.Host); err == nil && !strings.EqualFold(cname, s.Host+".") {
		s.CNAME = strings.TrimSuffix(cname, ".")
	}
	return s
}

// Host pulls the hostname out of a channel URL.
func Host(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return strings.TrimSpace(raw)
	}
	return u.Hostname()
}
