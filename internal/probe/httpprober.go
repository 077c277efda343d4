package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Content types IPTV servers commonly answer with. Anything else still passes
// if the body yields at least one readable chunk before the deadline.
var streamContentTypes = []string{
	"application/vnd.apple.mpegurl",
	"application/x-mpegurl",
	"application/octet-stream",
	"video/",
	"audio/",
	"mpegurl",
}

type HTTPProber struct {
	Client   *http.Client
	Username string
	Password string
}

func NewHTTPProber(timeout time.Duration) *HTTPProber {
	return &HTTPProber{Client: &http.Client{Timeout: timeout}}
}

// Probe issues a GET and decides whether the response looks like a live
// stream. Credentials, when set, ride along as basic auth; the prober does
// not care what they mean.
func (p *HTTPProber) Probe(ctx context.Context, target string) Outcome {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Outcome{Kind: KindUnknown, Message: err.Error(), CheckedAt: time.Now().UTC()}
	}
	if p.Username != "" || p.Password != "" {
		req.SetBasicAuth(p.Username, p.Password)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		lat := time.Since(start).Seconds() * 1000
		return Outcome{Kind: classifyTransportErr(err), LatencyMS: lat, Message: err.Error(), CheckedAt: time.Now().UTC()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		lat := time.Since(start).Seconds() * 1000
		return Outcome{
			Kind:       KindHTTPError,
			StatusCode: resp.StatusCode,
			LatencyMS:  lat,
			Message:    resp.Status,
			CheckedAt:  time.Now().UTC(),
		}
	}

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	ok := looksLikeStream(ct) || readsOneChunk(resp.Body)
	lat := time.Since(start).Seconds() * 1000
	if !ok {
		return Outcome{
			Kind:       KindHTTPError,
			StatusCode: resp.StatusCode,
			LatencyMS:  lat,
			Message:    "no stream data in response",
			CheckedAt:  time.Now().UTC(),
		}
	}
	return Outcome{
		Kind:       KindSuccess,
		StatusCode: resp.StatusCode,
		LatencyMS:  lat,
		Message:    resp.Status,
		CheckedAt:  time.Now().UTC(),
	}
}

func looksLikeStream(contentType string) bool {
	for _, t := range streamContentTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}

// readsOneChunk pulls at most one chunk from the body. A live stream has at
// least one byte ready before the deadline; a lying 200 does not.
func readsOneChunk(r io.Reader) bool {
	buf := make([]byte, 1024)
	n, _ := r.Read(buf)
	return n > 0
}

func classifyTransportErr(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnError
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnError
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "tls:") ||
		strings.Contains(msg, "x509:") {
		return KindConnError
	}
	return KindUnknown
}
