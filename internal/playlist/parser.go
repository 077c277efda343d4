package playlist

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

var extinfAttr = regexp.MustCompile(`([A-Za-z0-9-]+)="([^"]*)"`)

// Parse reads extended M3U text into ordered endpoints. The raw #EXTINF and
// #EXTGRP lines are kept verbatim so Write can reproduce them byte for byte.
func Parse(r io.Reader) ([]domain.Endpoint, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		out    []domain.Endpoint
		extinf string
		extgrp string
	)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#EXTM3U"):
			continue
		case strings.HasPrefix(line, "#EXTINF"):
			extinf = line
		case strings.HasPrefix(line, "#EXTGRP:"):
			extgrp = strings.TrimSpace(strings.TrimPrefix(line, "#EXTGRP:"))
		case strings.HasPrefix(line, "#"):
			// other directives are not modeled
			continue
		default:
			ep := domain.Endpoint{
				URL:    line,
				Index:  len(out),
				Extinf: extinf,
				Extgrp: extgrp,
			}
			if extinf != "" {
				ep.Name, ep.Attrs = parseExtinf(extinf)
			}
			if ep.Group = ep.Attrs["group-title"]; ep.Group == "" {
				ep.Group = extgrp
			}
			if ep.Name == "" {
				ep.Name = line
			}
			out = append(out, ep)
			extinf, extgrp = "", ""
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	return out, nil
}

// parseExtinf splits "#EXTINF:-1 tvg-id="x" group-title="News",Channel" into
// the display name and the attribute map.
func parseExtinf(line string) (string, map[string]string) {
	body := strings.TrimPrefix(line, "#EXTINF:")

	var name string
	if i := firstUnquotedComma(body); i >= 0 {
		name = strings.TrimSpace(body[i+1:])
		body = body[:i]
	}

	var attrs map[string]string
	if m := extinfAttr.FindAllStringSubmatch(body, -1); len(m) > 0 {
		attrs = make(map[string]string, len(m))
		for _, kv := range m {
			attrs[kv[1]] = kv[2]
		}
	}
	return name, attrs
}

func firstUnquotedComma(s string) int {
	inQuote := false
	for i, r := range s {
		switch r {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				return i
			}
		}
	}
	return -1
}
