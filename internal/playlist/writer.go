package playlist

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

// Write serializes entries back to extended M3U in their given order. Raw
// EXTINF lines captured by the parser are reused verbatim; entries without
// one get a line synthesized from their attributes.
func Write(w io.Writer, entries []domain.Endpoint) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("#EXTM3U\n"); err != nil {
		return err
	}
	for _, e := range entries {
		line := e.Extinf
		if line == "" {
			line = synthesizeExtinf(e)
		}
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
		if e.Extgrp != "" {
			if _, err := bw.WriteString("#EXTGRP:" + e.Extgrp + "\n"); err != nil {
				return err
			}
		}
		if _, err := bw.WriteString(e.URL + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func synthesizeExtinf(e domain.Endpoint) string {
	var attrs []string
	for _, k := range []string{"tvg-id", "tvg-name", "tvg-logo"} {
		if v := e.Attrs[k]; v != "" {
			attrs = append(attrs, fmt.Sprintf("%s=%q", k, v))
		}
	}
	if e.Group != "" {
		attrs = append(attrs, fmt.Sprintf("group-title=%q", e.Group))
	}
	if len(attrs) == 0 {
		return "#EXTINF:-1," + e.Name
	}
	return "#EXTINF:-1 " + strings.Join(attrs, " ") + "," + e.Name
}
