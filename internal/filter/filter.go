package filter

import (
	"strings"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
)

// ByVerdict keeps the entries whose verdict is in keep, preserving original
// playlist order. Entries missing from the report are dropped. Pure function:
// the same report and order always produce the same subset.
func ByVerdict(entries []domain.Endpoint, report *domain.Report, keep ...domain.Verdict) []domain.Endpoint {
	if len(keep) == 0 {
		keep = domain.DefaultKeep()
	}
	keepSet := make(map[domain.Verdict]struct{}, len(keep))
	for _, v := range keep {
		keepSet[v] = struct{}{}
	}

	out := make([]domain.Endpoint, 0, len(entries))
	for _, e := range entries {
		v, ok := report.VerdictFor(e)
		if !ok {
			continue
		}
		if _, wanted := keepSet[v]; wanted {
			out = append(out, e)
		}
	}
	return out
}

// ByKeywords keeps entries whose channel name or group title contains any of
// the keywords, case-insensitive. No keywords means no matches.
func ByKeywords(entries []domain.Endpoint, keywords []string) []domain.Endpoint {
	cleaned := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			cleaned = append(cleaned, k)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	out := make([]domain.Endpoint, 0, len(entries))
	for _, e := range entries {
		name := strings.ToLower(e.Name)
		group := strings.ToLower(e.Group)
		for _, k := range cleaned {
			if strings.Contains(name, k) || strings.Contains(group, k) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
