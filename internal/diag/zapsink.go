package diag

import (
	"context"

	"go.uber.org/zap"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/probe"
)

// ZapSink writes diagnostic records as structured log entries. With
// ResolveDNS set, dead endpoints that never connected get a resolver
// diagnosis attached, which usually separates gone-forever hosts from
// flaky servers.
type ZapSink struct {
	Log        *zap.Logger
	ResolveDNS bool
}

func NewZapSink(log *zap.Logger) *ZapSink {
	return &ZapSink{Log: log}
}

func (s *ZapSink) Record(ctx context.Context, rec Record) {
	fields := []zap.Field{
		zap.String("name", rec.Name),
		zap.String("url", rec.URL),
		zap.String("verdict", rec.Verdict),
		zap.Int("attempts", rec.Attempts),
		zap.Strings("outcomes", rec.Outcomes),
	}
	if rec.Reason != "" {
		fields = append(fields, zap.String("reason", rec.Reason))
	}

	if s.ResolveDNS && rec.Verdict == string(domain.VerdictDead) && lastIsConnError(rec.Outcomes) {
		d := probe.DiagnoseDNS(ctx, rec.URL)
		fields = append(fields, zap.String("dns_class", d.Class))
		if d.CNAME != "" {
			fields = append(fields, zap.String("dns_cname", d.CNAME))
		}
		if d.ResolverError != "" {
			fields = append(fields, zap.String("dns_error", d.ResolverError))
		}
	}

	if rec.Verdict == string(domain.VerdictAlive) {
		s.Log.Debug("channel_checked", fields...)
		return
	}
	s.Log.Info("channel_checked", fields...)
}

func lastIsConnError(outcomes []string) bool {
	return len(outcomes) > 0 && outcomes[len(outcomes)-1] == string(probe.KindConnError)
}
