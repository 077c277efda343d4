package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/omar-chaar/m3u-health-check/internal/checker"
	"github.com/omar-chaar/m3u-health-check/internal/config"
	"github.com/omar-chaar/m3u-health-check/internal/diag"
	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/filter"
	"github.com/omar-chaar/m3u-health-check/internal/playlist"
	"github.com/omar-chaar/m3u-health-check/internal/scheduler"
)

type checkPayload struct {
	Source       string   `json:"source,omitempty"`
	URLs         []string `json:"urls,omitempty"`
	TimeoutMS    int      `json:"timeout_ms,omitempty"`
	RetryDelayMS *int     `json:"retry_delay_ms,omitempty"`
	MaxAttempts  int      `json:"max_attempts,omitempty"`
	Concurrency  int      `json:"concurrency,omitempty"`
	Keep         []string `json:"keep,omitempty"`
}

type checkResponse struct {
	Run     *domain.RunRecord       `json:"run"`
	Results []domain.EndpointResult `json:"results"`
	Kept    []domain.Endpoint       `json:"kept"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var p checkPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	if p.Source == "" && len(p.URLs) == 0 {
		http.Error(w, "source or urls required", http.StatusBadRequest)
		return
	}

	cfg := s.overridden(p)
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	endpoints, source, err := s.resolveEndpoints(r, p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	policy := checker.Policy{
		Timeout:        cfg.Timeout,
		RetryDelay:     cfg.RetryDelay,
		MaxAttempts:    cfg.MaxAttempts,
		AliveThreshold: cfg.AliveThreshold,
	}
	runner := scheduler.NewRunner(s.Logger, s.NewProber(cfg), policy, cfg.Concurrency, diag.NewZapSink(s.Logger))

	report, err := runner.Run(r.Context(), endpoints)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec := domain.Summarize(source, report)
	if err := s.Store.SaveRun(r.Context(), rec); err != nil {
		s.Logger.Warn("save_run_failed", zap.Error(err))
	}

	resp := checkResponse{
		Run:     rec,
		Results: orderedResults(report),
		Kept:    filter.ByVerdict(endpoints, report, cfg.KeepVerdicts...),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	runs, err := s.Store.ListRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, "list error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(runs)
}

// overridden applies per-request knobs on top of the server's base config.
func (s *Server) overridden(p checkPayload) config.Config {
	cfg := s.Base
	if p.TimeoutMS > 0 {
		cfg.Timeout = time.Duration(p.TimeoutMS) * time.Millisecond
	}
	if p.RetryDelayMS != nil && *p.RetryDelayMS >= 0 {
		cfg.RetryDelay = time.Duration(*p.RetryDelayMS) * time.Millisecond
	}
	if p.MaxAttempts > 0 {
		cfg.MaxAttempts = p.MaxAttempts
	}
	if p.Concurrency > 0 {
		cfg.Concurrency = p.Concurrency
	}
	if len(p.Keep) > 0 {
		keep := make([]domain.Verdict, 0, len(p.Keep))
		for _, k := range p.Keep {
			keep = append(keep, domain.Verdict(k))
		}
		cfg.KeepVerdicts = keep
	}
	return cfg
}

func (s *Server) resolveEndpoints(r *http.Request, p checkPayload) ([]domain.Endpoint, string, error) {
	if len(p.URLs) > 0 {
		eps := make([]domain.Endpoint, len(p.URLs))
		for i, u := range p.URLs {
			eps[i] = domain.Endpoint{Name: u, URL: u, Index: i}
		}
		return eps, "inline", nil
	}
	eps, err := playlist.Load(r.Context(), p.Source)
	if err != nil {
		return nil, "", err
	}
	return eps, p.Source, nil
}

func orderedResults(report *domain.Report) []domain.EndpointResult {
	out := make([]domain.EndpointResult, 0, len(report.Results))
	for _, res := range report.Results {
		out = append(out, res)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Endpoint.Index < out[j].Endpoint.Index })
	return out
}
