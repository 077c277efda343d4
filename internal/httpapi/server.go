package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/omar-chaar/m3u-health-check/internal/config"
	apimw "github.com/omar-chaar/m3u-health-check/internal/httpapi/middleware"
	"github.com/omar-chaar/m3u-health-check/internal/probe"
	"github.com/omar-chaar/m3u-health-check/internal/repo"
)

// Server exposes the checker engine over HTTP. Base holds the defaults a
// request may override; NewProber builds the prober for one run so tests can
// swap in fakes.
type Server struct {
	Logger    *zap.Logger
	Store     repo.RunStore
	Base      config.Config
	NewProber func(cfg config.Config) probe.Prober
}

func NewServer(l *zap.Logger, store repo.RunStore, base config.Config) *Server {
	return &Server{
		Logger: l,
		Store:  store,
		Base:   base,
		NewProber: func(cfg config.Config) probe.Prober {
			p := probe.NewHTTPProber(cfg.Timeout)
			p.Username = cfg.Username
			p.Password = cfg.Password
			return p
		},
	}
}

func (s *Server) Router() http.Handler {
	keys := apimw.Keys{Public: s.Base.PublicAPIKeys, Admin: s.Base.AdminAPIKeys}

	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(s.Base.PublicRPM, s.Base.PublicBurst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAny(keys))
		r.Get("/api/runs", s.handleListRuns)
	})
	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireAdmin(keys))
		r.Post("/api/check", s.handleCheck)
	})

	return r
}
