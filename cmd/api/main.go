package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/omar-chaar/m3u-health-check/internal/config"
	"github.com/omar-chaar/m3u-health-check/internal/httpapi"
	"github.com/omar-chaar/m3u-health-check/internal/logging"
	"github.com/omar-chaar/m3u-health-check/internal/repo"
	"github.com/omar-chaar/m3u-health-check/internal/repo/memory"
	"github.com/omar-chaar/m3u-health-check/internal/repo/sqlite"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, false)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var store repo.RunStore = memory.New()
	if cfg.DatabasePath != "" {
		s, err := sqlite.New(cfg.DatabasePath)
		if err != nil {
			log.Fatal(err)
		}
		defer s.Close()
		store = s
		logger.Info("run_store", zap.String("path", cfg.DatabasePath))
	}

	api := httpapi.NewServer(logger, store, cfg)
	logger.Info("api_listen", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, api.Router()); err != nil {
		log.Fatal(err)
	}
}
