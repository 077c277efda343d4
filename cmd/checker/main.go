package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/omar-chaar/m3u-health-check/internal/checker"
	"github.com/omar-chaar/m3u-health-check/internal/config"
	"github.com/omar-chaar/m3u-health-check/internal/diag"
	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/filter"
	"github.com/omar-chaar/m3u-health-check/internal/logging"
	"github.com/omar-chaar/m3u-health-check/internal/notify"
	"github.com/omar-chaar/m3u-health-check/internal/playlist"
	"github.com/omar-chaar/m3u-health-check/internal/probe"
	"github.com/omar-chaar/m3u-health-check/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	var (
		flagSource  = flag.String("source", "", "playlist URL or file path (overrides PLAYLIST_SOURCE)")
		flagOutput  = flag.String("out", "", "output playlist path")
		flagConfig  = flag.String("config", "", "optional YAML config file")
		flagVerbose = flag.Bool("v", false, "verbose logging with per-channel detail")
	)
	flag.Parse()

	cfg := config.FromEnv()
	if *flagConfig != "" {
		var err error
		cfg, err = config.FromFile(*flagConfig, cfg)
		if err != nil {
			log.Fatal(err)
		}
	}
	if *flagSource != "" {
		cfg.Source = *flagSource
	}
	if *flagOutput != "" {
		cfg.OutputFile = *flagOutput
	}

	if cfg.Source == "" {
		fmt.Fprintln(os.Stderr, "no playlist source: set PLAYLIST_SOURCE or pass -source")
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// a configured user with no password gets one prompt, never echoed
	if cfg.Username != "" && cfg.Password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Password for %s: ", cfg.Username)
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err == nil {
			cfg.Password = string(b)
		}
	}

	logger, err := logging.NewLogger(cfg.LogDir, *flagVerbose)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	entries, err := playlist.Load(ctx, cfg.Source)
	if err != nil {
		logger.Error("load_playlist_failed", zap.String("source", cfg.Source), zap.Error(err))
		log.Fatal(err)
	}
	if len(cfg.FilterKeywords) > 0 {
		before := len(entries)
		entries = filter.ByKeywords(entries, cfg.FilterKeywords)
		logger.Info("keyword_filter",
			zap.Strings("keywords", cfg.FilterKeywords),
			zap.Int("before", before),
			zap.Int("after", len(entries)),
		)
	}

	prober := probe.NewHTTPProber(cfg.Timeout)
	prober.Username = cfg.Username
	prober.Password = cfg.Password

	sink := diag.NewZapSink(logger)
	sink.ResolveDNS = cfg.ResolveDNS

	policy := checker.Policy{
		Timeout:        cfg.Timeout,
		RetryDelay:     cfg.RetryDelay,
		MaxAttempts:    cfg.MaxAttempts,
		AliveThreshold: cfg.AliveThreshold,
	}
	runner := scheduler.NewRunner(logger, prober, policy, cfg.Concurrency, sink)

	report, err := runner.Run(ctx, entries)
	if err != nil {
		log.Fatal(err)
	}

	kept := filter.ByVerdict(entries, report, cfg.KeepVerdicts...)
	f, err := os.Create(cfg.OutputFile)
	if err != nil {
		log.Fatal(err)
	}
	if err := playlist.Write(f, kept); err != nil {
		f.Close()
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}

	rec := domain.Summarize(cfg.Source, report)
	fmt.Printf("checked %d channels: %d alive, %d unstable, %d dead\n",
		rec.Total, rec.Alive, rec.Unstable, rec.Dead)
	fmt.Printf("wrote %d channels to %s\n", len(kept), cfg.OutputFile)

	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		if err := s.RunFinished(ctx, rec); err != nil {
			logger.Warn("notify_failed", zap.Error(err))
		}
	}
}
