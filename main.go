package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/reclaimed/fyt-engine/config"
	"github.com/reclaimed/fyt-engine/internal/logging"
	"github.com/reclaimed/fyt-engine/probe"

	"github.com/reclaimed/fyt-engine/api"
)

// knownServiceKeys is the full set of service keys the probe roster below
// knows how to build. RequireMethods is called with this list so a missing
// section in the config file fails process start, not first request, per
// SPEC_FULL.md §7.
var knownServiceKeys = []string{
	"youtube", "ia_wayback", "ia_details", "ia_cdx_thumbs", "ghostarchive",
	"hackint_ya", "dya", "hobune", "removededm", "filmot", "playboard",
	"altcensored", "odysee", "preservetube", "nyane_online", "letsplayindex",
}

func main() {
	configPath := flag.String("config", envOr("FYT_CONFIG", "config.yaml"), "path to the YAML config file")
	port := flag.Int("port", 8080, "HTTP listen port")
	logFile := flag.String("log-file", "", "optional path to a rotated log file")
	flag.Parse()

	logger := logging.New(logging.Config{File: *logFile, MaxSizeMB: 50, MaxBackups: 5, MaxAgeDays: 28, Compress: true})
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.RequireMethods(knownServiceKeys...); err != nil {
		logger.Error("config is missing required service sections", "error", err)
		os.Exit(1)
	}

	registry := buildRegistry(cfg)
	cooldowns := probe.NewCooldownRegistry()
	cooldowns.Register("filmot", 2*time.Second)
	cooldowns.Register("hobune", 500*time.Millisecond)

	cache := probe.NewResultCache(600)
	orchestrator := probe.NewOrchestrator(registry, cache, cooldowns, cfg.UserAgent(), cfg.IsEnabled)
	engine := api.NewEngine(orchestrator)
	router := api.NewRouter(engine, logger)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting fyt-engine", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func buildRegistry(cfg *config.Config) *probe.Registry {
	iaDetails, _ := cfg.Get("ia_details")
	hackint, _ := cfg.Get("hackint_ya")
	dya, _ := cfg.Get("dya")
	filmot, _ := cfg.Get("filmot")
	removededm, _ := cfg.Get("removededm")

	return probe.NewRegistry(
		probe.NewYouTubeProbe(),
		probe.NewWaybackProbe(cfg.ExperimentBaseURL()),
		probe.NewIADetailsProbe(iaDetails.Credentials["helper_base_url"]),
		probe.NewIACDXThumbsProbe(),
		probe.NewGhostArchiveProbe(),
		probe.NewHackintYaProbe(hackint.Credentials["base_url"], hackint.Credentials["username"], hackint.Credentials["password"], hackint.Excluded),
		probe.NewDYAProbe(dya.Credentials["discord_invite_url"]),
		probe.NewHobuneProbe(),
		probe.NewRemovededmProbe(removededm.Credentials["base_url"], removededm.Credentials["username"], removededm.Credentials["password"]),
		probe.NewFilmotProbe(filmot.APIKey),
		probe.NewPlayboardProbe(time.Now().UnixNano()),
		probe.NewAltCensoredProbe(),
		probe.NewOdyseeProbe(),
		probe.NewPreserveTubeProbe(),
		probe.NewNyaneOnlineProbe(),
		probe.NewLetsPlayIndexProbe(),
	)
}
