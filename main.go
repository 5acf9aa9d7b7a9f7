package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to YAML or JSON config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	clientDir := flag.String("client", "", "Path to client directory (overrides config)")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *clientDir != "" {
		cfg.Server.ClientDir = *clientDir
	}
	SetupLogger(cfg.Server.LogLevel, cfg.Server.LogPretty)

	if cfg.Server.MetricsStdout {
		shutdownMetrics, err := SetupMetrics(os.Stdout, cfg.Server.MetricsEvery)
		if err != nil {
			log.Fatal().Err(err).Msg("metrics")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := shutdownMetrics(ctx); err != nil {
				log.Warn().Err(err).Msg("metrics shutdown")
			}
		}()
	}

	db, err := OpenDB(cfg.Server.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Server.DBPath).Msg("open database")
	}
	defer db.Close()

	seats, err := NewSeatAuth(db, cfg.Server.HostPin)
	if err != nil {
		log.Fatal().Err(err).Msg("seat auth")
	}
	analytics := NewAnalytics(db)

	sessions := NewSessionManager(cfg.Tables, SessionOptions{
		TickRate:       cfg.Server.TickRate,
		BroadcastEvery: cfg.Server.BroadcastEvery,
		Seed:           cfg.Server.Seed,
		IdleTimeout:    cfg.Server.SessionIdle,
		DB:             db,
		Analytics:      analytics,
	})
	baseMatch := DefaultMatchSetup(ModeDeathmatchKills)
	if cfg.Match != nil {
		baseMatch = *cfg.Match
	}

	hub := NewHub(sessions, seats, baseMatch, cfg.Server.PublicURL)
	go hub.Run()

	reaperStop := make(chan struct{})
	go sessions.RunReaper(reaperStop)

	mux := SetupRoutes(hub, db, cfg.Server.ClientDir)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	server := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("client", cfg.Server.ClientDir).
			Bool("pin", seats.PinRequired()).Msg("server starting")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	<-stop
	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("server shutdown")
	}
	close(reaperStop)
	sessions.StopAll()
	analytics.Stop()
}
