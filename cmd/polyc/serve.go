package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattjoyce/polyc/internal/api"
	"github.com/mattjoyce/polyc/internal/config"
	"github.com/mattjoyce/polyc/internal/log"
	"github.com/mattjoyce/polyc/internal/protocol"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	listen := fs.String("listen", "", "Override api.listen")
	logLevel := fs.String("log-level", "", "Override service.log_level")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.LoadOrDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitFatal
	}
	if *listen != "" {
		cfg.API.Listen = *listen
	}

	setupLogging(cfg, *logLevel)
	logger := log.WithComponent("main")
	logger.Info("polyc starting", "version", version, "config", cfg.Path)

	d, available, err := buildDispatcher(cfg, func(protocol.Lang) bool { return true })
	if err != nil {
		logger.Error("failed to initialize engines", "error", err)
		return exitFatal
	}
	for _, lang := range protocol.Langs {
		if !available[lang] {
			logger.Warn("engine not configured", "lang", string(lang))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.New(api.Config{
		Listen:      cfg.API.Listen,
		MaxBodySize: cfg.API.MaxBodySize,
		Engines:     available,
	}, d, log.WithComponent("api"))

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("api server failed", "error", err)
		return exitFatal
	}

	logger.Info("polyc stopped")
	return exitOK
}
