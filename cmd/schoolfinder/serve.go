package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandiips/schoolfinder/internal/cache"
	"github.com/sandiips/schoolfinder/internal/chat"
	"github.com/sandiips/schoolfinder/internal/config"
	"github.com/sandiips/schoolfinder/internal/geo"
	"github.com/sandiips/schoolfinder/internal/llm"
	"github.com/sandiips/schoolfinder/internal/prompts"
	"github.com/sandiips/schoolfinder/internal/school"
	"github.com/sandiips/schoolfinder/internal/server"
	"github.com/sandiips/schoolfinder/internal/tools"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP chat server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	logger := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := school.NewPGStore(ctx, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer store.Close()

	opts, err := prompts.LoadOptions(cfg.OptionsFile)
	if err != nil {
		return err
	}

	resultCache := cache.NewMemory(time.Hour)
	defer resultCache.Close()

	geocoder := geo.NewGoogleGeocoder(cfg.Geocoding.APIKey)

	registry := tools.NewRegistry()
	if err := tools.RegisterAll(registry, tools.Deps{
		Store:    store,
		Geocoder: geocoder,
		Cache:    resultCache,
		Options:  opts,
		Logger:   logger,
	}); err != nil {
		return fmt.Errorf("registering tools: %w", err)
	}

	client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model,
		cfg.LLM.MaxTokens, cfg.LLM.Temperature)

	orc := chat.NewOrchestrator(client, registry, chat.Config{
		SystemPrompt:  prompts.SystemPrompt(opts),
		StreamTimeout: cfg.Chat.StreamTimeout,
		ToolTimeout:   cfg.Chat.ToolTimeout,
	}, logger)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(orc, store, geocoder, resultCache, opts, logger).Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
