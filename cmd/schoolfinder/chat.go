package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sandiips/schoolfinder/internal/cache"
	"github.com/sandiips/schoolfinder/internal/chat"
	"github.com/sandiips/schoolfinder/internal/config"
	"github.com/sandiips/schoolfinder/internal/geo"
	"github.com/sandiips/schoolfinder/internal/llm"
	"github.com/sandiips/schoolfinder/internal/prompts"
	"github.com/sandiips/schoolfinder/internal/school"
	"github.com/sandiips/schoolfinder/internal/tools"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive advisor chat in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context())
		},
	}
}

func runChat(ctx context.Context) error {
	logger := newLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

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

	registry := tools.NewRegistry()
	if err := tools.RegisterAll(registry, tools.Deps{
		Store:    store,
		Geocoder: geo.NewGoogleGeocoder(cfg.Geocoding.APIKey),
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

	rl, err := readline.New("you> ")
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	fmt.Println(prompts.WelcomeMessage)
	fmt.Println(`Type "exit" to quit.`)

	sessionID := uuid.NewString()
	var history []llm.Message

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		history = append(history, llm.UserMessage(line))

		var reply strings.Builder
		emitter := chat.EmitterFunc(func(ev chat.Event) error {
			switch ev.Type {
			case chat.EventContent:
				fmt.Print(ev.Content)
				reply.WriteString(ev.Content)
			case chat.EventToolStart:
				fmt.Printf("\n[searching: %s]\n", ev.ToolName)
			case chat.EventError:
				fmt.Printf("\n[error: %s]\n", ev.Error)
			}
			return nil
		})

		if err := orc.RunStream(ctx, history, sessionID, emitter); err != nil {
			logger.Error("chat turn failed", "error", err)
			// Keep the session going; the turn's error was already shown.
		}
		fmt.Println()

		if reply.Len() > 0 {
			history = append(history, llm.AssistantMessage(reply.String()))
		}
	}
}
