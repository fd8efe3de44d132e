package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/Neruzzz/toolcall-demo/internal/chat/assistant"
	"github.com/Neruzzz/toolcall-demo/internal/chat/backend/ollama"
	"github.com/Neruzzz/toolcall-demo/internal/chat/backend/openai"
	"github.com/Neruzzz/toolcall-demo/internal/config"
	"github.com/Neruzzz/toolcall-demo/internal/httpx"
	"github.com/Neruzzz/toolcall-demo/internal/tools"
)

func main() {
	configPath := flag.String("config", os.Getenv("TOOLCALL_CONFIG"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Telemetry.Enabled {
		shutdown, err := httpx.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			log.Fatalf("telemetry init error: %v", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	cli, err := newClient(cfg)
	if err != nil {
		log.Fatalf("backend error: %v", err)
	}

	reg := tools.Default(os.Stdout)
	assist := assistant.New(cli, reg,
		assistant.WithOutput(os.Stdout),
		assistant.WithSystemPrompt(cfg.SystemPrompt),
		assistant.WithFirstTurnTools(cfg.Tools.FirstTurn...),
		assistant.WithFinalTurnTools(cfg.Tools.FinalTurn...),
	)

	res, err := assist.Run(ctx, cfg.Prompt)
	if err != nil {
		slog.Error("Conversation failed", "err", err)
		stop()
		os.Exit(1)
	}
	slog.Info("Conversation finished",
		"conversation_id", res.Conversation.ID,
		"messages", len(res.Conversation.Messages),
		"tool_calls", res.ToolCalls,
	)
}

func newClient(cfg config.Config) (assistant.Client, error) {
	hc := httpx.Client(cfg.HTTP.Timeout)

	switch cfg.Backend {
	case "openai":
		return openai.New(openai.Config{
			Model:      cfg.Model,
			BaseURL:    cfg.OpenAI.BaseURL,
			APIKey:     cfg.OpenAI.APIKey,
			HTTPClient: hc,
		}), nil
	default:
		host, err := url.Parse(cfg.Ollama.Host)
		if err != nil {
			return nil, err
		}
		opts := []ollama.Option{
			ollama.WithHTTPClient(hc),
			ollama.WithAPIKey(cfg.Ollama.APIKey),
		}
		if cfg.Model != "" {
			opts = append(opts, ollama.WithModel(cfg.Model))
		}
		return ollama.NewClient(*host, opts...)
	}
}

// setupLogger sends structured logs to stderr; stdout carries only the
// tool notifications and the final answer.
func setupLogger(cfg config.LogConfig) {
	lvl, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if cfg.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}
