package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jrj02/npc-dialogue/internal/config"
	"github.com/jrj02/npc-dialogue/internal/logger"
	"github.com/jrj02/npc-dialogue/internal/services"
	"github.com/jrj02/npc-dialogue/internal/storage"
	"github.com/jrj02/npc-dialogue/pkg/conversation"
	"github.com/jrj02/npc-dialogue/pkg/npc"
)

func main() {
	cfg := config.Load()

	// The TUI owns the terminal, so logs go to a file by default.
	if cfg.LogFile == "" {
		cfg.LogFile = "npc-dialogue.log"
	}
	log := logger.Setup(cfg)

	var backend services.LLMService
	switch cfg.Backend {
	case config.BackendOllama:
		backend = services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, log)
	case config.BackendOpenAI:
		backend = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIURL, cfg.ModelName, log)
	case config.BackendMock:
		backend = services.NewMockLLMService()
	default:
		fmt.Fprintf(os.Stderr, "Unknown LLM backend %q (want ollama, openai or mock)\n", cfg.Backend)
		os.Exit(1)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := backend.InitModel(initCtx, cfg.ModelName); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Failed to initialize model %s: %v\n", cfg.ModelName, err)
		os.Exit(1)
	}
	cancel()

	var telemetry conversation.Telemetry
	if cfg.RedisAddr != "" {
		rs := storage.NewRedisStorage(cfg.RedisAddr, log)
		waitCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err := rs.WaitForConnection(waitCtx)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to redis at %s: %v\n", cfg.RedisAddr, err)
			os.Exit(1)
		}
		defer func() {
			_ = rs.Close()
		}()
		telemetry = rs
	}

	specs, err := npc.LoadProfileSpecs(cfg.ProfileDir)
	if err != nil || len(specs) == 0 {
		fmt.Fprintf(os.Stderr, "Failed to load NPC profiles from %s: %v\n", cfg.ProfileDir, err)
		os.Exit(1)
	}

	ctl, err := conversation.New(conversation.Config{
		Backend:      backend,
		Telemetry:    telemetry,
		Logger:       log,
		GenTimeout:   cfg.GenTimeout,
		MaxTokens:    cfg.MaxTokens,
		WrapWidth:    cfg.WrapWidth,
		MaxPageLines: cfg.MaxPageLines,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create conversation controller: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(NewConsoleUI(ctl, specs),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
