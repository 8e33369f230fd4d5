package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"studioflow/internal/config"
	"studioflow/internal/service/guided"
	serviceLLM "studioflow/internal/service/llm"
	"studioflow/internal/tui"
)

func main() {
	catalogName := flag.String("catalog", guided.DefaultCatalog, "question catalog to run")
	output := flag.String("out", "contract-draft.md", "where ctrl+s writes the draft")
	provider := flag.String("provider", os.Getenv("PROVIDER_NAME"), "your name as it appears on the contract")
	logDir := flag.String("log-dir", "logs", "directory for session logs")
	flag.Parse()

	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()
	cfg := config.Load()

	// The terminal belongs to the UI, so logs go to a file
	logFile, err := config.SetupLogFile(*logDir, "guided", 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	catalog, err := guided.LoadCatalog(*catalogName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog %q: %v\n", *catalogName, err)
		os.Exit(1)
	}

	providerName := *provider
	if providerName == "" {
		providerName = "Provider"
	}

	model := tui.New(catalog, tui.Options{
		ProviderName: providerName,
		OutputPath:   *output,
		Suggester:    serviceLLM.SetupSuggester(cfg, logger),
		Logger:       logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
