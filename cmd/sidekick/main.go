package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/petasbytes/sidekick/internal/agent"
	"github.com/petasbytes/sidekick/internal/config"
	"github.com/petasbytes/sidekick/internal/logging"
	"github.com/petasbytes/sidekick/internal/provider"
	"github.com/petasbytes/sidekick/internal/session"
	"github.com/petasbytes/sidekick/internal/sidekick"
	"github.com/petasbytes/sidekick/internal/telemetry"
	"github.com/petasbytes/sidekick/memory"
)

func main() {
	os.Exit(run())
}

func run() int {
	noCriterion := flag.Bool("no-criterion", false, "do not ask for a success criterion")
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.LoadSidekick(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	rec, err := telemetry.Open(cfg.ArtifactsDir, cfg.ObserveJSON)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: telemetry disabled: %v\n", err)
		rec = telemetry.Nop()
	}
	defer rec.Close()

	var seed []memory.Turn
	if cfg.TranscriptPath != "" {
		seed, err = memory.LoadTranscript(cfg.TranscriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to load transcript: %v\n", err)
		}
	}

	factory := func() agent.Agent {
		return sidekick.New(sidekick.Options{
			Provider: string(cfg.Provider),
			Client: provider.Options{
				APIKey:  cfg.APIKey(),
				Model:   cfg.Model(),
				BaseURL: cfg.OpenAIBaseURL,
			},
			MaxTokens:     cfg.MaxTokens,
			MaxIterations: cfg.MaxIterations,
			TokenBudget:   cfg.TokenBudget,
		}, logger.Named("sidekick"), rec)
	}

	// Ctrl-C / SIGTERM end the session; cleanup still runs via Close.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		cancel()
	}()

	s := session.New(factory, session.Options{
		In:             os.Stdin,
		Out:            os.Stdout,
		Logger:         logger.Named("session"),
		Recorder:       rec,
		AskCriterion:   cfg.AskCriterion && !*noCriterion,
		Interactive:    term.IsTerminal(int(os.Stdout.Fd())),
		History:        memory.NewHistory(seed),
		TranscriptPath: cfg.TranscriptPath,
	})
	defer s.Close()

	logger.Info("starting", zap.String("provider", string(cfg.Provider)), zap.String("model", cfg.Model()))
	if err := s.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize Sidekick: %v\n", err)
		return 1
	}
	if err := s.Run(ctx); err != nil {
		logger.Error("session ended with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Unexpected error: %v\n", err)
		return 1
	}
	return 0
}
