package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/petasbytes/sidekick/internal/config"
	"github.com/petasbytes/sidekick/internal/echoui"
	"github.com/petasbytes/sidekick/internal/localefix"
	"github.com/petasbytes/sidekick/internal/logging"
)

var out = termenv.NewOutput(os.Stdout)

func ok(format string, a ...any) {
	fmt.Fprintln(out, out.String("  ok   ").Foreground(out.Color("10")).String()+fmt.Sprintf(format, a...))
}

func warn(format string, a ...any) {
	fmt.Fprintln(out, out.String("  warn ").Foreground(out.Color("11")).String()+fmt.Sprintf(format, a...))
}

func rule(n int) { fmt.Fprintln(out, strings.Repeat("=", n)) }

func main() {
	os.Exit(run())
}

func run() int {
	yes := flag.Bool("y", false, "start without waiting for Enter")
	envFile := flag.String("env", ".env", "optional .env file")
	flag.Parse()

	cfg, err := config.LoadI18nFix(*envFile)
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

	fmt.Fprintln(out, out.String("UI locale (i18n) repair tool").Bold())
	fmt.Fprintln(out, "Works around 'Cannot format a message without first setting the initial locale'")
	rule(80)
	fmt.Fprintln(out, "Symptoms addressed:")
	fmt.Fprintln(out, "   - locale initialization error in the web UI")
	fmt.Fprintln(out, "   - manifest.json 404 error")
	fmt.Fprintln(out, "\nSteps:")
	fmt.Fprintln(out, "   1. Set English/UTF-8 locale variables")
	fmt.Fprintln(out, "   2. Remove UI caches and state")
	fmt.Fprintln(out, "   3. Build an English-only interface")
	fmt.Fprintln(out, "   4. Disable features known to trigger the problem")
	rule(80)

	if !*yes {
		fmt.Fprint(out, "Press Enter to start the repair... ")
		if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
			fmt.Fprintln(out, "\nInterrupted, exiting")
			return 0
		}
	}

	// Ctrl-C at the prompt keeps its default behaviour.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		cancel()
	}()

	if err := repair(ctx, cfg, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(out, "\nInterrupted, exiting")
			return 0
		}
		logger.Error("repair failed", zap.Error(err))
		fmt.Fprintf(out, "\nError: %v\n", err)
		return 1
	}
	return 0
}

func repair(ctx context.Context, cfg *config.I18nFix, logger *zap.Logger) error {
	rule(60)
	fmt.Fprintf(out, "Go version: %s (%s/%s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	rule(60)

	fmt.Fprintln(out, "Fixing locale environment...")
	applied, err := localefix.Apply(runtime.GOOS, os.Setenv)
	for _, v := range applied {
		ok("set %s=%s", v.Key, v.Value)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Cleaning cached UI state...")
	home, err := os.UserHomeDir()
	if err != nil {
		warn("no home directory: %v", err)
	}
	dirs := append(localefix.CacheDirs(home, runtime.GOOS, os.Getenv("TEMP")), cfg.CacheDirs()...)
	if home == "" {
		dirs = dirs[3:]
	}
	removed := localefix.CleanCaches(dirs, func(dir string, err error) {
		logger.Warn("cache cleanup failed", zap.String("dir", dir), zap.Error(err))
		warn("could not remove %s: %v", dir, err)
	})
	for _, dir := range removed {
		ok("removed %s", dir)
	}

	cat := localefix.NewCatalog(os.Getenv)
	if err := cat.Reload(); err != nil {
		warn("message catalog reload failed: %v", err)
	} else {
		tag, source := cat.Locale()
		ok("message catalog reloaded (%s from %s)", tag, source)
	}

	fmt.Fprintln(out, "\nBuilding the test interface...")
	ui, err := echoui.NewUI(cat)
	if err != nil {
		return fmt.Errorf("build interface: %w", err)
	}
	plan, err := echoui.LoadPlan(cfg.PlanPath)
	if err != nil {
		return err
	}

	launcher := &echoui.Launcher{
		UI:           ui,
		Out:          out,
		Logger:       logger.Named("echoui"),
		OpenBrowser:  cfg.OpenBrowser,
		BrowserDelay: cfg.BrowserDelay,
	}
	fmt.Fprintln(out, "If the page loads, the locale issue is fixed. Press Ctrl-C to stop.")
	used, err := launcher.Run(ctx, plan)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Launcher.Run has already printed the remediation checklist.
		return nil
	}
	logger.Info("ui stopped", zap.String("variant", used.Name))
	return nil
}
