// Package main is the entry point for the sliswap loss visualizer backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss"
	lossApp "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/app"
	lossDI "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/di"
	lossInfra "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/infra"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap"
	swapDI "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/di"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apm"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/config"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/metrics"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/monolith"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type mode int

const (
	modeServe mode = iota // HTTP API, scanner logs each pass
	modeCLI               // HTTP API, scanner prints tables
	modeTUI               // HTTP API in background, simulator in the terminal
	modeOnce              // one scan table, then exit
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Print scanner tables to stdout")
	tuiMode := flag.Bool("tui", false, "Run the terminal swap simulator")
	once := flag.Bool("once", false, "Run one slippage scan, print it and exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sliswap %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	m := modeServe
	switch {
	case *once:
		m = modeOnce
	case *tuiMode:
		m = modeTUI
	case *cliMode:
		m = modeCLI
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		if m != modeTUI {
			fmt.Fprintf(os.Stderr, "received shutdown signal: %v\n", sig)
		}
		cancel()
	}()

	if err := run(ctx, *configPath, m); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, m mode) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// In TUI mode, suppress logs (discard output)
	var out io.Writer = os.Stderr
	if m == modeTUI {
		out = io.Discard
	}
	log := logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, apm.TraceID)
	log.Info(ctx, "starting sliswap",
		"version", version,
		"environment", cfg.App.Environment,
		"source", cfg.Endless.Source,
	)

	stopTelemetry, err := setupTelemetry(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer stopTelemetry()

	mono := monolith.New(cfg, log, version)

	lossModule := &loss.Module{}

	// Define modules in dependency order
	modules := []monolith.Module{
		&swap.Module{},
		lossModule, // Depends on swap
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	// Services resolve lazily, so the reporter can still be chosen here.
	var program *tea.Program
	switch m {
	case modeCLI, modeOnce:
		lossModule.Reporter = lossInfra.NewConsoleReporter()
	case modeTUI:
		program = newProgram(mono)
		lossModule.Reporter = lossInfra.NewTUIReporter(program)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}

	scanner := lossDI.GetScanner(mono.Services())

	if m == modeOnce {
		report := scanner.RunOnce(ctx)
		lossDI.GetReporter(mono.Services()).Report(report)
		if report.Failed() > 0 {
			return fmt.Errorf("%d of %d scan rows failed", report.Failed(), len(report.Rows))
		}
		return nil
	}

	if err := mono.Health().Start(); err != nil {
		log.Warn(ctx, "failed to start health server", "error", err)
	} else if cfg.Health.Port != 0 {
		log.Info(ctx, "health server started", "port", cfg.Health.Port)
	}
	defer mono.Health().Stop(context.Background())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- mono.HTTP().Start(ctx)
	}()

	if m == modeTUI {
		return runTUI(ctx, cancel, program, scanner, httpErr)
	}
	return runServer(ctx, scanner, log, httpErr)
}

func runServer(ctx context.Context, scanner *lossApp.Scanner, log *logger.Logger, httpErr <-chan error) error {
	log.Info(ctx, "all modules started, beginning slippage scans")

	if err := scanner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scanner: %w", err)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-httpErr:
		if err != nil {
			log.Error(ctx, "http server failed", "error", err)
		}
	}

	log.Info(ctx, "shutting down")

	if stopErr := scanner.Stop(); stopErr != nil {
		log.Error(ctx, "error stopping scanner", "error", stopErr)
	}
	return err
}

// startSignal is fed by the welcome screen's OnStart callback.
var startSignal = make(chan struct{}, 1)

func newProgram(mono monolith.Monolith) *tea.Program {
	all := mono.AssetRegistry().All()
	tokens := make([]string, len(all))
	for i, a := range all {
		tokens[i] = a.Symbol()
	}

	model := ui.New(ui.Options{
		Quoter: swapDI.GetSwapService(mono.Services()),
		Tokens: tokens,
		From:   "EDS",
		To:     "USDT",
		Amount: "1",
		OnStart: func() {
			select {
			case startSignal <- struct{}{}:
			default:
			}
		},
	})
	return ui.NewProgram(model)
}

func runTUI(ctx context.Context, cancel context.CancelFunc, program *tea.Program, scanner *lossApp.Scanner, httpErr <-chan error) error {
	// Run the scanner in the background once the welcome screen is gone
	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		if err := scanner.Start(ctx); err != nil {
			program.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}

		select {
		case <-ctx.Done():
		case err := <-httpErr:
			if err != nil {
				program.Send(ui.ErrorMsg{Error: fmt.Errorf("http server: %w", err)})
			}
			<-ctx.Done()
		}
		errCh <- scanner.Stop()
	}()

	// A signal ends the TUI too
	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	_, runErr := program.Run()
	cancel()
	if runErr != nil {
		return fmt.Errorf("TUI error: %w", runErr)
	}

	select {
	case err := <-errCh:
		return err
	case <-time.After(5 * time.Second):
		return errors.New("timed out stopping scanner")
	}
}

func setupTelemetry(ctx context.Context, cfg config.TelemetryConfig, log logger.LoggerInterface) (func(), error) {
	traceProvider, err := apm.NewTraceProviderFromConfig(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	meterProvider, err := metrics.NewMetricProviderFromConfig(cfg)
	if err != nil {
		_ = traceProvider.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	var promServer *metrics.PrometheusServer
	if meterProvider != nil {
		port := cfg.PrometheusPort
		if port == 0 {
			port = 9090
		}
		promServer, err = metrics.ServePrometheusMetrics(meterProvider.Handler(), log, metrics.WithPort(strconv.Itoa(port)))
		if err != nil {
			log.Warn(ctx, "failed to start prometheus server", "error", err)
		}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if promServer != nil {
			_ = promServer.Stop(shutdownCtx)
		}
		if meterProvider != nil {
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Warn(shutdownCtx, "meter provider shutdown", "error", err)
			}
		}
		if err := traceProvider.Stop(); err != nil {
			log.Warn(shutdownCtx, "trace provider shutdown", "error", err)
		}
	}, nil
}
