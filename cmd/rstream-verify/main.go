// Package main implements the rstream-verify command, which drives the
// reference publishers through the behavioral scenarios of the streaming
// contract and reports the outcome.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/rstream/publisher"
	"github.com/c360/rstream/stream"
	"github.com/c360/rstream/testutil"
	"github.com/c360/rstream/verify"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "rstream-verify"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("verification run failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	env, err := loadEnvironment(cliCfg)
	if err != nil {
		return err
	}
	slog.Info("environment ready",
		"default_timeout", env.DefaultTimeout,
		"sequence_length", env.SequenceLength,
		"requesters", env.Requesters,
		"requests_per_requester", env.RequestsPerRequester)

	targets, err := buildTargets(cliCfg.Publisher, env, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runTargets(ctx, targets)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	envLabel := cliCfg.EnvPath
	if envLabel == "" {
		envLabel = "(defaults)"
	}
	slog.Info("starting publisher verification",
		"version", Version,
		"publisher", cliCfg.Publisher,
		"environment", envLabel)

	return cliCfg, logger, false, nil
}

// loadEnvironment resolves the verification environment from the flag
// settings: YAML file if given, defaults otherwise, timeout override last.
func loadEnvironment(cliCfg *CLIConfig) (verify.Environment, error) {
	env := verify.DefaultEnvironment()
	if cliCfg.EnvPath != "" {
		loaded, err := verify.LoadEnvironment(cliCfg.EnvPath)
		if err != nil {
			return verify.Environment{}, fmt.Errorf("load environment: %w", err)
		}
		env = loaded
	}

	if cliCfg.Timeout > 0 {
		env.DefaultTimeout = cliCfg.Timeout
	}
	if err := env.Validate(); err != nil {
		return verify.Environment{}, err
	}
	return env, nil
}

// target is one publisher implementation scheduled for verification.
type target struct {
	name string
	run  func(context.Context) error
}

// buildTargets assembles the verifiers for the selected publishers. Each
// factory hands the verifier a fresh publisher per scenario.
func buildTargets(selection string, env verify.Environment, logger *slog.Logger) ([]target, error) {
	var targets []target
	want := func(name string) bool { return selection == "all" || selection == name }

	if want("slice") {
		v, err := verify.NewPublisherVerifier(
			func(els []int) stream.Publisher[int] { return publisher.FromSlice(els) },
			testutil.Ints,
			env,
			verify.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("slice verifier: %w", err)
		}
		targets = append(targets, target{name: "slice", run: v.Verify})
	}

	if want("range") {
		v, err := verify.NewPublisherVerifier(
			func(els []int64) stream.Publisher[int64] { return publisher.Range(0, int64(len(els))) },
			int64Sample,
			env,
			verify.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("range verifier: %w", err)
		}
		targets = append(targets, target{name: "range", run: v.Verify})
	}

	if want("channel") {
		v, err := verify.NewPublisherVerifier(
			channelFactory,
			testutil.Ints,
			env,
			verify.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("channel verifier: %w", err)
		}
		targets = append(targets, target{name: "channel", run: v.Verify})
	}

	return targets, nil
}

// channelFactory builds a channel-backed publisher for verification. The
// channel is pre-filled and closed so the publisher owns all pacing and no
// feeder goroutine outlives a cancelled scenario.
func channelFactory(els []int) stream.Publisher[int] {
	ch := make(chan int, len(els))
	for _, e := range els {
		ch <- e
	}
	close(ch)
	return publisher.FromChannel(ch)
}

func int64Sample(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return out
}

// runTargets verifies each target in turn and reports per-publisher
// results, failing the run if any publisher failed.
func runTargets(ctx context.Context, targets []target) error {
	failures := 0
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		if err := t.run(ctx); err != nil {
			slog.Error("verification failed", "publisher", t.name, "error", err)
			failures++
			continue
		}
		slog.Info("verification passed",
			"publisher", t.name,
			"took", time.Since(start).Round(time.Millisecond))
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d publishers failed verification", failures, len(targets))
	}
	return nil
}
