package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/tomz197/hashgrid/internal/config"
	"github.com/tomz197/hashgrid/internal/console"
	"github.com/tomz197/hashgrid/internal/logging"
	"github.com/tomz197/hashgrid/internal/sim"
	"github.com/tomz197/hashgrid/internal/telemetry"
)

var (
	configPath string
	steps      int

	rootCmd = &cobra.Command{
		Use:           "hashgrid-sim",
		Short:         "Run the spatial hash broad phase over a world of moving boxes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Step the simulation headless and log grid statistics",
		RunE:  runHeadless,
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Run the simulation in real time with a terminal dashboard",
		RunE:  runWatch,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		RunE:  printConfig,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.GetEnv("HASHGRID_CONFIG", ""), "path to a YAML config file")
	runCmd.Flags().IntVarP(&steps, "steps", "n", 600, "number of steps to run")
	rootCmd.AddCommand(runCmd, watchCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the config, installs telemetry and builds the server.
func setup(ctx context.Context, logOut io.Writer) (*sim.Server, *log.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger := logging.New(logOut, cfg.Log.Level, "sim")

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceName = cfg.Telemetry.ServiceName
	tcfg.MetricExporter = cfg.Telemetry.MetricExporter
	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("telemetry: %w", err)
	}
	cleanup := func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", "err", err)
		}
	}

	srv, err := sim.NewServer(cfg, logger)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	logger.Info("config loaded",
		"cell", cfg.Grid.CellSize, "alarm", cfg.Grid.AlarmDistance,
		"table", cfg.Grid.TableSize, "scenes", len(cfg.Scenes))
	return srv, logger, cleanup, nil
}

func runHeadless(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, logger, cleanup, err := setup(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	tick := srv.TickTime()
	start := time.Now()
	for i := 0; i < steps; i++ {
		if err := srv.Step(ctx, tick); err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			return err
		}
	}

	snap := srv.Snapshot()
	logger.Info("done",
		"steps", snap.Step,
		"elapsed", time.Since(start),
		"last_contacts", snap.Contacts,
		"last_dispatched", snap.Sweep.Dispatched)
	for _, g := range snap.Grids {
		logger.Info("grid", append([]any{"name", g.Name}, g.Stats.KeyVals()...)...)
	}
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// The dashboard owns the terminal, so logs are dropped.
	srv, _, cleanup, err := setup(ctx, io.Discard)
	if err != nil {
		return err
	}
	defer cleanup()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	c := console.New(srv, bufio.NewReader(os.Stdin), os.Stdout, console.Options{Name: "local"})
	if err := c.Run(ctx); err != nil {
		return err
	}

	cancel()
	return <-errCh
}

func printConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
