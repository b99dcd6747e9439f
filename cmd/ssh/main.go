package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"

	"github.com/tomz197/hashgrid/internal/config"
	"github.com/tomz197/hashgrid/internal/console"
	applog "github.com/tomz197/hashgrid/internal/logging"
	"github.com/tomz197/hashgrid/internal/sim"
	"github.com/tomz197/hashgrid/internal/telemetry"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = ".ssh/hashgrid_host_key"
)

func main() {
	cfg, err := config.Load(config.GetEnv("HASHGRID_CONFIG", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := applog.New(os.Stderr, cfg.Log.Level, "ssh")

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	logger.Info("ssh config", "host", host, "port", port, "hostKey", hostKeyPath)

	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceName = cfg.Telemetry.ServiceName
	tcfg.MetricExporter = cfg.Telemetry.MetricExporter
	shutdownTelemetry, err := telemetry.Init(context.Background(), tcfg)
	if err != nil {
		logger.Fatal("telemetry", "err", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	// One simulation shared by every session.
	simServer, err := sim.NewServer(cfg, logger.WithPrefix("sim"))
	if err != nil {
		logger.Fatal("simulation", "err", err)
	}
	simCtx, cancelSim := context.WithCancel(context.Background())
	simDone := make(chan error, 1)
	go func() { simDone <- simServer.Run(simCtx) }()

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			dashboardMiddleware(simServer, logger),
			activeterm.Middleware(),
			logging.Middleware(),
		),
	}
	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	simServer.Shutdown(5 * time.Second)
	cancelSim()
	if err := <-simDone; err != nil {
		logger.Error("simulation", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// dashboardMiddleware serves the live dashboard to each PTY session.
func dashboardMiddleware(src sim.Source, logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			pty, winCh, ok := sess.Pty()
			if !ok {
				fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
				return
			}

			logger.Info("session", "user", sess.User(), "term", pty.Term,
				"width", pty.Window.Width, "height", pty.Window.Height)

			sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)
			go func() {
				for win := range winCh {
					sizeTracker.update(win.Width, win.Height)
				}
			}()

			c := console.New(src, bufio.NewReader(sess), sess, console.Options{
				Name:         sess.User(),
				TermSizeFunc: sizeTracker.getSize,
			})
			if err := c.Run(sess.Context()); err != nil {
				logger.Error("dashboard", "user", sess.User(), "err", err)
			}

			logger.Info("session ended", "user", sess.User())
			next(sess)
		}
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

var _ console.TermSizeFunc = (*sizeTracker)(nil).getSize
