// Package sim runs the broad phase over a world of moving scenes at a fixed
// tick rate and publishes a snapshot of every step.
package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/hashgrid/internal/broadphase"
	"github.com/tomz197/hashgrid/internal/config"
)

// Source is what viewers use to follow the simulation. It decouples the
// console and web surfaces from the concrete Server.
type Source interface {
	Attach(name string) *Viewer
	Detach(id int)
	Snapshot() *Snapshot
}

// Server owns the world state and steps it.
type Server struct {
	cfg      config.Config
	world    *WorldState
	logger   *log.Logger
	snapshot atomic.Pointer[Snapshot]

	mu           sync.RWMutex
	stepMu       sync.Mutex
	viewers      map[int]*Viewer
	nextViewerID int
}

var _ Source = (*Server)(nil)

// Viewer is a registered consumer of snapshots.
type Viewer struct {
	ID     int
	Name   string
	Events chan Event
}

// Event is sent from the server to viewers.
type Event int

const (
	// EventShutdown asks the viewer to disconnect.
	EventShutdown Event = iota
)

// NewServer builds the world for cfg. The initial snapshot is empty.
func NewServer(cfg config.Config, logger *log.Logger) (*Server, error) {
	world, err := NewWorldState(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:          cfg,
		world:        world,
		logger:       logger,
		viewers:      make(map[int]*Viewer),
		nextViewerID: 1,
	}
	s.snapshot.Store(&Snapshot{Time: time.Now(), Grids: s.gridSnapshots()})
	return s, nil
}

// World returns the world state. Only use it when the server is not running.
func (s *Server) World() *WorldState {
	return s.world
}

// TickTime is the configured duration of one step.
func (s *Server) TickTime() time.Duration {
	return s.cfg.TickTime()
}

// Run steps the world at the configured tick rate until ctx is cancelled.
// Cancellation is a normal stop and returns nil.
func (s *Server) Run(ctx context.Context) error {
	tick := s.cfg.TickTime()
	s.logger.Info("simulation started",
		"scenes", len(s.world.Scenes), "pairs", len(s.world.Pairs()), "tick", tick)
	defer func() {
		s.logger.Info("simulation stopped", "steps", s.world.Steps)
	}()

	lastTime := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frameStart := time.Now()
		dt := frameStart.Sub(lastTime)
		lastTime = frameStart

		if err := s.Step(ctx, dt); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		elapsed := time.Since(frameStart)
		if elapsed < tick {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(tick - elapsed):
			}
		}
	}
}

// Step advances the world by dt, sweeps every grid pair and publishes a
// new snapshot. A cancelled ctx leaves the world untouched.
func (s *Server) Step(ctx context.Context, dt time.Duration) error {
	s.stepMu.Lock()
	defer s.stepMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("step %d: %w", s.world.Steps+1, err)
	}

	start := time.Now()
	w := s.world
	w.advance(dt)

	res, err := broadphase.CollideAll(ctx, w.Pairs(), w.Detection, w.Registry, w.Stamp, s.cfg.Sim.Parallelism)
	if err != nil {
		return fmt.Errorf("step %d: %w", w.Steps, err)
	}

	duration := time.Since(start)
	contacts := w.Detection.Total()
	recordStep(ctx, duration, contacts)

	snap := &Snapshot{
		Step:     w.Steps,
		Stamp:    w.Stamp,
		Time:     time.Now(),
		Delta:    dt,
		Duration: duration,
		Sweep:    res,
		Contacts: contacts,
		Pairs:    w.Detection.Pairs(),
		Grids:    s.gridSnapshots(),
		Viewers:  s.viewerCount(),
	}
	s.snapshot.Store(snap)

	if every := uint64(s.cfg.Sim.StatsEvery); every > 0 && w.Steps%every == 0 {
		s.logStats(snap)
	}
	return nil
}

func (s *Server) gridSnapshots() []GridSnapshot {
	w := s.world
	grids := make([]GridSnapshot, len(w.Grids))
	for i, g := range w.Grids {
		sc := w.Scenes[i]
		grids[i] = GridSnapshot{
			Name:      sc.Name,
			Kind:      sc.Kind,
			Bodies:    sc.Size(),
			PrimeSize: g.PrimeSize(),
			Stats:     g.Stats(w.Stamp),
		}
	}
	return grids
}

func (s *Server) logStats(snap *Snapshot) {
	s.logger.Info("step",
		"step", snap.Step,
		"took", snap.Duration,
		"buckets", snap.Sweep.Buckets,
		"candidates", snap.Sweep.Candidates,
		"dispatched", snap.Sweep.Dispatched,
		"contacts", snap.Contacts,
	)
	for _, g := range snap.Grids {
		s.logger.Debug("grid", append([]any{"name", g.Name}, g.Stats.KeyVals()...)...)
	}
}

// Snapshot returns the latest published snapshot. Safe from any goroutine.
func (s *Server) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// Attach registers a viewer.
func (s *Server) Attach(name string) *Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &Viewer{
		ID:     s.nextViewerID,
		Name:   name,
		Events: make(chan Event, 4),
	}
	s.nextViewerID++
	s.viewers[v.ID] = v
	s.logger.Debug("viewer attached", "id", v.ID, "name", name)
	return v
}

// Detach removes a viewer and closes its event channel.
func (s *Server) Detach(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.viewers[id]
	if !ok {
		return
	}
	close(v.Events)
	delete(s.viewers, id)
	s.logger.Debug("viewer detached", "id", id)
}

func (s *Server) viewerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.viewers)
}

// Shutdown notifies every viewer and waits for them to detach, up to
// timeout. The caller cancels the Run context afterwards.
func (s *Server) Shutdown(timeout time.Duration) {
	s.mu.RLock()
	for _, v := range s.viewers {
		select {
		case v.Events <- EventShutdown:
		default:
		}
	}
	s.mu.RUnlock()

	deadline := time.After(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if s.viewerCount() == 0 {
			return
		}
		select {
		case <-deadline:
			s.logger.Warn("viewers still attached at shutdown", "viewers", s.viewerCount())
			return
		case <-ticker.C:
		}
	}
}
