// Package console renders a live dashboard of the simulation to a terminal,
// locally or over SSH.
package console

import (
	"context"
	"io"
	"time"

	"github.com/tomz197/hashgrid/internal/sim"
)

// DefaultFrameTime is the redraw interval.
const DefaultFrameTime = time.Second / 20

// Options configures a Console.
type Options struct {
	Name         string
	TermSizeFunc TermSizeFunc
	FrameTime    time.Duration
}

// Console shows the snapshots of a sim.Source until the user quits.
type Console struct {
	src       sim.Source
	keys      *KeyStream
	writer    io.Writer
	cw        *ChunkWriter
	termSize  TermSizeFunc
	frameTime time.Duration
	name      string

	selected      int
	width, height int
}

// New creates a console reading keys from r and drawing to w.
func New(src sim.Source, r io.Reader, w io.Writer, opts Options) *Console {
	termSize := opts.TermSizeFunc
	if termSize == nil {
		termSize = DefaultTermSizeFunc
	}
	frameTime := opts.FrameTime
	if frameTime <= 0 {
		frameTime = DefaultFrameTime
	}

	return &Console{
		src:       src,
		keys:      StartKeyStream(r),
		writer:    w,
		cw:        NewChunkWriter(w),
		termSize:  termSize,
		frameTime: frameTime,
		name:      opts.Name,
	}
}

// Run draws frames until the user quits, the input closes, the server
// shuts down or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	viewer := c.src.Attach(c.name)
	defer c.src.Detach(viewer.ID)

	c.cw.WriteString(hideCursor + clearScreen)
	defer func() {
		c.cw.WriteString(clearScreen + showCursor)
		_ = c.cw.Flush()
	}()

	ticker := time.NewTicker(c.frameTime)
	defer ticker.Stop()

	for {
		if !c.handleKeys(c.keys.Read()) {
			return nil
		}

		select {
		case ev, ok := <-viewer.Events:
			if !ok || ev == sim.EventShutdown {
				return nil
			}
		default:
		}

		if err := c.drawFrame(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// handleKeys applies one frame of input and reports whether to keep going.
func (c *Console) handleKeys(k Keys) bool {
	if k.Quit {
		return false
	}

	snap := c.src.Snapshot()
	if snap == nil || len(snap.Grids) == 0 {
		return true
	}
	n := len(snap.Grids)
	switch {
	case k.Select > 0 && k.Select <= n:
		c.selected = k.Select - 1
	case k.Next:
		c.selected = (c.selected + 1) % n
	case k.Prev:
		c.selected = (c.selected - 1 + n) % n
	}
	return true
}

func (c *Console) drawFrame() error {
	width, height, err := c.termSize()
	if err != nil {
		width, height = 80, 24
	}
	if width != c.width || height != c.height {
		c.cw.WriteString(clearScreen)
		c.width, c.height = width, height
	}

	Render(c.cw, c.src.Snapshot(), c.selected, width, height)
	return c.cw.Flush()
}

// Selected returns the index of the highlighted grid.
func (c *Console) Selected() int {
	return c.selected
}
