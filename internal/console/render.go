package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomz197/hashgrid/internal/sim"
)

// Render draws snap into cw for a width x height terminal. selected is the
// index of the highlighted grid.
func Render(cw *ChunkWriter, snap *sim.Snapshot, selected, width, height int) {
	lines := Lines(snap, selected)
	for row := 1; row <= height; row++ {
		line := ""
		if row-1 < len(lines) {
			line = lines[row-1]
		}
		if width > 0 && len(line) > width {
			line = line[:width]
		}
		cw.WriteAt(1, row, line)
	}
}

// Lines formats snap as dashboard lines.
func Lines(snap *sim.Snapshot, selected int) []string {
	if snap == nil {
		return []string{"hashgrid: waiting for the first step"}
	}

	lines := []string{
		fmt.Sprintf("hashgrid  step %d  stamp %d  took %s  viewers %d",
			snap.Step, snap.Stamp, snap.Duration.Round(time.Microsecond), snap.Viewers),
		fmt.Sprintf("sweep  buckets %d  candidates %d  dispatched %d  contacts %d",
			snap.Sweep.Buckets, snap.Sweep.Candidates, snap.Sweep.Dispatched, snap.Contacts),
		"",
		fmt.Sprintf("  %-3s %-12s %-8s %7s %8s %8s %8s %7s %5s",
			"#", "scene", "kind", "bodies", "buckets", "cells", "proxies", "mean", "max"),
	}

	for i, g := range snap.Grids {
		marker := " "
		if i == selected {
			marker = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %-3d %-12s %-8s %7d %8d %8d %8d %7.2f %5d",
			marker, i+1, g.Name, g.Kind, g.Bodies, g.PrimeSize,
			g.Stats.PopulatedCells, g.Stats.Proxies, g.Stats.MeanPerCell, g.Stats.MaxPerCell))
	}

	if selected >= 0 && selected < len(snap.Grids) {
		g := snap.Grids[selected]
		lines = append(lines, "", fmt.Sprintf("%s: %s  load %s", g.Name, g.Stats, loadBar(g.Stats.PopulatedCells, g.PrimeSize, 30)))
	}

	if len(snap.Pairs) > 0 {
		lines = append(lines, "", "contacts by pair")
		for _, p := range snap.Pairs {
			lines = append(lines, fmt.Sprintf("  %-12s x %-12s %6d", p.First, p.Second, p.Contacts))
		}
	}

	lines = append(lines, "", "q quit   tab/arrows select   1-9 jump")
	return lines
}

// loadBar shows used/total as a bar of the given width.
func loadBar(used, total, width int) string {
	filled := 0
	if total > 0 {
		filled = used * width / total
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
