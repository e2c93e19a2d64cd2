package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const barWidth = 40

// progressReporter draws a bar when stderr is a terminal and logs every
// tenth of the way otherwise.
type progressReporter struct {
	label    string
	out      io.Writer
	terminal bool
	logger   *slog.Logger
	lastStep int
}

func newProgress(label string, logger *slog.Logger) *progressReporter {
	fd := os.Stderr.Fd()
	return &progressReporter{
		label:    label,
		out:      os.Stderr,
		terminal: isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd),
		logger:   logger,
		lastStep: -1,
	}
}

func (p *progressReporter) update(done, total int) {
	if total <= 0 {
		return
	}
	percent := done * 100 / total
	if p.terminal {
		filled := percent * barWidth / 100
		fmt.Fprintf(p.out, "\r%s [%s%s] %3d%%", p.label,
			strings.Repeat("=", filled), strings.Repeat(" ", barWidth-filled), percent)
		if done == total {
			fmt.Fprintln(p.out)
		}
		return
	}
	if step := percent / 10; step != p.lastStep {
		p.lastStep = step
		p.logger.Info(p.label, "done", done, "total", total, "percent", percent)
	}
}
