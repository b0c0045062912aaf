// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress renders download progress. On a terminal it draws a
// progress bar; elsewhere it prints one line per completed record so logs
// and pipes stay readable.
package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/pdiddy/arxiv-harvester/pkg/types"
)

// Reporter observes orchestrator completions. Its Update method has the
// shape of download.ProgressFunc.
type Reporter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// New returns a Reporter for total records writing to w. A bar is drawn
// when w is a terminal.
func New(total int, w io.Writer, description string) *Reporter {
	return newReporter(total, w, description, IsTerminal(w))
}

func newReporter(total int, w io.Writer, description string, bar bool) *Reporter {
	r := &Reporter{w: w}
	if bar {
		r.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetItsString("paper"),
			progressbar.OptionShowIts(),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	return r
}

// Update records one completed outcome.
func (r *Reporter) Update(done, total int, outcome types.DownloadOutcome) {
	if r.bar != nil {
		r.bar.Set(done)
		return
	}
	fmt.Fprintf(r.w, "[%d/%d] %s %s\n", done, total, status(outcome), describe(outcome))
}

// Finish completes the bar if one is drawn.
func (r *Reporter) Finish() {
	if r.bar != nil {
		r.bar.Finish()
	}
}

func status(o types.DownloadOutcome) string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.Success:
		return "ok     "
	default:
		return "failed "
	}
}

func describe(o types.DownloadOutcome) string {
	if !o.Success {
		return fmt.Sprintf("%s: %s", o.Identifier, o.Error)
	}
	return fmt.Sprintf("%s -> %s", o.Identifier, o.Path)
}
