package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/fpang/lapse-classify/internal/interact"
)

// RunInfo is shown in the header before classification starts.
type RunInfo struct {
	Directory  string
	Candidates int
	Provider   string
	Model      string
	Graphics   string
	AutoAccept bool
}

// PrintHeader writes the run banner.
func PrintHeader(w io.Writer, info RunInfo) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "============================================")
	fmt.Fprintln(w, "Lapse Classify")
	fmt.Fprintln(w, "============================================")
	fmt.Fprintf(w, "Directory: %s\n", info.Directory)
	fmt.Fprintf(w, "Images found: %d\n", info.Candidates)
	fmt.Fprintf(w, "Provider: %s (%s)\n", info.Provider, info.Model)
	fmt.Fprintf(w, "Thumbnails: %s\n", info.Graphics)
	if info.AutoAccept {
		fmt.Fprintln(w, "Mode: recognized labels accepted without asking")
	}
	fmt.Fprintln(w, "--------------------------------------------")
}

// PrintSummary writes the closing counts.
func PrintSummary(w io.Writer, s interact.Summary, elapsed time.Duration) {
	fmt.Fprintln(w, "--------------------------------------------")
	fmt.Fprintf(w, "Renamed %d, skipped %d, failed %d of %d image(s) in %s\n",
		s.Renamed, s.Skipped, s.Failed, s.Total(), formatElapsed(elapsed))
}

// formatElapsed renders short runs as seconds with a tenth ("4.2s") and
// longer ones as M:SS or H:MM:SS.
func formatElapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	total := int(d.Seconds())
	hours, minutes, seconds := total/3600, total%3600/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
