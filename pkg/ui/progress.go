package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
	barWidth      = 20
)

// ProgressDisplay prints a single updating progress line for a collection run
type ProgressDisplay struct {
	mu        sync.Mutex
	w         io.Writer
	total     int
	done      int
	collected int
	skipped   int
	current   string
	startTime time.Time
	isDebug   bool
}

// NewProgressDisplay creates a progress display writing to the terminal output
func NewProgressDisplay(debug bool) *ProgressDisplay {
	return NewProgressDisplayTo(Output(), debug)
}

// NewProgressDisplayTo creates a progress display writing to w
func NewProgressDisplayTo(w io.Writer, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		w:       w,
		isDebug: debug,
	}
}

// Start begins a run of total identifiers
func (p *ProgressDisplay) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.done, p.collected, p.skipped = 0, 0, 0
	p.current = ""
	p.startTime = time.Now()

	if !IsQuietMode() {
		fmt.Fprintf(p.w, "%s %d identifiers\n", Magenta("[COLLECTING]"), total)
	}
}

// Update records the outcome for one identifier
func (p *ProgressDisplay) Update(done, total int, identifier string, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = done
	p.total = total
	p.current = identifier
	if ok {
		p.collected++
	} else {
		p.skipped++
	}

	if IsQuietMode() {
		return
	}
	if p.isDebug {
		mark := Green("✓")
		if !ok {
			mark = Red("✗")
		}
		fmt.Fprintf(p.w, "%s %s\n", mark, identifier)
		return
	}
	p.printProgress()
}

// Finish prints the run summary
func (p *ProgressDisplay) Finish(collected, skipped int, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if IsQuietMode() {
		return
	}

	fmt.Fprintf(p.w, "\n\n%s Collected %d profiles in %s\n",
		Green("✓"),
		collected,
		formatDuration(elapsed),
	)
	if skipped > 0 {
		fmt.Fprintf(p.w, "  %s %s\n", Dim("•"), Red(fmt.Sprintf("%d identifiers skipped", skipped)))
	}
}

// Line returns the current progress line without control characters
func (p *ProgressDisplay) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line()
}

func (p *ProgressDisplay) line() string {
	progress := 0.0
	if p.total > 0 {
		progress = float64(p.done) / float64(p.total)
	}
	filled := int(progress * float64(barWidth))
	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)

	line := fmt.Sprintf("[%s] %d/%d • %s", bar, p.done, p.total, p.eta())
	if p.current != "" {
		line += fmt.Sprintf(" • %s", p.current)
	}
	if p.skipped > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d skipped", p.skipped)))
	}
	return line
}

// printProgress clears the line and prints the progress line
func (p *ProgressDisplay) printProgress() {
	fmt.Fprintf(p.w, "\r%s\r%s", strings.Repeat(" ", 100), p.line())
}

// eta estimates time remaining
func (p *ProgressDisplay) eta() string {
	if p.done == 0 || p.startTime.IsZero() {
		return "calculating..."
	}

	elapsed := time.Since(p.startTime)
	perItem := elapsed / time.Duration(p.done)
	return formatDuration(perItem * time.Duration(p.total-p.done))
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
