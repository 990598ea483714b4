package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/devbush/call2insights/internal/domain"
)

// renderProgressBar creates a text progress bar like [=====>    ]
// current=0, total=10, width=10 → [          ]
// current=5, total=10, width=10 → [=====>    ]
// current=10, total=10, width=10 → [==========]
func renderProgressBar(current, total, width int) string {
	if total <= 0 {
		return "[" + strings.Repeat(" ", width) + "]"
	}

	var bar strings.Builder
	bar.WriteString("[")

	if current >= total {
		bar.WriteString(strings.Repeat("=", width))
	} else if current == 0 {
		bar.WriteString(strings.Repeat(" ", width))
	} else {
		ratio := float64(current) / float64(total)
		arrowPos := int(ratio*float64(width) + 0.5)
		if arrowPos < 1 {
			arrowPos = 1
		}
		if arrowPos > width {
			arrowPos = width
		}

		equals := arrowPos - 1
		if ratio >= 0.5 {
			equals = arrowPos
		}
		if equals > width-1 {
			equals = width - 1
		}

		spaces := width - equals - 1
		if spaces < 0 {
			spaces = 0
		}

		bar.WriteString(strings.Repeat("=", equals))
		bar.WriteString(">")
		bar.WriteString(strings.Repeat(" ", spaces))
	}

	bar.WriteString("]")
	return bar.String()
}

// BatchProgress renders batch analysis progress on a single terminal
// line, updated in place as rows complete.
type BatchProgress struct {
	total    int
	quiet    bool
	mu       sync.Mutex
	rendered bool
}

// NewBatchProgress creates a new batch progress display
func NewBatchProgress(total int, quiet bool) *BatchProgress {
	if total < 0 {
		total = 0
	}
	return &BatchProgress{total: total, quiet: quiet}
}

// Update redraws the progress line. done counts rows with any outcome;
// failed counts the subset that failed.
func (bp *BatchProgress) Update(done, failed int) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.quiet {
		return
	}

	percent := 0
	if bp.total > 0 {
		percent = (done * 100) / bp.total
	}

	line := fmt.Sprintf("Analyzing %d/%d transcripts %s %d%%",
		done, bp.total, renderProgressBar(done, bp.total, 20), percent)
	if failed > 0 {
		line += fmt.Sprintf(" (%d failed)", failed)
	}

	fmt.Printf("\r\033[K%s", line)
	bp.rendered = true
}

// Complete ends the progress line and prints the final summary.
func (bp *BatchProgress) Complete(failures []domain.Failure) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.quiet {
		return
	}
	if bp.rendered {
		fmt.Println()
	}

	succeeded := bp.total - len(failures)
	fmt.Printf("Analysis complete: %d/%d succeeded\n", succeeded, bp.total)

	if len(failures) > 0 {
		fmt.Println("\nFailures:")
		for _, f := range failures {
			fmt.Printf("  ✗ %s [%s]: %s\n", f.RowID, f.Kind, f.Message)
		}
	}
}
