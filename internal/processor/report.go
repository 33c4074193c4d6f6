package processor

import (
	"fmt"
	"io"
	"time"
)

// LanguageReport summarises the work done for one target language.
type LanguageReport struct {
	Code             string
	Cached           bool
	ChunksTranslated int
	ChunksCached     int
	FailedCells      int
}

// Report summarises a finished run.
type Report struct {
	Rows        int
	Languages   []LanguageReport
	FailedCells int

	// Rows with every target column filled
	FilledRows int

	Duration time.Duration
}

// ChunksTranslated returns the number of chunks sent to the provider.
func (r *Report) ChunksTranslated() int {
	total := 0
	for _, lang := range r.Languages {
		total += lang.ChunksTranslated
	}
	return total
}

// ChunksCached returns the number of chunks taken from the checkpoint.
func (r *Report) ChunksCached() int {
	total := 0
	for _, lang := range r.Languages {
		total += lang.ChunksCached
	}
	return total
}

// Print writes a human readable summary.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n=== Translation Summary ===\n")
	fmt.Fprintf(w, "Rows: %d\n", r.Rows)
	for _, lang := range r.Languages {
		if lang.Cached {
			fmt.Fprintf(w, "  %s: complete in checkpoint\n", lang.Code)
			continue
		}
		fmt.Fprintf(w, "  %s: %d chunks translated, %d from checkpoint", lang.Code, lang.ChunksTranslated, lang.ChunksCached)
		if lang.FailedCells > 0 {
			fmt.Fprintf(w, ", %d failed cells", lang.FailedCells)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Fully translated rows: %d/%d\n", r.FilledRows, r.Rows)
	if r.FailedCells > 0 {
		fmt.Fprintf(w, "Failed cells: %d (rerun with --retry-failed)\n", r.FailedCells)
	}
	fmt.Fprintf(w, "Duration: %s\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "===========================\n")
}
