// Package output renders CLI output: status lines, rebuild summaries,
// search results, and index stats. Color is enabled only on a TTY.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/Aman-CERP/crmdex/internal/reindex"
	"github.com/Aman-CERP/crmdex/internal/vecstore"
)

// Writer provides formatted output for the CLI.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer. Color is used when out is a terminal.
func New(out io.Writer) *Writer {
	useColor := false
	if f, ok := out.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, styles: GetStyles(!useColor)}
}

// NewPlain creates a Writer that never emits color.
func NewPlain(out io.Writer) *Writer {
	return &Writer{out: out, styles: NoColorStyles()}
}

// Status prints a status line.
func (w *Writer) Status(msg string) {
	_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
}

// Statusf prints a formatted status line.
func (w *Writer) Statusf(format string, args ...any) {
	w.Status(fmt.Sprintf(format, args...))
}

// Header prints a section header.
func (w *Writer) Header(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Header.Render(msg))
}

// Success prints a success line.
func (w *Writer) Success(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Success.Render("ok"), msg)
}

// Successf prints a formatted success line.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning line.
func (w *Writer) Warning(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Warning.Render("warn"), msg)
}

// Error prints an error line.
func (w *Writer) Error(msg string) {
	_, _ = fmt.Fprintf(w.out, "%s %s\n", w.styles.Error.Render("error"), msg)
}

// Errorf prints a formatted error line.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// ReindexSummary renders the outcome of one rebuild job.
func (w *Writer) ReindexSummary(s *reindex.Summary) {
	if s.Succeeded {
		w.Header("Reindex complete")
	} else {
		w.Header("Reindex failed")
	}

	for _, o := range s.Outcomes {
		label := w.styles.Label.Render(fmt.Sprintf("%-8s", o.Type))
		switch {
		case !o.Attempted:
			w.Statusf("%s %s", label, w.styles.Dim.Render("not attempted"))
		case o.Succeeded && o.SkippedCount > 0:
			w.Statusf("%s %s  %d loaded, %d embedded, %d malformed skipped",
				label, w.styles.Success.Render("ok"), o.LoadedCount, o.EmbeddedCount, o.SkippedCount)
		case o.Succeeded:
			w.Statusf("%s %s  %d loaded, %d embedded",
				label, w.styles.Success.Render("ok"), o.LoadedCount, o.EmbeddedCount)
		default:
			w.Statusf("%s %s  %s", label, w.styles.Error.Render("failed"), o.Error)
		}
	}

	duration := s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond)
	w.Statusf("%s %d entities indexed in %s",
		w.styles.Label.Render("total"), s.TotalEntities, duration)
}

// SearchResults renders ranked search hits.
func (w *Writer) SearchResults(results []vecstore.Result) {
	if len(results) == 0 {
		w.Status("no results")
		return
	}

	for i, r := range results {
		score := w.styles.Score.Render(fmt.Sprintf("%.4f", r.Score))
		_, _ = fmt.Fprintf(w.out, "%2d. %s %s  %s\n",
			i+1, score, w.styles.Header.Render(r.Entity.Key()), truncate(r.Entity.Text, 80))
	}
}

// IndexStats renders generation stats, or the empty marker.
func (w *Writer) IndexStats(stats *vecstore.Stats) {
	if stats == nil {
		w.Status("no index published yet")
		return
	}

	w.Header("Index stats")
	w.Statusf("%s %d", w.styles.Label.Render("entities  "), stats.TotalEntities)
	w.Statusf("%s %d", w.styles.Label.Render("dimension "), stats.Dimension)
	w.Statusf("%s %s", w.styles.Label.Render("kind      "), stats.IndexKind)
	w.Statusf("%s %s", w.styles.Label.Render("model     "), stats.ModelName)
	w.Statusf("%s %s", w.styles.Label.Render("built at  "), stats.BuiltAt.Format(time.RFC3339))
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
