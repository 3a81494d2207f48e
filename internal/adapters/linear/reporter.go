// Package linear provides a line-oriented reporter for unit loads.
package linear

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/unitcache/internal/ui/output"
	"go.trai.ch/unitcache/internal/ui/style"
)

var _ ports.Renderer = (*Reporter)(nil)

// Reporter prints one line per unit event, followed by a batch summary.
// Progress goes to stderr; results and statistics go to stdout.
type Reporter struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu    sync.Mutex
	units map[string]*unitState // spanID -> unit
}

type unitState struct {
	name  string
	start time.Time
	// pending holds output after the last complete line.
	pending []byte
}

// NewReporter creates a Reporter. Nil writers default to os.Stdout and os.Stderr.
func NewReporter(stdout, stderr io.Writer) *Reporter {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return &Reporter{
		stdout: stdout,
		stderr: stderr,
		output: output.New(stderr),
		units:  make(map[string]*unitState),
	}
}

// OnPlanEmit prints how many units the batch resolves.
func (r *Reporter) OnPlanEmit(unitNames []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintln(r.stderr, r.output.String(fmt.Sprintf("Resolving %d unit(s)", len(unitNames))).Faint().String())
}

// OnUnitStart prints a loading line for the unit.
func (r *Reporter) OnUnitStart(id, unitName string, start time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.units[id] = &unitState{name: unitName, start: start}
	_, _ = fmt.Fprintf(r.stderr, "%s Loading...\n", r.prefix(unitName))
}

// OnUnitLog prints each complete line of load output behind the unit prefix.
func (r *Reporter) OnUnitLog(id string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unit, ok := r.units[id]
	if !ok {
		return
	}
	unit.pending = append(unit.pending, data...)
	for {
		i := bytes.IndexByte(unit.pending, '\n')
		if i < 0 {
			break
		}
		r.printLine(unit.name, unit.pending[:i])
		unit.pending = unit.pending[i+1:]
	}
}

func (r *Reporter) printLine(name string, line []byte) {
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", r.prefix(name), bytes.TrimSuffix(line, []byte("\r")))
}

// OnUnitComplete prints the outcome of a unit started with OnUnitStart.
func (r *Reporter) OnUnitComplete(id string, end time.Time, source string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	unit, ok := r.units[id]
	if !ok {
		return
	}
	delete(r.units, id)
	if len(unit.pending) > 0 {
		r.printLine(unit.name, unit.pending)
	}

	elapsed := end.Sub(unit.start).Round(time.Millisecond)
	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", r.prefix(unit.name), symbol, elapsed, err)
		return
	}

	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	if source == "" {
		source = "done"
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s %s in %v\n", r.prefix(unit.name), symbol, source, elapsed)
}

func (r *Reporter) prefix(name string) string {
	return r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
}

var (
	labelStyle   = lipgloss.NewStyle().Foreground(style.Slate)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(style.Iris)
	okStyle      = lipgloss.NewStyle().Foreground(style.Green)
	failStyle    = lipgloss.NewStyle().Foreground(style.Red)
	sourceStyle  = lipgloss.NewStyle().Foreground(style.Sky)
	warningStyle = lipgloss.NewStyle().Foreground(style.Yellow)
)

// Summary is the aggregate of a batch.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	BySource  map[domain.LoadSource]int
	Elapsed   time.Duration
}

// Summarize aggregates results into a Summary.
func Summarize(results []domain.LoadResult, elapsed time.Duration) Summary {
	s := Summary{
		Total:    len(results),
		BySource: make(map[domain.LoadSource]int),
		Elapsed:  elapsed,
	}
	for _, res := range results {
		if res.Success {
			s.Succeeded++
			s.BySource[res.Source]++
		} else {
			s.Failed++
		}
	}
	return s
}

// PrintResults writes one line per result in request order, then a summary line.
func (r *Reporter) PrintResults(results []domain.LoadResult, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, res := range results {
		if res.Success {
			_, _ = fmt.Fprintf(r.stdout, "%s %-20s %s %s\n",
				okStyle.Render(style.Check),
				res.UnitName,
				sourceStyle.Render(string(res.Source)),
				labelStyle.Render(res.Duration.Round(time.Millisecond).String()))
			continue
		}
		_, _ = fmt.Fprintf(r.stdout, "%s %-20s %s\n",
			failStyle.Render(style.Cross),
			res.UnitName,
			failStyle.Render(errMessage(res.Err)))
	}

	_, _ = fmt.Fprintln(r.stdout, formatSummary(Summarize(results, elapsed)))
}

func errMessage(err error) string {
	if err == nil {
		return "failed"
	}
	return err.Error()
}

func formatSummary(s Summary) string {
	if s.Total == 0 {
		return warningStyle.Render(style.Warning + " no units requested")
	}

	sources := make([]string, 0, len(s.BySource))
	for src := range s.BySource {
		sources = append(sources, string(src))
	}
	sort.Strings(sources)

	line := fmt.Sprintf("%d/%d loaded", s.Succeeded, s.Total)
	for _, src := range sources {
		line += fmt.Sprintf(", %d %s", s.BySource[domain.LoadSource(src)], src)
	}
	if s.Failed > 0 {
		line += ", " + failStyle.Render(fmt.Sprintf("%d failed", s.Failed))
	}
	line += fmt.Sprintf(" in %v", s.Elapsed.Round(time.Millisecond))
	return headerStyle.Render(style.Dot) + " " + line
}

const labelWidth = 16

// PrintStatistics writes cache statistics.
func (r *Reporter) PrintStatistics(stats domain.Statistics) {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := uint64(stats.TotalCacheSizeMB * domain.BytesPerMB)
	rows := [][2]string{
		{"Cache directory", stats.CacheDirectory},
		{"Memory entries", humanize.Comma(int64(stats.MemoryEntries))},
		{"Disk entries", humanize.Comma(int64(stats.DiskEntries))},
		{"Size on disk", humanize.IBytes(size)},
	}

	_, _ = fmt.Fprintln(r.stdout, headerStyle.Render(domain.AppName))
	for _, row := range rows {
		pad := strings.Repeat(" ", max(labelWidth-len(row[0]), 0))
		_, _ = fmt.Fprintf(r.stdout, "  %s%s %s\n", labelStyle.Render(row[0]), pad, row[1])
	}
}

// PrintEntry writes a single cached unit lookup.
func (r *Reporter) PrintEntry(name string, handle domain.Handle, found bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !found {
		_, _ = fmt.Fprintf(r.stdout, "%s %s not cached\n", labelStyle.Render(style.Circle), name)
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "%s %s %s\n", okStyle.Render(style.Dot), name, labelStyle.Render(describe(handle)))
}

func describe(handle domain.Handle) string {
	if unit, ok := handle.(*domain.CommandUnit); ok {
		if unit.Restored {
			return "restored from " + unit.SourcePath
		}
		return fmt.Sprintf("loaded %s from %s", humanize.Time(unit.LoadedAt), unit.SourcePath)
	}
	return fmt.Sprintf("%T", handle)
}
