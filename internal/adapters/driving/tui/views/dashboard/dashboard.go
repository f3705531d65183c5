// Package dashboard provides the run progress view for the TUI.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/tui/messages"
	"github.com/datacraft-labs/sftgen-cli/internal/adapters/driving/tui/styles"
	"github.com/datacraft-labs/sftgen-cli/internal/core/domain"
)

// fileRow tracks one file's display state during the run.
type fileRow struct {
	path  string
	state domain.FileState
	stage domain.Stage
	err   string
	pairs int
}

// View is the run progress dashboard. It renders one row per discovered
// file and a summary block once the run completes.
type View struct {
	styles  *styles.Styles
	spinner spinner.Model

	input  string
	output string

	rows         []fileRow
	index        map[string]int
	selected     int
	scrollOffset int
	width        int
	height       int
	ready        bool
	failuresOnly bool

	totalFiles   int
	filesDone    int
	pairsWritten int

	done   bool
	report *domain.Report
	runErr error
}

// NewView creates a new dashboard view.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	return &View{
		styles:  s,
		spinner: sp,
		index:   map[string]int{},
	}
}

// SetPaths sets the input and output paths shown in the header.
func (v *View) SetPaths(input, output string) {
	v.input = input
	v.output = output
}

// Init starts the spinner tick.
func (v *View) Init() tea.Cmd {
	return v.spinner.Tick
}

// Update handles messages for the dashboard.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case spinner.TickMsg:
		if v.done {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RunStarted:
		v.totalFiles = msg.TotalFiles
		return v, nil

	case messages.FileStarted:
		v.upsertRow(msg.Path)
		return v, nil

	case messages.ChunkFinished:
		i := v.upsertRow(msg.Path)
		v.rows[i].state = domain.StateGenerating
		return v, nil

	case messages.PairWritten:
		i := v.upsertRow(msg.Path)
		v.rows[i].pairs++
		v.pairsWritten++
		return v, nil

	case messages.FileFinished:
		v.applyResult(msg.Result)
		return v, nil

	case messages.RunCompleted:
		v.finish(msg.Report, msg.Err)
		return v, nil

	case messages.ErrorOccurred:
		v.runErr = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles navigation keys.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case "down", "j":
		if v.selected < len(v.visibleRows())-1 {
			v.selected++
			v.adjustScroll()
		}
	case "f":
		v.failuresOnly = !v.failuresOnly
		v.selected = 0
		v.scrollOffset = 0
	}

	return v, nil
}

// upsertRow returns the row index for path, creating the row if needed.
func (v *View) upsertRow(path string) int {
	if i, ok := v.index[path]; ok {
		return i
	}
	v.rows = append(v.rows, fileRow{path: path, state: domain.StateDiscovered})
	i := len(v.rows) - 1
	v.index[path] = i
	return i
}

// applyResult records a terminal file result.
func (v *View) applyResult(res domain.FileResult) {
	i := v.upsertRow(res.Path)
	row := &v.rows[i]
	row.state = res.State
	row.stage = res.Stage
	row.err = res.Error
	row.pairs = res.PairsWritten
	v.filesDone++
}

// finish reconciles the dashboard against the final report. Progress
// events may have been dropped under load, so the report wins.
func (v *View) finish(report *domain.Report, err error) {
	v.done = true
	v.report = report
	v.runErr = err
	if report == nil {
		return
	}

	v.rows = v.rows[:0]
	v.index = map[string]int{}
	for _, res := range report.Files {
		i := v.upsertRow(res.Path)
		row := &v.rows[i]
		row.state = res.State
		row.stage = res.Stage
		row.err = res.Error
		row.pairs = res.PairsWritten
	}
	v.totalFiles = report.FilesDiscovered
	v.filesDone = report.FilesProcessed + report.FilesFailed + report.FilesSkipped
	v.pairsWritten = report.PairsWritten
	if report.OutputPath != "" {
		v.output = report.OutputPath
	}

	if v.selected >= len(v.visibleRows()) {
		v.selected = 0
		v.scrollOffset = 0
	}
}

// visibleRows returns the rows to display, honouring the failures filter.
func (v *View) visibleRows() []fileRow {
	if !v.failuresOnly {
		return v.rows
	}
	filtered := make([]fileRow, 0, len(v.rows))
	for _, r := range v.rows {
		if r.state == domain.StateFailed {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// adjustScroll adjusts the scroll offset to keep the selected item visible.
func (v *View) adjustScroll() {
	visibleItems := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visibleItems {
		v.scrollOffset = v.selected - visibleItems + 1
	}
}

// visibleItemCount returns the number of rows that can be displayed.
func (v *View) visibleItemCount() int {
	// Reserve lines for title, header, summary, and padding
	reserved := 8
	available := v.height - reserved
	if available < 1 {
		available = 1
	}
	return available
}

// View renders the dashboard.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Generating dataset"))
	b.WriteString("\n")
	if v.input != "" {
		header := v.input
		if v.output != "" {
			header = fmt.Sprintf("%s -> %s", v.input, v.output)
		}
		b.WriteString(v.styles.Muted.Render(header))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.runErr != nil && !v.done {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.runErr.Error())))
		b.WriteString("\n\n")
	}

	rows := v.visibleRows()

	if len(rows) == 0 {
		switch {
		case v.failuresOnly:
			b.WriteString(v.styles.Muted.Render("No failures."))
		case v.done:
			b.WriteString(v.styles.Muted.Render("No supported files found."))
		default:
			b.WriteString(v.spinner.View())
			b.WriteString(v.styles.Muted.Render(" Discovering files..."))
		}
		b.WriteString("\n")
		v.renderSummary(&b)
		return b.String()
	}

	visibleItems := v.visibleItemCount()
	for i := v.scrollOffset; i < len(rows) && i < v.scrollOffset+visibleItems; i++ {
		b.WriteString(v.renderRow(i, rows[i]))
		b.WriteString("\n")
	}

	// Scroll indicator
	if len(rows) > visibleItems {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]",
			v.scrollOffset+1,
			min(v.scrollOffset+visibleItems, len(rows)),
			len(rows))))
		b.WriteString("\n")
	}

	v.renderSummary(&b)

	return b.String()
}

// renderRow renders a single file row.
func (v *View) renderRow(index int, r fileRow) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	maxPathLen := v.width/2 - 4
	if maxPathLen < 20 {
		maxPathLen = 20
	}
	path := r.path
	if len(path) > maxPathLen {
		path = "..." + path[len(path)-maxPathLen+3:]
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxPathLen, path, v.rowStatus(r)))
	}

	return v.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxPathLen, path)) + v.renderStatus(r)
}

// rowStatus returns the unstyled status text for a row.
func (v *View) rowStatus(r fileRow) string {
	switch r.state {
	case domain.StateWritten:
		return fmt.Sprintf("[done] %d pairs", r.pairs)
	case domain.StateFailed:
		return fmt.Sprintf("[failed] %s: %s", r.stage, r.err)
	case domain.StateSkipped:
		return "[skipped]"
	case domain.StateDiscovered:
		return "extracting"
	case domain.StateExtracted:
		return "chunking"
	default:
		return "generating"
	}
}

// renderStatus returns the styled status segment for a row.
func (v *View) renderStatus(r fileRow) string {
	switch r.state {
	case domain.StateWritten:
		return v.styles.Success.Render("[done]") +
			v.styles.Muted.Render(fmt.Sprintf(" %d pairs", r.pairs))
	case domain.StateFailed:
		return v.styles.Error.Render("[failed]") +
			v.styles.Muted.Render(fmt.Sprintf(" %s: %s", r.stage, r.err))
	case domain.StateSkipped:
		return v.styles.Warning.Render("[skipped]")
	default:
		return v.spinner.View() + " " + v.styles.Muted.Render(v.rowStatus(r))
	}
}

// renderSummary renders the completion summary block.
func (v *View) renderSummary(b *strings.Builder) {
	if !v.done {
		return
	}

	b.WriteString("\n")
	if v.report != nil {
		b.WriteString(v.styles.Success.Render(fmt.Sprintf("Processed %d/%d files, %d pairs written to %s",
			v.report.FilesProcessed, v.report.FilesDiscovered, v.report.PairsWritten, v.report.OutputPath)))
		b.WriteString("\n")
		if v.report.HasFailures() {
			b.WriteString(v.styles.Warning.Render(fmt.Sprintf("%d files and %d chunks failed", v.report.FilesFailed, v.report.ChunksFailed)))
			b.WriteString("\n")
		}
	}
	if v.runErr != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.runErr.Error())))
		b.WriteString("\n")
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// RowCount returns the number of tracked files.
func (v *View) RowCount() int {
	return len(v.rows)
}

// SelectedIndex returns the currently selected row index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// FailuresOnly returns true when the failures filter is active.
func (v *View) FailuresOnly() bool {
	return v.failuresOnly
}

// TotalFiles returns the discovered file count.
func (v *View) TotalFiles() int {
	return v.totalFiles
}

// FilesDone returns the number of files that reached a terminal state.
func (v *View) FilesDone() int {
	return v.filesDone
}

// Pairs returns the number of pairs written so far.
func (v *View) Pairs() int {
	return v.pairsWritten
}

// Done returns true once the run has completed.
func (v *View) Done() bool {
	return v.done
}

// Report returns the final report, or nil while the run is in progress.
func (v *View) Report() *domain.Report {
	return v.report
}

// Err returns the run error, if any.
func (v *View) Err() error {
	return v.runErr
}
