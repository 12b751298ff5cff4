package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/uniq/internal/action"
	"github.com/Iron-Ham/uniq/internal/app"
	"github.com/Iron-Ham/uniq/internal/phase"
	"github.com/Iron-Ham/uniq/internal/variant"
)

// Layout constants
const (
	defaultWidth  = 100
	defaultHeight = 30
	// header (2) + status bar (1) + help line (1) + content box border (2)
	chromeHeight = 6
)

var spinnerFrames = spinner.MiniDot.Frames

// View renders the whole screen.
func (m Model) View() string {
	st := m.session.App.State
	if m.session.App.Quitting() {
		return ""
	}

	width, height := m.width, m.height
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	rows := max(3, height-chromeHeight)

	var body string
	switch {
	case st.Help:
		body = m.renderHelp()
	case st.Merge.Open:
		body = m.renderMergeDialog(st)
	default:
		body = m.renderPhase(st, rows)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabs(st),
		m.styles.ContentBox.Width(max(20, width-2)).Render(body),
		m.renderStatus(st, width),
		m.renderShortHelp(st),
	)
}

func (m Model) spin(st *app.State) string {
	return spinnerFrames[st.Frame%len(spinnerFrames)]
}

func phaseBusy(st *app.State, p phase.Phase) bool {
	switch p {
	case phase.Intake:
		return st.Intake.Analyzing
	case phase.Research:
		return st.Research.Searching
	case phase.Techniques:
		return st.Techniques.Extracting
	case phase.Generation:
		return st.Generation.Generating || st.Merge.Merging
	case phase.Benchmark:
		return st.Bench.Benchmarking
	}
	return false
}

func (m Model) renderTabs(st *app.State) string {
	tabs := []string{m.styles.Title.UnsetMarginBottom().Render("uniq") + " "}
	for _, p := range phase.All() {
		label := p.Label()
		switch {
		case p == st.Phase:
			tabs = append(tabs, m.styles.TabActive.Render(label))
		case phaseBusy(st, p):
			tabs = append(tabs, m.styles.TabBusy.Render(label+" "+m.spin(st)))
		default:
			tabs = append(tabs, m.styles.TabInactive.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderStatus(st *app.State, width int) string {
	var collab string
	switch st.Collaborator.Status {
	case app.CollaboratorStarting:
		collab = m.styles.Pending.Render(m.spin(st) + " collaborator starting")
	case app.CollaboratorReady:
		collab = m.styles.Ready.Render("● collaborator ready")
	case app.CollaboratorFailed:
		collab = m.styles.Failed.Render("✗ collaborator unavailable")
	}
	msg := st.Status
	if msg == "" {
		msg = "Ready"
	}
	line := collab + "  " + msg
	return m.styles.StatusBar.Width(max(20, width)).Render(line)
}

func (m Model) renderShortHelp(st *app.State) string {
	if st.InputMode() == action.ModeEditing {
		return m.help.ShortHelpView(editingHelp)
	}
	return m.help.View(m.keys)
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Keys"))
	b.WriteString("\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Subtitle.Render("Intake form: " + m.help.ShortHelpView(editingHelp)))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Press any key to close"))
	return b.String()
}

func (m Model) renderPhase(st *app.State, rows int) string {
	switch st.Phase {
	case phase.Intake:
		return m.renderIntake(st)
	case phase.Research:
		return m.renderResearch(st, rows)
	case phase.Techniques:
		return m.renderTechniques(st, rows)
	case phase.Generation:
		return m.renderGeneration(st, rows)
	case phase.Benchmark:
		return m.renderBenchmark(st, rows)
	}
	return ""
}

// window returns the [start, end) slice of a list of n rows that keeps
// selected visible in at most rows lines.
func window(selected, n, rows int) (int, int) {
	if n <= rows {
		return 0, n
	}
	start := selected - rows/2
	start = max(0, min(start, n-rows))
	return start, start + rows
}

func (m Model) cursor(selected bool, text string) string {
	if selected {
		return m.styles.Selected.Render("▸ " + text)
	}
	return "  " + text
}

func (m Model) renderIntake(st *app.State) string {
	in := &st.Intake
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Project"))
	b.WriteString("\n")

	if in.Profile != nil {
		p := in.Profile
		fmt.Fprintf(&b, "%s\n\n", m.styles.Primary.Render(p.Headline()))
		b.WriteString(p.Summary)
		b.WriteString("\n\n")
		if len(p.Frameworks) > 0 {
			names := make([]string, 0, len(p.Frameworks))
			for _, f := range p.Frameworks {
				names = append(names, f.Name)
			}
			fmt.Fprintf(&b, "%s %s\n", m.styles.Muted.Render("Frameworks:"), strings.Join(names, ", "))
		}
		if len(p.KeyFiles) > 0 {
			fmt.Fprintf(&b, "%s %s\n", m.styles.Muted.Render("Key files:"), strings.Join(p.KeyFiles, ", "))
		}
		fmt.Fprintf(&b, "\n%s %s", m.styles.Muted.Render("Request:"), in.Request)
		return b.String()
	}

	field := func(label, view string, focused bool) string {
		style := m.styles.FieldBlurred
		if focused && !in.Analyzing {
			style = m.styles.FieldFocused
		}
		return m.styles.Subtitle.Render(label) + "\n" + style.Width(70).Render(view)
	}
	b.WriteString(field("Project path", in.PathInput.View(), in.Focus == action.FieldPath))
	b.WriteString("\n")
	b.WriteString(field("What should it do better?", in.DescriptionInput.View(), in.Focus == action.FieldDescription))
	b.WriteString("\n")

	switch {
	case in.Analyzing:
		b.WriteString(m.styles.Running.Render(m.spin(st) + " Analyzing project..."))
	case in.Err != "":
		b.WriteString(m.styles.Error.Render(in.Err))
	}
	return b.String()
}

func (m Model) renderResearch(st *app.State, rows int) string {
	r := &st.Research
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.styles.Title.Render(fmt.Sprintf("Papers (%d)", len(r.Papers))))

	switch {
	case r.Searching:
		fmt.Fprintf(&b, "%s\n", m.styles.Running.Render(fmt.Sprintf("%s Query %d/%d: %s",
			m.spin(st), r.QueryIndex+1, r.QueryTotal, r.Query)))
	case r.Err != "":
		fmt.Fprintf(&b, "%s\n", m.styles.Error.Render(r.Err))
	case len(r.Papers) == 0:
		b.WriteString(m.styles.Muted.Render("No papers yet. Press enter to search."))
		return b.String()
	}
	if r.FailedQueries > 0 {
		fmt.Fprintf(&b, "%s\n", m.styles.Warning.Render(fmt.Sprintf("%d queries failed", r.FailedQueries)))
	}

	if r.Detail && r.Selected < len(r.Papers) {
		p := r.Papers[r.Selected]
		fmt.Fprintf(&b, "%s\n", m.styles.Primary.Render(p.Title))
		fmt.Fprintf(&b, "%s\n\n", m.styles.Muted.Render(strings.Join(p.Authors, ", ")))
		b.WriteString(p.AbstractText)
		if p.URL != "" {
			fmt.Fprintf(&b, "\n\n%s", m.styles.Tree.Render(p.URL))
		}
		return b.String()
	}

	start, end := window(r.Selected, len(r.Papers), rows-2)
	for i := start; i < end; i++ {
		p := r.Papers[i]
		meta := string(p.Source)
		if p.Year != nil {
			meta = fmt.Sprintf("%d, %s", *p.Year, meta)
		}
		if p.CitationCount != nil {
			meta += fmt.Sprintf(", %d cites", *p.CitationCount)
		}
		b.WriteString(m.cursor(i == r.Selected, p.Title+" "+m.styles.Muted.Render("("+meta+")")))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderTechniques(st *app.State, rows int) string {
	t := &st.Techniques
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.styles.Title.Render(fmt.Sprintf("Techniques (%d selected of %d)", t.SelectedCount(), len(t.Cards))))

	if t.Extracting {
		fmt.Fprintf(&b, "%s\n", m.styles.Running.Render(fmt.Sprintf("%s Extracting from %d papers", m.spin(st), len(t.Active))))
	} else if len(t.Cards) == 0 {
		b.WriteString(m.styles.Muted.Render("No techniques yet. Press enter to extract."))
		return b.String()
	}

	start, end := window(t.Selected, len(t.Cards), rows-2-len(t.Errors))
	for i := start; i < end; i++ {
		c := t.Cards[i]
		box := "[ ]"
		if c.Selected {
			box = m.styles.Ready.Render("[x]")
		}
		b.WriteString(m.cursor(i == t.Selected, box+" "+c.Summary()))
		b.WriteString("\n")
	}
	for _, e := range t.Errors {
		fmt.Fprintf(&b, "%s\n", m.styles.Failed.Render("✗ "+e.Unit+": "+e.Err))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) statusStyle(s variant.Status) lipgloss.Style {
	switch s {
	case variant.StatusGenerating:
		return m.styles.Running
	case variant.StatusReady:
		return m.styles.Ready
	case variant.StatusFailed:
		return m.styles.Failed
	default:
		return m.styles.Pending
	}
}

func (m Model) renderGeneration(st *app.State, rows int) string {
	g := &st.Generation
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.styles.Title.Render(fmt.Sprintf("Variants (%d)", len(g.Variants))))

	if len(g.Variants) == 0 {
		b.WriteString(m.styles.Muted.Render("No variants yet. Select techniques and press enter to build."))
		return b.String()
	}
	if st.Merge.Merging {
		fmt.Fprintf(&b, "%s\n", m.styles.Running.Render(m.spin(st)+" Merging variants"))
	}

	start, end := window(g.Selected, len(g.Variants), rows/2)
	for i := start; i < end; i++ {
		v := g.Variants[i]
		status := v.Status.String()
		if v.Status == variant.StatusGenerating {
			status = m.spin(st) + " " + status
		}
		line := fmt.Sprintf("%-4s %-32s %s", v.ID, v.DisplayName, m.statusStyle(v.Status).Render(status))
		if v.Status == variant.StatusFailed && v.FailureReason != "" {
			line += " " + m.styles.Muted.Render(v.FailureReason)
		}
		b.WriteString(m.cursor(i == g.Selected, line))
		b.WriteString("\n")
	}

	if lines := lineageLines(st.Lineage); len(lines) > 0 {
		fmt.Fprintf(&b, "\n%s\n", m.styles.Subtitle.Render("Lineage"))
		for _, l := range lines {
			fmt.Fprintf(&b, "%s\n", m.styles.Tree.Render(l))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func lineageLines(f *variant.Forest) []string {
	if f == nil {
		return nil
	}
	var out []string
	for _, root := range f.Roots() {
		out = append(out, root.Lines()...)
	}
	return out
}

func (m Model) renderBenchmark(st *app.State, rows int) string {
	ready := st.Generation.Ready()
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.styles.Title.Render("Benchmark"))

	if len(ready) == 0 {
		b.WriteString(m.styles.Muted.Render("No ready variants to measure."))
		return b.String()
	}
	if st.Bench.Benchmarking {
		fmt.Fprintf(&b, "%s\n", m.styles.Running.Render(m.spin(st)+" Measuring variants"))
	}

	fmt.Fprintf(&b, "  %s\n", m.styles.Muted.Render(fmt.Sprintf("%-4s %-28s %-8s %-8s %-6s %-7s %s",
		"id", "name", "build", "tests", "judge", "rating", "score")))
	start, end := window(st.Bench.Selected, len(ready), rows-3-len(st.Bench.Errors))
	for i := start; i < end; i++ {
		b.WriteString(m.cursor(i == st.Bench.Selected, m.benchRow(ready[i])))
		b.WriteString("\n")
	}
	for _, e := range st.Bench.Errors {
		fmt.Fprintf(&b, "%s\n", m.styles.Failed.Render("✗ "+e.Unit+": "+e.Err))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) benchRow(v *variant.Variant) string {
	build, tests, judge, rating, score := "-", "-", "-", "-", "-"
	if r := v.Benchmark; r != nil {
		if e := r.Execution; e != nil {
			build = "fail"
			if e.BuildSuccess {
				build = "ok"
			}
			if e.TestsPassed != nil && e.TestsTotal != nil {
				tests = fmt.Sprintf("%d/%d", *e.TestsPassed, *e.TestsTotal)
			}
		}
		if r.Judge != nil {
			judge = fmt.Sprintf("%.1f", r.Judge.Overall)
		}
		if r.UserRating != nil {
			rating = strings.Repeat("★", r.UserRating.Stars)
		}
		if r.Composite != nil {
			score = m.styles.Score.Render(fmt.Sprintf("%.0f", *r.Composite))
		}
	}
	return fmt.Sprintf("%-4s %-28s %-8s %-8s %-6s %-7s %s", v.ID, v.DisplayName, build, tests, judge, rating, score)
}

func (m Model) renderMergeDialog(st *app.State) string {
	md := &st.Merge
	name := func(i int) string {
		if i < 0 || i >= len(md.Candidates) {
			return "?"
		}
		id := md.Candidates[i]
		if v := st.Generation.Find(id); v != nil {
			return id + " " + v.DisplayName
		}
		return id
	}
	row := func(f app.MergeField, label, value string) string {
		text := fmt.Sprintf("%-8s ◂ %s ▸", label, value)
		if md.Field == f {
			return m.styles.Selected.Render("▸ " + text)
		}
		return "  " + text
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Merge variants"))
	b.WriteString("\n")
	b.WriteString(row(app.MergeFieldA, "Parent A", name(md.A)))
	b.WriteString("\n")
	b.WriteString(row(app.MergeFieldB, "Parent B", name(md.B)))
	b.WriteString("\n")
	b.WriteString(row(app.MergeFieldBlend, "Blend", fmt.Sprintf("%s / %s", md.BlendA, md.BlendB)))
	b.WriteString("\n\n")
	if md.A == md.B {
		b.WriteString(m.styles.Warning.Render("Pick two different variants"))
	} else {
		b.WriteString(m.styles.Muted.Render(md.BlendA.Description()))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("↑/↓ field  ←/→ change  enter merge  esc cancel"))
	return m.styles.Dialog.Render(b.String())
}
