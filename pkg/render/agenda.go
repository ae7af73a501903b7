// Package render draws the agenda in a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/harrisonrobin/smartflow/pkg/model"
	"github.com/harrisonrobin/smartflow/pkg/urgency"
)

const (
	actionWidth  = 44
	contextWidth = 16
	projectWidth = 28
	dateWidth    = 12
	dateLayout   = "02/01/2006"
)

var tierBackground = map[urgency.Tier]lipgloss.Color{
	urgency.Critical:    "#ffcccc",
	urgency.Warning:     "#ffe4b2",
	urgency.OK:          "#ccffcc",
	urgency.Unscheduled: "#e0f7fa",
}

// Options tune the agenda output.
type Options struct {
	Palette *Palette
	// ShowIDs prints the short task id needed by the shell commands.
	ShowIDs bool
	// Links are printed as a quick-reference list after the agenda.
	Links []model.Link
}

// Agenda writes the ranked pending tasks followed by the completed ones.
func Agenda(w io.Writer, pending, completed []model.Task, opts Options) error {
	if opts.Palette == nil {
		opts.Palette = NewPalette()
	}
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	muted := r.NewStyle().Foreground(lipgloss.Color("245"))

	var b strings.Builder
	b.WriteString(title.Render("🎯 Next actions"))
	b.WriteString("\n")
	b.WriteString(muted.Render(fmt.Sprintf("%d pending actions.", len(pending))))
	b.WriteString("\n")
	for _, t := range pending {
		b.WriteString(pendingLine(r, t, opts))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(title.Render("✅ Completed"))
	b.WriteString("\n")
	if len(completed) == 0 {
		b.WriteString(muted.Render("No completed tasks in this filter yet."))
		b.WriteString("\n")
	}
	for _, t := range completed {
		b.WriteString(completedLine(r, t, opts))
		b.WriteString("\n")
	}

	if len(opts.Links) > 0 {
		b.WriteString("\n")
		b.WriteString(title.Render("📎 Reference links"))
		b.WriteString("\n")
		Links(&b, opts.Links)
	}

	b.WriteString("\n")
	b.WriteString(muted.Render("Weekly review: make sure every project has a next action."))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func pendingLine(r *lipgloss.Renderer, t model.Task, opts Options) string {
	cell := func(width int) lipgloss.Style {
		return r.NewStyle().Width(width).MaxWidth(width)
	}
	tier := r.NewStyle().
		Bold(t.Tier == urgency.Critical).
		Foreground(lipgloss.Color("#000000")).
		Background(tierBackground[t.Tier]).
		Padding(0, 1)

	cols := []string{
		t.Tier.Symbol() + " ",
		cell(actionWidth).Bold(true).Render(truncate(t.Action, actionWidth-1)),
		cell(contextWidth).Italic(true).Render(string(t.Context)),
		cell(projectWidth).Foreground(opts.Palette.Color(t.Project)).Render(truncate(t.Project, projectWidth-1)),
		cell(dateWidth).Render(formatDue(t)),
		tier.Render(t.Tier.Label()),
	}
	if opts.ShowIDs {
		cols = append(cols, r.NewStyle().Faint(true).Render(" "+ShortID(t.ID)))
	}
	if t.IsDemand() {
		cols = append(cols, r.NewStyle().Italic(true).Render(" ✉ "+demandFrom(t)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func completedLine(r *lipgloss.Renderer, t model.Task, opts Options) string {
	done := r.NewStyle().Foreground(lipgloss.Color("#888888"))
	line := fmt.Sprintf("✓ %s  %s  %s", truncate(t.Action, actionWidth-1), t.Context, formatDue(t))
	if opts.ShowIDs {
		line += "  " + ShortID(t.ID)
	}
	return done.Render(strings.TrimRight(line, " "))
}

func demandFrom(t model.Task) string {
	if t.Sender == "" {
		return t.Source
	}
	return t.Sender
}

// Links writes one "- name: url" line per link. A link without a URL is
// printed by name only.
func Links(w io.Writer, links []model.Link) {
	for _, l := range links {
		if l.URL == "" {
			fmt.Fprintf(w, "- %s\n", l.Name)
			continue
		}
		fmt.Fprintf(w, "- %s: %s\n", l.Name, l.URL)
	}
}

func formatDue(t model.Task) string {
	if t.Due == nil {
		return ""
	}
	return t.Due.In(time.UTC).Format(dateLayout)
}

// ShortID is the prefix of a task id shown to users.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
