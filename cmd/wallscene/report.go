package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gogpu/wallscene"
	"github.com/gogpu/wallscene/document"
)

var styles = struct {
	title  lipgloss.Style
	label  lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	dimmed lipgloss.Style
}{
	title:  lipgloss.NewStyle().Bold(true).Underline(true),
	label:  lipgloss.NewStyle().Width(10),
	ok:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	dimmed: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
}

func printReport(w io.Writer, r wallscene.Report, missingModels, missingImages []string) {
	var b strings.Builder
	b.WriteString(styles.title.Render("scene") + "\n")
	row := func(label string, n int) {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, styles.label.Render(label), fmt.Sprint(n)) + "\n")
	}
	row("objects", r.Objects)
	row("queued", r.Queued)
	row("drawn", r.Drawn)
	row("dropped", len(r.Dropped))

	for _, d := range r.Dropped {
		b.WriteString(styles.dimmed.Render("  "+d.String()) + "\n")
	}
	for _, m := range missingModels {
		b.WriteString(styles.warn.Render("  missing model "+m) + "\n")
	}
	for _, m := range missingImages {
		b.WriteString(styles.warn.Render("  missing image for "+m) + "\n")
	}
	fmt.Fprint(w, b.String())
}

func printKeys(w io.Writer, keys []document.KeyType) {
	width := 0
	for _, k := range keys {
		width = max(width, len(k.Key))
	}
	key := lipgloss.NewStyle().Width(width + 2)
	for _, k := range keys {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, key.Render(k.Key), styles.dimmed.Render(k.Type)))
	}
}
