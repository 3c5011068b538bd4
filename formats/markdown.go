package formats

import (
	"io"
	"strings"
)

// Markdown format implementation
// A "# Title" line, a blank line, then a pipe table. Pipes inside cells are
// escaped and newlines flattened so every row stays on one line.
var Markdown = &ExportFormat{
	Name:        "markdown",
	Label:       "Markdown",
	Extension:   ".md",
	ContentType: "text/markdown; charset=utf-8",
	Write: func(w io.Writer, t *Table) error {
		var b strings.Builder
		if t.Title != "" {
			b.WriteString("# " + t.Title + "\n\n")
		}
		writeMarkdownRow(&b, t.Headers)
		seps := make([]string, len(t.Headers))
		for i := range seps {
			seps[i] = "---"
		}
		writeMarkdownRow(&b, seps)
		for _, row := range t.Rows {
			writeMarkdownRow(&b, row)
		}
		_, err := io.WriteString(w, b.String())
		return err
	},
}

var markdownCellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" " + markdownCellReplacer.Replace(c) + " |")
	}
	b.WriteString("\n")
}

func init() {
	mustRegister(Markdown)
}
