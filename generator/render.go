package generator

import (
	"io"
	"strings"
)

const indent = "  "

// Render writes the tree as a declaration document. Sections appear in a
// fixed order: the preamble, type aliases, free functions, enums,
// structure and shader interfaces, class interfaces, and namespaces.
func (t *Tree) Render() string {
	w := &writer{}

	for _, line := range t.preamble {
		w.line("", line)
	}

	for _, e := range t.types.all() {
		w.gap()
		w.entry("", e)
	}

	for _, e := range t.funcs.all() {
		w.gap()
		w.entry("", e)
	}

	for name, b := range t.enums.all() {
		w.gap()
		w.block("", "declare enum "+name, b)
	}

	for name, b := range t.interfaces.all() {
		w.gap()
		w.block("", "declare interface "+name, b)
	}

	for name, b := range t.classes.all() {
		w.gap()
		w.block("", "declare interface "+name, b)
	}

	for name, ns := range t.namespaces.all() {
		w.gap()
		w.line("", "declare namespace "+name+" {")

		for _, e := range ns.types.all() {
			w.entry(indent, e)
		}

		for _, e := range ns.funcs.all() {
			w.entry(indent, e)
		}

		for owner, b := range ns.interfaces.all() {
			w.block(indent, "interface "+owner, b)
		}

		w.line("", "}")
	}

	return w.String()
}

// WriteTo writes the rendered tree to out.
func (t *Tree) WriteTo(out io.Writer) (int64, error) {
	n, err := io.WriteString(out, t.Render())

	return int64(n), err
}

type writer struct {
	strings.Builder
}

func (w *writer) line(prefix, s string) {
	w.WriteString(prefix)
	w.WriteString(s)
	w.WriteByte('\n')
}

// gap separates top-level declarations with a blank line.
func (w *writer) gap() {
	if w.Len() > 0 {
		w.WriteByte('\n')
	}
}

// comment writes a doc comment. Comment entries may span several lines.
func (w *writer) comment(prefix string, comments []string) {
	if len(comments) == 0 {
		return
	}

	w.line(prefix, "/**")

	for _, line := range strings.Split(strings.Join(comments, "\n"), "\n") {
		if line == "" {
			w.line(prefix, "*")
		} else {
			w.line(prefix, "* "+line)
		}
	}

	w.line(prefix, "**/")
}

func (w *writer) entry(prefix string, e entry) {
	w.comment(prefix, e.comments)

	for _, l := range e.lines {
		w.line(prefix, l)
	}
}

func (w *writer) block(prefix, head string, b *block) {
	w.comment(prefix, b.comments)

	if len(b.extends) > 0 {
		head += " extends " + strings.Join(b.extends, ", ")
	}

	if b.members.len() == 0 {
		w.line(prefix, head+" {}")

		return
	}

	w.line(prefix, head+" {")

	for _, e := range b.members.all() {
		w.entry(prefix+indent, e)
	}

	w.line(prefix, "}")
}
