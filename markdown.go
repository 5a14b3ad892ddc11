package longpost

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extensionAST "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ---- Markdown -> markup ----

// FromMarkdown converts CommonMark with GitHub extensions into long post
// markup. Only what the markup can express survives: headings become
// titles, lists and block quotes become indented lines, emphasis and
// strike-through map to their markers. Code, links, images and tables are
// flattened to text.
func FromMarkdown(md []byte) string {
	mdParser := goldmark.New(goldmark.WithExtensions(extension.GFM))
	doc := mdParser.Parser().Parse(text.NewReader(md))
	w := &markupWriter{src: md}
	w.blocks(doc)
	return w.b.String()
}

type markupWriter struct {
	src []byte
	b   strings.Builder
	// bol is set while nothing has been written on a line that was started
	// without a marker.
	bol bool
}

var markupEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`~`, `\~`,
	`[`, `\[`,
	"\n", " ",
)

func (w *markupWriter) literal(s string) {
	if s == "" {
		return
	}
	if w.bol && startsLineMarker(s) {
		w.b.WriteByte('\\')
	}
	w.bol = false
	_, _ = markupEscaper.WriteString(&w.b, s)
}

// raw writes markup as is.
func (w *markupWriter) raw(s string) {
	w.bol = false
	w.b.WriteString(s)
}

// startsLineMarker reports whether s would be read as a line marker if it
// followed a newline. A lone digit counts, since the '.' may come next.
func startsLineMarker(s string) bool {
	switch c := s[0]; {
	case c == '-', c == '>', c == '#':
		return true
	case isListDigit(rune(c)):
		return len(s) == 1 || s[1] == '.'
	}
	return false
}

// start begins a new output line. gap separates blocks with an empty line;
// consecutive list items and quote lines must not have one.
func (w *markupWriter) start(marker string, gap bool) {
	switch {
	case w.b.Len() == 0:
		// Line markers are only recognised after a newline.
		if marker != "" {
			w.b.WriteByte('\n')
		}
	case gap:
		w.b.WriteString("\n\n")
	default:
		w.b.WriteByte('\n')
	}
	w.b.WriteString(marker)
	w.bol = marker == "" && w.b.Len() > 0
}

func (w *markupWriter) blocks(parent ast.Node) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n)
	}
}

func (w *markupWriter) block(n ast.Node) {
	switch nd := n.(type) {
	case *ast.Heading:
		w.start("# ", true)
		w.inline(nd)
	case *ast.Paragraph, *ast.TextBlock:
		w.start("", true)
		w.inline(nd)
	case *ast.List:
		w.list(nd, true)
	case *ast.Blockquote:
		w.quote(nd)
	case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock:
		w.code(nd)
	case *ast.ThematicBreak:
		w.start("", true)
		w.raw(strings.Repeat("—", 12))
	case *extensionAST.Table:
		w.table(nd)
	default:
		if n.HasChildren() {
			w.blocks(n)
		}
	}
}

func (w *markupWriter) list(l *ast.List, gap bool) {
	marker := "- "
	if l.IsOrdered() {
		// The compiler numbers items itself.
		marker = "1. "
	}
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		w.start(marker, gap)
		gap = false
		sep := ""
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*ast.List); ok {
				w.list(nested, false)
				continue
			}
			w.raw(sep)
			w.inline(child)
			sep = " "
		}
	}
}

func (w *markupWriter) quote(q *ast.Blockquote) {
	gap := true
	for child := q.FirstChild(); child != nil; child = child.NextSibling() {
		if nested, ok := child.(*ast.Blockquote); ok {
			w.quote(nested)
			continue
		}
		w.start("> ", gap)
		gap = false
		w.inline(child)
	}
}

// code writes each source line as its own indented line. The indent keeps
// lines starting with '-', '>' or '#' from turning into markers.
func (w *markupWriter) code(n ast.Node) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		w.start("", i == 0)
		w.literal("  " + strings.TrimRight(string(seg.Value(w.src)), "\r\n"))
	}
}

func (w *markupWriter) table(tbl *extensionAST.Table) {
	gap := true
	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		w.start("", gap)
		gap = false
		sep := ""
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			w.raw(sep)
			w.inline(cell)
			sep = " | "
		}
	}
}

func (w *markupWriter) inline(node ast.Node) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			v := c.Segment.Value(w.src)
			if !c.IsRaw() {
				v = util.UnescapePunctuations(v)
			}
			w.literal(string(v))
			if (c.SoftLineBreak() || c.HardLineBreak()) && c.NextSibling() != nil {
				w.raw(" ")
			}
		case *ast.String:
			w.literal(string(c.Value))
		case *ast.CodeSpan:
			w.literal(string(c.Text(w.src)))
		case *ast.Emphasis:
			marker := "*"
			if c.Level >= 2 {
				marker = "__"
			}
			w.raw(marker)
			w.inline(c)
			w.raw(marker)
		case *extensionAST.Strikethrough:
			w.raw("~~")
			w.inline(c)
			w.raw("~~")
		case *ast.Link:
			w.inline(c)
			w.literal(" (" + string(c.Destination) + ")")
		case *ast.AutoLink:
			w.literal(string(c.Label(w.src)))
		case *ast.Image:
			// alt text
			w.inline(c)
		case *ast.RawHTML:
		default:
			if child.HasChildren() {
				w.inline(child)
			}
		}
	}
}
