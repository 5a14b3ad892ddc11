package longpost

import (
	"unicode"

	"github.com/go-text/typesetting/segmenter"
)

// ---- Line layout ----

// Line is one wrapped line: the rune range [Start, End) of the laid out
// text, including any trailing whitespace or line terminator, plus its
// vertical metrics in pixels. Ascent and Descent are both positive.
type Line struct {
	Start, End int
	Top        int
	Ascent     int
	Descent    int
}

// LineLayout is the result of wrapping a text to a width.
type LineLayout struct {
	Lines  []Line
	Height int
}

func (l LineLayout) LineCount() int      { return len(l.Lines) }
func (l LineLayout) LineStart(i int) int { return l.Lines[i].Start }
func (l LineLayout) LineEnd(i int) int   { return l.Lines[i].End }

// LineTop returns the top of line i. LineTop(LineCount()) is the bottom of
// the last line.
func (l LineLayout) LineTop(i int) int {
	if i >= len(l.Lines) {
		return l.Height
	}
	return l.Lines[i].Top
}

func (l LineLayout) LineAscent(i int) int  { return l.Lines[i].Ascent }
func (l LineLayout) LineDescent(i int) int { return l.Lines[i].Descent }

// Layouter wraps text into lines no wider than maxWidth pixels.
type Layouter interface {
	Layout(text string, maxWidth float64) LineLayout
}

// TextLayouter is the default Layouter. It breaks on UAX#14 opportunities,
// measured with a single face.
type TextLayouter struct {
	face *FontAndFace
}

// NewTextLayouter returns a layouter measuring with face.
func NewTextLayouter(face *FontAndFace) *TextLayouter {
	return &TextLayouter{face: face}
}

type lineBuilder struct {
	out        LineLayout
	start      int
	width      float64
	ascent     int
	descent    int
	lineHeight int
}

func (b *lineBuilder) emit(end int) {
	b.out.Lines = append(b.out.Lines, Line{
		Start:   b.start,
		End:     end,
		Top:     len(b.out.Lines) * b.lineHeight,
		Ascent:  b.ascent,
		Descent: b.descent,
	})
	b.out.Height = len(b.out.Lines) * b.lineHeight
	b.start = end
	b.width = 0
}

// Layout implements Layouter. Lines are contiguous and cover the whole text.
// A text that is empty or ends in a hard break gets a final empty line.
func (t *TextLayouter) Layout(text string, maxWidth float64) LineLayout {
	runes := []rune(text)
	m := t.face.Face.Metrics()
	b := &lineBuilder{
		ascent:  m.Ascent.Ceil(),
		descent: m.Descent.Ceil(),
	}
	b.lineHeight = b.ascent + b.descent

	if len(runes) == 0 {
		b.emit(0)
		return b.out
	}

	var seg segmenter.Segmenter
	seg.Init(runes)
	iter := seg.LineIterator()
	for iter.Next() {
		line := iter.Line()
		segText := line.Text
		segEnd := line.Offset + len(segText)
		visible := trimTrailingSpace(segText)
		visibleWidth := t.measure(visible)

		if maxWidth > 0 && b.width+visibleWidth > maxWidth && line.Offset > b.start {
			b.emit(line.Offset)
		}
		if maxWidth > 0 && visibleWidth > maxWidth {
			t.breakRunes(b, segText, line.Offset, maxWidth)
		} else {
			b.width += t.measure(segText)
		}
		if len(segText) > 0 && isHardBreak(segText[len(segText)-1]) {
			b.emit(segEnd)
		}
	}
	if b.start < len(runes) || isHardBreak(runes[len(runes)-1]) {
		b.emit(len(runes))
	}
	return b.out
}

// breakRunes places a segment that is wider than a whole line, breaking
// between runes.
func (t *TextLayouter) breakRunes(b *lineBuilder, seg []rune, offset int, maxWidth float64) {
	for k, r := range seg {
		w := t.measure(seg[k : k+1])
		if b.width+w > maxWidth && offset+k > b.start && !unicode.IsSpace(r) {
			b.emit(offset + k)
		}
		b.width += w
	}
}

func (t *TextLayouter) measure(rs []rune) float64 {
	rs = trimLineTerminators(rs)
	if len(rs) == 0 {
		return 0
	}
	return measureWidth(t.face, string(rs))
}

func trimTrailingSpace(rs []rune) []rune {
	for len(rs) > 0 && unicode.IsSpace(rs[len(rs)-1]) {
		rs = rs[:len(rs)-1]
	}
	return rs
}

func trimLineTerminators(rs []rune) []rune {
	for len(rs) > 0 && isHardBreak(rs[len(rs)-1]) {
		rs = rs[:len(rs)-1]
	}
	return rs
}

func isHardBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
