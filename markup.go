package longpost

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Markup grammar, in priority order at each position:
//
//	\x        take x literally (suppresses the next inline rule)
//	__        bold on/off
//	*         italic on/off
//	~~        strike-through on/off
//	[r [g [b  colour: red, green, blue
//	[y [c [m  colour: yellow, cyan, magenta
//	[#RRGGBB  colour: hex
//	[d        colour: back to default
//
// After a newline:
//
//	> text    quoted line
//	- text    bullet item
//	1. text   numbered item (numbered by position in the list)
//	# text    title line
//
// Anything that does not match is kept as literal text.

// ---- Style events ----

// EventKind identifies what a StyleEvent changes.
type EventKind int

const (
	BoldToggle EventKind = iota
	ItalicToggle
	StrikeToggle
	IndentToggle
	TitleToggle
	ColorSet
)

func (k EventKind) String() string {
	switch k {
	case BoldToggle:
		return "BoldToggle"
	case ItalicToggle:
		return "ItalicToggle"
	case StrikeToggle:
		return "StrikeToggle"
	case IndentToggle:
		return "IndentToggle"
	case TitleToggle:
		return "TitleToggle"
	case ColorSet:
		return "ColorSet"
	default:
		return "EventKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// StyleEvent toggles or sets a rendering attribute from Pos onwards. Pos is a
// rune offset into Document.Text.
type StyleEvent struct {
	Pos  int
	Kind EventKind
	// Color is only meaningful for ColorSet. A nil Color resets to the
	// theme's text colour.
	Color color.Color
}

// Document is compiled markup: the plain text that gets laid out and drawn,
// and the style events anchored into it. Events are in non-decreasing Pos
// order and must be consumed in that order.
type Document struct {
	Text   string
	Events []StyleEvent
}

// Bullet replaces the "- " marker of bullet items.
const Bullet = "• "

var selectorColors = map[rune]color.Color{
	'r': colornames.Red,
	'g': colornames.Lime,
	'b': colornames.Blue,
	'y': colornames.Yellow,
	'c': colornames.Cyan,
	'm': colornames.Magenta,
}

// ParseHexColor parses a "#RRGGBB" colour.
func ParseHexColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("longpost: invalid colour %q: want #RRGGBB", s)
	}
	if _, err := strconv.ParseUint(s[1:], 16, 32); err != nil {
		return color.RGBA{}, fmt.Errorf("longpost: invalid colour %q: %w", s, err)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("longpost: invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, nil
}

// ---- Tokenizer ----

type tokenKind int

const (
	tokText tokenKind = iota
	tokBold
	tokItalic
	tokStrike
	tokColor
	tokQuote  // newline + ">"
	tokBullet // newline + "-"
	tokNumber // newline + digit + "."
	tokTitle  // newline + "#"
	tokBreak  // any other newline
)

type token struct {
	kind  tokenKind
	text  string      // tokText
	color color.Color // tokColor, nil for reset
}

type tokenizer struct {
	src     []rune
	pos     int
	escaped bool
	lit     []rune
	out     []token
}

func tokenize(input string) []token {
	t := &tokenizer{src: []rune(input)}
	for t.pos < len(t.src) {
		t.step()
	}
	t.flush()
	return t.out
}

func (t *tokenizer) peek(off int) (rune, bool) {
	i := t.pos + off
	if i >= len(t.src) {
		return 0, false
	}
	return t.src[i], true
}

func (t *tokenizer) at(off int, r rune) bool {
	c, ok := t.peek(off)
	return ok && c == r
}

// space reports how many optional spaces follow a marker ending at off.
func (t *tokenizer) space(off int) int {
	if t.at(off, ' ') {
		return 1
	}
	return 0
}

func (t *tokenizer) flush() {
	if len(t.lit) == 0 {
		return
	}
	t.out = append(t.out, token{kind: tokText, text: string(t.lit)})
	t.lit = t.lit[:0]
}

func (t *tokenizer) emit(tok token, width int) {
	t.flush()
	t.out = append(t.out, tok)
	t.pos += width
}

func (t *tokenizer) step() {
	c := t.src[t.pos]
	if !t.escaped {
		switch {
		case c == '\\':
			t.escaped = true
			t.pos++
			return
		case c == '_' && t.at(1, '_'):
			t.emit(token{kind: tokBold}, 2)
			return
		case c == '*':
			t.emit(token{kind: tokItalic}, 1)
			return
		case c == '~' && t.at(1, '~'):
			t.emit(token{kind: tokStrike}, 2)
			return
		case c == '[':
			if col, width, ok := t.colorTag(); ok {
				t.emit(token{kind: tokColor, color: col}, width)
				return
			}
		}
	}
	if c == '\n' {
		t.newline()
		return
	}
	t.escaped = false
	t.lit = append(t.lit, c)
	t.pos++
}

// colorTag recognises the selector after a '['. It returns the colour (nil
// for [d) and the number of runes the tag occupies.
func (t *tokenizer) colorTag() (color.Color, int, bool) {
	sel, ok := t.peek(1)
	if !ok {
		return nil, 0, false
	}
	if sel == 'd' {
		return nil, 2, true
	}
	if c, ok := selectorColors[sel]; ok {
		return c, 2, true
	}
	if sel == '#' && t.pos+8 <= len(t.src) {
		c, err := ParseHexColor(string(t.src[t.pos+1 : t.pos+8]))
		if err == nil {
			return c, 8, true
		}
	}
	return nil, 0, false
}

// newline handles a '\n' and whatever line marker follows it. Line markers
// are recognised even after an escape, and they leave the escape pending.
func (t *tokenizer) newline() {
	next, _ := t.peek(1)
	switch {
	case next == '>':
		t.emit(token{kind: tokQuote}, 2+t.space(2))
	case next == '-':
		t.emit(token{kind: tokBullet}, 2+t.space(2))
	case isListDigit(next) && t.at(2, '.'):
		t.emit(token{kind: tokNumber}, 3+t.space(3))
	case next == '#':
		t.emit(token{kind: tokTitle}, 2+t.space(2))
	default:
		t.escaped = false
		t.emit(token{kind: tokBreak}, 1)
	}
}

// isListDigit is deliberately narrow: only '1' through '8' start a numbered
// item. "9." and "0." lines stay literal.
func isListDigit(r rune) bool {
	return r > '0' && r < '9'
}

// ---- Builder ----

type builder struct {
	text   strings.Builder
	n      int // runes written so far
	events []StyleEvent
	indent bool
	title  bool
	rank   int
}

// Compile strips the markup from input and records where each style change
// happens. It never fails: anything unrecognised is kept as text.
func Compile(input string) Document {
	b := &builder{rank: 1}
	for _, tok := range tokenize(input) {
		b.add(tok)
	}
	return Document{Text: b.text.String(), Events: b.events}
}

func (b *builder) write(s string) {
	b.text.WriteString(s)
	b.n += utf8.RuneCountInString(s)
}

func (b *builder) mark(k EventKind, c color.Color) {
	b.events = append(b.events, StyleEvent{Pos: b.n, Kind: k, Color: c})
}

func (b *builder) add(tok token) {
	switch tok.kind {
	case tokText:
		b.write(tok.text)
	case tokBold:
		b.mark(BoldToggle, nil)
	case tokItalic:
		b.mark(ItalicToggle, nil)
	case tokStrike:
		b.mark(StrikeToggle, nil)
	case tokColor:
		b.mark(ColorSet, tok.color)
	case tokQuote, tokBullet, tokNumber:
		b.write("\n")
		if !b.indent {
			b.mark(IndentToggle, nil)
			b.indent = true
		}
		switch tok.kind {
		case tokBullet:
			b.write(Bullet)
		case tokNumber:
			b.write(strconv.Itoa(b.rank) + ". ")
			b.rank++
		}
	case tokTitle:
		b.closeIndent()
		b.write("\n")
		if !b.title {
			b.mark(TitleToggle, nil)
			b.title = true
		}
	case tokBreak:
		b.closeIndent()
		if b.title {
			// One past the current end: after the newline written below.
			b.events = append(b.events, StyleEvent{Pos: b.n + 1, Kind: TitleToggle})
			b.title = false
		}
		b.write("\n")
	}
}

func (b *builder) closeIndent() {
	if !b.indent {
		return
	}
	b.mark(IndentToggle, nil)
	b.indent = false
	b.rank = 1
}
