package longpost

import (
	"image/color"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/image/colornames"
)

func ev(pos int, kind EventKind) StyleEvent {
	return StyleEvent{Pos: pos, Kind: kind}
}

func colorEv(pos int, c color.Color) StyleEvent {
	return StyleEvent{Pos: pos, Kind: ColorSet, Color: c}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		text   string
		events []StyleEvent
	}{
		{
			name:  "plain text passes through",
			input: "plain text, (a) {b} #1 -2 >3 _ ~\nline two",
			text:  "plain text, (a) {b} #1 -2 >3 _ ~\nline two",
		},
		{
			name:   "italic",
			input:  "Hello *world*!",
			text:   "Hello world!",
			events: []StyleEvent{ev(6, ItalicToggle), ev(11, ItalicToggle)},
		},
		{
			name:   "empty bold",
			input:  "____",
			text:   "",
			events: []StyleEvent{ev(0, BoldToggle), ev(0, BoldToggle)},
		},
		{
			name:   "bold",
			input:  "__a__",
			text:   "a",
			events: []StyleEvent{ev(0, BoldToggle), ev(1, BoldToggle)},
		},
		{
			name:   "strike",
			input:  "~~s~~t",
			text:   "st",
			events: []StyleEvent{ev(0, StrikeToggle), ev(1, StrikeToggle)},
		},
		{
			name:  "single markers stay literal",
			input: "a_b ~c",
			text:  "a_b ~c",
		},
		{
			name:  "escaped markers",
			input: `\*x\* \__y \\`,
			text:  `*x* __y \`,
		},
		{
			name:   "selector colour and reset",
			input:  "[ry[d",
			text:   "y",
			events: []StyleEvent{colorEv(0, colornames.Red), colorEv(1, nil)},
		},
		{
			name:  "all selectors",
			input: "[g[b[y[c[m",
			events: []StyleEvent{
				colorEv(0, colornames.Lime),
				colorEv(0, colornames.Blue),
				colorEv(0, colornames.Yellow),
				colorEv(0, colornames.Cyan),
				colorEv(0, colornames.Magenta),
			},
		},
		{
			name:   "hex colour",
			input:  "[#00ff80x",
			text:   "x",
			events: []StyleEvent{colorEv(0, color.RGBA{0x00, 0xFF, 0x80, 0xFF})},
		},
		{
			name:  "invalid hex is literal",
			input: "[#zzzzzzx",
			text:  "[#zzzzzzx",
		},
		{
			name:  "short hex is literal",
			input: "[#12",
			text:  "[#12",
		},
		{
			name:  "unknown selector is literal",
			input: "[q] [",
			text:  "[q] [",
		},
		{
			name:  "escaped colour",
			input: `\[rx`,
			text:  "[rx",
		},
		{
			name:   "bullet list",
			input:  "a\n- x\n- y\nb",
			text:   "a\n" + Bullet + "x\n" + Bullet + "y\nb",
			events: []StyleEvent{ev(2, IndentToggle), ev(9, IndentToggle)},
		},
		{
			name:   "bullet without space",
			input:  "\n-x",
			text:   "\n" + Bullet + "x",
			events: []StyleEvent{ev(1, IndentToggle)},
		},
		{
			name:   "numbered list is renumbered",
			input:  "\n1. a\n5.b\n9. c",
			text:   "\n1. a\n2. b\n9. c",
			events: []StyleEvent{ev(1, IndentToggle), ev(10, IndentToggle)},
		},
		{
			name:   "rank restarts after the list closes",
			input:  "\n1.a\nx\n1.b",
			text:   "\n1. a\nx\n1. b",
			events: []StyleEvent{ev(1, IndentToggle), ev(5, IndentToggle), ev(8, IndentToggle)},
		},
		{
			name:  "nine and zero do not start items",
			input: "\n9. a\n0. b",
			text:  "\n9. a\n0. b",
		},
		{
			name:   "quote left open at end",
			input:  "\n>q\n> r",
			text:   "\nq\nr",
			events: []StyleEvent{ev(1, IndentToggle)},
		},
		{
			name:   "title closes one past the line end",
			input:  "\n# T\nx",
			text:   "\nT\nx",
			events: []StyleEvent{ev(1, TitleToggle), ev(3, TitleToggle)},
		},
		{
			name:   "title closes an open list",
			input:  "\n- a\n# T",
			text:   "\n" + Bullet + "a\nT",
			events: []StyleEvent{ev(1, IndentToggle), ev(4, IndentToggle), ev(5, TitleToggle)},
		},
		{
			name:   "escape survives a line marker",
			input:  "\\\n- *x*",
			text:   "\n" + Bullet + "*x",
			events: []StyleEvent{ev(1, IndentToggle), ev(5, ItalicToggle)},
		},
		{
			name:   "escape is cleared by a plain newline",
			input:  "\\\n*",
			text:   "\n",
			events: []StyleEvent{ev(1, ItalicToggle)},
		},
		{
			name:  "trailing newline",
			input: "a\n",
			text:  "a\n",
		},
		{
			name:  "trailing backslash is dropped",
			input: `a\`,
			text:  "a",
		},
		{
			name:   "positions count runes",
			input:  "é*ü*",
			text:   "éü",
			events: []StyleEvent{ev(1, ItalicToggle), ev(2, ItalicToggle)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Compile(tt.input)
			if doc.Text != tt.text {
				t.Errorf("text = %q, want %q", doc.Text, tt.text)
			}
			if diff := cmp.Diff(tt.events, doc.Events); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompileEmpty(t *testing.T) {
	doc := Compile("")
	if doc.Text != "" || len(doc.Events) != 0 {
		t.Fatalf("Compile(\"\") = %+v, want empty document", doc)
	}
}

func TestParseHexColor(t *testing.T) {
	got, err := ParseHexColor("#0A0b0C")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if want := (color.RGBA{10, 11, 12, 0xFF}); got != want {
		t.Fatalf("ParseHexColor = %v, want %v", got, want)
	}
	for _, bad := range []string{"", "0A0B0C", "#0A0B0", "#0A0B0C0", "#GG0000", "#+12345"} {
		if _, err := ParseHexColor(bad); err == nil {
			t.Errorf("ParseHexColor(%q) succeeded, want error", bad)
		}
	}
}

func TestEventKindString(t *testing.T) {
	if got := IndentToggle.String(); got != "IndentToggle" {
		t.Fatalf("IndentToggle.String() = %q", got)
	}
	if got := EventKind(42).String(); got != "EventKind(42)" {
		t.Fatalf("EventKind(42).String() = %q", got)
	}
}

func FuzzCompile(f *testing.F) {
	for _, seed := range []string{
		"Hello *world*!",
		"\n# T\n- a\n1. b\n> c",
		"[#00ff00x[d[r",
		`\\\*__~~`,
		"\n9. \n0.",
	} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		doc := Compile(input)
		n := utf8.RuneCountInString(doc.Text)
		prev := 0
		for _, e := range doc.Events {
			if e.Pos < prev {
				t.Fatalf("event positions decrease: %v", doc.Events)
			}
			// A title can close one past the end of the text.
			if e.Pos > n+1 || (e.Pos == n+1 && e.Kind != TitleToggle) {
				t.Fatalf("event %v beyond text of %d runes", e, n)
			}
			prev = e.Pos
		}
	})
}
