package longpost

import (
	"strings"
	"testing"
)

func testLayouter(t *testing.T) *TextLayouter {
	t.Helper()
	fonts, err := LoadFonts(FontConfig{SizeBase: 14})
	if err != nil {
		t.Fatalf("load fonts: %v", err)
	}
	return NewTextLayouter(fonts.Regular)
}

type span struct{ start, end int }

func spans(l LineLayout) []span {
	out := make([]span, l.LineCount())
	for i := range out {
		out[i] = span{l.LineStart(i), l.LineEnd(i)}
	}
	return out
}

// checkCoverage verifies that the lines are contiguous, cover all n runes
// and stack without gaps.
func checkCoverage(t *testing.T, l LineLayout, n int) {
	t.Helper()
	if l.LineCount() == 0 {
		t.Fatalf("no lines")
	}
	if l.LineStart(0) != 0 {
		t.Fatalf("first line starts at %d", l.LineStart(0))
	}
	for i := 1; i < l.LineCount(); i++ {
		if l.LineStart(i) != l.LineEnd(i-1) {
			t.Fatalf("line %d starts at %d, previous ended at %d", i, l.LineStart(i), l.LineEnd(i-1))
		}
		if l.LineTop(i) <= l.LineTop(i-1) {
			t.Fatalf("line %d top %d not below line %d top %d", i, l.LineTop(i), i-1, l.LineTop(i-1))
		}
	}
	last := l.LineCount() - 1
	if l.LineEnd(last) != n {
		t.Fatalf("last line ends at %d, want %d", l.LineEnd(last), n)
	}
	if got := l.LineTop(l.LineCount()); got != l.Height {
		t.Fatalf("LineTop(count) = %d, want height %d", got, l.Height)
	}
	want := l.LineTop(last) + l.LineAscent(last) + l.LineDescent(last)
	if l.Height != want {
		t.Fatalf("height = %d, want %d", l.Height, want)
	}
}

func TestLayoutSingleLine(t *testing.T) {
	lay := testLayouter(t).Layout("Hello world", 1000)
	if got := spans(lay); len(got) != 1 || got[0] != (span{0, 11}) {
		t.Fatalf("spans = %v, want [{0 11}]", got)
	}
	if lay.LineAscent(0) <= 0 || lay.LineDescent(0) <= 0 {
		t.Fatalf("metrics = %d/%d, want positive", lay.LineAscent(0), lay.LineDescent(0))
	}
	checkCoverage(t, lay, 11)
}

func TestLayoutHardBreaks(t *testing.T) {
	tl := testLayouter(t)
	tests := []struct {
		text string
		want []span
	}{
		{"a\nb", []span{{0, 2}, {2, 3}}},
		{"a\n", []span{{0, 2}, {2, 2}}},
		{"a\n\nb", []span{{0, 2}, {2, 3}, {3, 4}}},
		{"\n", []span{{0, 1}, {1, 1}}},
		{"", []span{{0, 0}}},
	}
	for _, tt := range tests {
		lay := tl.Layout(tt.text, 1000)
		got := spans(lay)
		if len(got) != len(tt.want) {
			t.Fatalf("Layout(%q) spans = %v, want %v", tt.text, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("Layout(%q) spans = %v, want %v", tt.text, got, tt.want)
			}
		}
		checkCoverage(t, lay, len([]rune(tt.text)))
	}
}

func TestLayoutWrapsWords(t *testing.T) {
	tl := testLayouter(t)
	text := strings.Repeat("lorem ipsum dolor sit amet ", 8)
	lay := tl.Layout(text, 120)
	if lay.LineCount() < 3 {
		t.Fatalf("expected wrapping, got %d lines", lay.LineCount())
	}
	checkCoverage(t, lay, len([]rune(text)))

	runes := []rune(text)
	for i := 0; i < lay.LineCount(); i++ {
		line := runes[lay.LineStart(i):lay.LineEnd(i)]
		// Segments are measured one at a time, so allow for rounding.
		if w := tl.measure(trimTrailingSpace(line)); w > 120+2 {
			t.Fatalf("line %d %q is %.0fpx wide", i, string(line), w)
		}
		// Breaks fall between words, never inside one.
		if i > 0 && runes[lay.LineStart(i)-1] != ' ' {
			t.Fatalf("line %d starts mid-word: %q", i, string(line))
		}
	}
}

func TestLayoutBreaksLongToken(t *testing.T) {
	tl := testLayouter(t)
	long := "averyverylongtokenwithoutspaces"
	lay := tl.Layout(long, 80)
	if lay.LineCount() < 2 {
		t.Fatalf("expected long token to wrap across multiple lines, got %v", spans(lay))
	}
	checkCoverage(t, lay, len(long))
	for i := 0; i < lay.LineCount(); i++ {
		line := []rune(long)[lay.LineStart(i):lay.LineEnd(i)]
		if len(line) == 0 {
			t.Fatalf("line %d is empty", i)
		}
		if w := tl.measure(line); w > 80+2 && len(line) > 1 {
			t.Fatalf("line %d %q is %.0fpx wide", i, string(line), w)
		}
	}
}

func TestLayoutUnlimitedWidth(t *testing.T) {
	text := strings.Repeat("word ", 200)
	lay := testLayouter(t).Layout(text, 0)
	if lay.LineCount() != 1 {
		t.Fatalf("got %d lines with no width limit, want 1", lay.LineCount())
	}
}
