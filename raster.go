package longpost

import (
	"image"
	"image/color"
	"log/slog"
)

// ---- Rasterizer ----

// Geometry is the fixed layout of a rendered post, in pixels. The picture
// sits below the text block, inside the bottom padding: its top is at
// Padding + text height + PictureGap/2.
type Geometry struct {
	Width         int
	Padding       int
	PictureMargin int
	PictureGap    int
	ItalicSkew    float64
}

// pictureSize returns the size pic is scaled to: the canvas width less the
// margin, keeping the aspect ratio.
func (g Geometry) pictureSize(pic image.Image) (int, int) {
	if pic == nil {
		return 0, 0
	}
	b := pic.Bounds()
	w := g.Width - g.PictureMargin
	if b.Dx() <= 0 {
		return w, 0
	}
	return w, int(float64(w) / float64(b.Dx()) * float64(b.Dy()))
}

// Rasterizer draws compiled documents. It holds no per-render state and can
// be reused, and shared if its Layouter and NewSurface can.
type Rasterizer struct {
	Layouter   Layouter
	NewSurface SurfaceFactory
	Geometry   Geometry
	Theme      Theme
	Logger     *slog.Logger
}

type renderState struct {
	bold        bool
	skew        float64
	strike      bool
	color       color.Color
	indentStart int // first line of the open indent, -1 when none
	title       bool
}

func (st *renderState) style() TextStyle {
	return TextStyle{Bold: st.bold, Skew: st.skew, Strike: st.strike, Color: st.color}
}

// toggleTitle flips title mode. Titles are bold, so it flips bold with it;
// a __ inside a title therefore turns bold off.
func (st *renderState) toggleTitle() {
	st.title = !st.title
	st.bold = !st.bold
}

// pass is a single Render call: the wrapped text, the surface and the
// cursor into the event list.
type pass struct {
	*Rasterizer
	log    *slog.Logger
	s      Surface
	lay    LineLayout
	text   []rune
	events []StyleEvent
	next   int
	st     renderState
}

// Render lays out doc, allocates a surface tall enough for it and pic, and
// draws both. pic may be nil.
func (r *Rasterizer) Render(doc Document, pic image.Image) Surface {
	g := r.Geometry
	log := r.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	lay := r.Layouter.Layout(doc.Text, float64(g.Width-2*g.Padding))
	n := lay.LineCount()
	height := lay.LineTop(n) + 2*g.Padding
	picW, picH := g.pictureSize(pic)
	if pic != nil {
		height += picH + g.PictureGap
	}
	log.Debug("measured post", "lines", n, "width", g.Width, "height", height)

	s := r.NewSurface(g.Width, height)
	s.FillRect(image.Rect(0, 0, g.Width, height), r.Theme.BG)

	p := &pass{
		Rasterizer: r,
		log:        log,
		s:          s,
		lay:        lay,
		text:       []rune(doc.Text),
		events:     doc.Events,
		st:         renderState{color: r.Theme.FG, indentStart: -1},
	}
	for i := 0; i < n; i++ {
		p.line(i)
	}

	if pic != nil {
		// Text starts below the top padding, so the picture does too.
		left := g.PictureMargin / 2
		top := g.Padding + lay.LineTop(n) + g.PictureGap/2
		dst := image.Rect(left, top, left+picW, top+picH)
		log.Debug("drawing picture", "rect", dst)
		s.DrawImage(pic, dst)
	}
	return s
}

func (p *pass) baseline(i int) int {
	return p.Geometry.Padding + p.lay.LineTop(i) + p.lay.LineAscent(i)
}

func (p *pass) line(i int) {
	pad := float64(p.Geometry.Padding)
	y := pad + float64(p.lay.LineTop(i))
	x := pad
	if p.st.indentStart != -1 {
		x += pad / 2
	}
	last, end := p.lay.LineStart(i), p.lay.LineEnd(i)

	// The last line is the trailer.
	if i == p.lay.LineCount()-1 {
		p.st.color = p.Theme.Muted
	}

	for p.next < len(p.events) {
		ev := p.events[p.next]
		if ev.Pos >= end {
			break
		}
		pos := max(ev.Pos, last)
		x += p.run(last, pos, x, y)
		last = pos
		x = p.apply(ev, i, x)
		p.next++
	}
	if last < end {
		x += p.run(last, end, x, y)
	}

	if p.st.title {
		p.log.Debug("title line", "line", i)
		uy := p.baseline(i) + 4
		right := int(x - pad/2)
		if right > p.Geometry.Padding {
			p.s.FillRect(image.Rect(p.Geometry.Padding, uy, right, uy+2), p.Theme.Decoration)
		}
	}
}

// run draws text[from:to] and returns its advance.
func (p *pass) run(from, to int, x, y float64) float64 {
	to = min(to, len(p.text))
	if from >= to {
		return 0
	}
	return p.s.DrawText(string(p.text[from:to]), x, y, p.st.style())
}

// apply applies ev on line i and returns the adjusted pen position.
func (p *pass) apply(ev StyleEvent, i int, x float64) float64 {
	st := &p.st
	switch ev.Kind {
	case BoldToggle:
		st.bold = !st.bold
	case TitleToggle:
		st.toggleTitle()
	case ItalicToggle:
		if st.skew == 0 {
			st.skew = p.Geometry.ItalicSkew
		} else {
			st.skew = 0
		}
	case StrikeToggle:
		st.strike = !st.strike
	case ColorSet:
		if ev.Color == nil {
			st.color = p.Theme.FG
		} else {
			st.color = ev.Color
		}
	case IndentToggle:
		half := float64(p.Geometry.Padding) / 2
		if st.indentStart == -1 {
			st.indentStart = i
			p.log.Debug("indent opened", "line", i)
			return x + half
		}
		p.indentBar(st.indentStart, i)
		st.indentStart = -1
		return x - half
	}
	return x
}

// indentBar draws the bar beside lines start through end.
func (p *pass) indentBar(start, end int) {
	p.log.Debug("indent closed", "start", start, "end", end)
	bx := int(float64(p.Geometry.Padding) * 1.2)
	top := p.baseline(start) - p.lay.LineAscent(start)
	bottom := p.baseline(end) + p.lay.LineDescent(end)
	p.s.FillRect(image.Rect(bx, top, bx+2, bottom), p.Theme.Decoration)
}
