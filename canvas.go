package longpost

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/golang/freetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

// ---- Drawing surface ----

// TextStyle is everything a Surface needs to know to draw a run of text.
type TextStyle struct {
	Bold   bool
	Skew   float64 // horizontal shear; negative leans the glyphs right
	Strike bool
	Color  color.Color
}

// Surface is the raster target of a Rasterizer. Text is positioned by the
// top-left corner of its line box; DrawText returns the advance, which is
// the same value MeasureText reports. Line terminators are never drawn.
type Surface interface {
	FillRect(r image.Rectangle, c color.Color)
	DrawText(s string, x, y float64, st TextStyle) float64
	MeasureText(s string, st TextStyle) float64
	DrawImage(src image.Image, dst image.Rectangle)
}

// SurfaceFactory allocates a Surface of the given size.
type SurfaceFactory func(width, height int) Surface

const lineTerminators = "\r\n\v\f\u0085\u2028\u2029"

type canvas struct {
	img   *image.RGBA
	dc    *freetype.Context
	fonts Fonts
}

func newContext(dst *image.RGBA) *freetype.Context {
	dc := freetype.NewContext()
	dc.SetDPI(fontDPI)
	dc.SetHinting(font.HintingFull)
	dc.SetClip(dst.Bounds())
	dc.SetDst(dst)
	return dc
}

func newCanvas(width, height int, fonts Fonts) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &canvas{
		img:   img,
		dc:    newContext(img),
		fonts: fonts,
	}
}

func setFace(dc *freetype.Context, fnt *FontAndFace, col color.Color) {
	dc.SetFont(fnt.Font)
	dc.SetFontSize(fnt.baseSize)
	dc.SetSrc(image.NewUniform(col))
}

func (c *canvas) face(st TextStyle) *FontAndFace {
	if st.Bold && c.fonts.Bold != nil {
		return c.fonts.Bold
	}
	return c.fonts.Regular
}

func (c *canvas) FillRect(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *canvas) MeasureText(s string, st TextStyle) float64 {
	fnt := c.face(st)
	return measureWidth(fnt, strings.TrimRight(s, lineTerminators))
}

func (c *canvas) DrawText(s string, x, y float64, st TextStyle) float64 {
	s = strings.TrimRight(s, lineTerminators)
	if s == "" {
		return 0
	}
	fnt := c.face(st)
	col := st.Color
	if col == nil {
		col = color.Black
	}
	width := measureWidth(fnt, s)
	m := fnt.Face.Metrics()
	ascent := m.Ascent.Ceil()
	baseline := int(math.Round(y)) + ascent

	if st.Skew == 0 {
		setFace(c.dc, fnt, col)
		_, _ = c.dc.DrawString(s, fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.I(baseline)})
	} else {
		c.drawSheared(fnt, col, s, x, y, ascent, m.Descent.Ceil(), width, st.Skew)
	}

	if st.Strike {
		thick := int(fnt.baseSize / 18)
		if thick < 1 {
			thick = 1
		}
		sy := baseline - int(fnt.baseSize*0.28)
		c.FillRect(image.Rect(int(x), sy, int(math.Ceil(x+width)), sy+thick), col)
	}
	return width
}

// drawSheared draws s upright into a scratch image and composites it with
// a horizontal shear around the baseline.
func (c *canvas) drawSheared(fnt *FontAndFace, col color.Color, s string, x, y float64, ascent, descent int, width, skew float64) {
	const pad = 2
	tmp := image.NewRGBA(image.Rect(0, 0, int(math.Ceil(width))+2*pad, ascent+descent))
	dc := newContext(tmp)
	setFace(dc, fnt, col)
	_, _ = dc.DrawString(s, fixed.P(pad, ascent))

	// dst.x = src.x + skew*(src.y-ascent) + x - pad, dst.y = src.y + y
	s2d := f64.Aff3{
		1, skew, x - pad - skew*float64(ascent),
		0, 1, math.Round(y),
	}
	xdraw.BiLinear.Transform(c.img, s2d, tmp, tmp.Bounds(), xdraw.Over, nil)
}

func (c *canvas) DrawImage(src image.Image, dst image.Rectangle) {
	if src == nil || dst.Empty() {
		return
	}
	xdraw.CatmullRom.Scale(c.img, dst, src, src.Bounds(), xdraw.Over, nil)
}
