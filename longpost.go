package longpost

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"

	"github.com/arran4/longpost/internal/locale"
)

// Long post renderer: a small markup dialect (bold, italic, strike-through,
// colours, quotes, lists, titles) drawn onto a fixed-width image, with the
// option of a picture underneath.
//
// Pipeline: Compile strips the markup into plain text plus style events, a
// Layouter wraps the plain text, and the Rasterizer walks the wrapped lines
// applying the events.

// ---- Styles & theme ----

type Theme struct {
	BG         color.Color
	FG         color.Color
	Muted      color.Color // trailer line
	Decoration color.Color // quote bars and title underlines
}

var (
	// Light theme defaults
	lightTheme = Theme{
		BG:         color.RGBA{0xFF, 0xFF, 0xFF, 0xFF},
		FG:         color.RGBA{0x00, 0x00, 0x00, 0xFF},
		Muted:      color.RGBA{0x80, 0x80, 0x80, 0xFF},
		Decoration: color.NRGBA{0x80, 0x80, 0x80, 0x80},
	}
	// Dark theme defaults
	darkTheme = Theme{
		BG:         color.RGBA{0x12, 0x12, 0x14, 0xFF},
		FG:         color.RGBA{0xEE, 0xEE, 0xF0, 0xFF},
		Muted:      color.RGBA{0x88, 0x88, 0x8C, 0xFF},
		Decoration: color.NRGBA{0x88, 0x88, 0x8C, 0x80},
	}
)

// LightTheme and DarkTheme expose the built-in themes for convenience.
var (
	LightTheme = lightTheme
	DarkTheme  = darkTheme
)

// ThemeByName returns a built-in theme by name ("light" or "dark").
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "light", "":
		return lightTheme, nil
	case "dark":
		return darkTheme, nil
	default:
		return Theme{}, errors.New("longpost: unknown theme: " + name)
	}
}

// ---- Font loading ----

// fontDPI makes point sizes equal pixel sizes.
const fontDPI = 72

type FontAndFace struct {
	Font     *truetype.Font
	Face     font.Face
	baseSize float64
}

type Fonts struct {
	Regular *FontAndFace
	Bold    *FontAndFace
}

type FontConfig struct {
	RegularPath string
	BoldPath    string
	SizeBase    float64 // font size in px
}

func newFace(ft *truetype.Font, size float64) font.Face {
	return truetype.NewFace(ft, &truetype.Options{Size: size, DPI: fontDPI, Hinting: font.HintingFull})
}

func loadFontAndFace(ttfBytes []byte, size float64) (*FontAndFace, error) {
	ft, err := truetype.Parse(ttfBytes)
	if err != nil {
		return nil, err
	}
	return &FontAndFace{
		Font:     ft,
		Face:     newFace(ft, size),
		baseSize: size,
	}, nil
}

func loadFontFile(path string, fallback []byte, size float64) (*FontAndFace, error) {
	if path == "" {
		return loadFontAndFace(fallback, size)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("longpost: reading font: %w", err)
	}
	f, err := loadFontAndFace(b, size)
	if err != nil {
		return nil, fmt.Errorf("longpost: parsing font %s: %w", path, err)
	}
	return f, nil
}

// LoadFonts returns a Fonts set using the provided FontConfig. When no
// custom paths are supplied it falls back to Go's bundled fonts.
func LoadFonts(cfg FontConfig) (Fonts, error) {
	var f Fonts
	var err error
	if cfg.SizeBase <= 0 {
		cfg.SizeBase = defaultFontSize
	}
	if f.Regular, err = loadFontFile(cfg.RegularPath, goregular.TTF, cfg.SizeBase); err != nil {
		return f, err
	}
	if f.Bold, err = loadFontFile(cfg.BoldPath, gobold.TTF, cfg.SizeBase); err != nil {
		return f, err
	}
	return f, nil
}

// withSize returns a copy with its own face. truetype faces cache glyphs
// and must not be shared between concurrent renders; the parsed Font can be.
func (f *FontAndFace) withSize(size float64) *FontAndFace {
	return &FontAndFace{Font: f.Font, Face: newFace(f.Font, size), baseSize: size}
}

func (f Fonts) withSize(size float64) Fonts {
	return Fonts{Regular: f.Regular.withSize(size), Bold: f.Bold.withSize(size)}
}

func measureWidth(fnt *FontAndFace, s string) float64 {
	if fnt == nil || s == "" {
		return 0
	}
	d := font.Drawer{Face: fnt.Face}
	return float64(d.MeasureString(s).Round())
}

// ---- Library entry points ----

const (
	defaultWidth         = 720
	defaultPadding       = 40
	defaultFontSize      = 20
	defaultPictureMargin = 20
	defaultPictureGap    = 20
	defaultItalicSkew    = -0.25
)

// RenderOptions configure how a post is rendered. Zero values enable the
// defaults: 720px width, 40px padding, 20px text, light theme, Go fonts and
// an English trailer line. Because zero means "default", a Padding of 0 or
// an ItalicSkew of 0 cannot be requested; use 1px padding or a tiny skew.
type RenderOptions struct {
	Width         int
	Padding       int
	FontSize      float64
	PictureMargin int // picture is Width-PictureMargin wide
	PictureGap    int
	ItalicSkew    float64
	Theme         Theme
	Fonts         Fonts
	// Trailer is appended as the post's last line and drawn muted. Empty
	// selects the localized default for Language.
	Trailer     string
	OmitTrailer bool
	Language    language.Tag
	Logger      *slog.Logger
}

func (o *RenderOptions) applyDefaults() error {
	if o.Width <= 0 {
		o.Width = defaultWidth
	}
	if o.Padding <= 0 {
		o.Padding = defaultPadding
	}
	if o.FontSize <= 0 {
		o.FontSize = defaultFontSize
	}
	if o.PictureMargin <= 0 {
		o.PictureMargin = defaultPictureMargin
	}
	if o.PictureGap <= 0 {
		o.PictureGap = defaultPictureGap
	}
	if o.ItalicSkew == 0 {
		o.ItalicSkew = defaultItalicSkew
	}
	if (o.Theme == Theme{}) {
		o.Theme = lightTheme
	}
	if o.Width <= 2*o.Padding {
		return fmt.Errorf("longpost: width %d leaves no room inside padding %d", o.Width, o.Padding)
	}
	if o.PictureMargin >= o.Width {
		return fmt.Errorf("longpost: picture margin %d is not smaller than width %d", o.PictureMargin, o.Width)
	}

	// Fill in missing fonts using the bundled defaults.
	if o.Fonts.Regular == nil || o.Fonts.Bold == nil {
		fallback, err := LoadFonts(FontConfig{SizeBase: o.FontSize})
		if err != nil {
			return err
		}
		if o.Fonts.Regular == nil {
			o.Fonts.Regular = fallback.Regular
		}
		if o.Fonts.Bold == nil {
			o.Fonts.Bold = fallback.Bold
		}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return nil
}

func (o *RenderOptions) geometry() Geometry {
	return Geometry{
		Width:         o.Width,
		Padding:       o.Padding,
		PictureMargin: o.PictureMargin,
		PictureGap:    o.PictureGap,
		ItalicSkew:    o.ItalicSkew,
	}
}

// Compose returns the markup that Render compiles: text followed by the
// trailer line unless it is omitted.
func (o RenderOptions) Compose(text string) string {
	if o.OmitTrailer {
		return text
	}
	trailer := o.Trailer
	if trailer == "" {
		trailer = locale.Trailer(o.Language)
	}
	return text + "\n\n" + trailer
}

// Render draws the long post markup text, and pic when it is not nil, into
// a new image. Errors are only returned for unusable options or fonts.
func Render(text string, pic image.Image, opts RenderOptions) (*image.RGBA, error) {
	if err := opts.applyDefaults(); err != nil {
		return nil, err
	}
	doc := Compile(opts.Compose(text))
	opts.Logger.Debug("compiled markup",
		"runes", utf8.RuneCountInString(doc.Text),
		"events", len(doc.Events))

	fonts := opts.Fonts.withSize(opts.FontSize)
	var c *canvas
	r := &Rasterizer{
		Layouter: NewTextLayouter(fonts.Regular),
		NewSurface: func(width, height int) Surface {
			c = newCanvas(width, height, fonts)
			return c
		},
		Geometry: opts.geometry(),
		Theme:    opts.Theme,
		Logger:   opts.Logger,
	}
	r.Render(doc, pic)
	return c.img, nil
}
