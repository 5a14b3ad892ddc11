package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/arran4/longpost"
	"github.com/arran4/longpost/internal/config"
	"github.com/arran4/longpost/internal/locale"
)

func main() {
	in := flag.String("in", "", "Input file (default: stdin if empty)")
	out := flag.String("out", "out.png", "Output image file (.png or .jpg)")
	pic := flag.String("pic", "", "Picture drawn under the post: path or http(s) URL (optional)")
	cfgPath := flag.String("config", "", "TOML settings file (optional; flags override it)")
	width := flag.Int("width", 720, "Output image width in pixels")
	padding := flag.Int("padding", 40, "Padding in pixels")
	pt := flag.Float64("pt", 20, "Font size in pixels")
	theme := flag.String("theme", "light", "Theme: light|dark")
	fontRegular := flag.String("font", "", "Path to TTF for regular text (optional; default Go Regular)")
	fontBold := flag.String("fontbold", "", "Path to TTF for bold text (optional; default Go Bold)")
	lang := flag.String("lang", "en", "Language of the trailer line and teaser placeholder")
	trailer := flag.String("trailer", "", "Trailer line (default: localized \"Generated by longpost\")")
	noTrailer := flag.Bool("no-trailer", false, "Do not append a trailer line")
	markdown := flag.Bool("markdown", false, "Treat the input as CommonMark and convert it first")
	teaser := flag.Bool("teaser", false, "Print the one-line teaser instead of rendering")
	verbose := flag.Bool("v", false, "Debug logging to stderr")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fatal(err)
		}
		logger.Debug("loaded config", "path", *cfgPath)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "padding":
			cfg.Padding = *padding
		case "pt":
			cfg.FontSize = *pt
		case "theme":
			cfg.Theme = *theme
		case "font":
			cfg.Font = *fontRegular
		case "fontbold":
			cfg.FontBold = *fontBold
		case "lang":
			cfg.Language = *lang
		case "trailer":
			cfg.Trailer = *trailer
		case "no-trailer":
			cfg.OmitTrailer = *noTrailer
		}
	})

	data, err := readInput(*in)
	if err != nil {
		fatal(err)
	}
	text := string(data)
	if *markdown {
		text = longpost.FromMarkdown(data)
	}

	tag := locale.Match(cfg.Language)
	if *teaser {
		fmt.Println(longpost.Teaser(text, locale.Placeholder(tag)))
		return
	}

	th, err := cfg.ResolveTheme()
	if err != nil {
		fatal(err)
	}
	fonts, err := longpost.LoadFonts(longpost.FontConfig{
		RegularPath: cfg.Font,
		BoldPath:    cfg.FontBold,
		SizeBase:    cfg.FontSize,
	})
	if err != nil {
		fatal(err)
	}

	var picture image.Image
	if *pic != "" {
		baseDir := ""
		if *in != "" {
			baseDir = filepath.Dir(*in)
		}
		if picture, err = longpost.LoadPicture(context.Background(), *pic, baseDir); err != nil {
			fatal(err)
		}
	}

	img, err := longpost.Render(text, picture, longpost.RenderOptions{
		Width:       cfg.Width,
		Padding:     cfg.Padding,
		FontSize:    cfg.FontSize,
		Theme:       th,
		Fonts:       fonts,
		Trailer:     cfg.Trailer,
		OmitTrailer: cfg.OmitTrailer,
		Language:    tag,
		Logger:      logger,
	})
	if err != nil {
		fatal(err)
	}

	if err := writeImage(*out, img); err != nil {
		fatal(err)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" {
		return errors.New("unsupported output extension: " + ext)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	switch ext {
	case ".png":
		err = png.Encode(file, img)
	default:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: 92})
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

func fatal(err error) {
	_, _ = os.Stderr.WriteString("longpost: " + err.Error() + "\n")
	os.Exit(1)
}
