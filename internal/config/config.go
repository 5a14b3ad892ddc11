// Package config reads the TOML settings file of the longpost command.
package config

import (
	"bytes"
	"fmt"
	"image/color"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/arran4/longpost"
)

// Config mirrors the command's flags. Flags given on the command line win
// over the file.
type Config struct {
	Width       int     `toml:"width"`
	Padding     int     `toml:"padding"`
	FontSize    float64 `toml:"font_size"`
	Theme       string  `toml:"theme"`
	Font        string  `toml:"font"`
	FontBold    string  `toml:"font_bold"`
	Language    string  `toml:"language"`
	Trailer     string  `toml:"trailer"`
	OmitTrailer bool    `toml:"omit_trailer"`
	Colors      Colors  `toml:"colors"`
}

// Colors override individual theme colours, as "#RRGGBB".
type Colors struct {
	Background string `toml:"background"`
	Text       string `toml:"text"`
	Muted      string `toml:"muted"`
	Decoration string `toml:"decoration"`
}

// Default returns the settings used when there is no file.
func Default() Config {
	return Config{
		Width:    720,
		Padding:  40,
		FontSize: 20,
		Theme:    "light",
		Language: "en",
	}
}

// Load reads path on top of Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data on top of Default. Unknown keys are an error.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolveTheme returns the named theme with the colour overrides applied.
func (c Config) ResolveTheme() (longpost.Theme, error) {
	th, err := longpost.ThemeByName(c.Theme)
	if err != nil {
		return th, err
	}
	for _, o := range []struct {
		hex string
		dst *color.Color
	}{
		{c.Colors.Background, &th.BG},
		{c.Colors.Text, &th.FG},
		{c.Colors.Muted, &th.Muted},
		{c.Colors.Decoration, &th.Decoration},
	} {
		if o.hex == "" {
			continue
		}
		col, err := longpost.ParseHexColor(o.hex)
		if err != nil {
			return th, err
		}
		*o.dst = col
	}
	return th, nil
}
