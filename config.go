package forest

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration for the viewer and generator.
// Generation parameters themselves come from the command line.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Scale   ScaleConfig   `yaml:"scale"`
	Palette PaletteConfig `yaml:"palette"`
}

// WindowConfig sets the viewer window title and initial size in pixels.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// RenderConfig controls how a tree is drawn: segment width in pixels,
// background color, growth reveal duration (a time.ParseDuration string),
// the stats overlay and where screenshots are written.
type RenderConfig struct {
	LineWidth     float64   `yaml:"line_width"`
	ClearColor    []float32 `yaml:"clear_color"`
	Grow          string    `yaml:"grow"`
	HUD           bool      `yaml:"hud"`
	ScreenshotDir string    `yaml:"screenshot_dir"`
}

// ScaleConfig converts fractal units to NDC. Both axes must be equal so
// every segment of a level has the same length.
type ScaleConfig struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// PaletteConfig holds the RGB leaf and branch colors, components in [0, 1].
type PaletteConfig struct {
	Leaf   []float32 `yaml:"leaf"`
	Branch []float32 `yaml:"branch"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "Forest",
			Width:  800,
			Height: 600,
		},
		Render: RenderConfig{
			LineWidth:     1,
			ClearColor:    colorSlice(ColorClear),
			ScreenshotDir: defaultScreenshotDir,
		},
		Scale: ScaleConfig{X: DefaultScale.X, Y: DefaultScale.Y},
		Palette: PaletteConfig{
			Leaf:   colorSlice(ColorLeaf),
			Branch: colorSlice(ColorBranch),
		},
	}
}

func colorSlice(c Color) []float32 {
	return []float32{c.R, c.G, c.B}
}

// LoadConfig reads a YAML file over the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigurationError{Field: "config", Value: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills zero values with defaults and rejects out-of-range fields.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.Window.Title == "" {
		c.Window.Title = def.Window.Title
	}
	if c.Window.Width == 0 {
		c.Window.Width = def.Window.Width
	}
	if c.Window.Height == 0 {
		c.Window.Height = def.Window.Height
	}
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return &ConfigurationError{
			Field: "window",
			Value: fmt.Sprintf("%dx%d", c.Window.Width, c.Window.Height),
			Err:   fmt.Errorf("dimensions must be positive"),
		}
	}
	if c.Render.LineWidth == 0 {
		c.Render.LineWidth = def.Render.LineWidth
	}
	if c.Render.LineWidth < 0 {
		return &ConfigurationError{
			Field: "render.line_width",
			Value: strconv.FormatFloat(c.Render.LineWidth, 'g', -1, 64),
			Err:   fmt.Errorf("must be positive"),
		}
	}
	if c.Render.ScreenshotDir == "" {
		c.Render.ScreenshotDir = def.Render.ScreenshotDir
	}
	if c.Render.Grow != "" {
		if _, err := time.ParseDuration(c.Render.Grow); err != nil {
			return &ConfigurationError{Field: "render.grow", Value: c.Render.Grow, Err: err}
		}
	}
	if c.Scale.X <= 0 || c.Scale.Y <= 0 {
		return &ConfigurationError{
			Field: "scale",
			Value: fmt.Sprintf("%g,%g", c.Scale.X, c.Scale.Y),
			Err:   fmt.Errorf("both axes must be positive"),
		}
	}
	if c.Scale.X != c.Scale.Y {
		return &ConfigurationError{
			Field: "scale",
			Value: fmt.Sprintf("%g,%g", c.Scale.X, c.Scale.Y),
			Err:   fmt.Errorf("x and y must be equal"),
		}
	}
	for _, f := range []struct {
		name string
		rgb  []float32
	}{
		{"render.clear_color", c.Render.ClearColor},
		{"palette.leaf", c.Palette.Leaf},
		{"palette.branch", c.Palette.Branch},
	} {
		if _, err := parseColor(f.rgb); err != nil {
			return &ConfigurationError{Field: f.name, Value: fmt.Sprint(f.rgb), Err: err}
		}
	}
	return nil
}

func parseColor(rgb []float32) (Color, error) {
	if len(rgb) != 3 {
		return Color{}, fmt.Errorf("want 3 components, got %d", len(rgb))
	}
	for _, v := range rgb {
		if v < 0 || v > 1 {
			return Color{}, fmt.Errorf("component %g outside [0, 1]", v)
		}
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

// ScaleVec returns the configured NDC scale.
func (c *Config) ScaleVec() Vec2 {
	return Vec2{X: c.Scale.X, Y: c.Scale.Y}
}

// PaletteColors returns the configured palette. Call after Validate.
func (c *Config) PaletteColors() Palette {
	leaf, _ := parseColor(c.Palette.Leaf)
	branch, _ := parseColor(c.Palette.Branch)
	return Palette{Leaf: leaf, Branch: branch}
}

// Clear returns the configured background color. Call after Validate.
func (c *Config) Clear() Color {
	bg, _ := parseColor(c.Render.ClearColor)
	return bg
}

// GrowDuration returns the reveal duration, zero when disabled.
func (c *Config) GrowDuration() time.Duration {
	d, _ := time.ParseDuration(c.Render.Grow)
	return d
}
