package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/phanxgames/forest"
	"github.com/spf13/cobra"
)

// params are the three positional generation parameters.
type params struct {
	NumTrees     uint16
	Completeness uint8
	FractalLevel uint8
}

// parseParams parses num_trees, completeness_factor and fractal_level as
// unsigned 16-, 8- and 8-bit integers. Any failure is a ConfigurationError.
func parseParams(args []string) (params, error) {
	if len(args) != 3 {
		return params{}, &forest.ConfigurationError{
			Field: "arguments",
			Err:   fmt.Errorf("want num_trees completeness_factor fractal_level, got %d values", len(args)),
		}
	}
	numTrees, err := parseUint("num_trees", args[0], 16)
	if err != nil {
		return params{}, err
	}
	completeness, err := parseUint("completeness_factor", args[1], 8)
	if err != nil {
		return params{}, err
	}
	level, err := parseUint("fractal_level", args[2], 8)
	if err != nil {
		return params{}, err
	}
	return params{
		NumTrees:     uint16(numTrees),
		Completeness: uint8(completeness),
		FractalLevel: uint8(level),
	}, nil
}

func parseUint(field, value string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, bits)
	if err != nil {
		return 0, &forest.ConfigurationError{Field: field, Value: value, Err: err}
	}
	return v, nil
}

// options holds the command's flags.
type options struct {
	configPath    string
	seed          uint64
	seedSet       bool
	workers       int
	debug         bool
	hud           bool
	grow          time.Duration
	scriptPath    string
	screenshotDir string
}

// app is a fully configured viewer, ready for forest.Run.
type app struct {
	scene *forest.Scene
	run   forest.RunConfig
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "forest <num_trees> <completeness_factor> <fractal_level>",
		Short: "Generate a fractal forest and show it as a wireframe",
		Long: `Generates num_trees fractal trees and displays the first one.

  num_trees            forest size, 0-65535
  completeness_factor  chance out of 256 that a direction branches, 0-255
  fractal_level        recursion depth, 0-16

Keys: Escape quits, R regenerates, Left/Right switch trees.

Examples:
  forest 1 192 8                   # one dense tree, 8 levels deep
  forest 4 128 6 --seed 7          # reproducible forest of four
  forest 1 200 7 --grow 3s --hud   # animate growth, show stats`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parseParams(args)
			if err != nil {
				return err
			}
			opts.seedSet = cmd.Flags().Changed("seed")
			a, err := opts.setup(p, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return forest.Run(a.scene, a.run)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	f.Uint64Var(&opts.seed, "seed", 0, "seed for reproducible generation")
	f.IntVarP(&opts.workers, "workers", "w", 1, "build trees on this many goroutines")
	f.BoolVar(&opts.debug, "debug", false, "log generation and per-frame timings")
	f.BoolVar(&opts.hud, "hud", false, "show FPS and tree statistics")
	f.DurationVar(&opts.grow, "grow", 0, "animate each tree growing in over this duration")
	f.StringVar(&opts.scriptPath, "script", "", "JSON script of viewer steps")
	f.StringVar(&opts.screenshotDir, "screenshot-dir", "", "directory for screenshots")
	return cmd
}

// newLogger builds the text logger used by the command.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setup loads configuration, builds the generator and scene, and attaches
// the script runner. Nothing is generated if any configuration step fails.
func (o *options) setup(p params, logOut io.Writer) (*app, error) {
	logger := newLogger(logOut, o.debug)

	if o.workers < 0 {
		return nil, &forest.ConfigurationError{
			Field: "workers",
			Value: strconv.Itoa(o.workers),
			Err:   fmt.Errorf("must not be negative"),
		}
	}

	cfg := forest.DefaultConfig()
	if o.configPath != "" {
		var err error
		cfg, err = forest.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	if o.screenshotDir != "" {
		cfg.Render.ScreenshotDir = o.screenshotDir
	}
	grow := cfg.GrowDuration()
	if o.grow > 0 {
		grow = o.grow
	}

	var runner *forest.ScriptRunner
	if o.scriptPath != "" {
		data, err := os.ReadFile(o.scriptPath)
		if err != nil {
			return nil, fmt.Errorf("read script: %w", err)
		}
		runner, err = forest.LoadScript(data)
		if err != nil {
			return nil, &forest.ConfigurationError{Field: "script", Value: o.scriptPath, Err: err}
		}
	}

	genOpts := []forest.Option{
		forest.WithScale(cfg.ScaleVec()),
		forest.WithPalette(cfg.PaletteColors()),
		forest.WithLogger(logger),
	}
	if o.seedSet {
		genOpts = append(genOpts, forest.WithSeed(o.seed))
	}
	gen, err := forest.NewTreeGenerator(p.FractalLevel, p.Completeness, p.NumTrees, genOpts...)
	if err != nil {
		return nil, err
	}

	bg := cfg.Clear()
	scene, err := forest.NewScene(forest.SceneConfig{
		Generator:     gen,
		Workers:       o.workers,
		Clear:         &bg,
		LineWidth:     cfg.Render.LineWidth,
		Grow:          grow,
		HUD:           cfg.Render.HUD || o.hud,
		ScreenshotDir: cfg.Render.ScreenshotDir,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}
	scene.SetDebugMode(o.debug)
	if runner != nil {
		scene.SetScriptRunner(runner)
	}

	verts, segs := scene.Forest().Stats()
	logger.Info("forest generated",
		"trees", scene.Forest().Len(),
		"fractal_level", p.FractalLevel,
		"completeness_factor", p.Completeness,
		"vertices", verts,
		"segments", segs,
	)

	return &app{
		scene: scene,
		run: forest.RunConfig{
			Title:  cfg.Window.Title,
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		},
	}, nil
}
