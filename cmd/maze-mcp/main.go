package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ironsheep/maze-zone-mcp/internal/analysis"
	"github.com/ironsheep/maze-zone-mcp/internal/config"
	"github.com/ironsheep/maze-zone-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const appName = "maze-zone-mcp"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds a logger writing to stderr (stdout is for MCP protocol).
func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return l.Sugar(), nil
}

func newApp() *cli.App {
	var logger *zap.SugaredLogger

	return &cli.App{
		Name:            appName,
		Usage:           "MCP server and batch tool for maze zone occupancy",
		Version:         Version,
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "log `LEVEL` (debug, info, warn, error)",
				EnvVars: []string{"MAZE_MCP_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			l, err := newLogger(c.String("log-level"))
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return serve(c, logger)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the MCP server over stdin/stdout",
				Action: func(c *cli.Context) error {
					return serve(c, logger)
				},
			},
			{
				Name:      "analyze",
				Usage:     "compute zone occupancy for a directory of frames",
				UsageText: appName + " analyze (--config FILE | --preset NAME --frames DIR) [--fps N] [--trace] [--overlay-dir DIR]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "load experiment configuration from `FILE`",
					},
					&cli.StringFlag{
						Name:  "preset",
						Usage: fmt.Sprintf("use a built-in experiment `NAME` %v", config.PresetNames()),
					},
					&cli.StringFlag{
						Name:  "frames",
						Usage: "frame directory `DIR`, overrides the configuration",
					},
					&cli.StringFlag{
						Name:  "pattern",
						Usage: "frame file glob, overrides the configuration",
					},
					&cli.Float64Flag{
						Name:  "fps",
						Usage: "recording frame rate, overrides the configuration",
					},
					&cli.BoolFlag{
						Name:  "trace",
						Usage: "include the per-frame position trace in the report",
					},
					&cli.StringFlag{
						Name:  "overlay-dir",
						Usage: "write one debug overlay PNG per frame to `DIR`",
					},
				},
				Action: func(c *cli.Context) error {
					return analyze(c, logger)
				},
			},
			{
				Name:  "version",
				Usage: "print version information",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "%s %s\n", appName, Version)
					fmt.Fprintf(c.App.Writer, "  Build time: %s\n", BuildTime)
					fmt.Fprintf(c.App.Writer, "  Git commit: %s\n", GitCommit)
					return nil
				},
			},
		},
	}
}

func serve(c *cli.Context, logger *zap.SugaredLogger) error {
	logger.Infow("starting MCP server", "version", Version, "built", BuildTime, "commit", GitCommit)

	srv := server.New(logger)
	if err := srv.Run(c.Context); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// experimentConfig builds the configuration selected by the analyze flags.
func experimentConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case c.IsSet("config") && c.IsSet("preset"):
		return nil, errors.New("use either --config or --preset, not both")
	case c.IsSet("config"):
		cfg, err = config.Load(c.String("config"))
	case c.IsSet("preset"):
		cfg, err = config.Preset(c.String("preset"))
	default:
		return nil, errors.New("--config or --preset is required")
	}
	if err != nil {
		return nil, err
	}

	if c.IsSet("frames") {
		cfg.Frames.Dir = c.String("frames")
	}
	if c.IsSet("pattern") {
		cfg.Frames.Pattern = c.String("pattern")
	}
	if c.IsSet("fps") {
		cfg.Frames.FPS = c.Float64("fps")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Frames.Dir == "" {
		return nil, errors.New("no frame directory: set frames.dir or pass --frames")
	}
	return cfg, nil
}

func analyze(c *cli.Context, logger *zap.SugaredLogger) error {
	cfg, err := experimentConfig(c)
	if err != nil {
		return err
	}

	report, runErr := analysis.RunConfig(c.Context, cfg, analysis.Options{
		Trace:      c.Bool("trace"),
		OverlayDir: c.String("overlay-dir"),
		Logger:     logger,
	})
	if report != nil {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	return runErr
}
