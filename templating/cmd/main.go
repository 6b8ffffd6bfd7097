// Binary fml renders an FML template with a variable
// context assembled from context files, stamp info files
// and explicit NAME=VALUE variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/byte4ever/fml/loader"
	"github.com/byte4ever/fml/templating"
	"github.com/byte4ever/fml/vars"
)

type arrayFlags []string

func (af *arrayFlags) String() string {
	return ""
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

// options are the raw command-line values before they are
// applied on top of the configuration file.
type options struct {
	config         string
	verbose        bool
	flags          templating.Config
	contextFiles   arrayFlags
	stampInfoFiles arrayFlags
	variables      arrayFlags
}

func parseFlags() options {
	var opts options

	flag.StringVar(
		&opts.config, "config", "",
		"TOML configuration file supplying defaults for every other flag",
	)

	flag.BoolVar(
		&opts.verbose, "verbose", false,
		"Log include resolution at debug level",
	)

	flag.StringVar(
		&opts.flags.Template, "template", "",
		"Input FML file path (stdin if empty)",
	)

	flag.StringVar(
		&opts.flags.Output, "output", "",
		"Output file path (stdout if empty)",
	)

	flag.BoolVar(
		&opts.flags.Executable, "executable", false,
		"Set executable bit on output file",
	)

	flag.StringVar(
		&opts.flags.BaseDir, "base_dir", "",
		"Directory the template path is resolved against",
	)

	flag.StringVar(
		&opts.flags.TagStyle, "tag_style", "",
		"Tag style: xml or bbcode (default xml)",
	)

	flag.IntVar(
		&opts.flags.Parallelism, "parallelism", 0,
		"Number of sibling includes rendered concurrently (default 1)",
	)

	flag.BoolVar(
		&opts.flags.Watch, "watch", false,
		"Render again whenever a loaded file changes",
	)

	flag.Var(
		&opts.contextFiles,
		"context",
		"JSON, YAML or TOML context file (repeatable)",
	)

	flag.Var(
		&opts.stampInfoFiles,
		"stamp_info_file",
		"Stamp info file path (repeatable)",
	)

	flag.Var(
		&opts.variables,
		"variable",
		"Variable in NAME=VALUE format (repeatable)",
	)

	flag.Parse()

	return opts
}

// resolveConfig loads the configuration file, if any, and
// applies the flags that were set explicitly. Repeatable
// flags extend the lists from the file.
func resolveConfig(opts options) (templating.Config, error) {
	cfg := templating.DefaultConfig()

	if opts.config != "" {
		loaded, err := templating.LoadConfig(opts.config)
		if err != nil {
			return templating.Config{}, err
		}

		cfg = loaded
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "template":
			cfg.Template = opts.flags.Template
		case "output":
			cfg.Output = opts.flags.Output
		case "executable":
			cfg.Executable = opts.flags.Executable
		case "base_dir":
			cfg.BaseDir = opts.flags.BaseDir
		case "tag_style":
			cfg.TagStyle = opts.flags.TagStyle
		case "parallelism":
			cfg.Parallelism = opts.flags.Parallelism
		case "watch":
			cfg.Watch = opts.flags.Watch
		}
	})

	cfg.ContextFiles = append(cfg.ContextFiles, opts.contextFiles...)
	cfg.StampInfoFiles = append(cfg.StampInfoFiles, opts.stampInfoFiles...)
	cfg.Variables = append(cfg.Variables, opts.variables...)

	if err := cfg.Validate(); err != nil {
		return templating.Config{}, err
	}

	return cfg, nil
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: level},
	)))
}

// render builds the context and expands the template once.
// A nil ld keeps the engine's default loader.
func render(ctx context.Context, cfg templating.Config, ld loader.Loader) error {
	vctx, err := vars.Build(vars.Sources{
		ContextFiles:   cfg.ContextFiles,
		StampInfoFiles: cfg.StampInfoFiles,
		Variables:      cfg.Variables,
	})
	if err != nil {
		return err
	}

	en := cfg.Engine()
	if ld != nil {
		en.Loader = ld
	}

	return en.Expand(ctx, cfg.Template, cfg.Output, vctx, cfg.Executable)
}

// watch renders, then renders again after every change to
// a loaded template or an input file, until ctx is done.
// Render failures are logged and the watch goes on.
func watch(ctx context.Context, cfg templating.Config) error {
	const errCtx = "watching"

	if cfg.Template == "" {
		return fmt.Errorf("%s: -template is required with -watch", errCtx)
	}

	wa, err := loader.NewWatcher()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	defer wa.Close() //nolint:errcheck // best-effort close

	inputs := append([]string{loader.ResolvePath(cfg.Template, cfg.BaseDir)}, cfg.ContextFiles...)
	inputs = append(inputs, cfg.StampInfoFiles...)
	for _, in := range inputs {
		if err := wa.Add(in); err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	for {
		if err := render(ctx, cfg, wa); err != nil {
			slog.Error("render failed", "template", cfg.Template, "error", err)
		} else {
			slog.Info("rendered", "template", cfg.Template, "output", cfg.Output)
		}

		select {
		case <-ctx.Done():
			return nil
		case name := <-wa.Changed():
			slog.Info("file changed", "path", name)
		case err := <-wa.Errors():
			slog.Warn("watcher error", "error", err)
		}
	}
}

func run() error {
	const errCtx = "fml"

	opts := parseFlags()
	setupLogging(opts.verbose)

	cfg, err := resolveConfig(opts)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if cfg.Watch {
		err = watch(ctx, cfg)
	} else {
		err = render(ctx, cfg, nil)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
