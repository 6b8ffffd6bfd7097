package templating

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/byte4ever/fml/syntax"
)

// Config holds the settings of one fml run. It is read
// from a TOML file; command-line flags override it.
type Config struct {
	// Template is the FML file to render. Empty reads
	// stdin.
	Template string `toml:"template"`
	// Output is the file the result is written to. Empty
	// writes stdout.
	Output string `toml:"output"`
	// Executable marks the output file as executable.
	Executable bool `toml:"executable"`
	// BaseDir is the directory Template is resolved
	// against.
	BaseDir string `toml:"base_dir"`
	// TagStyle is "xml" or "bbcode".
	TagStyle string `toml:"tag_style"`
	// Parallelism bounds concurrent sibling includes.
	Parallelism int `toml:"parallelism"`
	// ContextFiles are JSON, YAML or TOML files merged, in
	// order, into the variable context.
	ContextFiles []string `toml:"context_files"`
	// StampInfoFiles are "KEY VALUE" files whose keys can
	// be referenced as {KEY} in Variables.
	StampInfoFiles []string `toml:"stamp_info_files"`
	// Variables are NAME=VALUE assignments applied after
	// the context files.
	Variables []string `toml:"variables"`
	// Watch re-renders whenever a loaded file changes.
	Watch bool `toml:"watch"`
}

// DefaultConfig returns the settings used when no
// configuration file is given.
func DefaultConfig() Config {
	return Config{
		TagStyle:    syntax.DefaultStyle,
		Parallelism: 1,
	}
}

// LoadConfig reads a TOML configuration file on top of
// DefaultConfig. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	const errCtx = "loading config"

	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for idx, key := range undecoded {
			keys[idx] = key.String()
		}

		return Config{}, fmt.Errorf(
			"%s: %s: unknown keys %s",
			errCtx, path, strings.Join(keys, ", "),
		)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %s: %w", errCtx, path, err)
	}

	return cfg, nil
}

// Validate checks the tag style and parallelism.
func (cfg Config) Validate() error {
	if _, err := syntax.LookupStyle(cfg.TagStyle); err != nil {
		return err
	}

	if cfg.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", cfg.Parallelism)
	}

	return nil
}

// Engine returns an engine configured from cfg.
func (cfg Config) Engine() *Engine {
	return &Engine{
		BaseDir:     cfg.BaseDir,
		TagStyle:    cfg.TagStyle,
		Parallelism: cfg.Parallelism,
	}
}
