package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/leoll2/Ohmulator/internal/consts"
	"github.com/leoll2/Ohmulator/pkg/analysis"
	"github.com/leoll2/Ohmulator/pkg/matrix"
)

// Config is the run configuration read from a TOML file.
type Config struct {
	Solver   string   `toml:"solver"`
	Digits   int      `toml:"digits"`
	Verbose  bool     `toml:"verbose"`
	Report   string   `toml:"report"`
	Analysis Analysis `toml:"analysis"`
}

// Analysis overrides the regimes derived from the circuit. A nil field keeps
// the derived value.
type Analysis struct {
	DC    *bool   `toml:"dc"`
	AC    *bool   `toml:"ac"`
	Omega float64 `toml:"omega"`
}

func Default() Config {
	return Config{
		Solver: "dense",
		Digits: consts.DIGITS,
	}
}

// Load overlays the file at path on the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := matrix.ParseBackend(c.Solver); err != nil {
		return err
	}
	if c.Digits <= 0 {
		return fmt.Errorf("digits must be positive, got %d", c.Digits)
	}
	if c.Analysis.Omega < 0 {
		return fmt.Errorf("omega must not be negative, got %g", c.Analysis.Omega)
	}
	return nil
}

// Apply merges the configuration into options derived from a circuit.
func (c Config) Apply(opts analysis.Options) analysis.Options {
	opts.Solver = c.Solver
	opts.Digits = c.Digits
	if c.Analysis.DC != nil {
		opts.DC = *c.Analysis.DC
	}
	if c.Analysis.AC != nil {
		opts.AC = *c.Analysis.AC
	}
	if c.Analysis.Omega > 0 {
		opts.Omega = c.Analysis.Omega
	}
	return opts
}
