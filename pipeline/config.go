package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/wikitypes/generator"
	"go.jacobcolvin.com/wikitypes/overrides"
	"go.jacobcolvin.com/wikitypes/parser"
)

// ErrInvalidConfig is returned by [Config.NewRunner] for unusable flag
// values.
var ErrInvalidConfig = errors.New("invalid pipeline config")

// Flags holds CLI flag names for pipeline configuration, allowing callers to
// customize flag names while keeping sensible defaults.
type Flags struct {
	Concurrency string
	Overrides   string
	Strict      string
}

// Config holds CLI flag values for pipeline configuration.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewRunner] to create a [Runner].
type Config struct {
	Flags       Flags
	Overrides   string
	Concurrency int
	Strict      bool
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		Concurrency: "concurrency",
		Overrides:   "overrides",
		Strict:      "strict",
	}

	return &Config{Flags: f}
}

// RegisterFlags adds pipeline flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.IntVarP(&c.Concurrency, c.Flags.Concurrency, "j", 0,
		"maximum pages processed at once (0 for GOMAXPROCS)")
	flags.StringVar(&c.Overrides, c.Flags.Overrides, "",
		"override table path (empty for the embedded table)")
	flags.BoolVar(&c.Strict, c.Flags.Strict, false,
		"fail pages with unterminated directive blocks")
}

// RegisterCompletions registers shell completions for pipeline flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	err := cmd.RegisterFlagCompletionFunc(c.Flags.Concurrency, noFileComp)
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Concurrency, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Overrides,
		cobra.FixedCompletions([]string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Overrides, err)
	}

	return nil
}

// Table loads the configured override table, or returns [overrides.Default]
// when no path is set.
func (c *Config) Table() (*overrides.Table, error) {
	if c.Overrides == "" {
		return overrides.Default(), nil
	}

	t, err := overrides.Load(c.Overrides)
	if err != nil {
		return nil, fmt.Errorf("loading overrides: %w", err)
	}

	return t, nil
}

// NewRunner creates a [Runner] using this [Config]. The parser and the
// generator share the configured override table and log.
func (c *Config) NewRunner(log *slog.Logger) (*Runner, error) {
	if c.Concurrency < 0 {
		return nil, fmt.Errorf("%w: %s must not be negative, got %d",
			ErrInvalidConfig, c.Flags.Concurrency, c.Concurrency)
	}

	table, err := c.Table()
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}

	return New(
		WithParser(parser.New(
			parser.WithOverrides(table),
			parser.WithStrict(c.Strict),
			parser.WithLogger(log),
		)),
		WithGenerator(generator.New(
			generator.WithOverrides(table),
			generator.WithLogger(log),
		)),
		WithConcurrency(c.Concurrency),
		WithLogger(log),
	), nil
}
