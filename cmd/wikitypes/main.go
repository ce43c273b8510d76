// Command wikitypes turns GMod wiki pages into a TypeScript-style
// declaration file.
//
// # Usage
//
//	wikitypes parse [flags] <pages-dir>
//	wikitypes generate [flags] <parsed-dir>
//	wikitypes schema
//	wikitypes version
//
// The parse command reads raw page files ({"title", "id", "raw"} JSON
// objects) and writes one parsed document per page. The generate command
// validates parsed documents against the document schema, builds their
// declarations, and writes the merged declaration file. Failed pages are
// listed in the _meta directory of the output and never stop the run.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/wikitypes/log"
	"go.jacobcolvin.com/wikitypes/pipeline"
	"go.jacobcolvin.com/wikitypes/profile"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newApp(os.Stdout, os.Stderr).execute(ctx, os.Args[1:])

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// app holds the global configuration shared by every subcommand.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	logCfg  *log.Config
	profCfg *profile.Config
	pipeCfg *pipeline.Config
	prof    *profile.Profiler
	log     *slog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:  stdout,
		stderr:  stderr,
		logCfg:  log.NewConfig(),
		profCfg: profile.NewConfig(),
		pipeCfg: pipeline.NewConfig(),
	}
}

func (a *app) execute(ctx context.Context, args []string) error {
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)

	err := cmd.ExecuteContext(ctx)

	if a.prof != nil {
		err = errors.CombineErrors(err, a.prof.Stop())
	}

	return err
}

func (a *app) rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wikitypes",
		Short: "Generate declarations from GMod wiki pages",
		Long: `wikitypes parses GMod wiki markup into structured documents and merges
them into a single TypeScript-style declaration file.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	a.logCfg.RegisterFlags(flags)
	a.profCfg.RegisterFlags(flags)
	a.pipeCfg.RegisterFlags(flags)

	rootCmd.AddCommand(
		a.parseCommand(),
		a.generateCommand(),
		a.schemaCommand(),
		a.versionCommand(),
	)

	for _, register := range []func(*cobra.Command) error{
		a.logCfg.RegisterCompletions,
		a.profCfg.RegisterCompletions,
		a.pipeCfg.RegisterCompletions,
	} {
		err := register(rootCmd)
		if err != nil {
			fmt.Fprintf(a.stderr, "register completions: %v\n", err)
		}
	}

	return rootCmd
}

// setup builds the logger and starts profiling once flags are parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger, err := a.logCfg.NewLogger(cmd.ErrOrStderr(), cmd.Name())
	if err != nil {
		return err
	}

	a.log = logger
	slog.SetDefault(logger)

	prof := a.profCfg.NewProfiler()
	if !prof.Enabled() {
		return nil
	}

	err = prof.Start()
	if err != nil {
		return fmt.Errorf("starting profiler: %w", err)
	}

	a.prof = prof

	return nil
}

func (a *app) runner() (*pipeline.Runner, error) {
	r, err := a.pipeCfg.NewRunner(a.log)
	if err != nil {
		return nil, fmt.Errorf("configuring pipeline: %w", err)
	}

	return r, nil
}

// summarize prints the page counts of a run to stderr.
func (a *app) summarize(cmd *cobra.Command, res *pipeline.Result) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%d pages: %d succeeded, %d failed\n",
		res.Pages, res.Succeeded(), res.Failed())
}
