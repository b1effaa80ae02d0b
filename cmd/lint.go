// Package cmd wires the lint pipeline to a urfave/cli/v2 command surface,
// with concurrent per-file analysis via golang.org/x/sync/errgroup since
// each file's Lint call owns its own CFG and lattices and shares no
// mutable state with the others.
package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/riscvlint/rva/config"
	"github.com/riscvlint/rva/diagnostic"
	"github.com/riscvlint/rva/lint"
	"github.com/riscvlint/rva/render"
)

var (
	FormatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "output format: text, json",
		Value: "text",
	}
	MinSeverityFlag = &cli.StringFlag{
		Name:  "min-severity",
		Usage: "lowest severity to report: error, warning, info, hint",
	}
	ConfigFlag = &cli.PathFlag{
		Name:  "config",
		Usage: "path to a lint config YAML file",
	}
	OutputFlag = &cli.PathFlag{
		Name:  "output",
		Usage: "output file path for the report; default stdout",
	}
)

// CreateLintCommand builds the `lint` command around action, so tests can
// substitute a different action without re-declaring the flag set.
func CreateLintCommand(action cli.ActionFunc) *cli.Command {
	return &cli.Command{
		Name:      "lint",
		Usage:     "check RV32I assembly source for register/calling-convention violations",
		ArgsUsage: "<file>...",
		Action:    action,
		Flags: []cli.Flag{
			FormatFlag,
			MinSeverityFlag,
			ConfigFlag,
			OutputFlag,
		},
	}
}

// LintCommand is the production `rva lint` command.
var LintCommand = CreateLintCommand(RunLint)

// exitCode translates the lint result into a process exit code: 0 clean,
// 1 any error-severity diagnostic, 2 internal failure.
type exitCode struct {
	code int
}

func (e *exitCode) Error() string { return "" }
func (e *exitCode) ExitCode() int { return e.code }

func RunLint(ctx *cli.Context) error {
	paths := ctx.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("lint: at least one file is required", 2)
	}

	conf := config.Default()
	if path := ctx.Path(ConfigFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("lint: %v", err), 2)
		}
		conf = loaded
	}
	if name := ctx.String(MinSeverityFlag.Name); name != "" {
		sev, ok := diagnostic.ParseSeverity(name)
		if !ok {
			return cli.Exit(fmt.Sprintf("lint: unrecognized --min-severity %q", name), 2)
		}
		conf.MinSeverity = sev
	}

	renderer, ok := render.For(ctx.String(FormatFlag.Name))
	if !ok {
		return cli.Exit(fmt.Sprintf("lint: unrecognized --format %q", ctx.String(FormatFlag.Name)), 2)
	}

	results, err := lintAll(ctx.Context, paths, conf)
	if err != nil {
		return cli.Exit(fmt.Sprintf("lint: %v", err), 2)
	}

	var all []*diagnostic.Diagnostic
	for _, r := range results {
		all = append(all, r.Diagnostics...)
	}
	all = diagnostic.Sink(all)

	output, closeFn, err := openOutput(ctx.Path(OutputFlag.Name))
	if err != nil {
		return cli.Exit(fmt.Sprintf("lint: %v", err), 2)
	}
	defer closeFn()

	if err := renderer.Render(all, output); err != nil {
		return cli.Exit(fmt.Sprintf("lint: %v", err), 2)
	}

	for _, d := range all {
		if d.Severity == diagnostic.SeverityError {
			return &exitCode{code: 1}
		}
	}
	return nil
}

// lintAll runs lint.Lint over every path concurrently, bounded by
// GOMAXPROCS.
func lintAll(ctx context.Context, paths []string, conf *config.Config) ([]*lint.Result, error) {
	results := make([]*lint.Result, len(paths))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open %s: %w", path, err)
			}
			defer f.Close()

			r, err := lint.Lint(path, f, conf)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
