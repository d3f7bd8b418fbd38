package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rverflow/rverflow/internal/rconfig"
	"github.com/rverflow/rverflow/internal/rlog"
	"github.com/rverflow/rverflow/internal/rmeta"
	"github.com/rverflow/rverflow/internal/rreport"
	"github.com/rverflow/rverflow/internal/rsolve"
)

const solveShortHelp = `Resolve package versions for a project config`
const solveLongHelp = `
Resolve computes the minimal R interpreter version and package set that
satisfies every target declared in a project configuration file, and
optionally re-resolves under a locked R version to report any downgrades
that lock would force.
`

type solveCommand struct {
	cacheRoot       string
	format          string
	lockR           string
	preferBioc      string
	includeOptional bool
}

func (cmd *solveCommand) Name() string      { return "solve" }
func (cmd *solveCommand) Args() string      { return "<config>" }
func (cmd *solveCommand) ShortHelp() string { return solveShortHelp }
func (cmd *solveCommand) LongHelp() string  { return solveLongHelp }

func (cmd *solveCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.cacheRoot, "cache-root", "cache", "Directory where metadata cache files are stored")
	fs.StringVar(&cmd.format, "format", "text", "Output format: text or json")
	fs.StringVar(&cmd.lockR, "lock-r", "", "Override the R version to lock during resolution")
	fs.StringVar(&cmd.preferBioc, "prefer-bioc", "", "Preferred Bioconductor release to evaluate against")
	fs.BoolVar(&cmd.includeOptional, "include-optional", false, "Include Suggests dependencies where possible")
}

func (cmd *solveCommand) Run(ctx context.Context, loggers *rlog.Loggers, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("solve requires exactly one argument: the path to a project configuration file")
	}
	configPath := args[0]

	cfg, err := rconfig.Load(configPath)
	if err != nil {
		return err
	}

	metadata, err := rmeta.New(cmd.cacheRoot, nil, cmd.includeOptional || cfg.Options.IncludeOptional)
	if err != nil {
		return err
	}
	metadata.SetLoggers(loggers)

	if cmd.preferBioc != "" {
		cfg.Options.PreferBiocRelease = cmd.preferBioc
	}
	contexts, err := rsolve.BuildTargetContexts(ctx, cfg, metadata)
	if err != nil {
		return err
	}

	preferBioc := cmd.preferBioc
	if preferBioc == "" {
		preferBioc = cfg.Options.PreferBiocRelease
	}
	includeOptional := cmd.includeOptional || cfg.Options.IncludeOptional
	lockedR := cmd.lockR
	if lockedR == "" {
		lockedR = cfg.Options.CurrentR
	}

	report := rsolve.BuildReport(ctx, metadata, contexts, includeOptional, preferBioc, lockedR)

	var output string
	if cmd.format == "json" {
		output, err = rreport.GenerateJSON(report)
		if err != nil {
			return err
		}
	} else {
		output = rreport.GenerateText(report)
	}
	fmt.Fprintln(loggers.Out.Writer(), output)
	return nil
}
