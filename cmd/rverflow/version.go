package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/rverflow/rverflow/internal/rlog"
)

const versionShortHelp = `Display version`
const versionLongHelp = `
Display the version of this application.
`

const appVersion = "0.1.0"

type versionCommand struct{}

func (cmd *versionCommand) Name() string      { return "version" }
func (cmd *versionCommand) Args() string      { return "" }
func (cmd *versionCommand) ShortHelp() string { return versionShortHelp }
func (cmd *versionCommand) LongHelp() string  { return versionLongHelp }
func (cmd *versionCommand) Register(fs *flag.FlagSet) {}

func (cmd *versionCommand) Run(ctx context.Context, loggers *rlog.Loggers, args []string) error {
	fmt.Fprintln(loggers.Out.Writer(), appVersion)
	return nil
}
