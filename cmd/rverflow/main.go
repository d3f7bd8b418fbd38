// Command rverflow resolves a minimal compatible R interpreter version and
// package set for a project's declared CRAN, Bioconductor, and GitHub
// targets.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rverflow/rverflow/internal/rlog"
)

type command interface {
	Name() string
	Args() string
	ShortHelp() string
	LongHelp() string
	Register(*flag.FlagSet)
	Run(ctx context.Context, loggers *rlog.Loggers, args []string) error
}

func main() {
	c := &Config{
		Args:   os.Args,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	os.Exit(c.Run())
}

// Config specifies a full configuration for one rverflow execution.
type Config struct {
	Args           []string
	Stdout, Stderr io.Writer
}

// Run executes the configuration and returns a process exit code.
func (c *Config) Run() (exitCode int) {
	commands := []command{
		&solveCommand{},
		&updateCacheCommand{},
		&versionCommand{},
	}

	errLogger := log.New(c.Stderr, "", 0)

	usage := func() {
		errLogger.Println("rverflow resolves R package and interpreter versions for a project")
		errLogger.Println()
		errLogger.Println("Usage: rverflow <command>")
		errLogger.Println()
		errLogger.Println("Commands:")
		errLogger.Println()
		w := tabwriter.NewWriter(c.Stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", cmd.Name(), cmd.ShortHelp())
		}
		w.Flush()
		errLogger.Println()
		errLogger.Println(`Use "rverflow <command> -h" for more information about a command.`)
	}

	if len(c.Args) < 2 {
		usage()
		return 1
	}
	cmdName := c.Args[1]
	if strings.Contains(strings.ToLower(cmdName), "help") || cmdName == "-h" {
		usage()
		return 0
	}

	for _, cmd := range commands {
		if cmd.Name() != cmdName {
			continue
		}
		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(c.Stderr)
		verbose := fs.Bool("v", false, "enable verbose logging")
		cmd.Register(fs)
		resetUsage(errLogger, fs, cmdName, cmd.Args(), cmd.LongHelp())

		if err := fs.Parse(c.Args[2:]); err != nil {
			return 1
		}

		loggers := rlog.New(c.Stdout, c.Stderr, *verbose)
		if err := cmd.Run(context.Background(), loggers, fs.Args()); err != nil {
			fmt.Fprintf(c.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	errLogger.Printf("rverflow: %s: no such command\n", cmdName)
	usage()
	return 1
}

func resetUsage(logger *log.Logger, fs *flag.FlagSet, name, args, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		logger.Printf("Usage: rverflow %s %s\n", name, args)
		logger.Println()
		logger.Println(strings.TrimSpace(longHelp))
		logger.Println()
		if hasFlags {
			logger.Println("Flags:")
			logger.Println()
			logger.Println(flagBlock.String())
		}
	}
}
