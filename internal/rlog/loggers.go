// Package rlog holds the small logging surface threaded through the CLI
// commands and solver, styled after the teacher's Loggers struct.
package rlog

import (
	"io"
	"log"

	"github.com/sirupsen/logrus"
)

// Loggers holds standard loggers and a verbosity flag, exactly as the
// teacher's cmd/dep/loggers.go does. structured is the logrus handler
// backing the field-carrying events below; it is built once in New rather
// than per call.
type Loggers struct {
	Out, Err   *log.Logger
	Verbose    bool
	structured *logrus.Logger
}

// New builds a Loggers writing to out/err, with structured fields for
// cache hits/misses and backtracking steps routed through logrus when
// verbose is set.
func New(out, err io.Writer, verbose bool) *Loggers {
	structured := logrus.New()
	structured.SetOutput(err)
	structured.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	structured.SetLevel(logrus.DebugLevel)
	return &Loggers{
		Out:        log.New(out, "", 0),
		Err:        log.New(err, "", 0),
		Verbose:    verbose,
		structured: structured,
	}
}

// CacheEvent logs a cache hit or miss when verbose logging is enabled.
func (l *Loggers) CacheEvent(hit bool, source, key string) {
	if !l.Verbose {
		return
	}
	l.structured.WithFields(logrus.Fields{
		"source": source,
		"key":    key,
		"hit":    hit,
	}).Debug("cache lookup")
}

// BacktrackEvent logs one step of the resolver's backtracking search when
// verbose logging is enabled.
func (l *Loggers) BacktrackEvent(pkg, candidate string, accepted bool) {
	if !l.Verbose {
		return
	}
	l.structured.WithFields(logrus.Fields{
		"package":   pkg,
		"candidate": candidate,
		"accepted":  accepted,
	}).Debug("candidate evaluated")
}
