package kernel

import (
	"log"
	"os"
)

// Logger writes newline-delimited log lines. This is the same narrow shape
// as the teacher's hal.Logger: on a Cortex-M target the sink is a UART
// byte stream, not a structured logging framework, so the contract stays
// a single WriteLine method rather than pulling in a logging library that
// has nowhere to route a level or a field on bare metal.
type Logger interface {
	WriteLine(s string)
}

// StdLogger wraps the standard library's log.Logger, matching how the
// teacher's hostLogger wraps os.Stdout for host builds.
type StdLogger struct {
	l *log.Logger
}

// NewStdLogger returns a Logger that writes to os.Stderr with no prefix,
// timestamps included.
func NewStdLogger() *StdLogger {
	return &StdLogger{l: log.New(os.Stderr, "", log.LstdFlags)}
}

func (s *StdLogger) WriteLine(line string) { s.l.Println(line) }

// discardLogger is used when a Kernel is constructed without an explicit
// Logger (e.g. in unit tests that don't care about output).
type discardLogger struct{}

func (discardLogger) WriteLine(string) {}
