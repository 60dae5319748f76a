package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// NewProcessLogger creates the hclog logger used for harness-level output that is not tied to a
// single test: startup, server process output, teardown problems.
func NewProcessLogger(name string, level string, output io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		Output:     output,
		TimeFormat: timestampFormat,
	})
}

type hclogAdapter struct {
	logger hclog.Logger
	level  hclog.Level
}

// LoggerFromHCLog adapts an hclog.Logger to the Logger interface. Every message is emitted at
// the given level.
func LoggerFromHCLog(logger hclog.Logger, level hclog.Level) Logger {
	if logger == nil {
		return NullLogger()
	}
	return hclogAdapter{logger: logger, level: level}
}

func (h hclogAdapter) Println(args ...interface{}) {
	h.logger.Log(h.level, strings.TrimRight(fmt.Sprintln(args...), "\r\n"))
}

func (h hclogAdapter) Printf(message string, args ...interface{}) {
	h.logger.Log(h.level, fmt.Sprintf(message, args...))
}
