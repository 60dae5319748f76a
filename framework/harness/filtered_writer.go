package harness

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"sync"
)

// filteredWriter drops any write that matches one of the exclude patterns. The server writes
// one line at a time, so this works as a line filter.
type filteredWriter struct {
	writer       io.Writer
	excludeRegex []*regexp.Regexp
}

func newFilteredWriter(writer io.Writer, excludeRegex []*regexp.Regexp) *filteredWriter {
	return &filteredWriter{writer, excludeRegex}
}

func (f *filteredWriter) Write(data []byte) (int, error) {
	for _, r := range f.excludeRegex {
		if r.Match(data) {
			return len(data), nil
		}
	}
	return f.writer.Write(data)
}

// blankLineRegex matches output that contains nothing but whitespace.
var blankLineRegex = regexp.MustCompile(`^\s*$`) //nolint:gochecknoglobals

// outputTail keeps the last max bytes of the server's output, so that the reason for an early
// exit can be included in the error.
type outputTail struct {
	lock sync.Mutex
	data []byte
	max  int
}

func newOutputTail(max int) *outputTail {
	return &outputTail{max: max, data: make([]byte, 0, max)}
}

func (t *outputTail) Write(p []byte) (int, error) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.data = append(t.data, p...)
	if len(t.data) > t.max {
		t.data = t.data[len(t.data)-t.max:]
	}
	return len(p), nil
}

func (t *outputTail) String() string {
	t.lock.Lock()
	defer t.lock.Unlock()
	return string(t.data)
}

// LastLine returns the last non-blank line, truncated from the left to maxLineLength.
func (t *outputTail) LastLine() string {
	lines := bytes.Split(bytes.TrimSpace([]byte(t.String())), []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(string(lines[i]))
		if line == "" {
			continue
		}
		if len(line) > maxLineLength {
			return line[len(line)-maxLineLength:]
		}
		return line
	}
	return ""
}

const maxLineLength = 220
