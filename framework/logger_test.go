package framework

import (
	"bytes"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(output CapturedOutput) []string {
	ret := make([]string, 0, len(output))
	for _, m := range output {
		ret = append(ret, m.Message)
	}
	return ret
}

func TestCapturingLoggerRecordsMessages(t *testing.T) {
	var l CapturingLogger
	l.Println("a", "b")
	l.Printf("c=%d", 3)
	assert.Equal(t, []string{"a b", "c=3"}, messages(l.Output()))
}

func TestCapturingLoggerWriteSplitsLines(t *testing.T) {
	var l CapturingLogger
	n, err := l.Write([]byte("first\r\nsecond\n"))
	require.NoError(t, err)
	assert.Equal(t, 15, n)
	assert.Equal(t, []string{"first", "second"}, messages(l.Output()))
}

func TestCapturingLoggerChildReceivesParentOutput(t *testing.T) {
	var parent, child CapturingLogger
	parent.Println("before")
	parent.AddChildLogger(&child)
	parent.Println("during")
	parent.RemoveChildLogger(&child)
	parent.Println("after")

	assert.Equal(t, []string{"before", "during"}, messages(child.Output()))
	assert.Equal(t, []string{"before", "after"}, messages(parent.Output()))
}

func TestCapturedOutputToString(t *testing.T) {
	var l CapturingLogger
	l.Println("x")
	l.Println("y")
	s := l.Output().ToString("DEBUG ")
	assert.Regexp(t, `^DEBUG \[.*\] x\nDEBUG \[.*\] y$`, s)
	assert.Equal(t, "", CapturedOutput(nil).ToString(""))
}

func TestLoggerWithPrefix(t *testing.T) {
	var l CapturingLogger
	p := LoggerWithPrefix(&l, "[server] ")
	p.Printf("started on %d", 5000)
	assert.Equal(t, []string{"[server] started on 5000"}, messages(l.Output()))
}

func TestLoggerFromHCLog(t *testing.T) {
	var buf bytes.Buffer
	hl := NewProcessLogger("test", "debug", &buf)
	LoggerFromHCLog(hl, hclog.Info).Printf("hello %s", "there")
	assert.Contains(t, buf.String(), "[INFO]")
	assert.Contains(t, buf.String(), "test: hello there")

	assert.Equal(t, NullLogger(), LoggerFromHCLog(nil, hclog.Info))
}
