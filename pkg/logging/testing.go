package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
)

// syncBuffer lets worker goroutines log into one test buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	b.buf.Reset()
	b.mu.Unlock()
}

// TestLogger records JSON log entries written during a test.
type TestLogger struct {
	Logger *zerolog.Logger
	out    *syncBuffer
}

// NewTestLogger returns a trace-level TestLogger. The global level is
// lowered to trace until the test ends.
func NewTestLogger(t testing.TB) *TestLogger {
	t.Helper()
	level := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(level) })

	out := &syncBuffer{}
	l := zerolog.New(out).Level(zerolog.TraceLevel).With().Timestamp().Logger()
	return &TestLogger{Logger: &l, out: out}
}

// Output returns everything logged so far.
func (tl *TestLogger) Output() string { return tl.out.String() }

// Lines splits Output into entries.
func (tl *TestLogger) Lines() []string {
	s := strings.TrimSpace(tl.Output())
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// Entries decodes every line that holds a JSON object.
func (tl *TestLogger) Entries() []map[string]any {
	var out []map[string]any
	for _, line := range tl.Lines() {
		entry := map[string]any{}
		if json.Unmarshal([]byte(line), &entry) == nil {
			out = append(out, entry)
		}
	}
	return out
}

// Find returns the first entry logged with message msg.
func (tl *TestLogger) Find(msg string) (map[string]any, bool) {
	for _, entry := range tl.Entries() {
		if entry[zerolog.MessageFieldName] == msg {
			return entry, true
		}
	}
	return nil, false
}

// Contains reports whether substr was logged.
func (tl *TestLogger) Contains(substr string) bool {
	return strings.Contains(tl.Output(), substr)
}

// Clear drops the entries logged so far.
func (tl *TestLogger) Clear() { tl.out.Reset() }

// AssertContains fails t when substr was not logged.
func (tl *TestLogger) AssertContains(t testing.TB, substr string) {
	t.Helper()
	if !tl.Contains(substr) {
		t.Errorf("expected log output to contain %q, got:\n%s", substr, tl.Output())
	}
}

// AssertNotContains fails t when substr was logged.
func (tl *TestLogger) AssertNotContains(t testing.TB, substr string) {
	t.Helper()
	if tl.Contains(substr) {
		t.Errorf("expected log output not to contain %q, got:\n%s", substr, tl.Output())
	}
}

// swapDefault installs l as the default logger until the test ends.
func swapDefault(t testing.TB, l zerolog.Logger) {
	t.Helper()
	previous := *Default()
	SetDefault(l)
	t.Cleanup(func() { SetDefault(previous) })
}

// DisableLoggingForTest silences the default logger until the test ends.
func DisableLoggingForTest(t testing.TB) {
	t.Helper()
	swapDefault(t, zerolog.Nop())
}

// CaptureLoggingForTest routes the default logger into a TestLogger until
// the test ends.
func CaptureLoggingForTest(t testing.TB) *TestLogger {
	t.Helper()
	tl := NewTestLogger(t)
	swapDefault(t, *tl.Logger)
	return tl
}
