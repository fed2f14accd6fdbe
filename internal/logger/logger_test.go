package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
	"github.com/stefanspringer1/goworkflow/pkg/message"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
)

func sampleEvent(sev severity.Severity) logevent.LoggingEvent {
	return logevent.LoggingEvent{
		Severity:          sev,
		ApplicationName:   "app",
		ProcessID:         "1",
		Fact:              message.LocalizedText{langtag.EN: "something happened"},
		EffectuationStack: []stepid.Effectuation{stepid.EffectuationStep(stepid.New("f", "file"))},
		Timestamp:         time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestFilterProgressIsOptIn(t *testing.T) {
	f := Filter{MinSeverity: severity.Debug, LogProgress: false}
	if f.Accept(sampleEvent(severity.Progress)) {
		t.Fatal("progress should be rejected when LogProgress is false")
	}
	if !f.Accept(sampleEvent(severity.Debug)) {
		t.Fatal("debug should pass when MinSeverity is Debug")
	}
}

func TestFilterMinSeverityThreshold(t *testing.T) {
	f := Filter{MinSeverity: severity.Warning, LogProgress: true}
	if f.Accept(sampleEvent(severity.Info)) {
		t.Fatal("info should be rejected below threshold")
	}
	if !f.Accept(sampleEvent(severity.Error)) {
		t.Fatal("error should be accepted above threshold")
	}
}

func TestPrintLoggerRoutesBySeverity(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p := NewPrintLogger().WithWriters(&stdout, &stderr)
	p.Log(sampleEvent(severity.Info))
	p.Log(sampleEvent(severity.Error))

	if !strings.Contains(stdout.String(), "something happened") {
		t.Fatalf("expected info on stdout, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "something happened") {
		t.Fatalf("expected error on stderr, got %q", stderr.String())
	}
}

func TestPrintLoggerErrorsToStandard(t *testing.T) {
	var stdout, stderr bytes.Buffer
	p := NewPrintLogger().WithWriters(&stdout, &stderr)
	p.ErrorsToStandard = true
	p.Log(sampleEvent(severity.Error))
	if stderr.Len() != 0 {
		t.Fatal("expected nothing on stderr")
	}
	if stdout.Len() == 0 {
		t.Fatal("expected error line on stdout")
	}
}

func TestMultiDispatchesInOrderAndClosePropagatesFirstError(t *testing.T) {
	var order []string
	a := &recordingLogger{name: "a", order: &order}
	b := &recordingLogger{name: "b", order: &order, closeErr: errBoom}
	c := &recordingLogger{name: "c", order: &order, closeErr: errBoom2}

	m := NewMulti(a, b, c)
	m.Log(sampleEvent(severity.Info))
	if len(order) != 3 || order[0] != "a-log" || order[1] != "b-log" || order[2] != "c-log" {
		t.Fatalf("got %v", order)
	}

	err := m.Close()
	if err != errBoom {
		t.Fatalf("expected first error, got %v", err)
	}
	if !a.closed || !b.closed || !c.closed {
		t.Fatal("expected every child to be closed")
	}
}

func TestPrefixedDecoratesFactAndSolution(t *testing.T) {
	c := NewCollecting()
	p := NewPrefixed(c, "[x] ")
	e := sampleEvent(severity.Info)
	e.Solution = message.LocalizedText{langtag.EN: "fix it"}
	p.Log(e)
	got := c.Snapshot()
	if got[0].Fact[langtag.EN] != "[x] something happened" {
		t.Fatalf("got %q", got[0].Fact[langtag.EN])
	}
	if got[0].Solution[langtag.EN] != "[x] fix it" {
		t.Fatalf("got %q", got[0].Solution[langtag.EN])
	}
}

func TestDoubleWrappedPrefixConcatenates(t *testing.T) {
	c := NewCollecting()
	inner := NewPrefixed(c, "[inner] ")
	outer := NewPrefixed(inner, "[outer] ")
	outer.Log(sampleEvent(severity.Info))
	got := c.Snapshot()
	if got[0].Fact[langtag.EN] != "[inner] [outer] something happened" {
		t.Fatalf("got %q", got[0].Fact[langtag.EN])
	}
}

func TestCollectingSnapshotIsACopy(t *testing.T) {
	c := NewCollecting()
	c.Log(sampleEvent(severity.Info))
	snap := c.Snapshot()
	snap[0].ApplicationName = "mutated"
	again := c.Snapshot()
	if again[0].ApplicationName == "mutated" {
		t.Fatal("snapshot should not alias internal storage")
	}
}

func TestFileSinkBlockingWritesAndDedups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	f := NewFile(path, FileBlocking, nil)

	e := sampleEvent(severity.Info)
	f.Log(e)
	f.Log(e) // exact duplicate: suppressed
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one deduplicated line, got %v", lines)
	}
}

func TestFileSinkSanitizesNewlinesAndBackslashes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	f := NewFile(path, FileBlocking, nil)
	e := sampleEvent(severity.Info)
	e.Fact = message.LocalizedText{langtag.EN: "line1\nline2\\x"}
	f.Log(e)
	_ = f.Close()

	data, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected a single physical line, got %v", lines)
	}
	if !strings.Contains(lines[0], `line1\nline2\\x`) {
		t.Fatalf("got %q", lines[0])
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	f := NewFile(path, FileBlocking, nil)
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal("second close should be a no-op, got", err)
	}
}

func TestBackgroundLoggerOrderingAndClose(t *testing.T) {
	var mu orderedSink
	b := NewBackground(8, NoFilter, func(e logevent.LoggingEvent) {
		mu.append(e.Fact[langtag.EN])
	}, nil, nil)

	for i := 0; i < 5; i++ {
		e := sampleEvent(severity.Info)
		e.Fact = message.LocalizedText{langtag.EN: string(rune('a' + i))}
		b.Log(e)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	got := mu.snapshot()
	want := []string{"a", "b", "c", "d", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v want %v", got, want)
		}
	}
	if b.Completed() != 5 {
		t.Fatalf("got completed=%d", b.Completed())
	}
}

func TestBackgroundLoggerDropsAfterClose(t *testing.T) {
	b := NewBackground(4, NoFilter, func(logevent.LoggingEvent) {}, nil, nil)
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	b.Log(sampleEvent(severity.Info)) // must not panic or block
}

func TestCrashLoggerIsSynchronous(t *testing.T) {
	var flushed bool
	c := NewCrash(NoFilter, func(e logevent.LoggingEvent) error {
		flushed = true
		return nil
	}, nil, nil)
	c.Log(sampleEvent(severity.Fatal))
	if !flushed {
		t.Fatal("expected synchronous flush before Log returns")
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

// --- test helpers ---

var errBoom = &closeError{"boom-b"}
var errBoom2 = &closeError{"boom-c"}

type closeError struct{ msg string }

func (e *closeError) Error() string { return e.msg }

type recordingLogger struct {
	name     string
	order    *[]string
	closed   bool
	closeErr error
}

func (r *recordingLogger) Log(logevent.LoggingEvent) {
	*r.order = append(*r.order, r.name+"-log")
}

func (r *recordingLogger) Close() error {
	r.closed = true
	return r.closeErr
}

type orderedSink struct {
	mu   sync.Mutex
	vals []string
}

func (o *orderedSink) append(v string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.vals = append(o.vals, v)
}

func (o *orderedSink) snapshot() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.vals))
	copy(out, o.vals)
	return out
}
