package supervisor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stefanspringer1/goworkflow/internal/logger"
	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/message"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
)

func progressFacts(c *logger.Collecting) []string {
	var out []string
	for _, e := range c.Snapshot() {
		if e.Severity == severity.Progress {
			out = append(out, e.Fact[langtag.EN])
		}
	}
	return out
}

func newTestSupervisor() (*Supervisor, *logger.Collecting) {
	c := logger.NewCollecting()
	s := New(Config{Logger: c, ApplicationName: "app"})
	return s, c
}

// scenario 1: dedup — C calls A then B, B calls A. A must run once.
func TestScenarioDedup(t *testing.T) {
	s, c := newTestSupervisor()

	fileA := stepid.New("A", "f1")
	fileB := stepid.New("B", "f1")
	fileC := stepid.New("C", "f1")

	var a func()
	a = func() {
		Effectuate(s, fileA, func() any { return nil })
	}
	b := func() {
		Effectuate(s, fileB, func() any {
			a()
			return nil
		})
	}
	Effectuate(s, fileC, func() any {
		a()
		b()
		return nil
	})

	got := stripDurations(progressFacts(c))
	require.Equal(t, []string{
		">> STEP C@f1",
		">> STEP A@f1",
		withoutDuration(stepDoneText(fileA, false, 0)),
		">> STEP B@f1",
		withoutDuration(stepDoneText(fileB, false, 0)),
		withoutDuration(stepDoneText(fileC, false, 0)),
	}, got)
}

// scenario 2: force — B wraps its call to A in Force; A runs twice.
func TestScenarioForce(t *testing.T) {
	s, c := newTestSupervisor()

	fileA := stepid.New("A", "f1")
	fileB := stepid.New("B", "f1")
	fileC := stepid.New("C", "f1")

	a := func() {
		Effectuate(s, fileA, func() any { return nil })
	}
	b := func() {
		Effectuate(s, fileB, func() any {
			Force(s, func() any {
				a()
				return nil
			})
			return nil
		})
	}
	Effectuate(s, fileC, func() any {
		a()
		b()
		return nil
	})

	got := stripDurations(progressFacts(c))
	require.Equal(t, []string{
		">> STEP C@f1",
		">> STEP A@f1",
		withoutDuration(stepDoneText(fileA, false, 0)),
		">> STEP B@f1",
		">> STEP A@f1",
		withoutDuration(stepDoneText(fileA, false, 0)),
		withoutDuration(stepDoneText(fileB, false, 0)),
		withoutDuration(stepDoneText(fileC, false, 0)),
	}, got)
}

// scenario 3: appease — logging Fatal inside appease(Error) demotes the
// main sink's severity to Error, leaves the crash sink at Fatal, and
// leaves stopped false.
func TestScenarioAppease(t *testing.T) {
	main := logger.NewCollecting()
	crash := logger.NewCollecting()
	s := New(Config{Logger: main, CrashLogger: crash, ApplicationName: "app"})

	msg := message.Message{Severity: severity.Fatal, Fact: message.LocalizedText{langtag.EN: "boom"}}
	Appease(s, severity.Error, func() any {
		s.Log(msg, "", true)
		return nil
	})

	mainEvents := main.Snapshot()
	require.Len(t, mainEvents, 1)
	require.Equal(t, severity.Error, mainEvents[0].Severity)

	crashEvents := crash.Snapshot()
	require.Len(t, crashEvents, 1)
	require.Equal(t, severity.Fatal, crashEvents[0].Severity)

	require.False(t, s.Stopped())
	require.Equal(t, severity.Error, s.WorstSeverity())
}

// scenario 4: optional vs dispensable — dispensing wins.
func TestScenarioOptionalDispensingWins(t *testing.T) {
	s := New(Config{
		Logger:           logger.NewCollecting(),
		ApplicationName:  "app",
		ActivatedOptions: []string{"m:x"},
		DispensedWith:    []string{"m:x"},
	})

	ran := false
	_, ok := Optional(s, "m:x", func() any {
		ran = true
		return nil
	})

	require.False(t, ok)
	require.False(t, ran)
	require.Equal(t, severity.Info, s.WorstSeverity())
}

func TestEffectuateStoppedSkipsAndEmitsDebug(t *testing.T) {
	s, c := newTestSupervisor()
	s.Log(message.Message{Severity: severity.Fatal, Fact: message.LocalizedText{langtag.EN: "fatal"}}, "", false)
	require.True(t, s.Stopped())

	ran := false
	_, ok := Effectuate(s, stepid.New("X", "f1"), func() any {
		ran = true
		return nil
	})
	require.False(t, ok)
	require.False(t, ran)

	events := c.Snapshot()
	last := events[len(events)-1]
	require.Equal(t, severity.Debug, last.Severity)
}

func TestDisrememberAllowsRerun(t *testing.T) {
	s, _ := newTestSupervisor()
	step := stepid.New("A", "f1")

	runs := 0
	Disremember(s, func() any {
		Effectuate(s, step, func() any { runs++; return nil })
		return nil
	})
	Effectuate(s, step, func() any { runs++; return nil })

	require.Equal(t, 2, runs)
}

func TestEffectuationStackBalancedOnPanic(t *testing.T) {
	s, _ := newTestSupervisor()
	step := stepid.New("A", "f1")

	func() {
		defer func() { _ = recover() }()
		Effectuate(s, step, func() any {
			panic("boom")
		})
	}()

	require.Empty(t, s.effectuationStack)
	require.Empty(t, s.forceStack)
}

func TestAppeaseNeverCapsCrashSink(t *testing.T) {
	crash := logger.NewCollecting()
	s := New(Config{Logger: logger.NewCollecting(), CrashLogger: crash, ApplicationName: "app", AlwaysAddCrashInfo: true})

	Appease(s, severity.Warning, func() any {
		s.Log(message.Message{Severity: severity.Deadly, Fact: message.LocalizedText{langtag.EN: "x"}}, "", false)
		return nil
	})

	events := crash.Snapshot()
	require.Len(t, events, 1)
	require.Equal(t, severity.Deadly, events[0].Severity)
}

// stripDurations normalizes "(duration: ...)" suffixes so timing noise
// does not break exact-match assertions on progress text.
func stripDurations(facts []string) []string {
	out := make([]string, len(facts))
	for i, f := range facts {
		out[i] = withoutDuration(f)
	}
	return out
}

func withoutDuration(s string) string {
	if i := strings.Index(s, " (duration:"); i >= 0 {
		return s[:i]
	}
	return s
}
