package logevent

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/message"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
)

func sampleEvent() LoggingEvent {
	return LoggingEvent{
		MessageID:       "m1",
		Severity:        severity.Error,
		ExecutionLevel:  2,
		ProcessID:       "pid-1",
		ApplicationName: "app",
		Fact:            message.LocalizedText{langtag.EN: "fact en", langtag.DE: "fact de"},
		Solution:        message.LocalizedText{langtag.EN: "solution en"},
		ItemInfo:        "item-7",
		EffectuationStack: []stepid.Effectuation{
			stepid.EffectuationStep(stepid.New("f1", "file1")),
			stepid.EffectuationOptionalPart("opt"),
		},
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestJSONRoundTrip(t *testing.T) {
	want := sampleEvent()
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	var got LoggingEvent
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.MessageID != want.MessageID || got.Severity != want.Severity ||
		got.ApplicationName != want.ApplicationName || !got.Timestamp.Equal(want.Timestamp) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if len(got.EffectuationStack) != len(want.EffectuationStack) {
		t.Fatalf("stack length mismatch: %+v", got.EffectuationStack)
	}
	for i := range want.EffectuationStack {
		if got.EffectuationStack[i] != want.EffectuationStack[i] {
			t.Fatalf("stack[%d] mismatch: %+v != %+v", i, got.EffectuationStack[i], want.EffectuationStack[i])
		}
	}
	if got.Fact[langtag.DE] != "fact de" {
		t.Fatalf("got fact de %q", got.Fact[langtag.DE])
	}
}

func TestJSONNullLanguageSlotsPreserved(t *testing.T) {
	e := sampleEvent()
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	var fact map[string]json.RawMessage
	if err := json.Unmarshal(raw["fact"], &fact); err != nil {
		t.Fatal(err)
	}
	if string(fact["fr"]) != "null" {
		t.Fatalf("expected fr slot to encode as null, got %s", fact["fr"])
	}
}

func TestSolutionOmittedWhenAbsent(t *testing.T) {
	e := sampleEvent()
	e.Solution = nil
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if _, present := raw["solution"]; present {
		t.Fatal("expected solution to be omitted")
	}
}

func TestWithSeverityDoesNotMutateOriginal(t *testing.T) {
	e := sampleEvent()
	rewritten := e.WithSeverity(severity.Warning)
	if e.Severity != severity.Error {
		t.Fatal("original event mutated")
	}
	if rewritten.Severity != severity.Warning {
		t.Fatal("rewrite did not apply")
	}
}
