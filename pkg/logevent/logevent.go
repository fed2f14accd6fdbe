// Package logevent defines the immutable LoggingEvent record produced by
// every supervisor log call, along with its JSON wire encoding (used by
// the HTTP POST sink and by any external log post-processor).
package logevent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/message"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
)

// LoggingEvent is an immutable record of one log call. The EffectuationStack
// field is always a by-value snapshot: it must never be aliased with a
// live, still-mutating supervisor stack.
type LoggingEvent struct {
	MessageID        string
	Severity         severity.Severity
	ExecutionLevel   int
	ProcessID        string
	ApplicationName  string
	Fact             message.LocalizedText
	Solution         message.LocalizedText
	ItemInfo         string
	ItemPositionInfo string
	EffectuationStack []stepid.Effectuation
	Timestamp        time.Time
}

// HasItemInfo reports whether ItemInfo was supplied.
func (e LoggingEvent) HasItemInfo() bool { return e.ItemInfo != "" }

// HasSolution reports whether a solution text was supplied.
func (e LoggingEvent) HasSolution() bool { return len(e.Solution) > 0 }

// WithSeverity returns a copy of e with its severity replaced — used by
// appease rewriting, which must never mutate a shared event value.
func (e LoggingEvent) WithSeverity(s severity.Severity) LoggingEvent {
	e.Severity = s
	return e
}

// StackTexts renders the canonical text encoding of every frame on the
// effectuation stack, outermost first.
func (e LoggingEvent) StackTexts() []string {
	out := make([]string, len(e.EffectuationStack))
	for i, f := range e.EffectuationStack {
		out[i] = f.Text()
	}
	return out
}

// --- JSON wire encoding (spec.md §6) ---

type localizedTextJSON struct {
	EN *string `json:"en"`
	DE *string `json:"de"`
	FR *string `json:"fr"`
}

func encodeLocalizedText(t message.LocalizedText) *localizedTextJSON {
	out := &localizedTextJSON{}
	if v, ok := t.Text(langtag.EN); ok {
		out.EN = &v
	}
	if v, ok := t.Text(langtag.DE); ok {
		out.DE = &v
	}
	if v, ok := t.Text(langtag.FR); ok {
		out.FR = &v
	}
	return out
}

func decodeLocalizedText(j *localizedTextJSON) message.LocalizedText {
	if j == nil {
		return nil
	}
	out := make(message.LocalizedText)
	if j.EN != nil {
		out[langtag.EN] = *j.EN
	}
	if j.DE != nil {
		out[langtag.DE] = *j.DE
	}
	if j.FR != nil {
		out[langtag.FR] = *j.FR
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type wireEvent struct {
	MessageID           string             `json:"messageID,omitempty"`
	Type                severity.Severity  `json:"type"`
	ProcessID           string             `json:"processID,omitempty"`
	ApplicationName     string             `json:"applicationName"`
	ItemInfo            string             `json:"itemInfo,omitempty"`
	ItemPositionInfo    string             `json:"itemPositionInfo,omitempty"`
	EffectuationIDStack []string           `json:"effectuationIDStack"`
	Time                time.Time          `json:"time"`
	Fact                *localizedTextJSON `json:"fact"`
	Solution            *localizedTextJSON `json:"solution,omitempty"`
}

// MarshalJSON implements the §6 wire encoding.
func (e LoggingEvent) MarshalJSON() ([]byte, error) {
	w := wireEvent{
		MessageID:           e.MessageID,
		Type:                e.Severity,
		ProcessID:           e.ProcessID,
		ApplicationName:     e.ApplicationName,
		ItemInfo:            e.ItemInfo,
		ItemPositionInfo:    e.ItemPositionInfo,
		EffectuationIDStack: e.StackTexts(),
		Time:                e.Timestamp,
		Fact:                encodeLocalizedText(e.Fact),
	}
	if e.HasSolution() {
		w.Solution = encodeLocalizedText(e.Solution)
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements the §6 wire decoding, the inverse of
// MarshalJSON; every effectuation stack entry is decoded through
// stepid.ParseText.
func (e *LoggingEvent) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	stack := make([]stepid.Effectuation, len(w.EffectuationIDStack))
	for i, text := range w.EffectuationIDStack {
		f, err := stepid.ParseText(text)
		if err != nil {
			return fmt.Errorf("logevent: decoding effectuation stack entry %d: %w", i, err)
		}
		stack[i] = f
	}
	*e = LoggingEvent{
		MessageID:         w.MessageID,
		Severity:          w.Type,
		ExecutionLevel:    len(stack),
		ProcessID:         w.ProcessID,
		ApplicationName:   w.ApplicationName,
		Fact:              decodeLocalizedText(w.Fact),
		Solution:          decodeLocalizedText(w.Solution),
		ItemInfo:          w.ItemInfo,
		ItemPositionInfo:  w.ItemPositionInfo,
		EffectuationStack: stack,
		Timestamp:         w.Time,
	}
	return nil
}
