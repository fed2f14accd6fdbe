// Package stepid defines the identity of a step (StepId) and the frames
// that make up a supervisor's effectuation stack, including their
// canonical textual encoding used by the log post-processor.
package stepid

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// StepId identifies a step by the cross-module file it is declared in and
// its function signature. Equality and Hash are structural over both
// fields, so two call sites that construct equal StepIds collide
// intentionally (that is the dedup mechanism).
type StepId struct {
	File      string
	Signature string
}

// New constructs a StepId. Name mirrors the recommended construction in
// spec.md §3.
func New(signature, file string) StepId {
	return StepId{File: file, Signature: signature}
}

// String renders the canonical text form `signature@file`.
func (s StepId) String() string {
	return s.Signature + "@" + s.File
}

// Hash returns a structural hash of the StepId, suitable as a dedup-set
// key. Uses xxhash over the canonical text form.
func (s StepId) Hash() uint64 {
	return xxhash.Sum64String(s.String())
}

// Kind enumerates the variants of an Effectuation frame.
type Kind int

const (
	KindStep Kind = iota
	KindOptionalPart
	KindDispensablePart
	KindDescribedPart
)

// Effectuation is one frame on a supervisor's effectuation stack.
type Effectuation struct {
	Kind Kind
	// Step is populated when Kind == KindStep.
	Step StepId
	// Name is populated for KindOptionalPart and KindDispensablePart.
	Name string
	// Description is populated for KindDescribedPart.
	Description string
}

// EffectuationStep builds a step frame.
func EffectuationStep(id StepId) Effectuation {
	return Effectuation{Kind: KindStep, Step: id}
}

// EffectuationOptionalPart builds an optional-part frame.
func EffectuationOptionalPart(name string) Effectuation {
	return Effectuation{Kind: KindOptionalPart, Name: name}
}

// EffectuationDispensablePart builds a dispensable-part frame.
func EffectuationDispensablePart(name string) Effectuation {
	return Effectuation{Kind: KindDispensablePart, Name: name}
}

// EffectuationDescribedPart builds a described-part ("doing") frame.
func EffectuationDescribedPart(description string) Effectuation {
	return Effectuation{Kind: KindDescribedPart, Description: description}
}

const (
	prefixStep            = "step "
	prefixOptionalPart    = "optional part "
	prefixDispensablePart = "dispensable part "
	prefixDescribedPart   = "doing "
)

// Text renders the canonical textual encoding of the frame, as listed in
// spec.md §3/§6.
func (e Effectuation) Text() string {
	switch e.Kind {
	case KindStep:
		return prefixStep + e.Step.String()
	case KindOptionalPart:
		return prefixOptionalPart + quote(e.Name)
	case KindDispensablePart:
		return prefixDispensablePart + quote(e.Name)
	case KindDescribedPart:
		return prefixDescribedPart + e.Description
	default:
		return fmt.Sprintf("<unknown effectuation kind %d>", int(e.Kind))
	}
}

func quote(s string) string {
	return `"` + s + `"`
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseText recovers an Effectuation from its canonical textual encoding,
// recognizing the frame kind by prefix match as spec.md §6 requires.
func ParseText(text string) (Effectuation, error) {
	switch {
	case strings.HasPrefix(text, prefixStep):
		rest := text[len(prefixStep):]
		sig, file, ok := splitStepText(rest)
		if !ok {
			return Effectuation{}, fmt.Errorf("stepid: malformed step text %q", text)
		}
		return EffectuationStep(New(sig, file)), nil
	case strings.HasPrefix(text, prefixOptionalPart):
		return EffectuationOptionalPart(unquote(text[len(prefixOptionalPart):])), nil
	case strings.HasPrefix(text, prefixDispensablePart):
		return EffectuationDispensablePart(unquote(text[len(prefixDispensablePart):])), nil
	case strings.HasPrefix(text, prefixDescribedPart):
		return EffectuationDescribedPart(text[len(prefixDescribedPart):]), nil
	default:
		return Effectuation{}, fmt.Errorf("stepid: unrecognized effectuation text %q", text)
	}
}

// splitStepText splits "signature@file" on the last '@': a signature may
// itself contain '@', so everything before the last occurrence is the
// signature. A file part that contains '@' is not split correctly.
func splitStepText(s string) (signature, file string, ok bool) {
	i := strings.LastIndexByte(s, '@')
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}
