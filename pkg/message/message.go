// Package message implements the localized message catalog: LocalizedText
// with positional-placeholder substitution, the immutable Message value,
// and the MessagesHolder registry that a step-data type uses to declare
// the messages it can emit.
//
// Positional placeholders are 1-based ($1 is the first argument) per the
// resolution of spec.md §9's open question: the safer of the two observed
// source conventions. $0 is left as a literal; out-of-range placeholders
// are left intact; substitution never recurses over its own output.
package message

import (
	"sort"
	"strconv"
	"strings"

	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

// LocalizedText maps a language tag to the text in that language. Not
// every language need be populated; lookups for a missing language return
// ok == false.
type LocalizedText map[langtag.Tag]string

// Text returns the text for the given language and whether it was present.
func (t LocalizedText) Text(tag langtag.Tag) (string, bool) {
	s, ok := t[tag]
	return s, ok
}

// Substitute returns a copy of t with every $k placeholder replaced by the
// k-th element of args (1-based). Absent or out-of-range placeholders are
// left intact. The scan is single-pass: replacement text is never
// rescanned for further placeholders.
func (t LocalizedText) Substitute(args ...string) LocalizedText {
	if len(t) == 0 {
		return t
	}
	out := make(LocalizedText, len(t))
	for tag, s := range t {
		out[tag] = substitute(s, args)
	}
	return out
}

// substitute performs one left-to-right pass over s, replacing each
// maximal run of digits following a '$' with the corresponding
// 1-based argument, when in range; $0 and out-of-range indices are left
// as literal text.
func substitute(s string, args []string) string {
	if !strings.ContainsRune(s, '$') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i+1 {
			// '$' not followed by a digit: literal.
			b.WriteByte(c)
			continue
		}
		digits := s[i+1 : j]
		n, err := strconv.Atoi(digits)
		if err == nil && n >= 1 && n <= len(args) {
			b.WriteString(args[n-1])
		} else {
			// $0 or out of range: keep the placeholder literally.
			b.WriteString(s[i:j])
		}
		i = j - 1
	}
	return b.String()
}

// Message is an immutable, optionally identified log message template: a
// required severity and fact, and an optional solution.
type Message struct {
	ID       string
	Severity severity.Severity
	Fact     LocalizedText
	Solution LocalizedText
}

// HasSolution reports whether a solution text is present at all (in any
// language).
func (m Message) HasSolution() bool {
	return len(m.Solution) > 0
}

// WithArgs returns a copy of m with Fact and Solution substituted using
// args, per LocalizedText.Substitute.
func (m Message) WithArgs(args ...string) Message {
	return Message{
		ID:       m.ID,
		Severity: m.Severity,
		Fact:     m.Fact.Substitute(args...),
		Solution: m.Solution.Substitute(args...),
	}
}

// MessagesHolder is implemented by any step-data type that declares the
// set of messages it may emit. Per spec.md §9's Design Note, this replaces
// reflection over step-data members with an explicit registry built at
// construction time (hand-written, generated, or macro-derived).
type MessagesHolder interface {
	// Messages returns this holder's messages, keyed by Message.ID.
	Messages() map[string]Message
}

// Catalog merges the messages of several holders into one lookup table,
// for tooling such as translation export or documentation generation.
// Later holders win on ID collision.
type Catalog struct {
	byID map[string]Message
}

// NewCatalog builds a Catalog from zero or more holders.
func NewCatalog(holders ...MessagesHolder) *Catalog {
	c := &Catalog{byID: make(map[string]Message)}
	for _, h := range holders {
		c.Merge(h)
	}
	return c
}

// Merge adds every message of h into the catalog, overwriting on ID
// collision.
func (c *Catalog) Merge(h MessagesHolder) {
	for id, m := range h.Messages() {
		c.byID[id] = m
	}
}

// Lookup returns the message registered under id.
func (c *Catalog) Lookup(id string) (Message, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// IDs returns every registered message ID in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dump renders every message in the catalog, one line per (id, language,
// field), in a deterministic order — useful for translator handoff.
func (c *Catalog) Dump() []string {
	var lines []string
	for _, id := range c.IDs() {
		m := c.byID[id]
		for _, tag := range langtag.Ordered {
			if text, ok := m.Fact.Text(tag); ok {
				lines = append(lines, id+"\t"+m.Severity.String()+"\tfact\t"+tag.String()+"\t"+text)
			}
			if text, ok := m.Solution.Text(tag); ok {
				lines = append(lines, id+"\t"+m.Severity.String()+"\tsolution\t"+tag.String()+"\t"+text)
			}
		}
	}
	return lines
}
