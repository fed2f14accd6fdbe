package logger

import (
	"strings"

	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

const deadlySkull = "\U0001F480"

// Prefix returns the §6 severity prefix for a human-readable line. When
// indentSteps is true, Progress/Debug/Info/Iteration lines are indented
// two spaces per effectuation-stack depth instead of left unprefixed.
func Prefix(s severity.Severity, depth int, indentSteps bool) string {
	switch s {
	case severity.Warning:
		return "! "
	case severity.Error:
		return "!! "
	case severity.Fatal:
		return "!!! "
	case severity.Loss:
		return "!!!!"
	case severity.Deadly:
		return deadlySkull
	default:
		if indentSteps {
			return strings.Repeat("  ", depth)
		}
		return ""
	}
}

// FormatOptions controls how FormatLine renders an event.
type FormatOptions struct {
	Lang        langtag.Tag
	IndentSteps bool
	TimeLayout  string
}

// DefaultFormatOptions renders English text with step indentation, using
// RFC3339 timestamps.
var DefaultFormatOptions = FormatOptions{
	Lang:        langtag.EN,
	IndentSteps: true,
	TimeLayout:  "2006-01-02T15:04:05.000Z07:00",
}

// FormatLine renders e as the single human-readable line specified by
// spec.md §6:
//
//	{<pid>} <app> (<time>):  <prefix><description> (step path: <a> / <b> / …) @ <position> [<itemInfo>]
func FormatLine(e logevent.LoggingEvent, opts FormatOptions) string {
	fact, _ := e.Fact.Text(opts.Lang)

	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(e.ProcessID)
	b.WriteString("} ")
	b.WriteString(e.ApplicationName)
	b.WriteString(" (")
	b.WriteString(e.Timestamp.Format(opts.TimeLayout))
	b.WriteString("):  ")
	b.WriteString(Prefix(e.Severity, e.ExecutionLevel, opts.IndentSteps))
	b.WriteString(fact)

	if stack := e.StackTexts(); len(stack) > 0 {
		b.WriteString(" (step path: ")
		b.WriteString(strings.Join(stack, " / "))
		b.WriteByte(')')
	}

	if e.ItemPositionInfo != "" {
		b.WriteString(" @ ")
		b.WriteString(e.ItemPositionInfo)
	}

	if e.ItemInfo != "" {
		b.WriteString(" [")
		b.WriteString(e.ItemInfo)
		b.WriteByte(']')
	}

	return b.String()
}

// Sanitize makes text safe to store as a single physical line: \r is
// removed, and \\ and \n are escaped, per spec.md §4.2 (file sink).
func Sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, "\n", `\n`)
	return text
}
