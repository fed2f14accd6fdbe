// Package severity defines the totally ordered severity taxonomy shared by
// every logging event and by the worst-severity accumulator.
package severity

import "fmt"

// Severity is a totally ordered log level. Zero value is Debug, the lowest
// severity; values increase in the order declared below.
type Severity int

const (
	Debug Severity = iota
	Progress
	Info
	Iteration
	Warning
	Error
	Fatal
	Loss
	Deadly
)

// names holds the stable serialization name for each severity, in
// ascending order. Never reorder: these strings are a wire format.
var names = [...]string{
	Debug:     "debug",
	Progress:  "progress",
	Info:      "info",
	Iteration: "iteration",
	Warning:   "warning",
	Error:     "error",
	Fatal:     "fatal",
	Loss:      "loss",
	Deadly:    "deadly",
}

// String returns the stable lowercase name of the severity.
func (s Severity) String() string {
	if s < Debug || s > Deadly {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return names[s]
}

// Parse recovers a Severity from its stable name. Unknown names return
// ok == false.
func Parse(name string) (sev Severity, ok bool) {
	for i, n := range names {
		if n == name {
			return Severity(i), true
		}
	}
	return 0, false
}

// Valid reports whether s is one of the declared severities.
func (s Severity) Valid() bool {
	return s >= Debug && s <= Deadly
}

// StopsExecution reports whether a delivered event of this severity flips
// the owning execution's `stopped` flag — true for Fatal and above.
func (s Severity) StopsExecution() bool {
	return s >= Fatal
}

// Max returns the higher (later in the declared order) of a and b.
func Max(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// MarshalText implements encoding.TextMarshaler using the stable name,
// so Severity round-trips through JSON as a string rather than an int.
func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("severity: cannot marshal invalid value %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	parsed, ok := Parse(string(text))
	if !ok {
		return fmt.Errorf("severity: unknown name %q", string(text))
	}
	*s = parsed
	return nil
}
