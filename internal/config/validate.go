package config

import (
	"fmt"
	"strings"

	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

// Validator collects every validation failure before reporting, mirroring
// the teacher's ConfigValidator (internal/config/config.go): a single
// malformed field should not hide the next one.
type Validator struct {
	errors []string
}

func (v *Validator) addError(component, message string) {
	v.errors = append(v.errors, fmt.Sprintf("%s: %s", component, message))
}

func (v *Validator) err() error {
	if len(v.errors) == 0 {
		return nil
	}
	return fmt.Errorf("config: invalid configuration:\n  %s", strings.Join(v.errors, "\n  "))
}

// Validate checks cfg for structural problems LoadConfig cannot recover
// from by itself (applyDefaults already filled in everything that has a
// sensible default).
func Validate(cfg *Config) error {
	v := &Validator{}

	if cfg.ApplicationName == "" {
		v.addError("application", "application_name must not be empty")
	}

	if _, ok := severity.Parse(strings.ToLower(cfg.MinSeverity)); !ok {
		v.addError("severity", fmt.Sprintf("min_severity %q is not a known severity", cfg.MinSeverity))
	}

	for _, name := range cfg.DispensedWith {
		if name == "" {
			v.addError("dispensed_with", "entries must not be empty strings")
			break
		}
	}

	if f := cfg.Sinks.File; f != nil {
		if f.Path == "" {
			v.addError("sinks.file", "path must be set when the file sink is configured")
		}
		if f.Mode != "blocking" && f.Mode != "reopen_per_write" {
			v.addError("sinks.file", fmt.Sprintf("mode %q must be \"blocking\" or \"reopen_per_write\"", f.Mode))
		}
	}

	if h := cfg.Sinks.HTTP; h != nil {
		if h.URL == "" {
			v.addError("sinks.http", "url must be set when the HTTP sink is configured")
		}
		switch h.Compression {
		case "none", "gzip", "snappy", "lz4":
		default:
			v.addError("sinks.http", fmt.Sprintf("compression %q must be one of none, gzip, snappy, lz4", h.Compression))
		}
		if h.TimeoutSeconds <= 0 {
			v.addError("sinks.http", "timeout_seconds must be positive")
		}
	}

	if b := cfg.Sinks.Background; b != nil && b.QueueSize <= 0 {
		v.addError("sinks.background", "queue_size must be positive")
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		v.addError("tracing", "endpoint must be set when tracing is enabled")
	}

	return v.err()
}
