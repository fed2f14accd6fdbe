package config

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stefanspringer1/goworkflow/internal/logger"
	"github.com/stefanspringer1/goworkflow/internal/tracing"
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
)

// BuildLogger constructs the Multi fan-out logger described by
// cfg.Sinks, wrapping any I/O-bound sink (file, HTTP) in a Background
// logger when cfg.Sinks.Background is set, per spec.md §4.2. Each sink is
// built with a nil internalLog, so it uses its own default.
func BuildLogger(cfg *Config) (logger.Logger, error) {
	filter := logger.Filter{LogProgress: cfg.LogProgress}
	if sev, err := cfg.Severity(); err == nil {
		filter.MinSeverity = sev
	} else {
		return nil, err
	}

	var children []logger.Logger

	if cfg.Sinks.Print != nil {
		p := logger.NewPrintLogger()
		p.ErrorsToStandard = cfg.Sinks.Print.ErrorsToStandard
		children = append(children, logger.NewFiltered(p, filter))
	}

	if cfg.Sinks.File != nil {
		mode, err := fileMode(cfg.Sinks.File.Mode)
		if err != nil {
			return nil, err
		}
		f := logger.NewFile(cfg.Sinks.File.Path, mode, nil)
		children = append(children, wrapBackground(cfg, "file", logger.NewFiltered(f, filter)))
	}

	if cfg.Sinks.HTTP != nil {
		h := logger.NewHTTP(cfg.Sinks.HTTP.URL, nil)
		h.Headers = cfg.Sinks.HTTP.Headers
		h.Timeout = time.Duration(cfg.Sinks.HTTP.TimeoutSeconds) * time.Second
		compression, err := httpCompression(cfg.Sinks.HTTP.Compression)
		if err != nil {
			return nil, err
		}
		h.Compression = compression
		children = append(children, wrapBackground(cfg, "http", logger.NewFiltered(h, filter)))
	}

	if len(children) == 0 {
		return logger.NewFiltered(logger.NewPrintLogger(), filter), nil
	}
	return logger.NewMulti(children...), nil
}

// BuildTracer constructs the OTLP/HTTP-backed Tracer described by
// cfg.Tracing and returns it alongside a shutdown func, for wiring into
// supervisor.Config.Tracer. When cfg.Tracing.Enabled is false, it returns
// a nil Tracer (supervisor.Config.Tracer is nil-safe and disables
// tracing at zero cost) and a no-op shutdown func, so callers can defer
// the shutdown func unconditionally.
func BuildTracer(cfg *Config) (trace.Tracer, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Tracing.Enabled {
		return nil, noop, nil
	}
	return tracing.New(context.Background(), tracing.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
	})
}

// wrapBackground wraps inner in a Background logger when
// cfg.Sinks.Background is configured, otherwise returns inner unchanged
// (a direct, synchronous sink). inner's own Close is wired as the
// Background logger's CloseAction, so closing the wrapper closes the
// wrapped sink too. name labels the wrapper's queue-depth gauge
// (metrics.BackgroundQueueDepth).
func wrapBackground(cfg *Config, name string, inner logger.Logger) logger.Logger {
	if cfg.Sinks.Background == nil {
		return inner
	}
	b := logger.NewBackground(
		cfg.Sinks.Background.QueueSize,
		logger.NoFilter,
		func(e logevent.LoggingEvent) { inner.Log(e) },
		inner.Close,
		nil,
	)
	b.Name = name
	return b
}

func fileMode(mode string) (logger.FileMode, error) {
	switch mode {
	case "blocking":
		return logger.FileBlocking, nil
	case "reopen_per_write":
		return logger.FileReopenPerWrite, nil
	default:
		return 0, fmt.Errorf("config: unknown file mode %q", mode)
	}
}

func httpCompression(name string) (logger.Compression, error) {
	switch name {
	case "none":
		return logger.CompressionNone, nil
	case "gzip":
		return logger.CompressionGzip, nil
	case "snappy":
		return logger.CompressionSnappy, nil
	case "lz4":
		return logger.CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("config: unknown compression %q", name)
	}
}
