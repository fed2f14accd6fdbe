package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/snappy"
	kgzip "github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
	"github.com/sirupsen/logrus"

	"github.com/stefanspringer1/goworkflow/pkg/logevent"
)

// Compression selects the payload encoding for the HTTP POST sink,
// grounded on the teacher's pkg/compression multi-algorithm
// HTTPCompressor (used there for Loki/Elasticsearch/Splunk payloads).
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionSnappy
	CompressionLZ4
)

func (c Compression) contentEncoding() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionSnappy:
		return "snappy"
	case CompressionLZ4:
		return "lz4"
	default:
		return ""
	}
}

func compress(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		var buf bytes.Buffer
		w := kgzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionSnappy:
		return snappy.Encode(nil, data), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("logger: unknown compression %d", int(c))
	}
}

// HTTP serializes each event as JSON (spec.md §6 wire encoding) and POSTs
// it to a fixed URL. Close is a no-op, as spec.md §4.2 requires. Grounded
// on the teacher's internal/sinks/loki_sink.go HTTP push path, trimmed of
// batching/circuit-breaking (out of scope: this is a single-event sink,
// typically wrapped in Background for queuing by the supervisor).
type HTTP struct {
	URL         string
	Client      *http.Client
	Headers     map[string]string
	Compression Compression
	Timeout     time.Duration

	internalLog *logrus.Logger
}

// NewHTTP constructs an HTTP POST sink. internalLog may be nil.
func NewHTTP(url string, internalLog *logrus.Logger) *HTTP {
	if internalLog == nil {
		internalLog = logrus.StandardLogger()
	}
	return &HTTP{
		URL:         url,
		Client:      &http.Client{Timeout: 10 * time.Second},
		Timeout:     10 * time.Second,
		internalLog: internalLog,
	}
}

func (h *HTTP) Log(e logevent.LoggingEvent) {
	body, err := json.Marshal(e)
	if err != nil {
		h.internalLog.WithError(err).Error("http sink: marshal failed")
		return
	}

	body, err = compress(h.Compression, body)
	if err != nil {
		h.internalLog.WithError(err).Error("http sink: compression failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		h.internalLog.WithError(err).Error("http sink: building request failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if enc := h.Compression.contentEncoding(); enc != "" {
		req.Header.Set("Content-Encoding", enc)
	}
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		h.internalLog.WithError(err).Error("http sink: request failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		h.internalLog.WithField("status", resp.StatusCode).Error("http sink: non-2xx response")
	}
}

func (h *HTTP) Close() error {
	return nil
}
