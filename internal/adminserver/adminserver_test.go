package adminserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stefanspringer1/goworkflow/internal/logger"
	"github.com/stefanspringer1/goworkflow/internal/supervisor"
	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/logevent"
	"github.com/stefanspringer1/goworkflow/pkg/message"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

func TestHealthzReturnsOK(t *testing.T) {
	s := supervisor.New(supervisor.Config{Logger: logger.NewCollecting(), ApplicationName: "app"})
	srv := New(s)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusReportsWorstSeverityAndQueues(t *testing.T) {
	s := supervisor.New(supervisor.Config{Logger: logger.NewCollecting(), ApplicationName: "app"})
	s.Log(message.Message{Severity: severity.Warning, Fact: message.LocalizedText{langtag.EN: "careful"}}, "", false)

	srv := New(s)
	bg := logger.NewBackground(8, logger.NoFilter, func(logevent.LoggingEvent) {}, nil, nil)
	srv.RegisterBackground("file", bg)
	defer bg.Close()

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "warning", body["worstSeverity"])
	require.Equal(t, false, body["stopped"])
	require.Contains(t, body["queues"], "file")
}
