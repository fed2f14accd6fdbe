// Package adminserver exposes the supervisor's own health as a small
// gorilla/mux HTTP server: /healthz for a liveness probe and /status for
// the current worst severity, the stopped flag, and the completed/dropped
// counters of each registered background logger. Grounded on the teacher's
// internal/app health/metrics HTTP surface (internal/app/handlers.go),
// narrowed to the two read-only endpoints this module's supervisor and
// background loggers can meaningfully report.
package adminserver

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stefanspringer1/goworkflow/internal/logger"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
)

// StatusSource supplies the live values /status reports. A supervisor
// satisfies this with its WorstSeverity and Stopped methods.
type StatusSource interface {
	WorstSeverity() severity.Severity
	Stopped() bool
}

// QueueDepthSource is implemented by logger.Background; /status reports
// its Completed/Dropped counters when one is registered.
type QueueDepthSource = *logger.Background

// Server is the admin HTTP surface. It does not own a net/http.Server of
// its own lifecycle; callers wrap Handler() in whatever listener they
// prefer (matching the teacher's pattern of handing a *mux.Router to an
// externally owned http.Server).
type Server struct {
	router     *mux.Router
	status     StatusSource
	background []namedBackground
}

type namedBackground struct {
	name string
	b    QueueDepthSource
}

// New builds a Server reporting status for the given StatusSource.
func New(status StatusSource) *Server {
	s := &Server{router: mux.NewRouter(), status: status}
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	return s
}

// RegisterBackground adds a named background logger whose completed and
// dropped counters should appear in /status output.
func (s *Server) RegisterBackground(name string, b QueueDepthSource) {
	s.background = append(s.background, namedBackground{name: name, b: b})
}

// Handler returns the http.Handler to mount on an externally owned
// server or test server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	WorstSeverity string                  `json:"worstSeverity"`
	Stopped       bool                    `json:"stopped"`
	Queues        map[string]queueDetails `json:"queues,omitempty"`
}

type queueDetails struct {
	Completed int64 `json:"completed"`
	Dropped   int64 `json:"dropped"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		WorstSeverity: s.status.WorstSeverity().String(),
		Stopped:       s.status.Stopped(),
	}
	if len(s.background) > 0 {
		resp.Queues = make(map[string]queueDetails, len(s.background))
		for _, nb := range s.background {
			resp.Queues[nb.name] = queueDetails{Completed: nb.b.Completed(), Dropped: nb.b.Dropped()}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
