package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"
	"github.com/rs/cors"
)

// lastRun is the most recent run outcome, published for health reporting.
var lastRun atomic.Pointer[RunStatus]

// RunStatus is the run outcome snapshot served by the healthz endpoint.
type RunStatus struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// RecordLastRun publishes the outcome of the most recent run so the healthz
// endpoint can report it alongside liveness.
func RecordLastRun(runID, status string) {
	lastRun.Store(&RunStatus{RunID: runID, Status: status})
}

// LastRun returns the most recently published run outcome, or nil if no run
// has completed yet.
func LastRun() *RunStatus {
	return lastRun.Load()
}

type healthzResponse struct {
	Status  string     `json:"status"`
	LastRun *RunStatus `json:"last_run,omitempty"`
}

type HealthzServer struct {
	ctx    context.Context
	server *http.Server
}

func (h *HealthzServer) Start(ctx context.Context, addr string) error {
	hdlr := http.NewServeMux()
	hdlr.HandleFunc("/healthz", h.Handle)
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
	})
	server := &http.Server{
		Handler: c.Handler(hdlr),
		Addr:    addr,
	}
	h.server = server
	h.ctx = ctx
	return h.server.ListenAndServe()
}

func (h *HealthzServer) Shutdown() error {
	return h.server.Shutdown(h.ctx)
}

func (h *HealthzServer) Handle(w http.ResponseWriter, r *http.Request) {
	log.Debug("Received health check request", "path", r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	resp := healthzResponse{Status: "ok", LastRun: lastRun.Load()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("Failed to write healthz response", "err", err)
	}
}
