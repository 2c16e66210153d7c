package prom

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthResponse struct {
	Status      string `json:"status"`
	LastRefresh string `json:"last_refresh,omitempty"`
}

// HealthHandler reports "ok" once a reconciliation has finished and
// "starting" before that. Both are served with status 200.
func (e *Exporter) HealthHandler(w http.ResponseWriter, req *http.Request) {
	resp := healthResponse{Status: "starting"}
	if _, at, ok := e.reports.Latest(); ok {
		resp.Status = "ok"
		resp.LastRefresh = at.UTC().Format(time.RFC3339)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
