package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/helpcomp/morning-bill-checker/httperror"
	"github.com/helpcomp/morning-bill-checker/reconcile"
)

var stdout io.Writer = os.Stdout

// reportStore keeps the latest successful reconciliation for the exporter and
// the /report endpoint.
type reportStore struct {
	mu  sync.RWMutex
	res reconcile.Result
	at  time.Time
	ok  bool
}

func (s *reportStore) Latest() (reconcile.Result, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res, s.at, s.ok
}

func (s *reportStore) Set(res reconcile.Result, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res, s.at, s.ok = res, at, true
}

type periodJSON struct {
	From        string `json:"from"`
	To          string `json:"to"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

type reportJSON struct {
	Period      periodJSON `json:"period"`
	GeneratedAt string     `json:"generated_at,omitempty"`
	reconcile.Result
}

func newReportJSON(res reconcile.Result, at time.Time) reportJSON {
	out := reportJSON{
		Period: periodJSON{
			From:        res.Period.FromDate(),
			To:          res.Period.ToDate(),
			Label:       res.Period.Label(),
			Description: res.Period.Describe(),
		},
		Result: res,
	}
	if !at.IsZero() {
		out.GeneratedAt = at.UTC().Format(time.RFC3339)
	}
	return out
}

func writeJSON(w io.Writer, res reconcile.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newReportJSON(res, time.Time{}))
}

// writeText prints the report the way the bookkeeper reads it.
func writeText(w io.Writer, res reconcile.Result) error {
	var err error
	printf := func(format string, a ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, a...)
		}
	}

	printf("Reporting Period: %s\n\n", res.Period.Describe())
	if res.NoResult {
		printf("No expense data was returned for this period.\n\n")
	}

	printf("Companies lacking bills altogether:\n")
	if len(res.Lacking) == 0 {
		printf("  No Companies\n")
	}
	for _, company := range res.Lacking {
		printf("  %s\n", company)
	}

	printf("\nCompanies with less bills than expected:\n")
	if len(res.Short) == 0 {
		printf("  No Companies\n")
	}
	for _, company := range res.Short {
		status, _ := res.Status(company)
		printf("  %s (%d of %d)\n", company, status.Observed, status.Expected)
	}

	if len(res.NearMisses) > 0 {
		printf("\nSupplier names that almost match the roster:\n")
		for _, miss := range res.NearMisses {
			printf("  %q looks like %q\n", miss.Observed, miss.Expected)
		}
	}
	return err
}

func (s *reportStore) reportHandler(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		httperror.Send(w, req, http.StatusMethodNotAllowed, fmt.Sprintf("Unsupported method %s", req.Method))
		return
	}
	res, at, ok := s.Latest()
	if !ok {
		httperror.Send(w, req, http.StatusServiceUnavailable, "No reconciliation has completed yet")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(newReportJSON(res, at))
}
