// Package reconcile compares the bills recorded in the ledger for a reporting
// period against the roster of companies expected to bill in it.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	"github.com/helpcomp/morning-bill-checker/period"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Bill is one expense record fetched from the ledger. An empty Supplier means
// the record carried no supplier name.
type Bill struct {
	ID       string
	Supplier string
	Date     string
	Amount   decimal.Decimal
}

// ErrNoResult is returned by a Fetcher when the ledger answered without any
// result for the period. This differs from a result holding no bills.
var ErrNoResult = errors.New("ledger returned no result")

// Fetcher returns every bill recorded for a period.
type Fetcher interface {
	FetchBills(ctx context.Context, p period.Period) ([]Bill, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, p period.Period) ([]Bill, error)

func (f FetcherFunc) FetchBills(ctx context.Context, p period.Period) ([]Bill, error) {
	return f(ctx, p)
}

// FetchError wraps a failure of the Fetcher.
type FetchError struct {
	Period period.Period
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching bills for %s: %v", e.Period, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CompanyStatus is the observed state of one roster company.
type CompanyStatus struct {
	Name     string          `json:"name"`
	Expected int             `json:"expected"`
	Observed int             `json:"observed"`
	Total    decimal.Decimal `json:"total"`
}

// Result of one reconciliation.
type Result struct {
	Period period.Period `json:"-"`
	// Lacking lists roster companies with no bill at all, sorted.
	Lacking []string `json:"lacking"`
	// Short lists companies with fewer bills than expected, in order of
	// first appearance in the fetched records.
	Short      []string        `json:"short"`
	Companies  []CompanyStatus `json:"companies"`
	Skipped    int             `json:"skipped"`
	NearMisses []NearMiss      `json:"near_misses,omitempty"`
	// NoResult is set when the ledger had no result for the period. Nothing
	// is reported as lacking or short then.
	NoResult bool `json:"no_result,omitempty"`
}

// Reconciler diffs fetched bills against a fixed roster.
type Reconciler struct {
	roster Roster
}

// New returns a Reconciler for roster.
func New(roster Roster) *Reconciler {
	return &Reconciler{roster: roster}
}

// Reconcile fetches the bills for p once and diffs them against the roster.
// A fetch failure is returned as a *FetchError with no partial result. When
// the fetcher returns ErrNoResult the result is empty and NoResult is set.
func (r *Reconciler) Reconcile(ctx context.Context, p period.Period, f Fetcher) (Result, error) {
	bills, err := f.FetchBills(ctx, p)
	if errors.Is(err, ErrNoResult) {
		log.Debug().Str("period", p.String()).Msg("Ledger returned no result")
		return Result{
			Period:    p,
			Lacking:   []string{},
			Short:     []string{},
			Companies: []CompanyStatus{},
			NoResult:  true,
		}, nil
	}
	if err != nil {
		return Result{}, &FetchError{Period: p, Err: err}
	}

	res := diff(r.roster, bills)
	res.Period = p

	log.Debug().
		Str("period", p.String()).
		Int("bills", len(bills)).
		Int("skipped", res.Skipped).
		Int("lacking", len(res.Lacking)).
		Int("short", len(res.Short)).
		Msg("Reconciled bills against roster")

	return res, nil
}

// diff is the pure part of Reconcile.
func diff(roster Roster, bills []Bill) Result {
	res := Result{
		Lacking:   []string{},
		Short:     []string{},
		Companies: []CompanyStatus{},
	}

	counts := make(map[string]int)
	totals := make(map[string]decimal.Decimal)
	var order []string // distinct suppliers, first appearance first
	for _, b := range bills {
		if b.Supplier == "" {
			res.Skipped++
			continue
		}
		if _, seen := counts[b.Supplier]; !seen {
			order = append(order, b.Supplier)
		}
		counts[b.Supplier]++
		totals[b.Supplier] = totals[b.Supplier].Add(b.Amount)
	}

	for _, supplier := range order {
		if counts[supplier] < roster.Expected(supplier) {
			res.Short = append(res.Short, supplier)
		}
	}

	for _, company := range roster.Companies() {
		if counts[company] == 0 {
			res.Lacking = append(res.Lacking, company)
		}
		res.Companies = append(res.Companies, CompanyStatus{
			Name:     company,
			Expected: roster.Expected(company),
			Observed: counts[company],
			Total:    totals[company],
		})
	}

	var unlisted []string
	for _, supplier := range order {
		if !roster.Contains(supplier) {
			unlisted = append(unlisted, supplier)
		}
	}
	res.NearMisses = findNearMisses(res.Lacking, unlisted)

	return res
}

// IsClean reports whether every roster company billed as expected.
func (r Result) IsClean() bool {
	return len(r.Lacking) == 0 && len(r.Short) == 0
}

// Status returns the status of a roster company.
func (r Result) Status(company string) (CompanyStatus, bool) {
	i := slices.IndexFunc(r.Companies, func(c CompanyStatus) bool { return c.Name == company })
	if i < 0 {
		return CompanyStatus{}, false
	}
	return r.Companies[i], true
}
