package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/helpcomp/morning-bill-checker/config"
	"github.com/helpcomp/morning-bill-checker/morning"
	"github.com/helpcomp/morning-bill-checker/period"
	"github.com/helpcomp/morning-bill-checker/reconcile"
	"github.com/rs/zerolog/log"
)

// Checker ties the ledger client, the roster and the clock together.
type Checker struct {
	fetcher    reconcile.Fetcher
	reconciler *reconcile.Reconciler
	resolver   period.Resolver
}

func NewChecker(fetcher reconcile.Fetcher, roster reconcile.Roster, clock func() time.Time) *Checker {
	return &Checker{
		fetcher:    fetcher,
		reconciler: reconcile.New(roster),
		resolver:   period.Resolver{Clock: clock},
	}
}

// newChecker loads the config file and builds a Checker backed by the Morning
// API. The client is returned too so its counters can be exported.
func (g *Globals) newChecker() (*Checker, *morning.Morning, error) {
	cfg, err := config.InitConfig(g.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	roster, err := cfg.BuildRoster()
	if err != nil {
		return nil, nil, err
	}
	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, nil, err
	}

	mo := morning.New(&http.Client{Timeout: timeout}, g.TokenURL, g.ExpenseURL, g.MorningAPIKey, g.MorningSecret)
	log.Debug().Int("companies", roster.Len()).Str("config", g.ConfigPath).Msg("Loaded roster")
	return NewChecker(mo, roster, time.Now), mo, nil
}

// Current is the reporting period for the checker's clock.
func (c *Checker) Current() period.Period {
	return c.resolver.Resolve(nil)
}

// Run reconciles p and logs the outcome.
func (c *Checker) Run(ctx context.Context, p period.Period) (reconcile.Result, error) {
	log.Debug().Str("period", p.String()).Msg("Starting reconciliation")

	res, err := c.reconciler.Reconcile(ctx, p, c.fetcher)
	if err != nil {
		if errors.Is(err, morning.ErrUnauthorized) {
			log.Error().Err(err).Msg("Morning rejected the credentials. Check MORNING_API_KEY and MORNING_SECRET.")
		} else {
			log.Error().Err(err).Str("period", p.String()).Msg("Could not reconcile bills")
		}
		return reconcile.Result{}, err
	}

	logResult(res)
	return res, nil
}

func logResult(res reconcile.Result) {
	for _, company := range res.Lacking {
		log.Warn().
			Str("Type", "Lacking").
			Str("Company", company).
			Str("Period", res.Period.Label()).
			Msgf("📭 No bills from %s", company)
	}
	for _, company := range res.Short {
		status, _ := res.Status(company)
		log.Warn().
			Str("Type", "Short").
			Str("Company", company).
			Int("Expected", status.Expected).
			Int("Observed", status.Observed).
			Msgf("🧾 Fewer bills than expected from %s", company)
	}
	for _, miss := range res.NearMisses {
		log.Warn().
			Str("Type", "NearMiss").
			Str("Expected", miss.Expected).
			Str("Observed", miss.Observed).
			Msg("A supplier name almost matches a roster company. If it is the same company, fix the name in the config file.")
	}
	if res.Skipped > 0 {
		log.Info().Int("Skipped", res.Skipped).Msg("Ignored bills without a supplier name")
	}

	if res.NoResult {
		log.Warn().
			Str("Period", res.Period.Describe()).
			Msg("Morning returned no result for the period. Nothing to reconcile.")
		return
	}

	summary := log.Info()
	if !res.IsClean() {
		summary = log.Warn()
	}
	summary.
		Str("Period", res.Period.Describe()).
		Int("Lacking", len(res.Lacking)).
		Int("Short", len(res.Short)).
		Msg("Reconciliation complete")
}

// CheckCmd reconciles a single period.
type CheckCmd struct {
	Date   string `help:"Reference date. The period containing it is checked, or the previous one during its first days. Defaults to today." placeholder:"YYYY-MM-DD"`
	Period string `help:"Check a named period instead (Jan-Feb, Mar-Apr, May-June, July-Aug, Sep-Oct, Nov-Dec)" placeholder:"LABEL"`
	Year   int    `help:"Year of --period. Defaults to the current year."`
	JSON   bool   `help:"Print the report as JSON"`
}

func (c *CheckCmd) Validate() error {
	if c.Date != "" && c.Period != "" {
		return errors.New("--date and --period are mutually exclusive")
	}
	if c.Year != 0 && c.Period == "" {
		return errors.New("--year requires --period")
	}
	return nil
}

// resolve picks the period requested on the command line.
func (c *CheckCmd) resolve(r period.Resolver, now time.Time) (period.Period, error) {
	switch {
	case c.Period != "":
		year := c.Year
		if year == 0 {
			year = now.Year()
		}
		return period.FromLabel(year, c.Period)
	case c.Date != "":
		ref, err := period.ParseDate(c.Date)
		if err != nil {
			return period.Period{}, err
		}
		return r.Resolve(&ref), nil
	default:
		return r.Resolve(nil), nil
	}
}

func (c *CheckCmd) Run(g *Globals) error {
	checker, _, err := g.newChecker()
	if err != nil {
		return err
	}
	p, err := c.resolve(checker.resolver, time.Now())
	if err != nil {
		return err
	}

	res, err := checker.Run(context.Background(), p)
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(stdout, res)
	}
	if err := writeText(stdout, res); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
