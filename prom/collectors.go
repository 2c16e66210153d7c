package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/slices"
)

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	e.CollectReport(ch) // Latest reconciliation
	e.CollectSys(ch)    // Program Collector (API calls, etc...)
}

// CollectReport exports the latest reconciliation. Nothing is exported before
// the first run finishes.
func (e *Exporter) CollectReport(ch chan<- prometheus.Metric) {
	res, at, ok := e.reports.Latest()
	if !ok {
		return
	}

	// Companies //
	//////////////
	for _, c := range res.Companies {
		ch <- prometheus.MustNewConstMetric(e.CompanyExpected, prometheus.GaugeValue, float64(c.Expected), c.Name)
		ch <- prometheus.MustNewConstMetric(e.CompanyObserved, prometheus.GaugeValue, float64(c.Observed), c.Name)
		ch <- prometheus.MustNewConstMetric(e.CompanyTotal, prometheus.GaugeValue, c.Total.InexactFloat64(), c.Name)
		ch <- prometheus.MustNewConstMetric(e.CompanyLacking, prometheus.GaugeValue, boolToFloat(slices.Contains(res.Lacking, c.Name)), c.Name)
		ch <- prometheus.MustNewConstMetric(e.CompanyShort, prometheus.GaugeValue, boolToFloat(slices.Contains(res.Short, c.Name)), c.Name)
	}

	// Report //
	///////////
	ch <- prometheus.MustNewConstMetric(e.LackingCount, prometheus.GaugeValue, float64(len(res.Lacking)))
	ch <- prometheus.MustNewConstMetric(e.ShortCount, prometheus.GaugeValue, float64(len(res.Short)))
	ch <- prometheus.MustNewConstMetric(e.SkippedBills, prometheus.GaugeValue, float64(res.Skipped))
	ch <- prometheus.MustNewConstMetric(e.NoResult, prometheus.GaugeValue, boolToFloat(res.NoResult))
	ch <- prometheus.MustNewConstMetric(e.PeriodStart, prometheus.GaugeValue, float64(res.Period.Start.Unix()))
	ch <- prometheus.MustNewConstMetric(e.PeriodEnd, prometheus.GaugeValue, float64(res.Period.End.Unix()))
	ch <- prometheus.MustNewConstMetric(e.RefreshTime, prometheus.GaugeValue, float64(at.Unix()))
}

// CollectSys Collects Program information (API calls, etc...)
func (e *Exporter) CollectSys(ch chan<- prometheus.Metric) {
	stats := e.stats.Stats()
	ch <- prometheus.MustNewConstMetric(
		e.APICalls,
		prometheus.CounterValue,
		float64(stats.Calls),
		"morning",
	)
	ch <- prometheus.MustNewConstMetric(
		e.APIErrors,
		prometheus.CounterValue,
		float64(stats.Failures),
		"morning",
	)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
