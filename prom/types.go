package prom

import (
	"time"

	"github.com/helpcomp/morning-bill-checker/morning"
	"github.com/helpcomp/morning-bill-checker/reconcile"
	"github.com/prometheus/client_golang/prometheus"
)

// ReportSource provides the most recent reconciliation. ok is false until the
// first run has finished.
type ReportSource interface {
	Latest() (res reconcile.Result, at time.Time, ok bool)
}

// StatsSource provides the ledger API counters.
type StatsSource interface {
	Stats() morning.Stats
}

type Exporter struct {
	CompanyExpected *prometheus.Desc
	CompanyObserved *prometheus.Desc
	CompanyTotal    *prometheus.Desc
	CompanyLacking  *prometheus.Desc
	CompanyShort    *prometheus.Desc
	LackingCount    *prometheus.Desc
	ShortCount      *prometheus.Desc
	SkippedBills    *prometheus.Desc
	NoResult        *prometheus.Desc
	PeriodStart     *prometheus.Desc
	PeriodEnd       *prometheus.Desc
	RefreshTime     *prometheus.Desc
	APICalls        *prometheus.Desc
	APIErrors       *prometheus.Desc
	reports         ReportSource
	stats           StatsSource
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.CompanyExpected
	ch <- e.CompanyObserved
	ch <- e.CompanyTotal
	ch <- e.CompanyLacking
	ch <- e.CompanyShort
	ch <- e.LackingCount
	ch <- e.ShortCount
	ch <- e.SkippedBills
	ch <- e.NoResult
	ch <- e.PeriodStart
	ch <- e.PeriodEnd
	ch <- e.RefreshTime
	ch <- e.APICalls
	ch <- e.APIErrors
}

func NewExporter(namespace string, reports ReportSource, stats StatsSource) *Exporter {
	return &Exporter{
		CompanyExpected: prometheusCompanyStatsDesc(
			namespace,
			"expected_bills",
			"Minimum number of bills expected from the company in the reporting period",
		),
		CompanyObserved: prometheusCompanyStatsDesc(
			namespace,
			"observed_bills",
			"Number of bills recorded for the company in the reporting period",
		),
		CompanyTotal: prometheusCompanyStatsDesc(
			namespace,
			"bills_amount",
			"Sum of the amounts of the company's bills in the reporting period",
		),
		CompanyLacking: prometheusCompanyStatsDesc(
			namespace,
			"lacking",
			"1 if the company has no bill at all in the reporting period",
		),
		CompanyShort: prometheusCompanyStatsDesc(
			namespace,
			"short",
			"1 if the company has fewer bills than expected in the reporting period",
		),
		LackingCount: prometheusReportStatsDesc(
			namespace,
			"lacking_companies",
			"Number of companies lacking bills altogether",
		),
		ShortCount: prometheusReportStatsDesc(
			namespace,
			"short_companies",
			"Number of companies with fewer bills than expected",
		),
		SkippedBills: prometheusReportStatsDesc(
			namespace,
			"skipped_bills",
			"Bills ignored because they carry no supplier name",
		),
		NoResult: prometheusReportStatsDesc(
			namespace,
			"no_result",
			"1 if Morning returned no result for the reporting period",
		),
		PeriodStart: prometheusReportStatsDesc(
			namespace,
			"period_start",
			"Start of the reporting period (Unix Time / Epoch)",
		),
		PeriodEnd: prometheusReportStatsDesc(
			namespace,
			"period_end",
			"Last day of the reporting period (Unix Time / Epoch)",
		),
		RefreshTime: prometheusReportStatsDesc(
			namespace,
			"refresh_time",
			"Time of the last successful reconciliation (Unix Time / Epoch)",
		),
		APICalls: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"status",
				"api_calls",
			),
			"Count of API calls",
			[]string{"type"},
			nil,
		),
		APIErrors: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"status",
				"api_errors",
			),
			"Count of API Errors",
			[]string{"type"},
			nil,
		),
		reports: reports,
		stats:   stats,
	}
}

func prometheusCompanyStatsDesc(namespace string, metric string, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(
			namespace,
			"company",
			metric,
		),
		help,
		[]string{"company"},
		nil,
	)
}

func prometheusReportStatsDesc(namespace string, metric string, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(
			namespace,
			"report",
			metric,
		),
		help,
		[]string{},
		nil,
	)
}
