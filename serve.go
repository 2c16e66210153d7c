package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/helpcomp/morning-bill-checker/prom"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"github.com/prometheus/exporter-toolkit/web"
	"github.com/rs/zerolog/log"
)

// ServeCmd keeps the current period reconciled and serves the results.
type ServeCmd struct {
	MetricsPath      string `env:"EXPORTER_METRICS_PATH" help:"${env} - Path under which to expose metrics" default:"/metrics"`
	ListenAddress    string `env:"EXPORTER_LISTEN_ADDRESS" help:"${env} - Address to listen on for web interface and telemetry" default:"9718"`
	RefreshTime      uint16 `env:"REFRESH_TIME" help:"${env} - Time in minutes between reconciliations (Default 360 / 6 hours)" default:"360"`
	EnablePrometheus bool   `env:"ENABLE_PROMETHEUS" help:"${env} - Enable Prometheus metrics" default:"true"`
}

func (s *ServeCmd) Validate() error {
	if s.RefreshTime == 0 {
		return errors.New("REFRESH_TIME must be at least 1 minute")
	}
	return nil
}

// refresh reconciles the checker's current period and stores the result.
// A failed run keeps the previous result.
func refresh(ctx context.Context, c *Checker, store *reportStore) {
	res, err := c.Run(ctx, c.Current())
	if err != nil {
		return
	}
	store.Set(res, time.Now())
}

func (s *ServeCmd) Run(g *Globals) error {
	checker, mo, err := g.newChecker()
	if err != nil {
		return err
	}
	store := &reportStore{}

	log.Logger.Info().
		Str("version", version.Info()).
		Msg("Starting " + AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create a channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	// Refresher
	ticker := time.NewTicker(time.Duration(s.RefreshTime) * time.Minute)
	defer ticker.Stop()

	// Immediately start a refresh of the data in the background
	go refresh(ctx, checker, store)

	// No Prometheus Support, refresh only
	if !s.EnablePrometheus {
		log.Info().Msg("Prometheus metrics are disabled. Refresh only.")
		for {
			select {
			case <-ticker.C:
				refresh(ctx, checker, store)
			case sig := <-sigChan:
				log.Info().Msgf("Received signal %s. Exiting...", sig)
				return nil
			}
		}
	}

	// Prometheus Support. Refresh and Metrics
	go func() {
		for {
			select {
			case <-ticker.C:
				refresh(ctx, checker, store)
			case <-ctx.Done():
				return
			}
		}
	}()

	// Metric Registration
	exporter := prom.NewExporter("bill_checker", store, mo)
	prometheus.MustRegister(
		versioncollector.NewCollector("bill_checker"),
		exporter,
	)

	// HTTP Server
	mux := http.NewServeMux()
	mux.Handle(s.MetricsPath, promhttp.Handler())
	mux.HandleFunc("/health", exporter.HealthHandler)
	mux.HandleFunc("/report", store.reportHandler)
	if s.MetricsPath != "/" && s.MetricsPath != "" {
		landingConfig := web.LandingConfig{
			Name:        AppName,
			Description: AppDesc,
			Version:     version.Print(AppName),
			Links: []web.LandingLinks{
				{
					Address: s.MetricsPath,
					Text:    "Metrics",
				},
				{
					Address: "/report",
					Text:    "Report",
				},
				{
					Address: "/health",
					Text:    "Health",
				},
			},
		}
		landingPage, err := web.NewLandingPage(landingConfig)
		if err != nil {
			return err
		}
		mux.Handle("/", landingPage)
	}

	log.Info().Msgf("Starting HTTP server on listen address :%s and metric path %s", s.ListenAddress, s.MetricsPath)

	server := &http.Server{
		Addr:         ":" + s.ListenAddress,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Listen and serve
	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Handle shutdown
	select {
	case err := <-serveErr:
		log.Error().Err(err).Msg("Error starting HTTP server")
		return err
	case <-sigChan:
		log.Info().Msg("Shutdown Signal Received")
	}
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	log.Info().Msg("Shutting down HTTP server...")
	_ = server.Shutdown(shutdownCtx)
	log.Info().Msg("Shutdown Complete; Exiting...")
	return nil
}
