package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moolen/poietic/internal/config"
	"github.com/moolen/poietic/internal/lifecycle"
	"github.com/moolen/poietic/internal/logging"
	"github.com/moolen/poietic/internal/metamodel"
	"github.com/moolen/poietic/internal/tracing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve the design's Prometheus metrics until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("serve-metrics")

		if _, err := openDesign(cfg); err != nil {
			return err
		}

		manager := lifecycle.NewManager()

		tracingProvider, err := tracing.NewTracingProvider(tracing.Config{
			Enabled:     cfg.TracingEnabled,
			Endpoint:    cfg.TracingEndpoint,
			TLSCAPath:   cfg.TracingTLSCAPath,
			TLSInsecure: cfg.TracingTLSInsecure,
		})
		if err != nil {
			logger.Warn("failed to initialize tracing (continuing without it): %v", err)
			tracingProvider = nil
		}
		if tracingProvider != nil {
			if err := manager.Register(tracingProvider); err != nil {
				return err
			}
		}

		metricsSrv := newMetricsServer(cfg.MetricsAddr)
		if err := manager.Register(metricsSrv); err != nil {
			return err
		}

		if cfg.MetamodelWatchEnabled {
			watcher, err := config.NewMetamodelWatcher(config.MetamodelWatcherConfig{
				FilePath: cfg.MetamodelPath,
			}, func(data []byte) error {
				if _, err := metamodel.LoadYAML(data); err != nil {
					logger.Warn("metamodel %s changed but failed to parse: %v", cfg.MetamodelPath, err)
					return err
				}
				logger.Info("metamodel %s changed and re-parsed cleanly; restart to pick it up", cfg.MetamodelPath)
				return nil
			})
			if err != nil {
				return err
			}
			if err := manager.Register(watcher); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := manager.Start(ctx); err != nil {
			return err
		}
		logger.Info("serving metrics on %s", cfg.MetricsAddr)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		return manager.Stop(shutdownCtx)
	},
}

// metricsServer is a lifecycle.Component wrapping a promhttp listener
// over the process-wide default Prometheus registry.
type metricsServer struct {
	addr string
	srv  *http.Server
}

func newMetricsServer(addr string) *metricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}))
	return &metricsServer{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

func (m *metricsServer) Start(ctx context.Context) error {
	logger := logging.GetLogger("serve-metrics")
	go func() {
		if err := m.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed: %v", err)
		}
	}()
	return nil
}

func (m *metricsServer) Stop(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}

func (m *metricsServer) Name() string { return "metrics-server" }
