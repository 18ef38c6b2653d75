// Command weatherserver starts the HTTP weather service: a single
// goroutine running the cooperative scheduler's run loop until
// terminated by signal.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Under-Bordet-AB/weatherserver/config"
	"github.com/Under-Bordet-AB/weatherserver/monitor"
	"github.com/Under-Bordet-AB/weatherserver/wlog"
	"github.com/Under-Bordet-AB/weatherserver/wserver"
)

func main() {
	cfg := config.Default()

	flag.StringVar(&cfg.Address, "address", cfg.Address, "bind address, empty for all interfaces")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "listen port")
	flag.IntVar(&cfg.ListenBacklog, "backlog", cfg.ListenBacklog, "listen socket backlog")
	flag.IntVar(&cfg.MaxTasks, "max-tasks", cfg.MaxTasks, "scheduler task capacity")
	flag.IntVar(&cfg.MaxRequestBytes, "max-request-bytes", cfg.MaxRequestBytes, "max accepted request size")
	flag.IntVar(&cfg.IdleTimeoutMs, "idle-timeout-ms", cfg.IdleTimeoutMs, "connection idle timeout, in milliseconds")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
	indexPath := flag.String("index-html", "www/index.html", "path to the index page served at /index.html")
	surprisePath := flag.String("surprise-asset", "", "optional path to the /surprise image asset")
	metricsAddr := flag.String("metrics-address", ":9090", "address to serve /metrics on, empty to disable")
	flag.Parse()

	log := wlog.New(os.Stderr)
	log.SetLevel(levelFromString(cfg.LogLevel))

	reg := prometheus.NewRegistry()
	mon := monitor.New(reg)

	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, reg, log)
	}

	srv, err := wserver.New(cfg, wserver.Assets{
		IndexHTMLPath: *indexPath,
		SurprisePath:  *surprisePath,
	}, log, mon)
	if err != nil {
		log.Error("failed to initialize server", err, wlog.Fields{})
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received", wlog.Fields{})
		srv.Shutdown()
	}()

	if runErr := srv.Run(); runErr != nil {
		log.Error("server exited with error", runErr, wlog.Fields{})
		os.Exit(1)
	}
}

func levelFromString(s string) wlog.Level {
	switch s {
	case "debug":
		return wlog.DebugLevel
	case "warn":
		return wlog.WarnLevel
	case "error":
		return wlog.ErrorLevel
	default:
		return wlog.InfoLevel
	}
}

// serveMetrics exposes /metrics over plain net/http — the one place
// this binary uses the standard HTTP server, since the module's own
// non-blocking transport and scheduler exist to serve the weather API,
// not a Prometheus scrape endpoint.
func serveMetrics(addr string, reg *prometheus.Registry, log wlog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.Info("metrics listening", wlog.Fields{"address": addr})
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server failed", err, wlog.Fields{})
	}
}
