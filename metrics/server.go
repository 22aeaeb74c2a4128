package metrics

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DefaultAddr = ":6060"

var (
	EmptyLLMResponseCount  = expvar.NewInt("empty_llm_response_count")
	SuccessfulLLMGenCount  = expvar.NewInt("successful_llm_gen_count")
	FailedLLMGenCount      = expvar.NewInt("failed_llm_gen_count")
	DiscordMessageReceived = expvar.NewInt("discord_message_received")
	DiscordMessageSent     = expvar.NewInt("discord_message_sent")
	WeatherFetchSuccess    = expvar.NewInt("weather_fetch_success_count")
	WeatherFetchFail       = expvar.NewInt("weather_fetch_fail_count")
	UpstreamAlertCount     = expvar.NewInt("upstream_alert_count")

	DiscordCommandTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_command_total",
			Help: "Total number of Discord commands invoked by command type",
		},
		[]string{"command"},
	)

	DiscordCommandErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discord_command_errors",
			Help: "Total number of Discord command errors by command type",
		},
		[]string{"command"},
	)

	DiscordCommandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "discord_command_duration_seconds",
			Help:    "Duration of Discord command execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	UpstreamHealthy = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "upstream_healthy",
			Help: "1 when the last health check of an upstream service passed, 0 otherwise",
		},
		[]string{"service"},
	)
)

type Server struct {
	*http.Server
}

// SetupServer builds the metrics, health and pprof server listening on addr.
func SetupServer(addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewExpvarCollector(
			map[string]*prometheus.Desc{
				"discord_message_received":    prometheus.NewDesc("discord_message_received", "number of prefixed messages received from discord", nil, nil),
				"discord_message_sent":        prometheus.NewDesc("discord_message_sent", "number of messages sent to discord", nil, nil),
				"empty_llm_response_count":    prometheus.NewDesc("empty_llm_response_count", "number of times the model responded with an empty string", nil, nil),
				"successful_llm_gen_count":    prometheus.NewDesc("successful_llm_gen_count", "number of times the model generated a valid response", nil, nil),
				"failed_llm_gen_count":        prometheus.NewDesc("failed_llm_gen_count", "number of failed inference calls", nil, nil),
				"weather_fetch_success_count": prometheus.NewDesc("weather_fetch_success_count", "number of successful BMKG forecast fetches", nil, nil),
				"weather_fetch_fail_count":    prometheus.NewDesc("weather_fetch_fail_count", "number of failed BMKG forecast fetches", nil, nil),
				"upstream_alert_count":        prometheus.NewDesc("upstream_alert_count", "number of upstream alerts sent", nil, nil),
			},
		),
		DiscordCommandTotal,
		DiscordCommandErrors,
		DiscordCommandDuration,
		UpstreamHealthy,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return &Server{server}
}

// healthzHandler returns a simple health check response
func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Run serves until Stop is called. A clean stop returns nil.
func (s *Server) Run() error {
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.Shutdown(ctx)
}
