package main

import (
	"context"
	"flag"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/kingdom-of-science/senku-bot/ai/inference"
	"github.com/kingdom-of-science/senku-bot/bmkg"
	"github.com/kingdom-of-science/senku-bot/config"
	"github.com/kingdom-of-science/senku-bot/data"
	"github.com/kingdom-of-science/senku-bot/database"
	"github.com/kingdom-of-science/senku-bot/discord"
	"github.com/kingdom-of-science/senku-bot/keepalive"
	"github.com/kingdom-of-science/senku-bot/logging"
	"github.com/kingdom-of-science/senku-bot/metrics"
	"github.com/kingdom-of-science/senku-bot/secrets"
)

func main() {
	var envFile string
	var logLevel string
	flag.StringVar(&envFile, "env", ".env", "Path to a .env file to load before reading the environment")
	flag.StringVar(&logLevel, "errorLevel", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	flag.Parse()

	cfg, err := config.Load(envFile)
	if err != nil {
		logging.Default().Error("failed to load config", "error", err.Error())
		os.Exit(1)
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	logger := logging.NewLogger(logging.ParseLevel(logLevel), os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}

	if cfg.OnePasswordToken != "" {
		logger.Info("loading secrets from 1password", "vault", cfg.OnePasswordVault)
		resolver, err := secrets.NewResolver(ctx, cfg.OnePasswordToken)
		if err != nil {
			logger.Error("failed to create 1password client", "error", err.Error())
			os.Exit(1)
		}
		if err := secrets.FillConfig(ctx, resolver, &cfg, logger); err != nil {
			logger.Error("failed to load secrets", "error", err.Error())
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err.Error())
		os.Exit(1)
	}

	// listen and serve for metrics server.
	server := metrics.SetupServer(cfg.MetricsAddr)
	go func() {
		if err := server.Run(); err != nil {
			logger.Error("metrics server stopped", "error", err.Error())
		}
	}()

	if err := data.Bootstrap(cfg.DataDir); err != nil {
		logger.Error("failed to prepare data dir", "error", err.Error(), "dir", cfg.DataDir)
		os.Exit(1)
	}
	store, err := data.Load(cfg.DataDir)
	if err != nil {
		logger.Error("failed to load data files", "error", err.Error(), "dir", cfg.DataDir)
		os.Exit(1)
	}
	quotes, facts, regions := store.Counts()
	logger.Info("data loaded", "quotes", quotes, "facts", facts, "regions", regions)

	var db database.CommandLogger = database.Noop{}
	var pg *database.Postgres
	if cfg.PostgresURL != "" {
		pg, err = database.NewPostgres(cfg.PostgresURL, logger)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err.Error())
			os.Exit(1)
		}
		db = pg
		if counts, err := pg.CommandCounts(ctx); err == nil {
			logger.Info("command history", "counts", counts)
		}
	}

	deps := discord.Deps{
		Store:   store,
		Weather: bmkg.NewClient(cfg.BMKGURL),
		DB:      db,
		Logger:  logger,
	}
	if keys := cfg.InferenceKeys(); len(keys) > 0 {
		llm, err := inference.Setup(keys, cfg.InferenceURL, cfg.InferenceModel, logger)
		if err != nil {
			logger.Error("failed to setup inference client", "error", err.Error())
			os.Exit(1)
		}
		deps.LLM = llm
		deps.ModelName = llm.ModelName()
	} else {
		logger.Warn("no HUGGING_API keys configured, !askai will report failures")
	}

	session, err := discord.Setup(cfg.DiscordToken, deps)
	if err != nil {
		logger.Error("failed to setup discord session", "error", err.Error())
		os.Exit(1)
	}

	var monitor *keepalive.Monitor
	if cfg.AlertChannelID != "" {
		alerter, err := keepalive.NewDiscordAlerter(session.Session, cfg.AlertChannelID, logger)
		if err != nil {
			logger.Error("failed to create discord alerter", "error", err.Error())
			os.Exit(1)
		}
		monitor = keepalive.NewMonitor(upstreams(cfg), cfg.CheckInterval, cfg.AlertInterval, alerter, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = monitor.Start(ctx)
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	logger.Info("Press Ctrl+C to exit")
	Shutdown(cancel, wg, session, pg, server, monitor, stop, logger)
}

// upstreams lists the services the bot's commands depend on.
func upstreams(cfg config.Config) []keepalive.ServiceConfig {
	services := []keepalive.ServiceConfig{}

	if u, err := url.Parse(cfg.BMKGURL); err == nil {
		q := u.Query()
		q.Set("adm4", cfg.MonitorRegion)
		u.RawQuery = q.Encode()
		services = append(services, keepalive.ServiceConfig{Name: "BMKG", HealthURL: u.String()})
	}
	if len(cfg.InferenceKeys()) > 0 {
		services = append(services, keepalive.ServiceConfig{
			Name:      "Inference",
			HealthURL: strings.TrimSuffix(cfg.InferenceURL, "/") + "/models",
		})
	}
	return services
}

// Shutdown waits for a signal, then stops the monitor and closes every connection.
func Shutdown(cancel context.CancelFunc, wg *sync.WaitGroup, session *discord.Client,
	pg *database.Postgres, server *metrics.Server, monitor *keepalive.Monitor, stop chan os.Signal, logger *logging.Logger,
) {
	<-stop
	logger.Info("Shutting down")
	cancel()
	wg.Wait()
	if monitor != nil {
		monitor.LogStates()
	}

	if err := session.Close(); err != nil {
		logger.Error("error closing discord session", "error", err.Error())
	}
	if pg != nil {
		if err := pg.Close(); err != nil {
			logger.Error("error closing postgres", "error", err.Error())
		}
	}

	ctx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := server.Stop(ctx); err != nil {
		logger.Error("error stopping metrics server", "error", err.Error())
	}
}
