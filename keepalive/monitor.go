// Package keepalive watches the upstream services the bot's commands depend on and
// posts to a Discord channel when they go down or come back.
package keepalive

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kingdom-of-science/senku-bot/logging"
	"github.com/kingdom-of-science/senku-bot/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	// failureThreshold consecutive failed checks mark a service offline.
	failureThreshold = 3
	checkAttempts    = 3
)

// ServiceConfig represents configuration for a service to monitor
type ServiceConfig struct {
	Name      string
	HealthURL string
}

// ServiceState tracks the state of a monitored service
type ServiceState struct {
	Name                string
	HealthURL           string
	LastCheckTime       time.Time
	LastAlertTime       time.Time
	ConsecutiveFailures int
	IsHealthy           bool
	mu                  sync.RWMutex
}

// Alerter defines the interface for sending alerts
type Alerter interface {
	SendAlert(ctx context.Context, serviceName string, message string) error
}

// Monitor checks every service on an interval and alerts on state changes.
type Monitor struct {
	services      map[string]*ServiceState
	checkInterval time.Duration
	alertInterval time.Duration
	retryDelay    time.Duration
	httpClient    *http.Client
	alerter       Alerter
	logger        *logging.Logger
	mu            sync.RWMutex
}

// NewMonitor creates a monitor. Failing checks are alerted once the failure
// threshold is reached and then at most once per alertInterval.
func NewMonitor(
	services []ServiceConfig,
	checkInterval time.Duration,
	alertInterval time.Duration,
	alerter Alerter,
	logger *logging.Logger,
) *Monitor {
	if logger == nil {
		logger = logging.Default()
	}
	m := &Monitor{
		services:      make(map[string]*ServiceState),
		checkInterval: checkInterval,
		alertInterval: alertInterval,
		retryDelay:    time.Second,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		alerter: alerter,
		logger:  logger,
	}

	for _, svc := range services {
		m.services[svc.Name] = &ServiceState{
			Name:      svc.Name,
			HealthURL: svc.HealthURL,
			IsHealthy: true,
		}
		metrics.UpstreamHealthy.WithLabelValues(svc.Name).Set(1)
	}
	return m
}

// Start runs checks until ctx is cancelled.
func (m *Monitor) Start(ctx context.Context) error {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	m.checkAllServices(ctx)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("upstream monitor shutting down")
			return ctx.Err()
		case <-ticker.C:
			m.checkAllServices(ctx)
		}
	}
}

// checkAllServices checks all monitored services in parallel
func (m *Monitor) checkAllServices(ctx context.Context) {
	m.mu.RLock()
	services := make([]*ServiceState, 0, len(m.services))
	for _, svc := range m.services {
		services = append(services, svc)
	}
	m.mu.RUnlock()

	var eg errgroup.Group
	for _, svc := range services {
		eg.Go(func() error {
			m.checkService(ctx, svc)
			return nil
		})
	}
	// checkService handles its own failures
	_ = eg.Wait()
}

// checkService checks a single service, updates its state and sends any alert the
// transition calls for.
func (m *Monitor) checkService(ctx context.Context, state *ServiceState) {
	healthy := m.performHealthCheck(ctx, state.HealthURL)

	state.mu.Lock()
	state.LastCheckTime = time.Now()
	msg := m.transition(state, healthy)
	state.mu.Unlock()

	if healthy {
		metrics.UpstreamHealthy.WithLabelValues(state.Name).Set(1)
	} else {
		metrics.UpstreamHealthy.WithLabelValues(state.Name).Set(0)
	}

	if msg == "" {
		return
	}
	if err := m.alerter.SendAlert(ctx, state.Name, msg); err != nil {
		m.logger.Error("failed to send upstream alert", "error", err.Error(), "service", state.Name)
		return
	}
	metrics.UpstreamAlertCount.Add(1)
}

// transition applies one check result and returns the alert to send, if any.
// The caller holds state.mu.
func (m *Monitor) transition(state *ServiceState, healthy bool) string {
	if healthy {
		var msg string
		if !state.IsHealthy {
			m.logger.Info("service recovered", "service", state.Name, "after_failures", state.ConsecutiveFailures)
			msg = fmt.Sprintf("%s has recovered after %d failed checks", state.Name, state.ConsecutiveFailures)
		}
		state.IsHealthy = true
		state.ConsecutiveFailures = 0
		return msg
	}

	state.ConsecutiveFailures++
	m.logger.Warn("service health check failed",
		"service", state.Name,
		"consecutive_failures", state.ConsecutiveFailures,
		"url", state.HealthURL)

	switch {
	case state.ConsecutiveFailures < failureThreshold:
		return ""
	case state.ConsecutiveFailures == failureThreshold:
		state.IsHealthy = false
		state.LastAlertTime = time.Now()
		return fmt.Sprintf("%s is offline after %d failed health checks", state.Name, failureThreshold)
	case time.Since(state.LastAlertTime) >= m.alertInterval:
		state.LastAlertTime = time.Now()
		return fmt.Sprintf("%s is still offline (consecutive failures: %d)", state.Name, state.ConsecutiveFailures)
	default:
		return ""
	}
}

// performHealthCheck performs the HTTP health check with exponential backoff
// between attempts.
func (m *Monitor) performHealthCheck(ctx context.Context, url string) bool {
	delay := m.retryDelay

	for attempt := 1; attempt <= checkAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(delay):
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			m.logger.Error("failed to create health check request", "error", err.Error(), "url", url)
			return false
		}

		resp, err := m.httpClient.Do(req)
		if err != nil {
			m.logger.Debug("health check request failed", "error", err.Error(), "url", url, "attempt", attempt)
			continue
		}
		if err := resp.Body.Close(); err != nil {
			m.logger.Debug("failed to close response body", "error", err.Error())
		}

		if resp.StatusCode == http.StatusOK {
			return true
		}
		m.logger.Debug("health check returned non-OK status", "status", resp.StatusCode, "url", url, "attempt", attempt)
	}
	return false
}

// ServiceStateSnapshot is a snapshot of a service state without locks
type ServiceStateSnapshot struct {
	Name                string
	HealthURL           string
	LastCheckTime       time.Time
	LastAlertTime       time.Time
	ConsecutiveFailures int
	IsHealthy           bool
}

// GetServiceStates returns the current state of all services
func (m *Monitor) GetServiceStates() map[string]ServiceStateSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	states := make(map[string]ServiceStateSnapshot)
	for name, svc := range m.services {
		svc.mu.RLock()
		states[name] = ServiceStateSnapshot{
			Name:                svc.Name,
			HealthURL:           svc.HealthURL,
			LastCheckTime:       svc.LastCheckTime,
			LastAlertTime:       svc.LastAlertTime,
			ConsecutiveFailures: svc.ConsecutiveFailures,
			IsHealthy:           svc.IsHealthy,
		}
		svc.mu.RUnlock()
	}
	return states
}

// LogStates writes one record per service with its last known state.
func (m *Monitor) LogStates() {
	for name, state := range m.GetServiceStates() {
		m.logger.WithFields(map[string]any{
			"service":              name,
			"healthy":              state.IsHealthy,
			"consecutive_failures": state.ConsecutiveFailures,
			"last_check":           state.LastCheckTime,
		}).Info("upstream state")
	}
}
