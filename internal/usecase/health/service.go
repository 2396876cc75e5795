package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing; search still works.
	Degraded Status = "degraded"
	// Unhealthy indicates the document store is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

const databaseCheck = "database"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedCheck struct {
	name   string
	pinger Pinger
}

// Service coordinates health checks. The database check is required;
// the rest only degrade the status.
type Service struct {
	checks  []namedCheck
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Service around the document store pinger.
func New(db Pinger, logger *zap.Logger) *Service {
	return &Service{
		checks:  []namedCheck{{name: databaseCheck, pinger: db}},
		timeout: DefaultCheckTimeout,
		logger:  logger.Named("health"),
	}
}

// WithCheck adds an optional component check. A nil pinger is ignored.
func (s *Service) WithCheck(name string, p Pinger) *Service {
	if p != nil {
		s.checks = append(s.checks, namedCheck{name: name, pinger: p})
	}
	return s
}

// WithTimeout sets the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Names lists registered checks in alphabetical order.
func (s *Service) Names() []string {
	names := make([]string, 0, len(s.checks))
	for _, c := range s.checks {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

// Check runs all component checks concurrently.
func (s *Service) Check(ctx context.Context) Report {
	var mu sync.Mutex
	var wg sync.WaitGroup
	checks := make(map[string]CheckResult, len(s.checks))

	for _, c := range s.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := c.pinger.Ping(cctx); err != nil {
				s.logger.Warn("Health check failed", zap.String("component", c.name), zap.Error(err))
				res = CheckError
			}
			mu.Lock()
			checks[c.name] = res
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := Healthy
	for name, v := range checks {
		if v != CheckError {
			continue
		}
		if name == databaseCheck {
			status = Unhealthy
			break
		}
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
