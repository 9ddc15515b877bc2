// Package probe periodically checks that the backend API answers.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Status is the outcome of the latest probe
type Status struct {
	Up         bool      `json:"up"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Recorder receives every probe result
type Recorder interface {
	SetUpstreamUp(up bool)
}

// Prober checks GET baseURL+path on a cron schedule
type Prober struct {
	target     string
	httpClient *http.Client
	recorder   Recorder
	logger     zerolog.Logger

	mu   sync.RWMutex
	last *Status

	cron *cron.Cron
}

// New creates a prober; recorder may be nil
func New(baseURL, path string, timeout time.Duration, recorder Recorder, logger zerolog.Logger) *Prober {
	return &Prober{
		target:     baseURL + path,
		httpClient: &http.Client{Timeout: timeout},
		recorder:   recorder,
		logger:     logger,
	}
}

// Check probes the backend once and stores the result
func (p *Prober) Check(ctx context.Context) Status {
	status := Status{CheckedAt: time.Now().UTC()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.target, nil)
	if err != nil {
		status.Error = fmt.Sprintf("failed to create request: %v", err)
	} else if resp, err := p.httpClient.Do(req); err != nil {
		status.Error = err.Error()
	} else {
		resp.Body.Close()
		status.StatusCode = resp.StatusCode
		// Any answer below 500 means the backend is serving
		status.Up = resp.StatusCode < http.StatusInternalServerError
	}

	p.mu.Lock()
	wasUp := p.last != nil && p.last.Up
	first := p.last == nil
	p.last = &status
	p.mu.Unlock()

	if p.recorder != nil {
		p.recorder.SetUpstreamUp(status.Up)
	}

	if first || wasUp != status.Up {
		event := p.logger.Info()
		if !status.Up {
			event = p.logger.Warn()
		}
		event.
			Str("target", p.target).
			Bool("up", status.Up).
			Int("status_code", status.StatusCode).
			Str("error", status.Error).
			Msg("Backend reachability changed")
	}

	return status
}

// Last returns the latest result, or nil before the first check
func (p *Prober) Last() *Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last == nil {
		return nil
	}
	s := *p.last
	return &s
}

// Start runs one check immediately, then on schedule (e.g. "@every 30s").
// A tick that lands while a check is still in flight is skipped.
func (p *Prober) Start(schedule string) error {
	logger := cronLogger{logger: p.logger}
	c := cron.New(cron.WithLogger(logger))

	job := cron.NewChain(cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() {
		p.Check(context.Background())
	}))
	if _, err := c.AddJob(schedule, job); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}

	go job.Run()

	c.Start()
	p.cron = c
	return nil
}

// Stop halts the schedule and waits for a running check to finish
func (p *Prober) Stop() {
	if p.cron == nil {
		return
	}
	<-p.cron.Stop().Done()
}

// cronLogger routes the scheduler's own messages through zerolog
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
