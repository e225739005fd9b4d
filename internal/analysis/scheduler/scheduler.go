// Package scheduler re-analyzes every tracked company on a fixed interval and
// once a day.
package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"brandpulse/pkg/identity"
	"brandpulse/pkg/logger"
	"brandpulse/pkg/model"
	"brandpulse/pkg/sanitizer"

	"github.com/robfig/cron/v3"
)

type CompanyLister interface {
	Tracked(ctx context.Context) ([]model.Company, error)
}

type Executor interface {
	Execute(ctx context.Context, task *model.AnalysisTask) error
}

type Options struct {
	Interval time.Duration
	// DailyAt is a local "HH:MM" time. Empty disables the daily run.
	DailyAt string
	// Delay separates consecutive companies within one pass.
	Delay time.Duration
	// RunTimeout bounds a single company's analysis.
	RunTimeout time.Duration
}

type Scheduler struct {
	companies CompanyLister
	executor  Executor
	opts      Options
	log       *logger.Logger
	cron      *cron.Cron

	// pass serializes passes; a trigger that finds one running is skipped.
	pass sync.Mutex

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func New(companies CompanyLister, executor Executor, opts Options, log *logger.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		companies: companies,
		executor:  executor,
		opts:      opts,
		log:       log,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
	}
}

// Start registers the schedules and starts the cron loop. It returns without
// running a pass.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return fmt.Errorf("scheduler already started")
	}

	specs, err := Specs(s.opts)
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		return fmt.Errorf("no analysis schedule configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	for _, spec := range specs {
		if _, err := s.cron.AddFunc(spec, func() { s.trigger(runCtx, spec) }); err != nil {
			cancel()
			return fmt.Errorf("failed to add schedule %q: %w", spec, err)
		}
	}

	s.ctx, s.cancel = runCtx, cancel
	s.cron.Start()
	s.log.Info("Analysis scheduler started", "schedules", specs)
	return nil
}

// Stop cancels a running pass and waits for it to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Analysis scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Analysis scheduler stop timed out")
	}
}

func (s *Scheduler) trigger(ctx context.Context, spec string) {
	if !s.pass.TryLock() {
		s.log.Info("Previous analysis pass still running, skipping", "schedule", spec)
		return
	}
	defer s.pass.Unlock()

	s.log.Info("Scheduled analysis pass triggered", "schedule", spec)
	s.runAll(ctx)
}

// RunAll analyzes every tracked company once, sequentially, and reports how
// many runs succeeded.
func (s *Scheduler) RunAll(ctx context.Context) int {
	s.pass.Lock()
	defer s.pass.Unlock()
	return s.runAll(ctx)
}

func (s *Scheduler) runAll(ctx context.Context) int {
	companies, err := s.companies.Tracked(ctx)
	if err != nil {
		s.log.Error("Failed to load tracked companies", "error", err)
		return 0
	}
	if len(companies) == 0 {
		s.log.Info("No companies to analyze")
		return 0
	}

	started := time.Now()
	succeeded := 0
	for i, company := range companies {
		if ctx.Err() != nil {
			s.log.Warn("Analysis pass cancelled", "remaining", len(companies)-i)
			break
		}
		if i > 0 && !sleep(ctx, s.opts.Delay) {
			break
		}

		task := taskFor(company)
		if task == nil {
			continue
		}
		if s.execute(ctx, task) {
			succeeded++
		}
	}

	s.log.Info("Analysis pass finished",
		"companies", len(companies),
		"succeeded", succeeded,
		"duration", time.Since(started),
	)
	return succeeded
}

func (s *Scheduler) execute(ctx context.Context, task *model.AnalysisTask) bool {
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	if err := s.executor.Execute(ctx, task); err != nil {
		s.log.Warn("Scheduled analysis failed", "company_id", task.CompanyID, "error", err)
		return false
	}
	return true
}

// taskFor builds the run for one directory record. Companies without stored
// keywords are searched by their display name.
func taskFor(c model.Company) *model.AnalysisTask {
	id := strings.TrimSpace(c.CompanyID)
	if id == "" {
		return nil
	}

	name := sanitizer.SanitizeName(c.Name)
	if name == "" {
		name = identity.DisplayName(id)
	}

	keywords := c.Keywords
	if len(keywords) == 0 {
		keywords = []string{name}
	}

	return &model.AnalysisTask{
		CompanyID:   identity.Canonical(name),
		CompanyName: name,
		Keywords:    keywords,
		Status:      model.TaskPending,
		CreatedAt:   time.Now().UTC(),
	}
}

// Specs converts the interval and daily time into cron expressions.
func Specs(opts Options) ([]string, error) {
	var specs []string
	if opts.Interval > 0 {
		specs = append(specs, "@every "+opts.Interval.String())
	}
	if at := strings.TrimSpace(opts.DailyAt); at != "" {
		t, err := time.Parse("15:04", at)
		if err != nil {
			return nil, fmt.Errorf("invalid daily analysis time %q: %w", at, err)
		}
		specs = append(specs, fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()))
	}
	return specs, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// cronLogger routes cron's own messages into the service logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
