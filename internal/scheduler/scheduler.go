package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultWeeklySpec fires on Sundays at 21:00 UTC.
const DefaultWeeklySpec = "0 21 * * 0"

var ErrNoReportFunc = errors.New("report function not set")

// Scheduler runs the weekly report job.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
}

// New creates a scheduler for the given cron spec. Empty spec uses
// DefaultWeeklySpec.
func New(spec string) *Scheduler {
	if spec == "" {
		spec = DefaultWeeklySpec
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the report job and starts the cron loop. A bad spec is
// returned without starting anything.
func (s *Scheduler) Start() error {
	if s.reportFunc == nil {
		log.Println("⚠️ Report function not set, scheduler will not generate reports")
		return ErrNoReportFunc
	}

	_, err := s.cron.AddFunc(s.spec, s.run)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("📅 Scheduler started - weekly reports on %q (UTC)", s.spec)
	return nil
}

// RunNow triggers the report job immediately.
func (s *Scheduler) RunNow() error {
	if s.reportFunc == nil {
		return ErrNoReportFunc
	}
	return s.reportFunc(s.ctx)
}

func (s *Scheduler) run() {
	log.Println("🕘 Triggered weekly report generation")
	if err := s.reportFunc(s.ctx); err != nil {
		log.Printf("❌ Weekly report generation failed: %v", err)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	log.Println("📅 Scheduler stopped")
}

func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
