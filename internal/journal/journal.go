// Package journal wires the memory store to the zone rules and the weekly
// report. Every state change goes through Store.Update, so callers may use
// a Service from several goroutines.
package journal

import (
	"context"
	"fmt"
	"log"
	"time"

	"apim/internal/memory"
	"apim/internal/reporting"
	"apim/internal/rules"
)

// Evaluation is the zone, trend and coaching text of one event.
type Evaluation struct {
	Event    rules.Event    `json:"event"`
	Zone     rules.Zone     `json:"zone"`
	Trend    rules.Trend    `json:"trend"`
	Feedback rules.Feedback `json:"feedback"`
}

type Service struct {
	store    memory.Store
	reporter *reporting.Reporter
	now      func() time.Time
}

func New(store memory.Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, reporter: reporting.NewReporter(now), now: now}
}

// LogEvent appends a journal event, classifies it against the last known
// zone and stores the new zone and trend.
func (s *Service) LogEvent(ctx context.Context, ev rules.Event) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	var out Evaluation
	err := s.store.Update(func(m *memory.Memory) error {
		stored := m.AddEvent(ev, s.now())
		zone := rules.ComputeZone(stored)
		trend := rules.ComputeTrend(m.LastZone, zone)
		m.LastZone = zone
		m.LastTrend = trend
		out = Evaluation{
			Event:    stored,
			Zone:     zone,
			Trend:    trend,
			Feedback: rules.BuildFeedback(m.Settings.ContainmentMode, zone, trend),
		}
		return nil
	})
	if err != nil {
		return Evaluation{}, fmt.Errorf("log event: %w", err)
	}
	log.Printf("📝 Logged event %q: zone=%s trend=%s", out.Event.Description, out.Zone, out.Trend)
	return out, nil
}

// Evaluate classifies the latest event against the stored last zone
// without changing anything. With no events it reports yellow and flat.
func (s *Service) Evaluate(ctx context.Context) (Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return Evaluation{}, err
	}
	m, err := s.store.Load()
	if err != nil {
		return Evaluation{}, fmt.Errorf("load memory: %w", err)
	}
	out := Evaluation{Zone: rules.ZoneYellow, Trend: rules.TrendFlat}
	if n := len(m.Events); n > 0 {
		out.Event = m.Events[n-1]
		out.Zone = rules.ComputeZone(out.Event)
		out.Trend = rules.ComputeTrend(m.LastZone, out.Zone)
	}
	out.Feedback = rules.BuildFeedback(m.Settings.ContainmentMode, out.Zone, out.Trend)
	return out, nil
}

// WeeklyReport builds the report over the last window events. When
// persist is true the snapshot is appended to the stored history in the
// same update that read the state.
func (s *Service) WeeklyReport(ctx context.Context, window int, persist bool) (reporting.Result, error) {
	if err := ctx.Err(); err != nil {
		return reporting.Result{}, err
	}
	if !persist {
		m, err := s.store.Load()
		if err != nil {
			return reporting.Result{}, fmt.Errorf("load memory: %w", err)
		}
		return s.reporter.Weekly(m.ReportState(), window), nil
	}

	var res reporting.Result
	err := s.store.Update(func(m *memory.Memory) error {
		res = s.reporter.Weekly(m.ReportState(), window)
		if res.OK {
			m.AppendSnapshot(*res.Snapshot)
		}
		return nil
	})
	if err != nil {
		return reporting.Result{}, fmt.Errorf("weekly report: %w", err)
	}
	if res.OK {
		log.Printf("📊 Weekly snapshot saved: zone=%s trend=%s events=%d",
			res.Snapshot.OverallZone, res.Snapshot.OverallTrend, res.Snapshot.NEvents)
	}
	return res, nil
}

func (s *Service) SetContainment(ctx context.Context, on bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Update(func(m *memory.Memory) error {
		m.Settings.ContainmentMode = on
		return nil
	})
}

func (s *Service) Containment(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m, err := s.store.Load()
	if err != nil {
		return false, fmt.Errorf("load memory: %w", err)
	}
	return m.Settings.ContainmentMode, nil
}

// Snapshots returns the stored weekly history, oldest first.
func (s *Service) Snapshots(ctx context.Context) ([]reporting.WeeklySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := s.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load memory: %w", err)
	}
	return m.WeeklySnapshots, nil
}

// ClearEvents wipes the journal, keeping snapshots and settings.
func (s *Service) ClearEvents(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Update(func(m *memory.Memory) error {
		m.ClearEvents()
		return nil
	})
}

// SetProfile stores the persona from the latest questionnaire. The
// previous profile moves to the secondary slot when it differs.
func (s *Service) SetProfile(ctx context.Context, profile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Update(func(m *memory.Memory) error {
		if m.User.Profile != nil && *m.User.Profile != profile {
			prev := *m.User.Profile
			m.User.SecondaryProfile = &prev
		}
		m.User.Profile = &profile
		return nil
	})
}
