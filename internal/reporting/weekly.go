// Package reporting aggregates the last journal events into a weekly
// snapshot: per-event zones and trends, zone counts, one overall zone and
// trend for the window, and coaching text.
package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"apim/internal/rules"
)

// DefaultWindow is the number of events a weekly report looks at.
const DefaultWindow = 5

// ReasonNoEvents is reported when the window is empty.
const ReasonNoEvents = "no_events"

// Row is one display line of the report.
type Row struct {
	Date    string      `json:"date"`
	Event   string      `json:"event"`
	Amount  string      `json:"amount"`
	Context string      `json:"context"`
	Emotion string      `json:"emotion"`
	Zone    rules.Zone  `json:"zone"`
	Trend   rules.Trend `json:"trend"`
}

// Counts tallies rows per zone.
type Counts struct {
	Green  int `json:"green"`
	Yellow int `json:"yellow"`
	Red    int `json:"red"`
}

// WeeklySnapshot is the persisted aggregate of one report.
type WeeklySnapshot struct {
	Timestamp    string      `json:"timestamp"`
	NEvents      int         `json:"n_events"`
	OverallZone  rules.Zone  `json:"overall_zone"`
	OverallTrend rules.Trend `json:"overall_trend"`
	Counts       Counts      `json:"counts"`
	Insight      string      `json:"insight"`
	Suggestion   string      `json:"suggestion"`
}

// State is the slice of persisted memory the report reads.
type State struct {
	Events          []rules.Event
	LastZone        rules.Zone
	Snapshots       []WeeklySnapshot
	ContainmentMode bool
}

// Result is the outcome of one report. When OK is false, Reason says why
// and nothing else is set.
type Result struct {
	OK       bool            `json:"ok"`
	Reason   string          `json:"reason,omitempty"`
	Snapshot *WeeklySnapshot `json:"snapshot,omitempty"`
	Rows     []Row           `json:"rows,omitempty"`
}

// Reporter builds weekly reports. The clock is injectable for tests.
type Reporter struct {
	now func() time.Time
}

func NewReporter(now func() time.Time) *Reporter {
	if now == nil {
		now = time.Now
	}
	return &Reporter{now: now}
}

// Weekly classifies the last window events of state and derives the
// overall verdict. It does not modify state; appending the snapshot to the
// history is up to the caller.
func (r *Reporter) Weekly(state State, window int) Result {
	events := lastN(state.Events, window)
	if len(events) == 0 {
		return Result{OK: false, Reason: ReasonNoEvents}
	}

	rows := windowTrends(events)
	counts := countZones(rows)
	zone := overallZone(counts)
	trend := overallTrend(state, zone)
	fb := rules.BuildFeedback(state.ContainmentMode, zone, trend)

	snap := &WeeklySnapshot{
		Timestamp:    r.now().Format(time.RFC3339),
		NEvents:      len(rows),
		OverallZone:  zone,
		OverallTrend: trend,
		Counts:       counts,
		Insight:      fb.Comment,
		Suggestion:   fb.Suggestion,
	}
	return Result{OK: true, Snapshot: snap, Rows: rows}
}

func lastN(events []rules.Event, n int) []rules.Event {
	if n <= 0 {
		n = DefaultWindow
	}
	if len(events) <= n {
		return events
	}
	return events[len(events)-n:]
}

// windowTrends builds the rows of a window. Each row's trend compares
// against the previous row only, so the first row is always flat no matter
// what was persisted before.
func windowTrends(events []rules.Event) []Row {
	rows := make([]Row, 0, len(events))
	var prev rules.Zone
	for _, ev := range events {
		z := rules.ComputeZone(ev)
		rows = append(rows, Row{
			Date:    strings.TrimSpace(ev.Date),
			Event:   strings.TrimSpace(ev.Description),
			Amount:  strings.TrimSpace(ev.Amount),
			Context: strings.TrimSpace(ev.Context),
			Emotion: strings.TrimSpace(ev.Emotion),
			Zone:    z,
			Trend:   rules.ComputeTrend(prev, z),
		})
		prev = z
	}
	return rows
}

func countZones(rows []Row) Counts {
	var c Counts
	for _, r := range rows {
		switch r.Zone {
		case rules.ZoneGreen:
			c.Green++
		case rules.ZoneYellow:
			c.Yellow++
		case rules.ZoneRed:
			c.Red++
		}
	}
	return c
}

// overallZone is deliberately risk-averse: one red event already rules out
// green, two make the whole window red.
func overallZone(c Counts) rules.Zone {
	switch {
	case c.Red >= 2:
		return rules.ZoneRed
	case c.Red == 1:
		return rules.ZoneYellow
	case c.Yellow >= 2:
		return rules.ZoneYellow
	}
	return rules.ZoneGreen
}

// overallTrend compares the window verdict with the previous report, or
// with the last zone recorded in memory when no report exists yet.
func overallTrend(state State, zone rules.Zone) rules.Trend {
	var prev rules.Zone
	if n := len(state.Snapshots); n > 0 {
		prev = state.Snapshots[n-1].OverallZone
	}
	if strings.TrimSpace(string(prev)) == "" {
		prev = state.LastZone
	}
	return rules.ComputeTrend(prev, zone)
}

// Summary renders the closing block printed under the table.
func (res Result) Summary() string {
	if !res.OK || res.Snapshot == nil {
		return "📊 APIM VI — Reporte semanal\nNo hay eventos registrados aún."
	}
	s := res.Snapshot
	var b strings.Builder
	b.WriteString("📌 Resumen semanal\n")
	b.WriteString(fmt.Sprintf("- Eventos analizados: %d\n", s.NEvents))
	b.WriteString(fmt.Sprintf("- Conteo zonas: %s%d  %s%d  %s%d\n",
		rules.ZoneGreen.Symbol(), s.Counts.Green,
		rules.ZoneYellow.Symbol(), s.Counts.Yellow,
		rules.ZoneRed.Symbol(), s.Counts.Red))
	b.WriteString(fmt.Sprintf("- Zona global: %s\n", s.OverallZone.Symbol()))
	b.WriteString(fmt.Sprintf("- Tendencia: %s\n", s.OverallTrend.Symbol()))
	b.WriteString(fmt.Sprintf("- Insight: %s\n", s.Insight))
	b.WriteString(fmt.Sprintf("- Sugerencia: %s\n", s.Suggestion))
	return b.String()
}

// ToJSON serializes the snapshot for logs and tool responses.
func (s *WeeklySnapshot) ToJSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
