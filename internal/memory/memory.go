package memory

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"apim/internal/reporting"
	"apim/internal/rules"
)

const SchemaVersion = 1

type User struct {
	Profile          *string `json:"profile"`
	SecondaryProfile *string `json:"secondary_profile"`
}

type Settings struct {
	Window          string `json:"window"`
	ContainmentMode bool   `json:"containment_mode"`
}

// Memory is the persisted state document: journal events, weekly
// snapshots, the last evaluated zone and trend, and user settings.
type Memory struct {
	User            User                       `json:"user"`
	Settings        Settings                   `json:"settings"`
	Events          []rules.Event              `json:"events"`
	WeeklySnapshots []reporting.WeeklySnapshot `json:"weekly_snapshots"`
	LastZone        rules.Zone                 `json:"last_zone"`
	LastTrend       rules.Trend                `json:"last_trend"`
	CreatedAt       Time                       `json:"created_at"`
	UpdatedAt       Time                       `json:"updated_at"`
	SchemaVersion   int                        `json:"schema_version"`
}

// Store persists the memory document. Update runs fn on a fresh copy and
// saves it only when fn returns nil; implementations serialize concurrent
// updates.
type Store interface {
	Load() (*Memory, error)
	Save(m *Memory) error
	Update(fn func(m *Memory) error) error
	Close() error
}

// Default returns the document written on first use.
func Default(now time.Time) *Memory {
	return &Memory{
		Settings:        Settings{Window: "weekly"},
		Events:          []rules.Event{},
		WeeklySnapshots: []reporting.WeeklySnapshot{},
		CreatedAt:       Time{now},
		UpdatedAt:       Time{now},
		SchemaVersion:   SchemaVersion,
	}
}

// decode parses a stored document. Decoding on top of the defaults fills
// keys missing from older files while keeping everything that is present.
func decode(data []byte, now time.Time) (*Memory, error) {
	m := Default(now)
	if err := json.Unmarshal(data, m); err != nil {
		return nil, err
	}
	if m.Events == nil {
		m.Events = []rules.Event{}
	}
	if m.WeeklySnapshots == nil {
		m.WeeklySnapshots = []reporting.WeeklySnapshot{}
	}
	if m.Settings.Window == "" {
		m.Settings.Window = "weekly"
	}
	if m.SchemaVersion == 0 {
		m.SchemaVersion = SchemaVersion
	}

	var legacy struct {
		Settings struct {
			ModeContencion *bool `json:"mode_contencion"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &legacy); err == nil && legacy.Settings.ModeContencion != nil {
		m.Settings.ContainmentMode = m.Settings.ContainmentMode || *legacy.Settings.ModeContencion
	}
	m.normalizeTokens()
	return m, nil
}

// normalizeTokens rewrites pictorial zone and trend values from older files
// to the token form.
func (m *Memory) normalizeTokens() {
	if z := rules.ParseZone(string(m.LastZone)); z != "" {
		m.LastZone = z
	}
	if t := rules.ParseTrend(string(m.LastTrend)); t != "" {
		m.LastTrend = t
	}
	for i := range m.WeeklySnapshots {
		s := &m.WeeklySnapshots[i]
		if z := rules.ParseZone(string(s.OverallZone)); z != "" {
			s.OverallZone = z
		}
		if t := rules.ParseTrend(string(s.OverallTrend)); t != "" {
			s.OverallTrend = t
		}
	}
}

// Time is a timestamp that also reads the zone-less ISO form
// ("2025-01-01T09:00:00.123456") older memory files were written with.
// Naive values are taken as local time.
type Time struct {
	time.Time
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == nil || strings.TrimSpace(*s) == "" {
		t.Time = time.Time{}
		return nil
	}
	raw := strings.TrimSpace(*s)
	if v, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		t.Time = v
		return nil
	}
	for _, layout := range naiveLayouts {
		if v, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = v
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

// AddEvent appends a journal event, filling the timestamp when absent and
// normalizing the emotion to lowercase.
func (m *Memory) AddEvent(ev rules.Event, now time.Time) rules.Event {
	if strings.TrimSpace(ev.Timestamp) == "" {
		ev.Timestamp = now.Format(time.RFC3339)
	}
	ev.Emotion = strings.ToLower(strings.TrimSpace(ev.Emotion))
	m.Events = append(m.Events, ev)
	return ev
}

// ClearEvents drops every journal event. Used by tests and the CLI reset.
func (m *Memory) ClearEvents() {
	m.Events = []rules.Event{}
}

// EventsCopy returns the events without sharing the backing array.
func (m *Memory) EventsCopy() []rules.Event {
	out := make([]rules.Event, len(m.Events))
	copy(out, m.Events)
	return out
}

// AppendSnapshot records a weekly snapshot in history.
func (m *Memory) AppendSnapshot(s reporting.WeeklySnapshot) {
	m.WeeklySnapshots = append(m.WeeklySnapshots, s)
}

// ReportState is the view of memory the weekly report reads.
func (m *Memory) ReportState() reporting.State {
	snaps := make([]reporting.WeeklySnapshot, len(m.WeeklySnapshots))
	copy(snaps, m.WeeklySnapshots)
	return reporting.State{
		Events:          m.EventsCopy(),
		LastZone:        m.LastZone,
		Snapshots:       snaps,
		ContainmentMode: m.Settings.ContainmentMode,
	}
}

const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Open returns the store for the configured backend.
func Open(backend, filePath, badgerDir string, now func() time.Time) (Store, error) {
	switch strings.ToLower(backend) {
	case "", BackendFile:
		return NewFileStore(filePath, now)
	case BackendBadger:
		return NewBadgerStore(badgerDir, now)
	default:
		return nil, fmt.Errorf("unknown memory backend: %s", backend)
	}
}
