package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"apim/internal/rules"
)

var (
	redEvent    = rules.Event{Date: "2025-01-10", Description: "deuda de la tarjeta", Amount: "3000"}
	yellowEvent = rules.Event{Date: "2025-01-11", Description: "súper", Emotion: "estrés"}
	greenEvent  = rules.Event{Date: "2025-01-12", Description: "cine", Emotion: "tranquilo"}
)

func fixedReporter() *Reporter {
	return NewReporter(func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) })
}

func TestWeekly_NoEvents(t *testing.T) {
	res := fixedReporter().Weekly(State{}, 5)
	if res.OK || res.Reason != ReasonNoEvents {
		t.Fatalf("want no_events, got %+v", res)
	}
	if res.Snapshot != nil || len(res.Rows) != 0 {
		t.Fatalf("empty report must not build a snapshot: %+v", res)
	}
	if !strings.Contains(res.Summary(), "No hay eventos") {
		t.Fatalf("unexpected summary: %q", res.Summary())
	}
}

func TestWeekly_OverallZoneScenarios(t *testing.T) {
	cases := []struct {
		name   string
		events []rules.Event
		want   rules.Zone
		counts Counts
	}{
		{"two reds", []rules.Event{redEvent, redEvent, greenEvent}, rules.ZoneRed, Counts{Green: 1, Red: 2}},
		{"one red taints", []rules.Event{redEvent, greenEvent, greenEvent}, rules.ZoneYellow, Counts{Green: 2, Red: 1}},
		{"two yellows", []rules.Event{yellowEvent, yellowEvent, greenEvent, greenEvent}, rules.ZoneYellow, Counts{Green: 2, Yellow: 2}},
		{"one yellow", []rules.Event{greenEvent, greenEvent, yellowEvent}, rules.ZoneGreen, Counts{Green: 2, Yellow: 1}},
	}
	for _, tc := range cases {
		res := fixedReporter().Weekly(State{Events: tc.events}, 5)
		if !res.OK {
			t.Fatalf("%s: unexpected failure %+v", tc.name, res)
		}
		if res.Snapshot.OverallZone != tc.want {
			t.Errorf("%s: want %s, got %s", tc.name, tc.want, res.Snapshot.OverallZone)
		}
		if res.Snapshot.Counts != tc.counts {
			t.Errorf("%s: want counts %+v, got %+v", tc.name, tc.counts, res.Snapshot.Counts)
		}
	}
}

func TestWeekly_WindowSelection(t *testing.T) {
	events := []rules.Event{redEvent, redEvent, redEvent, redEvent, greenEvent, greenEvent, greenEvent}
	res := fixedReporter().Weekly(State{Events: events}, 3)
	if res.Snapshot.NEvents != 3 || len(res.Rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(res.Rows))
	}
	if res.Snapshot.OverallZone != rules.ZoneGreen {
		t.Fatalf("older events leaked into window: %s", res.Snapshot.OverallZone)
	}

	res = fixedReporter().Weekly(State{Events: events}, 0)
	if res.Snapshot.NEvents != DefaultWindow {
		t.Fatalf("non-positive window should use default, got %d", res.Snapshot.NEvents)
	}
	if res.Rows[0].Zone != rules.ZoneRed || res.Rows[1].Zone != rules.ZoneRed {
		t.Fatalf("window should keep chronological order: %+v", res.Rows)
	}
}

func TestWeekly_RowTrendsResetPerWindow(t *testing.T) {
	state := State{
		Events:   []rules.Event{greenEvent, redEvent, yellowEvent, yellowEvent},
		LastZone: rules.ZoneRed,
	}
	res := fixedReporter().Weekly(state, 5)
	want := []rules.Trend{rules.TrendFlat, rules.TrendDown, rules.TrendUp, rules.TrendFlat}
	for i, r := range res.Rows {
		if r.Trend != want[i] {
			t.Errorf("row %d: want %s, got %s", i, want[i], r.Trend)
		}
	}
	if res.Rows[0].Event != "cine" || res.Rows[0].Date != "2025-01-12" {
		t.Fatalf("row fields not copied: %+v", res.Rows[0])
	}
}

func TestWeekly_OverallTrend(t *testing.T) {
	greens := []rules.Event{greenEvent, greenEvent}
	reds := []rules.Event{redEvent, redEvent}

	res := fixedReporter().Weekly(State{
		Events:    greens,
		LastZone:  rules.ZoneGreen,
		Snapshots: []WeeklySnapshot{{OverallZone: rules.ZoneGreen}, {OverallZone: rules.ZoneRed}},
	}, 5)
	if res.Snapshot.OverallTrend != rules.TrendUp {
		t.Errorf("latest snapshot should win: got %s", res.Snapshot.OverallTrend)
	}

	res = fixedReporter().Weekly(State{Events: reds, LastZone: rules.ZoneGreen}, 5)
	if res.Snapshot.OverallTrend != rules.TrendDown {
		t.Errorf("last zone fallback: want down, got %s", res.Snapshot.OverallTrend)
	}

	res = fixedReporter().Weekly(State{
		Events:    reds,
		LastZone:  rules.ZoneGreen,
		Snapshots: []WeeklySnapshot{{}},
	}, 5)
	if res.Snapshot.OverallTrend != rules.TrendDown {
		t.Errorf("empty snapshot zone should fall back to last zone: got %s", res.Snapshot.OverallTrend)
	}

	res = fixedReporter().Weekly(State{Events: reds}, 5)
	if res.Snapshot.OverallTrend != rules.TrendFlat {
		t.Errorf("no history: want flat, got %s", res.Snapshot.OverallTrend)
	}
}

func TestWeekly_ContainmentOnlyChangesSuggestion(t *testing.T) {
	events := []rules.Event{redEvent, yellowEvent}
	off := fixedReporter().Weekly(State{Events: events}, 5)
	on := fixedReporter().Weekly(State{Events: events, ContainmentMode: true}, 5)
	if off.Snapshot.OverallZone != on.Snapshot.OverallZone || off.Snapshot.OverallTrend != on.Snapshot.OverallTrend {
		t.Fatalf("containment changed classification")
	}
	if off.Snapshot.Suggestion == on.Snapshot.Suggestion {
		t.Fatalf("containment should change suggestion")
	}
	if off.Snapshot.Insight != on.Snapshot.Insight {
		t.Fatalf("containment should not change insight")
	}
}

func TestWeekly_SnapshotAndStateUntouched(t *testing.T) {
	state := State{Events: []rules.Event{greenEvent}, Snapshots: []WeeklySnapshot{{OverallZone: rules.ZoneGreen}}}
	res := fixedReporter().Weekly(state, 5)
	if res.Snapshot.Timestamp != "2025-01-15T10:00:00Z" {
		t.Fatalf("unexpected timestamp %q", res.Snapshot.Timestamp)
	}
	if len(state.Snapshots) != 1 {
		t.Fatalf("report must not append to history")
	}
	js, err := res.Snapshot.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	for _, key := range []string{`"n_events": 1`, `"overall_zone": "green"`, `"overall_trend": "flat"`, `"counts"`} {
		if !strings.Contains(js, key) {
			t.Errorf("json misses %s: %s", key, js)
		}
	}
	sum := res.Summary()
	if !strings.Contains(sum, "Eventos analizados: 1") || !strings.Contains(sum, res.Snapshot.Insight) {
		t.Fatalf("unexpected summary: %q", sum)
	}
}

func TestRenderTable(t *testing.T) {
	rows := []Row{
		{Date: "2025-01-12", Event: "una descripción bastante larga para la tabla", Amount: "12500", Zone: rules.ZoneGreen, Trend: rules.TrendFlat},
		{Date: "2025-01-13", Event: "renta", Amount: "mucho", Zone: rules.ZoneRed, Trend: rules.TrendDown},
	}
	var buf bytes.Buffer
	if err := RenderTable(&buf, rows); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("want header, separator and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "Fecha") || !strings.Contains(lines[0], "Tend.") {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.Contains(lines[2], "…") {
		t.Fatalf("long cell not truncated: %q", lines[2])
	}
	if !strings.Contains(lines[2], "$12,500 MXN") || !strings.Contains(lines[3], "mucho") {
		t.Fatalf("amount formatting wrong:\n%s", out)
	}
	if !strings.Contains(lines[3], "🔴") || !strings.Contains(lines[3], "📉") {
		t.Fatalf("symbols missing: %q", lines[3])
	}
	if seg := strings.Split(lines[1], "-+-"); len(seg) != 7 || len(seg[2]) != 12 {
		t.Fatalf("amount column width: %q", lines[1])
	}
}

func TestRenderTable_FiveDigitAmountFits(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTable(&buf, []Row{{Date: "2025-01-12", Event: "auto", Amount: "99999"}}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "$99,999 MXN") {
		t.Fatalf("amount cut:\n%s", buf.String())
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"12500":      "$12,500 MXN",
		"$1,234.6":   "$1,235 MXN",
		" 800 MXN ":  "$800 MXN",
		"mucho":      "mucho",
		"":           "",
	}
	for in, want := range cases {
		if got := FormatAmount(in); got != want {
			t.Errorf("FormatAmount(%q): want %q, got %q", in, want, got)
		}
	}
}
