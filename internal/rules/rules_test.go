package rules

import (
	"strings"
	"testing"
)

func TestComputeZone_GreenByEmotion(t *testing.T) {
	ev := Event{Description: "Viaje familiar", Context: "diversión", Emotion: "tranquilo"}
	if z := ComputeZone(ev); z != ZoneGreen {
		t.Fatalf("want green, got %s", z)
	}
}

func TestComputeZone_YellowByEmotion(t *testing.T) {
	ev := Event{Description: "Cambio laboral", Context: "necesito empleo", Emotion: "estrés"}
	if z := ComputeZone(ev); z != ZoneYellow {
		t.Fatalf("want yellow, got %s", z)
	}
}

func TestComputeZone_RedKeywordOverridesEmotion(t *testing.T) {
	emotions := []string{"", "tranquilo", "en paz", "estrés", "enojo", "algo raro"}
	events := []Event{
		{Description: "Me robaron el carro", Context: "estaba durmiendo"},
		{Description: "me despidieron hoy"},
		{Description: "compra grande", Context: "fraude con la tarjeta"},
		{Description: "  URGENTE: pago del hospital  "},
	}
	for _, base := range events {
		for _, emo := range emotions {
			ev := base
			ev.Emotion = emo
			if z := ComputeZone(ev); z != ZoneRed {
				t.Errorf("event %+v: want red, got %s", ev, z)
			}
		}
	}
}

func TestComputeZone_EmptyEventIsYellow(t *testing.T) {
	if z := ComputeZone(Event{}); z != ZoneYellow {
		t.Fatalf("want yellow, got %s", z)
	}
	if z := ComputeZone(Event{Emotion: "nostalgia"}); z != ZoneYellow {
		t.Fatalf("unknown emotion: want yellow, got %s", z)
	}
}

func TestComputeZone_CalmTripPlanned(t *testing.T) {
	ev := Event{Description: "tranquilo viaje", Context: "planeado", Emotion: "tranquilo"}
	if z := ComputeZone(ev); z != ZoneGreen {
		t.Fatalf("want green, got %s", z)
	}
}

func TestComputeZone_SoftAdjustments(t *testing.T) {
	cases := []struct {
		name string
		ev   Event
		want Zone
	}{
		{"yellow keyword caps calm emotion", Event{Description: "gasto imprevisto", Emotion: "en paz"}, ZoneYellow},
		{"yellow keyword keeps red emotion", Event{Description: "pago con retraso", Emotion: "miedo"}, ZoneRed},
		{"green keyword lifts red emotion", Event{Description: "ajuste planeado", Emotion: "miedo"}, ZoneGreen},
		{"green keyword lifts unknown emotion", Event{Context: "gasto estacional"}, ZoneGreen},
		{"emotion is normalized", Event{Emotion: "  Pánico "}, ZoneRed},
		{"amount is inert", Event{Amount: "999999", Emotion: "tranquila"}, ZoneGreen},
	}
	for _, tc := range cases {
		if got := ComputeZone(tc.ev); got != tc.want {
			t.Errorf("%s: want %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestComputeTrend(t *testing.T) {
	zones := []Zone{ZoneRed, ZoneYellow, ZoneGreen}
	for i, prev := range zones {
		if got := ComputeTrend("", prev); got != TrendFlat {
			t.Errorf("no history with %s: want flat, got %s", prev, got)
		}
		for j, cur := range zones {
			want := TrendFlat
			if j > i {
				want = TrendUp
			} else if j < i {
				want = TrendDown
			}
			if got := ComputeTrend(prev, cur); got != want {
				t.Errorf("%s -> %s: want %s, got %s", prev, cur, want, got)
			}
		}
	}
}

func TestComputeTrend_UnknownAndLegacyTokens(t *testing.T) {
	if got := ComputeTrend("purple", ZoneYellow); got != TrendFlat {
		t.Fatalf("unknown previous should rank as yellow, got %s", got)
	}
	if got := ComputeTrend("purple", ZoneGreen); got != TrendUp {
		t.Fatalf("unknown previous vs green: want up, got %s", got)
	}
	if got := ComputeTrend("🟢", ZoneYellow); got != TrendDown {
		t.Fatalf("legacy symbol should parse, got %s", got)
	}
}

func TestBuildFeedback_TrendClause(t *testing.T) {
	cases := map[Trend]string{
		TrendUp:   "La recuperación va mejor.",
		TrendDown: "La presión subió",
		TrendFlat: "Mantén el sistema simple.",
	}
	for trend, clause := range cases {
		fb := BuildFeedback(false, ZoneYellow, trend)
		if !strings.HasPrefix(fb.Comment, "Hay fricción") {
			t.Errorf("unexpected base comment: %q", fb.Comment)
		}
		if !strings.Contains(fb.Comment, clause) {
			t.Errorf("trend %s: comment %q misses %q", trend, fb.Comment, clause)
		}
	}
}

func TestBuildFeedback_ContainmentChangesOnlySuggestion(t *testing.T) {
	seen := map[string]bool{}
	for _, z := range []Zone{ZoneRed, ZoneYellow, ZoneGreen} {
		off := BuildFeedback(false, z, TrendFlat)
		on := BuildFeedback(true, z, TrendFlat)
		if off.Comment != on.Comment {
			t.Errorf("%s: comment changed with containment: %q vs %q", z, off.Comment, on.Comment)
		}
		if off.Suggestion == on.Suggestion {
			t.Errorf("%s: containment should change suggestion", z)
		}
		seen[off.Suggestion] = true
		seen[on.Suggestion] = true
	}
	if len(seen) != 6 {
		t.Fatalf("want 6 distinct suggestions, got %d", len(seen))
	}
}

func TestZoneSymbols(t *testing.T) {
	if ZoneRed.Symbol() == ZoneYellow.Symbol() || ZoneYellow.Symbol() == ZoneGreen.Symbol() {
		t.Fatalf("zone symbols must be distinct")
	}
	if TrendUp.Symbol() == TrendDown.Symbol() || TrendDown.Symbol() == TrendFlat.Symbol() {
		t.Fatalf("trend symbols must be distinct")
	}
}

func TestParseTrend(t *testing.T) {
	cases := map[string]Trend{"up": TrendUp, "📈": TrendUp, " Down ": TrendDown, "📉": TrendDown, "➖": TrendFlat, "flat": TrendFlat, "": "", "sideways": ""}
	for in, want := range cases {
		if got := ParseTrend(in); got != want {
			t.Errorf("ParseTrend(%q): want %q, got %q", in, want, got)
		}
	}
}
