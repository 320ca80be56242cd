package rules

import "strings"

// Zone is the risk tier of a journal event or of a reporting window.
type Zone string

const (
	ZoneRed    Zone = "red"
	ZoneYellow Zone = "yellow"
	ZoneGreen  Zone = "green"
)

// Trend is the direction of change between two zones.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendFlat Trend = "flat"
	TrendDown Trend = "down"
)

// Event is one journal entry. Every field may be empty.
type Event struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Context     string `json:"context"`
	Emotion     string `json:"emotion"`
	Timestamp   string `json:"timestamp"`
}

// ParseZone maps a stored token to a Zone. Pictorial symbols from older
// history are accepted; anything else yields "".
func ParseZone(s string) Zone {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "🔴":
		return ZoneRed
	case "yellow", "🟡":
		return ZoneYellow
	case "green", "🟢":
		return ZoneGreen
	}
	return ""
}

// ParseTrend maps a stored token or pictorial symbol to a Trend; anything
// else yields "".
func ParseTrend(s string) Trend {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "📈":
		return TrendUp
	case "down", "📉":
		return TrendDown
	case "flat", "➖":
		return TrendFlat
	}
	return ""
}

// Symbol returns the display glyph of the zone.
func (z Zone) Symbol() string {
	switch ParseZone(string(z)) {
	case ZoneRed:
		return "🔴"
	case ZoneGreen:
		return "🟢"
	}
	return "🟡"
}

// Symbol returns the display glyph of the trend.
func (t Trend) Symbol() string {
	switch t {
	case TrendUp:
		return "📈"
	case TrendDown:
		return "📉"
	}
	return "➖"
}

// rank orders zones from worst (0) to best (2). Unknown values rank as yellow.
func rank(z Zone) int {
	switch ParseZone(string(z)) {
	case ZoneRed:
		return 0
	case ZoneGreen:
		return 2
	}
	return 1
}

func zoneOfRank(r int) Zone {
	switch r {
	case 0:
		return ZoneRed
	case 2:
		return ZoneGreen
	}
	return ZoneYellow
}

// Keyword tables are matched as substrings of the normalized text, so stems
// like "despid" cover every conjugation.
var (
	redKeywords = []string{
		"robo", "robaron", "despid", "despido", "renuncia", "divorcio", "demanda", "fraude",
		"choque", "accidente", "hospital", "cirugía", "cirugia", "urgente", "deuda",
		"no puedo pagar", "mínimo", "embargo", "crisis",
	}

	yellowKeywords = []string{
		"estrés", "estres", "incertidumbre", "ajuste", "apretado",
		"imprevisto", "retraso", "tensión", "preocupación", "preocupacion",
	}

	greenKeywords = []string{
		"tranquilo", "tranquila", "controlado", "diversión", "diversion",
		"planeado", "planificado", "estacional", "enfocado", "bien",
	}
)

// emotionZone is the base zone of a declared emotion.
func emotionZone(emotion string) (Zone, bool) {
	switch emotion {
	case "tranquilo", "tranquila", "diversión", "diversion",
		"satisfacción", "satisfaccion", "en paz", "enfocado":
		return ZoneGreen, true
	case "estrés", "estres", "preocupación", "preocupacion",
		"ansiedad", "tensión", "tension":
		return ZoneYellow, true
	case "pánico", "panico", "enojo", "miedo", "culpa",
		"conflictivo", "desesperación", "desesperacion":
		return ZoneRed, true
	}
	return "", false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// ComputeZone classifies a single event.
//
// A red keyword in the description or context wins outright. Otherwise the
// declared emotion sets the base zone (yellow when unknown), a yellow
// keyword caps it at yellow and a green keyword then lifts it to green.
// The amount is not used yet.
func ComputeZone(ev Event) Zone {
	desc := normalize(ev.Description)
	ctx := normalize(ev.Context)

	if containsAny(desc, redKeywords) || containsAny(ctx, redKeywords) {
		return ZoneRed
	}

	base, ok := emotionZone(normalize(ev.Emotion))
	if !ok {
		base = ZoneYellow
	}

	r := rank(base)
	if containsAny(desc, yellowKeywords) || containsAny(ctx, yellowKeywords) {
		r = min(r, rank(ZoneYellow))
	}
	if containsAny(desc, greenKeywords) || containsAny(ctx, greenKeywords) {
		r = max(r, rank(ZoneGreen))
	}
	return zoneOfRank(r)
}

// ComputeTrend compares the current zone with a previous one. An empty
// previous zone means there is no history and the trend is flat.
func ComputeTrend(prev, cur Zone) Trend {
	if strings.TrimSpace(string(prev)) == "" {
		return TrendFlat
	}
	p, c := rank(prev), rank(cur)
	switch {
	case c > p:
		return TrendUp
	case c < p:
		return TrendDown
	}
	return TrendFlat
}
