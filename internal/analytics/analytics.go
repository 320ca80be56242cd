package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"apim/internal/storage"
)

// HighConfidence is the confidence at which a wrong shadow prediction
// counts as a serious error.
const HighConfidence = 0.6

// BucketLabels are the confidence ranges, lower bound inclusive. The last
// bucket also holds confidence 1.0.
var BucketLabels = []string{"0.0-0.5", "0.5-0.6", "0.6-0.7", "0.7-0.8", "0.8-0.9", "0.9-1.0"}

var bucketEdges = []float64{0.0, 0.5, 0.6, 0.7, 0.8, 0.9, 1.01}

// BucketOf returns the label of the bucket holding conf, or "".
func BucketOf(conf float64) string {
	for i, label := range BucketLabels {
		if bucketEdges[i] <= conf && conf < bucketEdges[i+1] {
			return label
		}
	}
	return ""
}

// Bucket holds accuracy within one confidence range.
type Bucket struct {
	Label    string  `json:"label"`
	Total    int     `json:"total"`
	Matches  int     `json:"matches"`
	Accuracy float64 `json:"accuracy"`
}

// Confusion counts shadow predictions that disagreed with the rules.
type Confusion struct {
	Rules     string `json:"rules_persona"`
	Predicted string `json:"predicted_persona"`
	Count     int    `json:"count"`
}

type HighConfidenceError struct {
	RunID      string  `json:"run_id"`
	Rules      string  `json:"rules_persona"`
	Predicted  string  `json:"predicted_persona"`
	Confidence float64 `json:"confidence"`
}

// ShadowStats compares the dojo classifier against the rules persona.
type ShadowStats struct {
	Total               int                   `json:"total"`
	Matches             int                   `json:"matches"`
	Accuracy            float64               `json:"accuracy"`
	AverageConfidence   float64               `json:"average_confidence"`
	Buckets             []Bucket              `json:"buckets"`
	TopErrors           []Confusion           `json:"top_errors"`
	HighConfidenceError []HighConfidenceError `json:"high_confidence_errors"`
}

// AnalyzeShadow considers only shadow records whose prediction succeeded.
func AnalyzeShadow(records []storage.Record) *ShadowStats {
	stats := &ShadowStats{}
	buckets := make(map[string]*Bucket, len(BucketLabels))
	for _, l := range BucketLabels {
		buckets[l] = &Bucket{Label: l}
	}
	confusions := make(map[[2]string]int)
	var confSum float64

	for _, r := range records {
		if r.Type != storage.TypeShadow || r.Prediction == nil || !r.Prediction.OK {
			continue
		}
		stats.Total++
		rules, pred, conf := r.RulesPersona, r.Prediction.Persona, r.Prediction.Confidence
		confSum += conf

		b := buckets[BucketOf(conf)]
		if b != nil {
			b.Total++
		}
		if rules != "" && pred != "" && rules == pred {
			stats.Matches++
			if b != nil {
				b.Matches++
			}
			continue
		}
		confusions[[2]string{rules, pred}]++
		if rules != "" && pred != "" && conf >= HighConfidence {
			stats.HighConfidenceError = append(stats.HighConfidenceError, HighConfidenceError{
				RunID: r.RunID, Rules: rules, Predicted: pred, Confidence: conf,
			})
		}
	}

	if stats.Total > 0 {
		stats.Accuracy = float64(stats.Matches) / float64(stats.Total)
		stats.AverageConfidence = confSum / float64(stats.Total)
	}
	for _, l := range BucketLabels {
		b := buckets[l]
		if b.Total > 0 {
			b.Accuracy = float64(b.Matches) / float64(b.Total)
		}
		stats.Buckets = append(stats.Buckets, *b)
	}

	for pair, n := range confusions {
		stats.TopErrors = append(stats.TopErrors, Confusion{Rules: pair[0], Predicted: pair[1], Count: n})
	}
	sort.Slice(stats.TopErrors, func(i, j int) bool {
		a, b := stats.TopErrors[i], stats.TopErrors[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Rules != b.Rules {
			return a.Rules < b.Rules
		}
		return a.Predicted < b.Predicted
	})
	if len(stats.TopErrors) > 5 {
		stats.TopErrors = stats.TopErrors[:5]
	}
	sort.SliceStable(stats.HighConfidenceError, func(i, j int) bool {
		return stats.HighConfidenceError[i].Confidence > stats.HighConfidenceError[j].Confidence
	})
	return stats
}

// GenerateReportSummary renders the stats as plain text.
func (s *ShadowStats) GenerateReportSummary() string {
	if s.Total == 0 {
		return "No hay eventos shadow válidos (predicción ok).\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Comparaciones (shadow válidos): %d\n", s.Total)
	fmt.Fprintf(&b, "Accuracy dojo vs reglas: %.2f%%\n", s.Accuracy*100)
	fmt.Fprintf(&b, "Confidence promedio: %.3f\n", s.AverageConfidence)

	b.WriteString("\nAccuracy por bucket de confidence:\n")
	for _, bk := range s.Buckets {
		if bk.Total == 0 {
			fmt.Fprintf(&b, "- %s: (sin datos)\n", bk.Label)
			continue
		}
		fmt.Fprintf(&b, "- %s: %.2f%%  (n=%d)\n", bk.Label, bk.Accuracy*100, bk.Total)
	}

	b.WriteString("\nTop errores (reglas -> dojo):\n")
	for _, c := range s.TopErrors {
		fmt.Fprintf(&b, "- %s -> %s: %d\n", c.Rules, c.Predicted, c.Count)
	}

	fmt.Fprintf(&b, "\nErrores con alta confidence (>= %.1f): %d\n", HighConfidence, len(s.HighConfidenceError))
	for i, e := range s.HighConfidenceError {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "- run_id=%s | %s -> %s | conf=%.3f\n", e.RunID, e.Rules, e.Predicted, e.Confidence)
	}
	return b.String()
}

// ToJSON renders the stats as indented JSON.
func (s *ShadowStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DailyStats counts questionnaire activity for one day.
type DailyStats struct {
	Date          string         `json:"date"`
	Runs          int            `json:"runs"`
	Feedback      int            `json:"feedback"`
	AverageRating float64        `json:"average_rating"`
	ByPersona     map[string]int `json:"by_persona"`
}

// AnalyzeDaily counts the records stamped within targetDate's day.
func AnalyzeDaily(records []storage.Record, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		ByPersona: make(map[string]int),
	}
	ratingSum := 0
	for _, r := range records {
		if r.Timestamp.Before(startOfDay) || !r.Timestamp.Before(endOfDay) {
			continue
		}
		switch r.Type {
		case storage.TypeRun:
			stats.Runs++
			if r.Result != nil {
				stats.ByPersona[r.Result.Persona]++
			}
		case storage.TypeFeedback:
			stats.Feedback++
			ratingSum += r.Rating
		}
	}
	if stats.Feedback > 0 {
		stats.AverageRating = float64(ratingSum) / float64(stats.Feedback)
	}
	return stats
}

func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Actividad del %s:\n- Tests: %d\n- Feedback: %d", ds.Date, ds.Runs, ds.Feedback)
	if ds.Feedback > 0 {
		fmt.Fprintf(&b, " (promedio %.1f)", ds.AverageRating)
	}
	b.WriteString("\n")
	names := make([]string, 0, len(ds.ByPersona))
	for name := range ds.ByPersona {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "- %s: %d\n", name, ds.ByPersona[name])
	}
	return b.String()
}
