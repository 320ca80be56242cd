package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync/atomic"

	"apim/internal/reporting"
)

const narratorPrompt = `Eres un coach financiero empático. Recibes el resumen semanal de un diario de decisiones de dinero.
Escribe 3 o 4 frases en español, en segunda persona, sin juzgar.
Usa solo los datos recibidos: no inventes montos ni eventos.
Cierra con una acción concreta para la próxima semana.`

// Narrator turns a weekly snapshot into a short coaching paragraph.
type Narrator struct {
	client Client
	tokens atomic.Int64
}

func NewNarrator(client Client) *Narrator {
	return &Narrator{client: client}
}

func (n *Narrator) Narrate(ctx context.Context, snap reporting.WeeklySnapshot, rows []reporting.Row) (string, error) {
	resp, err := n.client.Generate(ctx, []Message{
		{Role: "system", Content: narratorPrompt},
		{Role: "user", Content: snapshotPrompt(snap, rows)},
	})
	if err != nil {
		return "", fmt.Errorf("narrate weekly report: %w", err)
	}
	n.tokens.Add(int64(resp.TotalTokens))
	log.Printf("🧮 Narration by %s: %d prompt + %d completion tokens", resp.Model, resp.PromptTokens, resp.CompletionTokens)
	text := strings.TrimSpace(resp.Content)
	if text == "" {
		return "", fmt.Errorf("narrate weekly report: empty response")
	}
	return text, nil
}

// TokensUsed is the total token count reported by the provider across
// every narration since start.
func (n *Narrator) TokensUsed() int64 {
	return n.tokens.Load()
}

func snapshotPrompt(snap reporting.WeeklySnapshot, rows []reporting.Row) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Eventos: %d\n", snap.NEvents)
	fmt.Fprintf(&b, "Zona general: %s\n", snap.OverallZone)
	fmt.Fprintf(&b, "Tendencia: %s\n", snap.OverallTrend)
	fmt.Fprintf(&b, "Conteo: verde=%d amarilla=%d roja=%d\n", snap.Counts.Green, snap.Counts.Yellow, snap.Counts.Red)
	fmt.Fprintf(&b, "Lectura: %s\n", snap.Insight)
	fmt.Fprintf(&b, "Sugerencia: %s\n", snap.Suggestion)
	if len(rows) > 0 {
		b.WriteString("Eventos de la ventana:\n")
		for _, r := range rows {
			fmt.Fprintf(&b, "- %s | %s | %s | %s | zona %s\n", r.Date, r.Event, r.Amount, r.Emotion, r.Zone)
		}
	}
	return b.String()
}
