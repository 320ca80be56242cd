package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"apim/internal/assessment"
	"apim/internal/dojo"
	"apim/internal/persona"
	"apim/internal/rules"
)

const (
	planPrefix = "plan:"

	sectionToday      = "hoy"
	sectionWeek       = "7"
	sectionMonth      = "30"
	sectionPrinciples = "principios"
)

const helpText = `APIM VI 💸
/evento descripción | monto | contexto | emoción — registra un evento y te da su zona
/reporte [n] — reporte de los últimos n eventos (5 por defecto)
/contencion on|off — modo contención
/test ahorro impulsivas registra fondo — test financiero (ej. /test 10 2 si 1)
/plan hoy|7|30|principios — tu plan después del test
/feedback 1-5 [comentario] — califica tu último test
/dojo — demo de la red neuronal con tus respuestas`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		b.sendMessage(chatID, b.escapeIfNeeded(helpText))
	case "evento":
		b.handleEvent(ctx, chatID, args)
	case "reporte":
		b.handleReport(ctx, chatID, args)
	case "contencion":
		b.handleContainment(ctx, chatID, args)
	case "test":
		b.handleTest(ctx, chatID, args)
	case "plan":
		b.handlePlan(chatID, args)
	case "feedback":
		b.handleFeedback(ctx, chatID, args)
	case "dojo":
		b.handleDojo(chatID)
	default:
		b.sendMessage(chatID, b.escapeIfNeeded("Comando desconocido.\n\n"+helpText))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	if section, ok := strings.CutPrefix(cb.Data, planPrefix); ok {
		b.handlePlan(cb.Message.Chat.ID, section)
	}
}

// parseEvent reads "descripción | monto | contexto | emoción". Missing
// trailing fields stay empty.
func parseEvent(args string) rules.Event {
	parts := strings.Split(args, "|")
	field := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return rules.Event{
		Description: field(0),
		Amount:      field(1),
		Context:     field(2),
		Emotion:     field(3),
	}
}

func (b *Bot) handleEvent(ctx context.Context, chatID int64, args string) {
	if args == "" {
		b.sendMessage(chatID, b.escapeIfNeeded("Uso: /evento descripción | monto | contexto | emoción"))
		return
	}
	ev := parseEvent(args)
	ev.Date = b.now().Format("2006-01-02")

	res, err := b.journal.LogEvent(ctx, ev)
	if err != nil {
		log.Printf("❌ Failed to log event: %v", err)
		b.sendMessage(chatID, "❌ No pude guardar el evento, intenta de nuevo.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Zona %s  %s\n\n", res.Zone.Symbol(), zoneName(res.Zone), res.Trend.Symbol())
	sb.WriteString(res.Feedback.Comment + "\n")
	sb.WriteString("👉 " + res.Feedback.Suggestion)
	b.sendMessage(chatID, b.escapeIfNeeded(sb.String()))
}

func zoneName(z rules.Zone) string {
	switch z {
	case rules.ZoneRed:
		return "roja"
	case rules.ZoneGreen:
		return "verde"
	}
	return "amarilla"
}

func (b *Bot) handleContainment(ctx context.Context, chatID int64, args string) {
	var on bool
	switch strings.ToLower(args) {
	case "on", "si", "sí":
		on = true
	case "off", "no":
		on = false
	case "":
		cur, err := b.journal.Containment(ctx)
		if err != nil {
			log.Printf("❌ Failed to read containment: %v", err)
			b.sendMessage(chatID, "❌ No pude leer la configuración.")
			return
		}
		b.sendMessage(chatID, containmentText(cur))
		return
	default:
		b.sendMessage(chatID, "Uso: /contencion on|off")
		return
	}
	if err := b.journal.SetContainment(ctx, on); err != nil {
		log.Printf("❌ Failed to set containment: %v", err)
		b.sendMessage(chatID, "❌ No pude guardar la configuración.")
		return
	}
	b.sendMessage(chatID, containmentText(on))
}

func containmentText(on bool) string {
	if on {
		return "🫂 Modo contención activado: las sugerencias serán más suaves."
	}
	return "Modo contención desactivado."
}

var errTestUsage = errors.New("uso: /test ahorro impulsivas registra fondo")

// parseAnswers reads "ahorro impulsivas registra fondo", where registra is
// si/no or 1/0.
func parseAnswers(args string) (persona.Answers, error) {
	f := strings.Fields(args)
	if len(f) != 4 {
		return persona.Answers{}, errTestUsage
	}
	nums := make([]int, 0, 3)
	for _, s := range []string{f[0], f[1], f[3]} {
		n, err := strconv.Atoi(s)
		if err != nil {
			return persona.Answers{}, errTestUsage
		}
		nums = append(nums, n)
	}
	var tracks bool
	switch strings.ToLower(f[2]) {
	case "si", "sí", "1", "true", "yes":
		tracks = true
	case "no", "0", "false":
	default:
		return persona.Answers{}, errTestUsage
	}
	return persona.Answers{
		SavingsPct:          nums[0],
		ImpulseBuysPerWeek:  nums[1],
		TracksExpenses:      tracks,
		EmergencyFundMonths: nums[2],
	}, nil
}

func (b *Bot) handleTest(ctx context.Context, chatID int64, args string) {
	a, err := parseAnswers(args)
	if err != nil {
		b.sendMessage(chatID, b.escapeIfNeeded("Uso: /test ahorro impulsivas registra fondo\nEjemplo: /test 10 2 si 1"))
		return
	}
	res, err := b.assess.Assess(ctx, a)
	if err != nil {
		log.Printf("❌ Assessment failed: %v", err)
		b.sendMessage(chatID, "❌ No pude guardar tu test, intenta de nuevo.")
		return
	}
	b.sessions.SetAssessment(chatID, res)
	if b.journal != nil {
		if err := b.journal.SetProfile(ctx, res.Result.Persona); err != nil {
			log.Printf("⚠️ Failed to store profile: %v", err)
		}
	}
	b.sendWithMarkup(chatID, b.escapeIfNeeded(formatAssessment(res)), planKeyboard(res.ShowPrinciples))
}

func formatAssessment(res assessment.Assessment) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tu perfil: %s (puntaje %d)\n%s\n", res.Result.Persona, res.Result.Score, res.Result.Summary)
	if len(res.Recommendations.Focus) > 0 {
		sb.WriteString("\nEnfoque:\n")
		for _, f := range res.Recommendations.Focus {
			sb.WriteString("- " + f + "\n")
		}
	}
	if res.Shadow.OK {
		fmt.Fprintf(&sb, "\n🥋 Dojo opina: %s (%.0f%%)\n", res.Shadow.Persona, res.Shadow.Confidence*100)
	}
	sb.WriteString("\nElige tu plan con /plan hoy|7|30 y califica con /feedback 1-5.")
	return sb.String()
}

func planKeyboard(showPrinciples bool) tgbotapi.InlineKeyboardMarkup {
	row := tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Hoy", planPrefix+sectionToday),
		tgbotapi.NewInlineKeyboardButtonData("7 días", planPrefix+sectionWeek),
		tgbotapi.NewInlineKeyboardButtonData("30 días", planPrefix+sectionMonth),
	)
	if showPrinciples {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Principios", planPrefix+sectionPrinciples))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// handlePlan shows one plan section of the chat's last test. Principles
// are available on request even when the keyboard hides them.
func (b *Bot) handlePlan(chatID int64, section string) {
	res, ok := b.sessions.Assessment(chatID)
	if !ok {
		b.sendMessage(chatID, "Primero haz el test con /test.")
		return
	}
	if section == "" {
		section = sectionToday
	}
	r := res.Recommendations
	var title string
	var lines []string
	switch section {
	case sectionToday:
		title, lines = "✅ Acciones inmediatas", r.Immediate
	case sectionWeek:
		title, lines = "📅 Plan de 7 días", r.Plan7Days
	case sectionMonth:
		title, lines = "🗓️ Plan de 30 días", r.Plan30Days
	case sectionPrinciples:
		title, lines = "📜 Principios", r.Principles
	default:
		b.sendMessage(chatID, "Uso: /plan hoy|7|30|principios")
		return
	}
	b.sessions.SetSection(chatID, section)

	var sb strings.Builder
	sb.WriteString(title + "\n")
	for _, l := range lines {
		sb.WriteString("- " + l + "\n")
	}
	b.sendMessage(chatID, b.escapeIfNeeded(sb.String()))
}

func (b *Bot) handleFeedback(ctx context.Context, chatID int64, args string) {
	runID := b.sessions.RunID(chatID)
	if runID == "" {
		b.sendMessage(chatID, "Primero haz el test con /test.")
		return
	}
	fields := strings.SplitN(args, " ", 2)
	rating, err := strconv.Atoi(fields[0])
	if err != nil {
		b.sendMessage(chatID, "Uso: /feedback 1-5 [comentario]")
		return
	}
	comment := ""
	if len(fields) == 2 {
		comment = fields[1]
	}
	if !b.sessions.MarkFeedback(chatID) {
		b.sendMessage(chatID, "Ya calificaste este test. ¡Gracias!")
		return
	}
	if err := b.assess.SaveFeedback(ctx, runID, rating, comment); err != nil {
		log.Printf("❌ Failed to save feedback: %v", err)
		b.sendMessage(chatID, "❌ No pude guardar tu feedback.")
		return
	}
	b.sendMessage(chatID, "🙏 ¡Gracias! Tu feedback ayuda a entrenar al dojo.")
}

func (b *Bot) handleDojo(chatID int64) {
	res, ok := b.sessions.Assessment(chatID)
	if !ok {
		b.sendMessage(chatID, "Primero haz el test con /test.")
		return
	}
	out, mse := dojo.DemoForwardPass(res.Answers)
	parts := make([]string, len(out))
	for i, v := range out {
		parts[i] = strconv.FormatFloat(v, 'f', 4, 64)
	}
	text := fmt.Sprintf("🥋 Dojo (demo sin entrenar)\nSalida de la red: [%s]\nError vs objetivo demo: %.4f\nEntre más pequeño, más cerca.",
		strings.Join(parts, ", "), mse)
	b.sendMessage(chatID, b.escapeIfNeeded(text))
}
