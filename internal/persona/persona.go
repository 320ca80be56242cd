// Package persona scores the self-reported questionnaire into one of four
// financial personas and builds the matching action plans.
package persona

const (
	ImpulseBuyer     = "Comprador impulsivo"
	DisciplinedSaver = "Ahorrador disciplinado"
	FinancialGenius  = "Genio financiero"
	BossOfBosses     = "Jefe de jefes"
)

// All lists the personas in label order.
var All = []string{ImpulseBuyer, DisciplinedSaver, FinancialGenius, BossOfBosses}

// Answers is one questionnaire submission.
type Answers struct {
	SavingsPct          int  `json:"savings_pct"`
	ImpulseBuysPerWeek  int  `json:"impulse_buys_per_week"`
	TracksExpenses      bool `json:"tracks_expenses"`
	EmergencyFundMonths int  `json:"emergency_fund_months"`
}

// Clamp bounds the answers to the ranges the form accepts.
func (a Answers) Clamp() Answers {
	a.SavingsPct = clamp(a.SavingsPct, 0, 50)
	a.ImpulseBuysPerWeek = clamp(a.ImpulseBuysPerWeek, 0, 50)
	a.EmergencyFundMonths = clamp(a.EmergencyFundMonths, 0, 12)
	return a
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

type Result struct {
	Persona string `json:"persona"`
	Score   int    `json:"score"`
	Summary string `json:"summary"`
}

// Classify accumulates points for savings, impulse control, expense
// tracking and emergency fund, then maps the score to a persona.
func Classify(a Answers) Result {
	score := 0

	if a.SavingsPct >= 10 {
		score += 3
	}
	if a.SavingsPct >= 20 {
		score += 2
	}

	if a.ImpulseBuysPerWeek >= 3 {
		score -= 3
	}
	if a.ImpulseBuysPerWeek >= 7 {
		score -= 2
	}

	if a.TracksExpenses {
		score += 2
	}

	if a.EmergencyFundMonths >= 3 {
		score += 3
	}
	if a.EmergencyFundMonths >= 6 {
		score += 2
	}

	switch {
	case score <= 0:
		return Result{ImpulseBuyer, score, "Tienes potencia, pero el dinero se te va en ráfagas. Vamos a domar eso."}
	case score <= 4:
		return Result{DisciplinedSaver, score, "Vas bien: constancia y dedicación, los dos ajustes con los que subes de liga."}
	case score <= 7:
		return Result{FinancialGenius, score, "Decides bien y sostienes hábitos. Siempre encontraras oportunidades."}
	default:
		return Result{BossOfBosses, score, "Control total. Eres el villano final"}
	}
}

// Weakness tags returned by Weaknesses.
const (
	WeaknessImpulse    = "impulsivas"
	WeaknessNoTracking = "sin_registro"
	WeaknessNoFund     = "sin_fondo"
	WeaknessLowSaving  = "bajo_ahorro"
)

func Weaknesses(a Answers) []string {
	var out []string
	if a.ImpulseBuysPerWeek >= 3 {
		out = append(out, WeaknessImpulse)
	}
	if !a.TracksExpenses {
		out = append(out, WeaknessNoTracking)
	}
	if a.EmergencyFundMonths < 1 {
		out = append(out, WeaknessNoFund)
	}
	if a.SavingsPct < 10 {
		out = append(out, WeaknessLowSaving)
	}
	return out
}

// ShowPrinciples reports whether the base principles section is offered.
// Advanced personas already live by them.
func ShowPrinciples(persona string) bool {
	return persona != BossOfBosses && persona != FinancialGenius
}

// Index returns the label id of a persona, or -1.
func Index(persona string) int {
	for i, p := range All {
		if p == persona {
			return i
		}
	}
	return -1
}
