package rules

// Feedback is the coaching text shown next to a zone and trend.
type Feedback struct {
	Comment    string `json:"comment"`
	Suggestion string `json:"suggestion"`
}

// BuildFeedback composes the comment and suggestion for a zone and trend.
// Containment mode only changes the suggestion wording; it never feeds back
// into classification.
func BuildFeedback(containment bool, zone Zone, trend Trend) Feedback {
	z := ParseZone(string(zone))

	var comment string
	switch z {
	case ZoneGreen:
		comment = "Se ve control y claridad en la decisión."
	case ZoneRed:
		comment = "Evento crítico: primero contención y continuidad."
	default:
		comment = "Hay fricción; conviene priorizar estabilidad antes de optimizar."
	}

	switch trend {
	case TrendUp:
		comment += " La recuperación va mejor."
	case TrendDown:
		comment += " La presión subió; mejor bajar fricción."
	default:
		comment += " Mantén el sistema simple."
	}

	return Feedback{Comment: comment, Suggestion: suggestion(containment, z)}
}

func suggestion(containment bool, zone Zone) string {
	if containment {
		switch zone {
		case ZoneRed:
			return "¿Lo pausamos 48h y definimos solo qué cubrir primero?"
		case ZoneGreen:
			return "¿Marcamos esto como ‘planeado’ para no distorsionar el mes?"
		default:
			return "¿Quieres activar reglas mínimas de caja por 7 días?"
		}
	}
	switch zone {
	case ZoneRed:
		return "¿Quieres que prioricemos un plan de continuidad (lo urgente primero)?"
	case ZoneGreen:
		return "¿Lo marcamos como ‘estacional’ o ‘prioritario’ para reportes?"
	default:
		return "¿Te armo 2 opciones rápidas: recorte suave vs recorte fuerte?"
	}
}
