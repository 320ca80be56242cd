package persona

// Recommendations is the action plan shown after a classification.
type Recommendations struct {
	Immediate  []string `json:"immediate"`
	Plan7Days  []string `json:"plan_7_days"`
	Plan30Days []string `json:"plan_30_days"`
	Principles []string `json:"principles"`
	Focus      []string `json:"focus"`
}

type plan struct {
	immediate []string
	days7     []string
	days30    []string
}

var plans = map[string]plan{
	ImpulseBuyer: {
		immediate: []string{
			"Aplica la regla de las 48 horas: no compres nada mayor a X monto sin dejar pasar 2 días.",
			"Antes de comprar hazte 2 preguntas: 1) ¿Esto me hace mas rico o mas pobre? 2) ¿Lo quiero de verdad o solo para sentirme mejor?",
			"Paga en efectivo siempre que puedas: duele más entregar billetes que deslizar la tarjeta.",
		},
		days7: []string{
			"Día 1: Anota TODO lo que gastas (aunque sea en la app de notas).",
			"Día 2: Identifica 3 gastos 100% emocionales y elimínalos esta semana.",
			"Día 3: Pon un tope de gasto ‘por antojo’ y respétalo.",
			"Día 4: Activa la regla de 48h en compras online/carrito.",
			"Día 5: Revisa tu lista de gastos y marca cuáles te acercan o alejan de tus metas.",
			"Día 6: Repite las 2 preguntas antes de cualquier gasto no esencial.",
			"Día 7: Mira cuánto habrías gastado sin control y cuánto te ahorraste.",
		},
		days30: []string{
			"Define un % fijo para ahorro (mínimo 10%) y pásalo a otra cuenta al cobrar.",
			"Empieza a construir un fondo de emergencia: meta inicial = 1 mes de gastos básicos.",
			"Elige 1 meta clara (deuda, viaje, inversión inicial) y destina parte del ahorro directo a esa meta.",
		},
	},
	DisciplinedSaver: {
		immediate: []string{
			"Formaliza ‘págate a ti primero’: separa al menos el 10% de tu ingreso apenas cae.",
			"Revisa tus gastos y elimina 1 suscripción o gasto que ya no tenga sentido.",
			"Define por escrito tu meta principal (ej. fondo 3 meses / primera inversión / salir de deuda concreta).",
		},
		days7: []string{
			"Día 1: Haz un resumen simple: ingresos, gastos fijos, gastos variables.",
			"Día 2: Ajusta tu % de ahorro y deja un monto definido para ‘jugar y divertirse’ (10%).",
			"Día 3: Abre (o etiqueta) una cuenta para ‘libertad financiera’ (10% cuando se pueda).",
			"Día 4: Identifica deudas caras y planea adelantarlas con parte de tus excedentes.",
			"Día 5: Revisa si tus gastos reflejan lo que de verdad te importa.",
			"Día 6: Ajusta topes de gasto por categoría (hogar, comida, ocio).",
			"Día 7: Evalúa la semana: ¿qué hábito te dio más control? Duplícalo la próxima.",
		},
		days30: []string{
			"Apunta a ahorrar entre 10–20% de tu ingreso total.",
			"Logra un primer hito de fondo de emergencia (1 mes de gastos básicos).",
			"Aprende 1 cosa nueva de educación financiera por semana (libro, podcast, artículo) y aplícala.",
		},
	},
	FinancialGenius: {
		immediate: []string{
			"Pon por escrito tus porcentajes objetivo: necesidades, juego, libertad financiera, largo plazo, donativos.",
			"Revisa comisiones e impuestos de tus productos actuales y elimina lo que drene más de lo que aporta.",
			"Elige 1 vehículo de inversión simple (ej. fondo indexado de bajo costo) y define un monto mensual automático.",
		},
		days7: []string{
			"Día 1: Haz un miniestado financiero personal (activos, pasivos, ingresos, gastos).",
			"Día 2: Clasifica tus gastos entre déficit (recorte) y excedente (para invertir).",
			"Día 3: Ajusta tu presupuesto para que exista excedente INTENCIONAL cada mes.",
			"Día 4: Define tu mezcla entre ingreso ganado, de portafolio y pasivo a largo plazo.",
			"Día 5: Revisa si tus decisiones siguen el efecto compuesto: pequeñas mejoras + constancia.",
			"Día 6: Evalúa riesgos y seguros (protege lo que ya construiste).",
			"Día 7: Documenta aprendizajes y decide 1 mejora para el próximo mes.",
		},
		days30: []string{
			"Consolida un fondo de emergencia de al menos 1–3 meses.",
			"Arranca o refuerza una estrategia de inversión diversificada enfocada en el largo plazo.",
			"Crea un espacio semanal fijo para revisar números (ej. domingo 20 minutos) y tomar decisiones frías.",
		},
	},
	BossOfBosses: {
		immediate: []string{
			"Alinea tus decisiones de dinero con tu ‘para qué’ profundo (no solo con el número).",
			"Define 1 gran objetivo (ej. libertad financiera X año) y 2 métricas que vas a monitorear.",
			"Sistema: documenta tu flujo de dinero (qué entra, qué sale, qué construye activos).",
		},
		days7: []string{
			"Día 1: Revisa si tu tiempo está alineado con producir, proteger, presupuestar, apalancar y aprender.",
			"Día 2: Pregunta: ¿estoy construyendo activos o solo sosteniendo gastos bonitos?",
			"Día 3: Ajusta tus flujos para que los pasivos se paguen con activos, no con salario.",
			"Día 4: Diseña 1 sistema de ingreso adicional (negocio, proyecto, skill).",
			"Día 5: Evalúa tu círculo: ¿con quién hablas de dinero y qué mentalidad traen?",
			"Día 6: Ajusta tu plan según tu energía, no según modas.",
			"Día 7: Revisa si lo que estás haciendo te acerca a la vida que quieres, no solo al número que quieres.",
		},
		days30: []string{
			"Refuerza al menos 1 activo real (negocio, bienes raíces, activos en papel, propiedad intelectual).",
			"Define un plan anual: metas, hitos trimestrales y chequeos mensuales.",
			"Integra la educación financiera como hábito estable, no como ‘racha’.",
		},
	},
}

var principles = []string{
	"Págate a ti primero: reserva una parte para ti antes de pagar a otros.",
	"Pequeñas elecciones acertadas + constancia + tiempo = diferencia radical (efecto compuesto).",
	"Antes de gastar pregúntate: ¿esto me hace más rico o más pobre? ¿Lo quiero de verdad o solo para sentirme mejor?",
	"Nunca tomes decisiones de dinero importantes desde la emoción del momento.",
	"Usa el dinero como herramienta para la vida que quieres, no como medidor de tu valor.",
}

var focusByWeakness = []struct {
	tag  string
	text string
}{
	{WeaknessImpulse, "Tu punto débil son las compras impulsivas: aplica la regla de 48h y las 2 preguntas antes de gastar."},
	{WeaknessNoTracking, "No estás registrando tus gastos: 7 días de registro total te van a abrir los ojos."},
	{WeaknessNoFund, "No tienes fondo de emergencia: meta mínima, 1 mes de gastos básicos lo antes posible."},
	{WeaknessLowSaving, "Tu nivel de ahorro es bajo: empieza con 5–10% y ve subiendo en cuanto puedas."},
}

const noWeaknessFocus = "No se detectan puntos débiles críticos: ahora toca optimizar y sostener lo que ya haces bien."

// Recommend builds the plan for a persona, with focus lines for every
// weakness found in the answers. Unknown personas get the saver plan.
func Recommend(persona string, a Answers) Recommendations {
	p, ok := plans[persona]
	if !ok {
		p = plans[DisciplinedSaver]
	}

	found := map[string]bool{}
	for _, w := range Weaknesses(a) {
		found[w] = true
	}
	var focus []string
	for _, f := range focusByWeakness {
		if found[f.tag] {
			focus = append(focus, f.text)
		}
	}
	if len(focus) == 0 {
		focus = []string{noWeaknessFocus}
	}

	return Recommendations{
		Immediate:  append([]string(nil), p.immediate...),
		Plan7Days:  append([]string(nil), p.days7...),
		Plan30Days: append([]string(nil), p.days30...),
		Principles: append([]string(nil), principles...),
		Focus:      focus,
	}
}
