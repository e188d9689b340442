package conversation

import (
	"fmt"
	"strings"
	"time"

	"mesero/internal/extractor"
	"mesero/pkg/model"
)

// Reply is the single outbound message for one turn. Menu is set when the
// answer is best picked from a fixed list (rice selection, confirmation).
type Reply struct {
	Text string
	Menu *MenuPrompt
}

// MenuPrompt renders as an interactive choice list on the channel.
type MenuPrompt struct {
	Title      string
	Choices    []string
	ButtonText string
	FooterText string
}

const (
	confirmChoice = "Confirmar reserva"
	changeChoice  = "Cambiar algún dato"
)

func (m *Machine) questionFor(draft *Draft, slot extractor.Slot) *Reply {
	switch slot {
	case extractor.SlotDate:
		return &Reply{Text: "¿Para qué día te gustaría reservar?"}
	case extractor.SlotPartySize:
		return &Reply{Text: "¿Cuántas personas seréis?"}
	case extractor.SlotTime:
		return &Reply{Text: fmt.Sprintf("¿A qué hora queréis venir? Servimos comidas de %s a %s.", m.cfg.OpeningTime, m.cfg.ClosingTime)}
	case extractor.SlotRice:
		return m.riceQuestion(draft)
	case extractor.SlotEquipment:
		return &Reply{Text: "¿Necesitáis tronas para niños o espacio para carritos? Dime cuántas, o si no hace falta nada."}
	case extractor.SlotName:
		return &Reply{Text: "¿A nombre de quién pongo la reserva?"}
	}
	return &Reply{Text: "¿Me repites el dato, por favor?"}
}

// riceQuestion distinguishes "no rice chosen yet" from "rice chosen but
// servings missing".
func (m *Machine) riceQuestion(draft *Draft) *Reply {
	if draft.Rice != nil && !draft.Rice.Declined && draft.Rice.Servings == 0 {
		return &Reply{Text: fmt.Sprintf("¿Cuántas raciones de %s preparamos? El mínimo son %d.", draft.Rice.Type, m.cfg.RiceMinServings)}
	}

	choices := make([]string, 0, len(m.cfg.RiceMenu)+1)
	choices = append(choices, m.cfg.RiceMenu...)
	choices = append(choices, "Sin arroz")

	return &Reply{
		Text: "¿Queréis encargar arroz? Hay que pedirlo por adelantado.",
		Menu: &MenuPrompt{
			Title:      "¿Queréis encargar arroz? Hay que pedirlo por adelantado.",
			Choices:    choices,
			ButtonText: "Ver arroces",
			FooterText: "Villa Carmen",
		},
	}
}

func (m *Machine) minServingsReply() *Reply {
	return &Reply{Text: fmt.Sprintf("El mínimo de raciones de arroz es %d. ¿Cuántas preparamos?", m.cfg.RiceMinServings)}
}

// summaryReply renders the full draft for confirmation.
func (m *Machine) summaryReply(draft *Draft) *Reply {
	date, _ := time.Parse(model.DateLayout, draft.Date)

	var b strings.Builder
	b.WriteString("*Confirmación de Reserva*\n\n")
	fmt.Fprintf(&b, "📅 Fecha: %s\n", date.Format("02/01/2006"))
	fmt.Fprintf(&b, "🕐 Hora: %s\n", draft.Time)
	fmt.Fprintf(&b, "👥 Personas: %d\n", draft.PartySize)
	if draft.Rice != nil && !draft.Rice.Declined {
		fmt.Fprintf(&b, "🥘 Arroz: %s (%d raciones)\n", draft.Rice.Type, draft.Rice.Servings)
	} else {
		b.WriteString("🥘 Arroz: sin arroz\n")
	}
	if draft.HighChairs > 0 {
		fmt.Fprintf(&b, "👶 Tronas: %d\n", draft.HighChairs)
	}
	if draft.Strollers > 0 {
		fmt.Fprintf(&b, "🛒 Carritos: %d\n", draft.Strollers)
	}
	fmt.Fprintf(&b, "📝 A nombre de: %s\n", draft.CustomerName)
	b.WriteString("\n¿Está todo correcto?")

	return &Reply{
		Text: b.String(),
		Menu: &MenuPrompt{
			Title:      b.String(),
			Choices:    []string{confirmChoice, changeChoice},
			ButtonText: "Responder",
			FooterText: "Villa Carmen",
		},
	}
}

func (m *Machine) finalizedReply(draft *Draft) *Reply {
	date, _ := time.Parse(model.DateLayout, draft.Date)
	return &Reply{Text: fmt.Sprintf("¡Reserva confirmada! Os esperamos el %s a las %s. Si necesitáis cambiar algo, escríbenos por aquí.", date.Format("02/01/2006"), draft.Time)}
}

func (m *Machine) whichDetailReply() *Reply {
	return &Reply{Text: "Sin problema. ¿Qué dato quieres cambiar: la fecha, la hora, las personas, el arroz o el nombre?"}
}

func (m *Machine) cancelledReply() *Reply {
	return &Reply{Text: "He cancelado el proceso de reserva. Cuando quieras, empezamos de nuevo. ¡Hasta pronto!"}
}

func (m *Machine) storeFailureReply() *Reply {
	return &Reply{Text: "No he podido guardar la reserva ahora mismo. ¿Me confirmas de nuevo en un momento y lo vuelvo a intentar?"}
}
