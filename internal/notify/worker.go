package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mesero/internal/whatsapp"
	"mesero/pkg/config"
	"mesero/pkg/kafka"
	"mesero/pkg/model"
	"mesero/pkg/sanitizer"
)

// Worker consumes booking events and fans out WhatsApp notifications to the
// configured operator phones. Delivery is best-effort per operator: one
// failed send is logged and does not block the others.
type Worker struct {
	cfg    *config.Config
	sender whatsapp.Sender
}

func NewWorker(cfg *config.Config, sender whatsapp.Sender) *Worker {
	return &Worker{
		cfg:    cfg,
		sender: sender,
	}
}

// Handle processes one booking event message.
func (w *Worker) Handle(ctx context.Context, msg kafka.Message) error {
	if msg.GetEventType() != EventBookingCreated {
		w.cfg.Log.Debug("Skipping event of unhandled type", "type", msg.GetEventType())
		return nil
	}

	var event BookingCreatedEvent
	if err := msg.DecodeValue(&event); err != nil {
		return fmt.Errorf("invalid message: failed to decode booking event: %w", err)
	}

	text := formatOperatorNotification(&event)

	var failed int
	for _, operator := range w.cfg.OperatorPhones {
		// Operator phones come from the environment and may carry spaces or
		// a missing country code. Send to the E.164 form.
		normalized := sanitizer.NormalizePhone(operator)
		if normalized == "" {
			failed++
			w.cfg.Log.Error("Operator phone is not a valid number",
				"operator", operator,
				"booking_id", event.BookingID,
			)
			continue
		}
		if err := w.sender.SendText(ctx, normalized, text); err != nil {
			failed++
			w.cfg.Log.Error("Failed to notify operator",
				"operator", operator,
				"booking_id", event.BookingID,
				"error", err,
			)
		}
	}

	w.cfg.Log.Info("Operator notifications sent",
		"booking_id", event.BookingID,
		"operators", len(w.cfg.OperatorPhones),
		"failed", failed,
	)
	return nil
}

// formatOperatorNotification renders the internal alert the restaurant
// staff receives for each new booking.
func formatOperatorNotification(event *BookingCreatedEvent) string {
	date, _ := time.Parse(model.DateLayout, event.Date)

	var b strings.Builder
	b.WriteString("Nueva reserva insertada por el Asistente IA\n\n")
	fmt.Fprintf(&b, "Fecha: %s\n", date.Format("02/01/2006"))
	fmt.Fprintf(&b, "Hora: %s\n", event.Time)
	fmt.Fprintf(&b, "Personas: %d\n", event.PartySize)
	fmt.Fprintf(&b, "Nombre: %s\n", event.CustomerName)
	fmt.Fprintf(&b, "Teléfono: %s\n", event.ContactPhone)
	if event.RiceType != nil {
		servings := 0
		if event.RiceServings != nil {
			servings = *event.RiceServings
		}
		fmt.Fprintf(&b, "Arroz: %s (%d raciones)\n", *event.RiceType, servings)
	}
	if event.HighChairs > 0 {
		fmt.Fprintf(&b, "Tronas: %d\n", event.HighChairs)
	}
	if event.Strollers > 0 {
		fmt.Fprintf(&b, "Carritos: %d\n", event.Strollers)
	}
	if event.Comment != "" {
		fmt.Fprintf(&b, "Comentario: %s\n", event.Comment)
	}

	return strings.TrimRight(b.String(), "\n")
}
