// Package webhook receives inbound WhatsApp messages and drives the
// conversation pipeline: directive model, extractor, state machine, reply.
package webhook

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"mesero/internal/conversation"
	"mesero/internal/extractor"
	"mesero/internal/llm"
	"mesero/internal/whatsapp"
	"mesero/pkg/config"
	apperrors "mesero/pkg/errors"
	httputil "mesero/pkg/http"
	"mesero/pkg/sanitizer"
)

// inboundEvent is the UAZAPI webhook payload. Only the fields the pipeline
// needs are decoded; everything else in the payload is ignored.
type inboundEvent struct {
	Message struct {
		ChatID  string `json:"chatid"`
		Text    string `json:"text"`
		FromMe  bool   `json:"fromMe"`
		IsGroup bool   `json:"isGroup"`
	} `json:"message"`
}

type AckResponse struct {
	Status string `json:"status"`
}

type Handler struct {
	cfg      *config.Config
	director llm.Director
	ext      *extractor.Extractor
	machine  *conversation.Machine
	store    *conversation.Store
	sender   whatsapp.Sender
	history  *historyStore
}

func NewHandler(cfg *config.Config, director llm.Director, ext *extractor.Extractor, machine *conversation.Machine, store *conversation.Store, sender whatsapp.Sender) *Handler {
	return &Handler{
		cfg:      cfg,
		director: director,
		ext:      ext,
		machine:  machine,
		store:    store,
		sender:   sender,
		history:  newHistoryStore(cfg.HistoryDepth),
	}
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/webhook", h.Receive)
	if h.cfg.IsDevelopment() {
		router.POST("/api/webhook/test/clear-state", h.ClearState)
	}
}

// Receive handles one inbound message. The webhook always acknowledges with
// 200 once the payload decodes: UAZAPI retries non-2xx responses and a
// retried message would replay a conversation turn.
func (h *Handler) Receive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event inboundEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Invalid request body")); writeErr != nil {
			h.cfg.Log.Error("failed to write JSON response", "handler", "Receive", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	phone, ok := h.contactPhone(event)
	if !ok {
		h.ack(w)
		return
	}

	text := sanitizer.TrimAndNormalize(event.Message.Text)
	if text == "" {
		h.ack(w)
		return
	}

	h.history.Append(phone, llm.Turn{Role: llm.RoleUser, Text: text})

	fields := h.extractFields(r, phone)

	reply, err := h.machine.HandleTurn(r.Context(), phone, fields)
	if err != nil {
		h.cfg.Log.Error("Conversation turn failed", "phone", phone, "error", err)
		h.ack(w)
		return
	}

	h.history.Append(phone, llm.Turn{Role: llm.RoleModel, Text: reply.Text})

	if err := h.send(r, phone, reply); err != nil {
		h.cfg.Log.Error("Failed to send reply", "phone", phone, "error", err)
	}

	h.ack(w)
}

// ClearState drops the conversation draft and history for a phone. Wired
// only in development so test runs can start from a clean slate.
func (h *Handler) ClearState(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	phone := sanitizer.NationalContactPhone(r.URL.Query().Get("phone"))
	if phone == "" {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("Missing phone parameter")); writeErr != nil {
			h.cfg.Log.Error("failed to write JSON response", "handler", "ClearState", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	h.store.Remove(phone)
	h.history.Clear(phone)
	h.cfg.Log.Info("Conversation state cleared", "phone", phone)
	if err := httputil.WriteSuccess(w, map[string]string{"phone": phone}); err != nil {
		h.cfg.Log.Error("failed to write JSON response", "handler", "ClearState", "operation", "WriteSuccess", "error", err)
	}
}

// contactPhone extracts the national phone from the chat id. Group chats,
// echoes of our own messages and non-user chats are dropped.
func (h *Handler) contactPhone(event inboundEvent) (string, bool) {
	if event.Message.FromMe || event.Message.IsGroup {
		return "", false
	}

	chatID, suffix, found := strings.Cut(event.Message.ChatID, "@")
	if !found || suffix != "s.whatsapp.net" {
		return "", false
	}

	phone := sanitizer.NationalContactPhone(chatID)
	if phone == "" {
		h.cfg.Log.Warn("Webhook message with unparseable chat id", "chatid", event.Message.ChatID)
		return "", false
	}
	return phone, true
}

// extractFields runs the directive model over the conversation window and
// parses its output. A model failure degrades to an empty extraction: the
// machine re-asks its pending question instead of dropping the turn.
func (h *Handler) extractFields(r *http.Request, phone string) *extractor.Fields {
	directive, err := h.director.Direct(r.Context(), h.history.Window(phone))
	if err != nil {
		h.cfg.Log.Error("Directive model call failed", "phone", phone, "error", err)
		return &extractor.Fields{}
	}
	return h.ext.Extract(directive)
}

func (h *Handler) send(r *http.Request, phone string, reply *conversation.Reply) error {
	if reply.Menu != nil {
		return h.sender.SendMenu(r.Context(), phone, reply.Menu.Title, reply.Menu.Choices, reply.Menu.ButtonText, reply.Menu.FooterText)
	}
	return h.sender.SendText(r.Context(), phone, reply.Text)
}

func (h *Handler) ack(w http.ResponseWriter) {
	if err := httputil.WriteJSON(w, http.StatusOK, AckResponse{Status: "received"}); err != nil {
		h.cfg.Log.Error("failed to write JSON response", "handler", "Receive", "operation", "WriteJSON", "error", err)
	}
}
