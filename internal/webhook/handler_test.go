package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"

	"mesero/internal/availability"
	"mesero/internal/conversation"
	"mesero/internal/extractor"
	"mesero/internal/llm"
	"mesero/pkg/config"
	"mesero/pkg/logger"
)

// Mock directive model for testing
type mockDirector struct {
	directFunc func(ctx context.Context, history []llm.Turn) (string, error)
	calls      int
}

func (m *mockDirector) Direct(ctx context.Context, history []llm.Turn) (string, error) {
	m.calls++
	if m.directFunc != nil {
		return m.directFunc(ctx, history)
	}
	return "", nil
}

// Mock outbound sender for testing
type mockSender struct {
	texts []string
	menus []string
}

func (m *mockSender) SendText(ctx context.Context, number string, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *mockSender) SendMenu(ctx context.Context, number string, text string, choices []string, buttonText string, footerText string) error {
	m.menus = append(m.menus, text)
	return nil
}

type acceptAllChecker struct{}

func (acceptAllChecker) Validate(ctx context.Context, req availability.Request) (*availability.Verdict, error) {
	return &availability.Verdict{Accepted: true, Reason: availability.ReasonOk}, nil
}

type stubFinalizer struct{}

func (stubFinalizer) Finalize(ctx context.Context, draft *conversation.Draft) (string, error) {
	return "booking-123", nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment:     "development",
		HistoryDepth:    20,
		RiceMinServings: 2,
		RiceMenu:        []string{"Paella Valenciana", "Arroz Negro"},
		OpeningTime:     "13:00",
		ClosingTime:     "15:30",
		Location:        time.UTC,
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Output:  io.Discard,
			Service: "test",
		}),
	}
}

func newTestHandler(t *testing.T, director *mockDirector) (*Handler, *mockSender, *conversation.Store) {
	t.Helper()

	cfg := newTestConfig()
	store := conversation.NewStore(30*time.Minute, cfg.Log)
	t.Cleanup(store.Stop)

	machine := conversation.NewMachine(cfg, store, acceptAllChecker{}, stubFinalizer{})
	sender := &mockSender{}
	handler := NewHandler(cfg, director, extractor.NewExtractor(cfg), machine, store, sender)
	return handler, sender, store
}

func postWebhook(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := httprouter.New()
	handler.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const inboundBody = `{"message":{"chatid":"34612345678@s.whatsapp.net","text":"quiero reservar para el sábado","fromMe":false}}`

func TestReceiveRunsPipelineAndReplies(t *testing.T) {
	director := &mockDirector{
		directFunc: func(ctx context.Context, history []llm.Turn) (string, error) {
			return "FECHA: 2026-06-13", nil
		},
	}
	handler, sender, store := newTestHandler(t, director)

	rec := postWebhook(t, handler, inboundBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if director.calls != 1 {
		t.Errorf("director called %d times, want 1", director.calls)
	}
	if len(sender.texts) != 1 || !strings.Contains(sender.texts[0], "¿Cuántas personas") {
		t.Errorf("sent texts = %v, want the party size question", sender.texts)
	}

	draft := store.Get("612345678")
	if draft == nil {
		t.Fatal("expected a draft keyed by the national phone")
	}
	if draft.Date != "2026-06-13" {
		t.Errorf("draft date = %q, want 2026-06-13", draft.Date)
	}
}

func TestReceiveMenuRepliesUseSendMenu(t *testing.T) {
	director := &mockDirector{
		directFunc: func(ctx context.Context, history []llm.Turn) (string, error) {
			return "FECHA: 2026-06-13\nPERSONAS: 4\nHORA: 14:00", nil
		},
	}
	handler, sender, _ := newTestHandler(t, director)

	postWebhook(t, handler, inboundBody)

	if len(sender.menus) != 1 || !strings.Contains(sender.menus[0], "arroz") {
		t.Errorf("sent menus = %v, want the rice menu question", sender.menus)
	}
	if len(sender.texts) != 0 {
		t.Errorf("sent texts = %v, want none when a menu reply is available", sender.texts)
	}
}

func TestReceiveIgnoresOwnAndGroupMessages(t *testing.T) {
	director := &mockDirector{}
	handler, sender, _ := newTestHandler(t, director)

	bodies := []string{
		`{"message":{"chatid":"34612345678@s.whatsapp.net","text":"hola","fromMe":true}}`,
		`{"message":{"chatid":"1234567-890@g.us","text":"hola","isGroup":true}}`,
		`{"message":{"chatid":"status@broadcast","text":"hola"}}`,
	}
	for _, body := range bodies {
		rec := postWebhook(t, handler, body)
		if rec.Code != http.StatusOK {
			t.Errorf("status for %q = %d, want ack with %d", body, rec.Code, http.StatusOK)
		}
	}

	if director.calls != 0 {
		t.Errorf("director called %d times for ignorable messages, want 0", director.calls)
	}
	if len(sender.texts)+len(sender.menus) != 0 {
		t.Error("ignorable messages must not produce replies")
	}
}

func TestReceiveMalformedBody(t *testing.T) {
	handler, _, _ := newTestHandler(t, &mockDirector{})

	rec := postWebhook(t, handler, "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestReceiveDirectorFailureDegradesToQuestion(t *testing.T) {
	director := &mockDirector{
		directFunc: func(ctx context.Context, history []llm.Turn) (string, error) {
			return "", context.DeadlineExceeded
		},
	}
	handler, sender, _ := newTestHandler(t, director)

	rec := postWebhook(t, handler, inboundBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	// With nothing extracted the machine asks for the first missing field
	// instead of dropping the turn.
	if len(sender.texts) != 1 || !strings.Contains(sender.texts[0], "¿Para qué día") {
		t.Errorf("sent texts = %v, want the date question", sender.texts)
	}
}

func TestClearStateRemovesDraftAndHistory(t *testing.T) {
	director := &mockDirector{
		directFunc: func(ctx context.Context, history []llm.Turn) (string, error) {
			return "FECHA: 2026-06-13", nil
		},
	}
	handler, _, store := newTestHandler(t, director)

	postWebhook(t, handler, inboundBody)
	if store.Get("612345678") == nil {
		t.Fatal("setup: draft should exist")
	}

	router := httprouter.New()
	handler.RegisterRoutes(router)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/test/clear-state?phone=612345678", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if store.Get("612345678") != nil {
		t.Error("draft should be cleared")
	}
	if len(handler.history.Window("612345678")) != 0 {
		t.Error("history should be cleared")
	}
}

func TestClearStateNotRegisteredOutsideDevelopment(t *testing.T) {
	cfg := newTestConfig()
	cfg.Environment = "production"
	store := conversation.NewStore(30*time.Minute, cfg.Log)
	t.Cleanup(store.Stop)

	machine := conversation.NewMachine(cfg, store, acceptAllChecker{}, stubFinalizer{})
	handler := NewHandler(cfg, &mockDirector{}, extractor.NewExtractor(cfg), machine, store, &mockSender{})

	router := httprouter.New()
	handler.RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/test/clear-state?phone=612345678", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Error("clear-state endpoint must not exist outside development")
	}
}
