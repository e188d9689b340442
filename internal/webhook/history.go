package webhook

import (
	"sync"

	"mesero/internal/llm"
)

// historyStore keeps a bounded window of recent turns per phone so the
// directive model sees enough context to resolve references like "esa hora
// mejor no".
type historyStore struct {
	mu    sync.Mutex
	turns map[string][]llm.Turn
	depth int
}

func newHistoryStore(depth int) *historyStore {
	return &historyStore{
		turns: make(map[string][]llm.Turn),
		depth: depth,
	}
}

func (h *historyStore) Append(phone string, turn llm.Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := append(h.turns[phone], turn)
	if len(window) > h.depth {
		window = window[len(window)-h.depth:]
	}
	h.turns[phone] = window
}

func (h *historyStore) Window(phone string) []llm.Turn {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := h.turns[phone]
	out := make([]llm.Turn, len(window))
	copy(out, window)
	return out
}

func (h *historyStore) Clear(phone string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.turns, phone)
}
