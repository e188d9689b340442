package conversation

import (
	"sync"
	"time"

	"mesero/pkg/logger"
)

// Store holds the active drafts, one per customer phone. A janitor goroutine
// moves idle drafts to Abandoned and drops them; no booking is ever created
// from an abandoned draft.
type Store struct {
	mu      sync.Mutex
	drafts  map[string]*Draft
	idleTTL time.Duration
	log     *logger.Logger
	stopCh  chan struct{}
	now     func() time.Time
}

func NewStore(idleTTL time.Duration, log *logger.Logger) *Store {
	s := &Store{
		drafts:  make(map[string]*Draft),
		idleTTL: idleTTL,
		log:     log,
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go s.janitor()

	return s
}

// GetOrCreate returns the active draft for a phone, creating one on the
// first customer message.
func (s *Store) GetOrCreate(phone string) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft, ok := s.drafts[phone]; ok {
		return draft
	}

	draft := newDraft(phone, s.now())
	s.drafts[phone] = draft
	s.log.Info("Conversation started", "phone", phone)
	return draft
}

// Get returns the active draft for a phone, or nil.
func (s *Store) Get(phone string) *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[phone]
}

// Remove drops a draft, archiving a finished or reset conversation.
func (s *Store) Remove(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, phone)
}

// ActiveCount returns the number of live drafts.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *Store) Stop() {
	close(s.stopCh)
}

func (s *Store) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep expires idle drafts. Lock order matters: turn handling takes
// draft.mu and then s.mu (Remove on finalize/cancel), so the sweep must
// never hold s.mu while waiting on a draft lock. It snapshots the map
// first, and a draft lock it cannot take immediately belongs to an
// in-flight turn, which is the opposite of idle.
func (s *Store) sweep() {
	s.mu.Lock()
	candidates := make(map[string]*Draft, len(s.drafts))
	for phone, draft := range s.drafts {
		candidates[phone] = draft
	}
	s.mu.Unlock()

	now := s.now()
	for phone, draft := range candidates {
		if !draft.mu.TryLock() {
			continue
		}
		idle := now.Sub(draft.LastActivity)
		expired := idle > s.idleTTL && draft.State != StateFinalized
		if expired {
			draft.State = StateAbandoned
		}
		draft.mu.Unlock()

		if !expired {
			continue
		}

		s.mu.Lock()
		if s.drafts[phone] == draft {
			delete(s.drafts, phone)
			s.log.Info("Conversation abandoned on idle timeout",
				"phone", phone,
				"idle", idle,
			)
		}
		s.mu.Unlock()
	}
}
