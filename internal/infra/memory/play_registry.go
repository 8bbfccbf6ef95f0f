package memory

import (
	"sync"

	"globent-quiz-service/internal/domain"
	"globent-quiz-service/internal/play"
)

// PlayRegistry tracks live play sessions so shutdown can stop their timers.
// Sessions never share state; the registry only holds references.
type PlayRegistry struct {
	mu       sync.Mutex
	sessions map[string]*play.Session
}

func NewPlayRegistry() *PlayRegistry {
	return &PlayRegistry{sessions: make(map[string]*play.Session)}
}

// Add registers s and returns the id used to remove it.
func (r *PlayRegistry) Add(s *play.Session) string {
	id := domain.NewID()
	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()
	return id
}

func (r *PlayRegistry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *PlayRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll closes and forgets every registered session, returning their ids.
func (r *PlayRegistry) CloseAll() []string {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*play.Session)
	r.mu.Unlock()

	ids := make([]string, 0, len(sessions))
	for id, s := range sessions {
		s.Close()
		ids = append(ids, id)
	}
	return ids
}
