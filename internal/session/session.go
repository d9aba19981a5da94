package session

import (
	"sync"

	"github.com/google/uuid"

	"kernelrag/internal/domain"
)

// Greeting opens every new conversation.
const Greeting = "I can explain Kernel configurations and ASCII diagrams. What would you like to know?"

// Session is one conversation's append-only transcript. It is safe for
// concurrent use, though one query at a time is the expected pattern.
type Session struct {
	ID string

	mu       sync.Mutex
	messages []domain.Message
}

// New creates a session with a fresh id and the assistant greeting.
func New() *Session {
	s := &Session{ID: uuid.NewString()}
	s.Append(domain.RoleAssistant, Greeting)
	return s
}

// Append records one turn. Failed queries are recorded too, with the error
// text standing in for the answer.
func (s *Session) Append(role domain.Role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, domain.Message{Role: role, Content: content})
}

// Messages returns a copy of the transcript in order.
func (s *Session) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Registry tracks live sessions for the web front end.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Get returns the session with the given id, if any.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Create starts a new session and registers it.
func (r *Registry) Create() *Session {
	s := New()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = s
	return s
}
