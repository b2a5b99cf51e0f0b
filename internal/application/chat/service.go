package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nutribridge-api/internal/domain"
	"github.com/nutribridge-api/internal/pkg/clock"
	"github.com/nutribridge-api/internal/pkg/id"
	"github.com/nutribridge-api/internal/pkg/triage"
)

const (
	RoleBot  = "bot"
	RoleUser = "user"

	defaultTTL   = 30 * time.Minute
	defaultBrand = "NutriBridge"
)

type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session is a read-only snapshot of one conversation.
type Session struct {
	SessionID string         `json:"session_id"`
	State     triage.State   `json:"state"`
	Context   triage.Context `json:"context"`
	Messages  []Message      `json:"messages"`
	CreatedAt time.Time      `json:"created"`
	LastSeen  time.Time      `json:"last_seen"`
}

// Reply carries the bot messages produced by one turn.
type Reply struct {
	SessionID string       `json:"session_id"`
	State     triage.State `json:"state"`
	Messages  []Message    `json:"messages"`
}

type Service interface {
	Start(ctx context.Context) (*Reply, error)
	Send(ctx context.Context, sessionID, text string) (*Reply, error)
	History(ctx context.Context, sessionID string) (*Session, error)
	End(ctx context.Context, sessionID string) error
	// Run evicts idle sessions until ctx is cancelled.
	Run(ctx context.Context)
}

type ServiceDeps struct {
	Clock clock.Clock
	TTL   time.Duration
	Brand string
}

type entry struct {
	dialogue *triage.Dialogue
	messages []Message
	created  time.Time
	lastSeen time.Time
}

type service struct {
	mu       sync.Mutex
	sessions map[string]*entry
	clock    clock.Clock
	ttl      time.Duration
	brand    string
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		sessions: make(map[string]*entry),
		clock:    deps.Clock,
		ttl:      deps.TTL,
		brand:    deps.Brand,
	}
	if s.clock == nil {
		s.clock = clock.NewSystem()
	}
	if s.ttl <= 0 {
		s.ttl = defaultTTL
	}
	if s.brand == "" {
		s.brand = defaultBrand
	}
	return s
}

func (s *service) Start(_ context.Context) (*Reply, error) {
	now := s.clock.Now()
	d := triage.New(s.brand)
	greeting := Message{Role: RoleBot, Text: d.Greeting(), At: now}
	sid := id.New()

	s.mu.Lock()
	s.sessions[sid] = &entry{dialogue: d, messages: []Message{greeting}, created: now, lastSeen: now}
	s.mu.Unlock()

	return &Reply{SessionID: sid, State: d.State(), Messages: []Message{greeting}}, nil
}

func (s *service) Send(_ context.Context, sessionID, text string) (*Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrValidation)
	}
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("chat session %s: %w", sessionID, domain.ErrNotFound)
	}
	e.messages = append(e.messages, Message{Role: RoleUser, Text: text, At: now})
	var out []Message
	for _, line := range e.dialogue.Reply(text) {
		out = append(out, Message{Role: RoleBot, Text: line, At: now})
	}
	e.messages = append(e.messages, out...)
	e.lastSeen = now
	return &Reply{SessionID: sessionID, State: e.dialogue.State(), Messages: out}, nil
}

func (s *service) History(_ context.Context, sessionID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("chat session %s: %w", sessionID, domain.ErrNotFound)
	}
	msgs := make([]Message, len(e.messages))
	copy(msgs, e.messages)
	return &Session{
		SessionID: sessionID,
		State:     e.dialogue.State(),
		Context:   e.dialogue.Context(),
		Messages:  msgs,
		CreatedAt: e.created,
		LastSeen:  e.lastSeen,
	}, nil
}

func (s *service) End(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return fmt.Errorf("chat session %s: %w", sessionID, domain.ErrNotFound)
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *service) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(s.clock.Now()); n > 0 {
				slog.Debug("evicted idle chat sessions", "count", n)
			}
		}
	}
}

// evictIdle drops sessions not seen for longer than the TTL and returns how many went.
func (s *service) evictIdle(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for sid, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, sid)
			n++
		}
	}
	return n
}
