package handlers

import (
	"log"
	"sync"
	"time"

	"quizmaster/internal/service"
	"quizmaster/internal/session"
)

type sessionEntry struct {
	mu       sync.Mutex
	sess     *session.Session
	lastSeen time.Time
}

// SessionRegistry holds one session per user token. Events for the same
// user run one at a time under that user's lock.
type SessionRegistry struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	quiz    *service.QuizService
	ttl     time.Duration
	now     func() time.Time
}

// NewSessionRegistry creates a registry whose idle sessions expire after ttl
func NewSessionRegistry(quiz *service.QuizService, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		entries: make(map[string]*sessionEntry),
		quiz:    quiz,
		ttl:     ttl,
		now:     time.Now,
	}
}

// With runs fn with the user's session locked. The first call for a user
// opens the session; opened then carries the hint from opening it.
func (r *SessionRegistry) With(userID string, fn func(sess *session.Session, opened *service.RenderHint)) {
	entry := r.entry(userID)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	var opened *service.RenderHint
	if entry.sess == nil {
		sess, hint, err := r.quiz.OpenSession(userID)
		if err != nil {
			log.Printf("Warning: session for %s opened without a question store: %v", userID, err)
		}
		entry.sess = sess
		opened = &hint
	}
	fn(entry.sess, opened)

	r.mu.Lock()
	entry.lastSeen = r.now()
	r.mu.Unlock()
}

func (r *SessionRegistry) entry(userID string) *sessionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[userID]
	if !ok {
		entry = &sessionEntry{}
		r.entries[userID] = entry
	}
	entry.lastSeen = r.now()
	return entry
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// CleanupExpired drops sessions idle for longer than the ttl and returns how
// many were removed. Sessions with an event in progress are kept.
func (r *SessionRegistry) CleanupExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for userID, entry := range r.entries {
		if now.Sub(entry.lastSeen) <= r.ttl || !entry.mu.TryLock() {
			continue
		}
		delete(r.entries, userID)
		entry.mu.Unlock()
		removed++
	}
	return removed
}
