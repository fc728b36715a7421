package handlers

import (
	"errors"
	"sync"
	"testing"
	"time"

	"quizmaster/internal/models"
	"quizmaster/internal/service"
	"quizmaster/internal/session"
)

type stubStore struct {
	mu      sync.Mutex
	initErr error
	opened  int
}

func (s *stubStore) EnsureInitialized(string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened++
	return s.initErr
}
func (s *stubStore) Query(string, models.Filter) ([]models.Question, error) { return nil, nil }
func (s *stubStore) RecordAnswer(string, int64, bool) error                 { return nil }
func (s *stubStore) ResetAll(string) error                                  { return nil }
func (s *stubStore) Progress(string) (models.Progress, error)               { return models.Progress{}, nil }

func TestRegistryOpensOncePerUser(t *testing.T) {
	st := &stubStore{}
	reg := NewSessionRegistry(service.NewQuizService(st, nil), time.Hour)

	var first *session.Session
	reg.With("user0001", func(sess *session.Session, opened *service.RenderHint) {
		if opened == nil {
			t.Error("first call should report the opening hint")
		}
		first = sess
	})
	reg.With("user0001", func(sess *session.Session, opened *service.RenderHint) {
		if opened != nil {
			t.Error("second call should reuse the session")
		}
		if sess != first {
			t.Error("session changed between calls")
		}
	})
	reg.With("user0002", func(sess *session.Session, _ *service.RenderHint) {
		if sess == first {
			t.Error("users must not share a session")
		}
	})

	if st.opened != 2 || reg.Len() != 2 {
		t.Errorf("opened = %d, len = %d, want 2 and 2", st.opened, reg.Len())
	}
}

func TestRegistryOpenWarning(t *testing.T) {
	st := &stubStore{initErr: errors.New("disk gone")}
	reg := NewSessionRegistry(service.NewQuizService(st, nil), time.Hour)

	reg.With("user0001", func(sess *session.Session, opened *service.RenderHint) {
		if sess == nil || opened == nil || opened.Warning != service.WarningStoreUnavailable {
			t.Errorf("opened = %+v", opened)
		}
	})
}

func TestRegistryCleanupExpired(t *testing.T) {
	reg := NewSessionRegistry(service.NewQuizService(&stubStore{}, nil), time.Hour)
	now := time.Now()
	reg.now = func() time.Time { return now }

	reg.With("old00001", func(*session.Session, *service.RenderHint) {})
	now = now.Add(45 * time.Minute)
	reg.With("new00001", func(*session.Session, *service.RenderHint) {})
	now = now.Add(30 * time.Minute)

	if removed := reg.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestRegistryKeepsBusySession(t *testing.T) {
	reg := NewSessionRegistry(service.NewQuizService(&stubStore{}, nil), time.Hour)
	now := time.Now()
	reg.now = func() time.Time { return now }

	var first *session.Session
	reg.With("busy0001", func(sess *session.Session, _ *service.RenderHint) {
		first = sess
		now = now.Add(2 * time.Hour)
		if removed := reg.CleanupExpired(); removed != 0 {
			t.Errorf("CleanupExpired() during an event = %d, want 0", removed)
		}
	})

	if removed := reg.CleanupExpired(); removed != 0 {
		t.Errorf("CleanupExpired() right after an event = %d, want 0", removed)
	}
	reg.With("busy0001", func(sess *session.Session, opened *service.RenderHint) {
		if opened != nil || sess != first {
			t.Error("session should survive cleanup while busy")
		}
	})

	now = now.Add(2 * time.Hour)
	if removed := reg.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() once idle = %d, want 1", removed)
	}
}

func TestRegistrySerializesUser(t *testing.T) {
	reg := NewSessionRegistry(service.NewQuizService(&stubStore{}, nil), time.Hour)

	var mu sync.Mutex
	active, maxActive := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.With("user0001", func(*session.Session, *service.RenderHint) {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()
				time.Sleep(time.Millisecond)
				mu.Lock()
				active--
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("%d events ran concurrently for one user", maxActive)
	}
}
