// Пакет store хранит сессии редактора в памяти. Сессия удаляется после простоя дольше TTL,
// каждое обращение продлевает ее жизнь.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/apierrors"
	"github.com/aisa-it/guidebook/guidebook.go/internal/guidebook/session"
)

type SessionStore struct {
	mu       sync.RWMutex
	ttl      time.Duration
	sessions map[uuid.UUID]sessionData

	// OnChange вызывается с числом сессий после каждого добавления и удаления.
	OnChange func(n int)
}

type sessionData struct {
	session *session.Session
	timer   *time.Timer
	cleanup chan struct{}
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[uuid.UUID]sessionData),
	}
}

// Add сохраняет сессию и запускает таймер простоя.
func (ss *SessionStore) Add(s *session.Session) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if old, ok := ss.sessions[s.ID]; ok {
		close(old.cleanup)
		old.timer.Stop()
	}

	data := sessionData{
		session: s,
		timer:   time.NewTimer(ss.ttl),
		cleanup: make(chan struct{}),
	}
	go ss.setupTimerCleanup(s.ID, data.timer, data.cleanup)
	ss.sessions[s.ID] = data
	ss.notify()
}

// Get возвращает сессию и продлевает ее жизнь.
func (ss *SessionStore) Get(id uuid.UUID) (*session.Session, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	data, ok := ss.sessions[id]
	if !ok {
		return nil, apierrors.ErrSessionNotFound
	}
	data.timer.Reset(ss.ttl)
	return data.session, nil
}

// GetString разбирает идентификатор и возвращает сессию.
func (ss *SessionStore) GetString(id string) (*session.Session, error) {
	uid, err := uuid.FromString(id)
	if err != nil {
		return nil, apierrors.ErrSessionIDBad
	}
	return ss.Get(uid)
}

// Len возвращает число сессий.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Delete закрывает и удаляет сессию. Возвращает false, если сессии не было.
func (ss *SessionStore) Delete(id uuid.UUID) bool {
	ss.mu.Lock()
	data, ok := ss.sessions[id]
	if ok {
		close(data.cleanup)
		data.timer.Stop()
		delete(ss.sessions, id)
		ss.notify()
	}
	ss.mu.Unlock()

	if ok {
		data.session.Close()
	}
	return ok
}

// Close закрывает все сессии.
func (ss *SessionStore) Close() {
	ss.mu.RLock()
	ids := make([]uuid.UUID, 0, len(ss.sessions))
	for id := range ss.sessions {
		ids = append(ids, id)
	}
	ss.mu.RUnlock()

	for _, id := range ids {
		ss.Delete(id)
	}
}

func (ss *SessionStore) notify() {
	if ss.OnChange != nil {
		ss.OnChange(len(ss.sessions))
	}
}

func (ss *SessionStore) setupTimerCleanup(id uuid.UUID, timer *time.Timer, stopCh <-chan struct{}) {
	select {
	case <-timer.C:
		if ss.Delete(id) {
			slog.Info("Session expired", "session", id)
		}
	case <-stopCh:
		return
	}
}
