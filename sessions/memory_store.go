package sessions

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/canvas-dashboard/internal/errors"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps sessions in process memory keyed by a random cookie id.
// Sessions are lost on restart.
type MemoryStore struct {
	name     string
	mu       sync.RWMutex
	sessions map[string]Session // sessionID -> Session
}

func NewMemoryStore(cookieName string) *MemoryStore {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &MemoryStore{
		name:     cookieName,
		sessions: make(map[string]Session),
	}
}

func (ms *MemoryStore) Load(r *http.Request) (Session, error) {
	sessionID, err := readCookie(r, ms.name)
	if err != nil {
		return Session{}, err
	}

	ms.mu.RLock()
	defer ms.mu.RUnlock()

	s, ok := ms.sessions[sessionID]
	if !ok {
		return Session{}, apperrors.Wrapf(apperrors.ErrSessionNotFound, "[MemoryStore] %s", sessionID)
	}
	return s, nil
}

// Save always issues a fresh id and drops the previous one
func (ms *MemoryStore) Save(w http.ResponseWriter, r *http.Request, s Session) error {
	if err := s.validate(); err != nil {
		return err
	}
	sessionID := uuid.New().String()

	ms.mu.Lock()
	if previous, err := readCookie(r, ms.name); err == nil {
		delete(ms.sessions, previous)
	}
	ms.sessions[sessionID] = s
	ms.mu.Unlock()

	setCookie(w, r, ms.name, sessionID)
	return nil
}

func (ms *MemoryStore) Clear(w http.ResponseWriter, r *http.Request) error {
	if sessionID, err := readCookie(r, ms.name); err == nil {
		ms.mu.Lock()
		delete(ms.sessions, sessionID)
		ms.mu.Unlock()
	}
	expireCookie(w, r, ms.name)
	return nil
}

// Len is the number of live sessions
func (ms *MemoryStore) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.sessions)
}
