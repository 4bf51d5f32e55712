package session

import (
	"sync"
	"time"

	"geospy/internal/models"
)

// Store tracks upload sessions in memory, keyed by id. Each upload gets a
// session whose status moves uploaded -> analyzing -> completed | error.
type Store struct {
	sessions map[string]*models.Session
	mutex    sync.RWMutex
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*models.Session),
	}
}

// Create registers a new upload session
func (s *Store) Create(id string, kind models.MediaKind, filename, filePath string) *models.Session {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess := &models.Session{
		ID:         id,
		Kind:       kind,
		Filename:   filename,
		FilePath:   filePath,
		UploadTime: time.Now().UTC(),
		Status:     models.SessionUploaded,
	}
	s.sessions[id] = sess
	return sess
}

// Get returns a copy of the session for the given id
func (s *Store) Get(id string) (*models.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, models.ErrSessionNotFound
	}

	copied := *sess
	return &copied, nil
}

// SetStatus transitions a session to the given status
func (s *Store) SetStatus(id string, status models.SessionStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return models.ErrSessionNotFound
	}

	sess.Status = status
	if status != models.SessionError {
		sess.Error = ""
	}
	return nil
}

// SetError marks a session as failed with the given message
func (s *Store) SetError(id string, message string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, exists := s.sessions[id]
	if !exists {
		return models.ErrSessionNotFound
	}

	sess.Status = models.SessionError
	sess.Error = message
	return nil
}

// Count returns the number of tracked sessions
func (s *Store) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions)
}
