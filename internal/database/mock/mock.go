// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
)

// MockStore is an in-memory implementation of database.Store
type MockStore struct {
	mu         sync.RWMutex
	identities []database.Identity
	sessions   []database.AttendanceSession
	nextID     int64
	nextSessID int64
	closed     bool

	// Error injection
	PutError            error
	ListError           error
	GetAllError         error
	UpdateTemplateError error
	DeleteError         error
	FindOpenError       error
	OpenSessionError    error
	CloseSessionError   error
	ListByDateError     error
	MigrateError        error
}

var _ database.Store = (*MockStore)(nil)

// NewMockStore creates a new empty mock store
func NewMockStore() *MockStore {
	return &MockStore{nextID: 1, nextSessID: 1}
}

// AddIdentity adds an identity to the mock store and returns its id
func (m *MockStore) AddIdentity(name string, tpl fingerprint.Template) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertIdentity(name, tpl)
}

func (m *MockStore) insertIdentity(name string, tpl fingerprint.Template) int64 {
	id := m.nextID
	m.nextID++
	m.identities = append(m.identities, database.Identity{
		ID:        id,
		Name:      name,
		Template:  tpl,
		CreatedAt: time.Now(),
	})
	return id
}

// Identities returns a copy of the stored identities
func (m *MockStore) Identities() []database.Identity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]database.Identity(nil), m.identities...)
}

// Sessions returns a copy of the stored sessions
func (m *MockStore) Sessions() []database.AttendanceSession {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.AttendanceSession, len(m.sessions))
	for i, s := range m.sessions {
		out[i] = s
		if s.TimeOut != nil {
			v := *s.TimeOut
			out[i].TimeOut = &v
		}
	}
	return out
}

// IsClosed reports whether Close was called
func (m *MockStore) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}

// Put inserts an identity
func (m *MockStore) Put(ctx context.Context, name string, tpl fingerprint.Template) (int64, error) {
	if m.PutError != nil {
		return 0, m.PutError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertIdentity(name, tpl), nil
}

// List returns identity summaries ordered by id
func (m *MockStore) List(ctx context.Context) ([]database.IdentitySummary, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.IdentitySummary, 0, len(m.identities))
	for _, identity := range m.identities {
		out = append(out, database.IdentitySummary{ID: identity.ID, Name: identity.Name})
	}
	return out, nil
}

// GetAll returns all identities ordered by id
func (m *MockStore) GetAll(ctx context.Context) ([]database.Identity, error) {
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]database.Identity(nil), m.identities...), nil
}

func (m *MockStore) indexByName(name string) int {
	for i, identity := range m.identities {
		if identity.Name == name {
			return i
		}
	}
	return -1
}

// UpdateTemplate replaces the template of the first identity with the name
func (m *MockStore) UpdateTemplate(ctx context.Context, name string, tpl fingerprint.Template) (bool, error) {
	if m.UpdateTemplateError != nil {
		return false, m.UpdateTemplateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexByName(name)
	if i < 0 {
		return false, nil
	}
	m.identities[i].Template = tpl
	return true, nil
}

// Delete removes the first identity with the name
func (m *MockStore) Delete(ctx context.Context, name string) (bool, error) {
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexByName(name)
	if i < 0 {
		return false, nil
	}
	m.identities = append(m.identities[:i], m.identities[i+1:]...)
	return true, nil
}

// FindOpen returns the open session for identity and date
func (m *MockStore) FindOpen(ctx context.Context, identityID int64, date string) (*database.AttendanceSession, error) {
	if m.FindOpenError != nil {
		return nil, m.FindOpenError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.IdentityID == identityID && s.Date == date && s.IsOpen() {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

// OpenSession inserts an open session
func (m *MockStore) OpenSession(ctx context.Context, identityID int64, date, timeIn string) (int64, error) {
	if m.OpenSessionError != nil {
		return 0, m.OpenSessionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.IdentityID == identityID && s.Date == date && s.IsOpen() {
			return 0, database.ErrSessionAlreadyOpen
		}
	}
	id := m.nextSessID
	m.nextSessID++
	m.sessions = append(m.sessions, database.AttendanceSession{
		ID:         id,
		IdentityID: identityID,
		Date:       date,
		TimeIn:     timeIn,
	})
	return id, nil
}

// CloseSession sets the check-out time of an open session
func (m *MockStore) CloseSession(ctx context.Context, sessionID int64, timeOut string) error {
	if m.CloseSessionError != nil {
		return m.CloseSessionError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sessions {
		if m.sessions[i].ID == sessionID && m.sessions[i].IsOpen() {
			out := timeOut
			m.sessions[i].TimeOut = &out
			return nil
		}
	}
	return database.ErrSessionNotOpen
}

// ListByDate returns the sessions of a date with identity names
func (m *MockStore) ListByDate(ctx context.Context, date string) ([]database.SessionRecord, error) {
	if m.ListByDateError != nil {
		return nil, m.ListByDateError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make(map[int64]string, len(m.identities))
	for _, identity := range m.identities {
		names[identity.ID] = identity.Name
	}

	var out []database.SessionRecord
	for _, s := range m.sessions {
		if s.Date != date {
			continue
		}
		out = append(out, database.SessionRecord{AttendanceSession: s, Name: names[s.IdentityID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TimeIn != out[j].TimeIn {
			return out[i].TimeIn < out[j].TimeIn
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Migrate is a no-op
func (m *MockStore) Migrate(ctx context.Context) ([]string, error) {
	if m.MigrateError != nil {
		return nil, m.MigrateError
	}
	return nil, nil
}

// Close marks the store closed
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
