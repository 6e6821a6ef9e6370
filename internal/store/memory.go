package store

import (
	"sort"
	"sync"
)

// Memory is the in-process implementation of VideoStore and SessionStore.
// All methods are safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	videos   map[string]Video
	sessions map[string]Session
}

var (
	_ VideoStore   = (*Memory)(nil)
	_ SessionStore = (*Memory)(nil)
)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		videos:   make(map[string]Video),
		sessions: make(map[string]Session),
	}
}

func (m *Memory) PutVideo(v Video) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[v.ID] = v
	return nil
}

func (m *Memory) GetVideo(id string) (Video, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.videos[id]
	if !ok {
		return Video{}, ErrNotFound
	}
	return v, nil
}

func (m *Memory) UpdateVideo(id string, fn func(*Video)) (Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.videos[id]
	if !ok {
		return Video{}, ErrNotFound
	}
	fn(&v)
	m.videos[id] = v
	return v, nil
}

func (m *Memory) ListVideos() []Video {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Video, 0, len(m.videos))
	for _, v := range m.videos {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

func (m *Memory) PutSession(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *Memory) GetSession(id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *Memory) AppendMessage(id string, msg Message) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	s.Messages = append(s.Messages, msg)
	m.sessions[id] = s
	return s, nil
}

func (m *Memory) DeleteSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}
