package transcript

import (
	"slices"
	"sync"
)

// Store is the in-memory index of loaded videos, keyed by video ID.
// Enumeration follows insertion order. Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	videos map[string]*Video
	order  []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{videos: make(map[string]*Video)}
}

// Has reports whether a video with the given ID is loaded.
func (s *Store) Has(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.videos[id]
	return ok
}

// Get returns the video with the given ID.
func (s *Store) Get(id string) (*Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.videos[id]
	return v, ok
}

// Insert adds v unless its ID is already present, in which case it returns
// ErrAlreadyExists and leaves the stored record untouched.
func (s *Store) Insert(v *Video) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[v.ID]; ok {
		return ErrAlreadyExists
	}
	s.videos[v.ID] = v
	s.order = append(s.order, v.ID)
	return nil
}

// Remove deletes and returns the video with the given ID, or ErrNotFound.
func (s *Store) Remove(id string) (*Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.videos, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return v, nil
}

// Clear removes every video and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.videos)
	s.videos = make(map[string]*Video)
	s.order = nil
	return n
}

// List returns all videos in insertion order.
func (s *Store) List() []*Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Video, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.videos[id])
	}
	return out
}

// Len returns the number of loaded videos.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.videos)
}
