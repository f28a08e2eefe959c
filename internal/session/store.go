// Package session holds the tab-scoped interview state: intake documents,
// the active provider identifiers and the completed interview payload.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Keys under which the interview flow keeps its state.
const (
	KeyInterviewData         = "interviewData"
	KeyCurrentPersonaID      = "currentPersonaId"
	KeyCurrentConversationID = "currentConversationId"
	KeyCompletedInterview    = "completedInterview"
	KeyInterviewFeedback     = "interviewFeedback"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("session key not found")

// Store is a key/value store of JSON documents owned by one browser tab.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewStore() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Set stores value under key as JSON.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = data
	return nil
}

// Get decodes the value stored under key into target.
func (s *Store) Get(key string, target any) error {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// Has reports whether key holds a value.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

func (s *Store) Remove(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
}

// Clear drops every key.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string][]byte)
}

// Keys lists stored keys in no particular order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}
