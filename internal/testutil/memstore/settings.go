package memstore

import (
	"context"
	"sync"

	"github.com/epis-academic/academic-records/internal/domain/sysconfig"
)

// Settings is an in-memory sysconfig.Store.
type Settings struct {
	mu     sync.Mutex
	values map[string]string

	// Err, when set, is returned by every call.
	Err error

	// Gets and Sets count calls.
	Gets int
	Sets int
}

var _ sysconfig.Store = (*Settings)(nil)

// NewSettings returns a store holding values.
func NewSettings(values map[string]string) *Settings {
	s := &Settings{values: make(map[string]string, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Get returns the value of key.
func (s *Settings) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Gets++
	if s.Err != nil {
		return "", false, s.Err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Settings) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Sets++
	if s.Err != nil {
		return s.Err
	}
	s.values[key] = value
	return nil
}

// Value returns the stored value of key, for assertions.
func (s *Settings) Value(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}
