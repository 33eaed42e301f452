package lstore

import (
	"sync"

	"github.com/ValentinKolb/sKV/lib/store"
)

type storeImpl struct {
	mu   sync.Mutex
	data map[string]string
}

// NewLocalStore creates a new, empty local store instance.
// This store implementation is not distributed and only works on a single node.
func NewLocalStore() store.IStore {
	return &storeImpl{
		data: make(map[string]string),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) (string, bool, error) {
	s.mu.Lock()
	value, ok := s.data[key]
	s.mu.Unlock()
	return value, ok, nil
}

func (s *storeImpl) Set(key string, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

func (s *storeImpl) Delete(key string) (string, bool, error) {
	s.mu.Lock()
	value, ok := s.data[key]
	if ok {
		delete(s.data, key)
	}
	s.mu.Unlock()
	return value, ok, nil
}

func (s *storeImpl) Exists(key string) (bool, error) {
	s.mu.Lock()
	_, ok := s.data[key]
	s.mu.Unlock()
	return ok, nil
}

func (s *storeImpl) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}
