package state

import (
	"context"
	"sync"
	"time"

	"github.com/babushkian/OTBot/model"
)

// MemoryStore keeps conversations in process memory. Entries idle for longer than ttl
// are removed by a janitor goroutine that stops with ctx.
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]model.Conversation
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ctx context.Context, ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		convs: make(map[string]model.Conversation),
		ttl:   ttl,
		now:   time.Now,
	}
	if ttl > 0 {
		go s.janitor(ctx)
	}
	return s
}

func (s *MemoryStore) Load(_ context.Context, key string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, found := s.convs[key]
	if !found || expired(&conv, s.ttl, s.now()) {
		return nil, nil
	}
	conv.Draft = append([]byte(nil), conv.Draft...)
	return &conv, nil
}

func (s *MemoryStore) Save(_ context.Context, conv *model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *conv
	stored.Draft = append([]byte(nil), conv.Draft...)
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = s.now()
	}
	s.convs[conv.Key()] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.convs, key)
	return nil
}

// janitor periodically drops expired conversations.
func (s *MemoryStore) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, conv := range s.convs {
		if expired(&conv, s.ttl, now) {
			delete(s.convs, key)
		}
	}
}
