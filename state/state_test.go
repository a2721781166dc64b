package state

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/babushkian/OTBot/db"
	"github.com/babushkian/OTBot/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	conv := &model.Conversation{ActorID: "42", Kind: model.KindIntake, State: "awaiting_location", Draft: []byte(`{"description":"oil"}`)}
	require.NoError(t, store.Save(ctx, conv))

	got, err := store.Load(ctx, conv.Key())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "awaiting_location", got.State)
	assert.JSONEq(t, `{"description":"oil"}`, string(got.Draft))

	review, err := store.Load(ctx, model.ConversationKey("42", model.KindReview))
	require.NoError(t, err)
	assert.Nil(t, review)

	require.NoError(t, store.Delete(ctx, conv.Key()))
	got, err = store.Load(ctx, conv.Key())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	exerciseStore(t, NewMemoryStore(ctx, time.Hour))
}

func TestMemoryStoreExpires(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewMemoryStore(ctx, time.Minute)
	now := time.Now()
	store.now = func() time.Time { return now }

	conv := &model.Conversation{ActorID: "1", Kind: model.KindIntake, State: "awaiting_photo"}
	require.NoError(t, store.Save(ctx, conv))

	now = now.Add(2 * time.Minute)
	got, err := store.Load(ctx, conv.Key())
	require.NoError(t, err)
	assert.Nil(t, got)

	store.sweep()
	assert.Empty(t, store.convs)
}

func TestMemoryStoreCopiesDraft(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := NewMemoryStore(ctx, 0)

	conv := &model.Conversation{ActorID: "1", Kind: model.KindIntake, State: "s", Draft: []byte(`{"a":1}`)}
	require.NoError(t, store.Save(ctx, conv))
	conv.Draft[2] = 'b'

	got, err := store.Load(ctx, conv.Key())
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got.Draft))
}

func TestSQLiteStoreExpires(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	ctx := context.Background()
	store, err := New(ctx, model.StateConfig{Backend: "sqlite", TTL: time.Hour}, conn)
	require.NoError(t, err)
	exerciseStore(t, store)

	stale := &model.Conversation{ActorID: "7", Kind: model.KindReview, State: "review", UpdatedAt: time.Now().Add(-2 * time.Hour)}
	require.NoError(t, store.Save(ctx, stale))
	got, err := store.Load(ctx, stale.Key())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("OTBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("OTBOT_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	require.NoError(t, client.Ping(context.Background()).Err())
	exerciseStore(t, NewRedisStore(client, time.Minute))
}

func TestUnknownBackend(t *testing.T) {
	_, err := New(context.Background(), model.StateConfig{Backend: "etcd"}, nil)
	assert.Error(t, err)
}

func TestLockerSerialisesKey(t *testing.T) {
	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("k")
			defer unlock()

			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, l.locks)
}

func TestLockerIndependentKeys(t *testing.T) {
	l := NewLocker()
	unlockA := l.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := l.Lock("b")
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked by a")
	}
	unlockA()
}
