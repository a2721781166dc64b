package media

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quiet = 60 * time.Millisecond

type recorder struct {
	mu        sync.Mutex
	forwarded []Batch
	overflown []Batch
}

func (r *recorder) forward(_ context.Context, b Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forwarded = append(r.forwarded, b)
}

func (r *recorder) overflow(_ context.Context, b Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overflown = append(r.overflown, b)
}

func (r *recorder) snapshot() ([]Batch, []Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Batch(nil), r.forwarded...), append([]Batch(nil), r.overflown...)
}

func newTestAggregator(t *testing.T, max int) (*Aggregator, *recorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	agg := NewAggregator(ctx, Options{QuietPeriod: quiet, MaxPhotos: max, Forward: rec.forward, Overflow: rec.overflow})
	t.Cleanup(func() {
		cancel()
		agg.Close()
	})
	return agg, rec
}

func payload(i int) model.PhotoPayload {
	return model.PhotoPayload{Name: fmt.Sprintf("p%d.jpg", i), Data: []byte{byte(i)}}
}

func TestBurstBecomesOneBatch(t *testing.T) {
	agg, rec := newTestAggregator(t, 4)

	agg.Ingest("g1", "u1", payload(1), "")
	for i := 2; i <= 3; i++ {
		time.Sleep(quiet / 3)
		agg.Ingest("g1", "u1", payload(i), "oil leak")
	}
	agg.Wait()

	forwarded, overflown := rec.snapshot()
	require.Len(t, forwarded, 1)
	assert.Empty(t, overflown)
	b := forwarded[0]
	assert.Equal(t, "g1", b.GroupID)
	assert.Equal(t, "u1", b.ActorID)
	assert.Equal(t, "oil leak", b.Caption)
	assert.Equal(t, []model.PhotoPayload{payload(1), payload(2), payload(3)}, b.Photos)
	assert.Zero(t, agg.Pending())
}

func TestPhotoAfterQuietStartsNewBatch(t *testing.T) {
	agg, rec := newTestAggregator(t, 4)

	agg.Ingest("g1", "u1", payload(1), "first")
	agg.Ingest("g1", "u1", payload(2), "")
	agg.Wait()
	agg.Ingest("g1", "u1", payload(3), "")
	agg.Wait()

	forwarded, _ := rec.snapshot()
	require.Len(t, forwarded, 2)
	assert.Len(t, forwarded[0].Photos, 2)
	assert.Equal(t, "first", forwarded[0].Caption)
	assert.Equal(t, []model.PhotoPayload{payload(3)}, forwarded[1].Photos)
	assert.Empty(t, forwarded[1].Caption)
}

func TestOverCapacityIsNotForwarded(t *testing.T) {
	agg, rec := newTestAggregator(t, 2)

	for i := 1; i <= 3; i++ {
		agg.Ingest("g1", "u1", payload(i), "")
	}
	agg.Wait()

	forwarded, overflown := rec.snapshot()
	assert.Empty(t, forwarded)
	require.Len(t, overflown, 1)
	assert.Len(t, overflown[0].Photos, 3)
	assert.Zero(t, agg.Pending())
}

func TestGroupsAreIndependent(t *testing.T) {
	agg, rec := newTestAggregator(t, 4)

	agg.Ingest("g1", "u1", payload(1), "")
	agg.Ingest("g2", "u2", payload(2), "")
	agg.Ingest("g2", "u2", payload(3), "")
	agg.Wait()

	forwarded, _ := rec.snapshot()
	require.Len(t, forwarded, 2)
	byGroup := map[string]int{}
	for _, b := range forwarded {
		byGroup[b.GroupID] = len(b.Photos)
	}
	assert.Equal(t, map[string]int{"g1": 1, "g2": 2}, byGroup)
}

func TestSlowHandlerDoesNotBlockOtherGroups(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	release := make(chan struct{})
	done := make(chan string, 2)
	agg := NewAggregator(ctx, Options{
		QuietPeriod: quiet,
		MaxPhotos:   4,
		Forward: func(_ context.Context, b Batch) {
			if b.GroupID == "slow" {
				<-release
			}
			done <- b.GroupID
		},
	})

	agg.Ingest("slow", "u1", payload(1), "")
	agg.Ingest("fast", "u2", payload(2), "")

	select {
	case id := <-done:
		assert.Equal(t, "fast", id)
	case <-time.After(time.Second):
		t.Fatal("fast group never finished")
	}
	close(release)
	assert.Equal(t, "slow", <-done)
	agg.Wait()
}

func TestClearActorDropsPendingGroups(t *testing.T) {
	agg, rec := newTestAggregator(t, 4)

	agg.Ingest("g1", "u1", payload(1), "")
	agg.Ingest("g2", "u2", payload(2), "")
	agg.ClearActor("u1")
	assert.Equal(t, 1, agg.Pending())
	agg.Wait()

	forwarded, _ := rec.snapshot()
	require.Len(t, forwarded, 1)
	assert.Equal(t, "u2", forwarded[0].ActorID)
}

func TestCancelledContextDropsGroups(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	agg := NewAggregator(ctx, Options{QuietPeriod: time.Hour, MaxPhotos: 4, Forward: rec.forward})

	agg.Ingest("g1", "u1", payload(1), "")
	cancel()
	agg.Wait()

	forwarded, _ := rec.snapshot()
	assert.Empty(t, forwarded)
	assert.Zero(t, agg.Pending())
}

func TestIngestAfterCloseIsDropped(t *testing.T) {
	agg, rec := newTestAggregator(t, 4)
	agg.Ingest("g1", "u1", payload(1), "")
	agg.Close()

	agg.Ingest("g2", "u1", payload(2), "")
	assert.Zero(t, agg.Pending())
	time.Sleep(2 * quiet)

	forwarded, _ := rec.snapshot()
	require.Len(t, forwarded, 1)
	assert.Equal(t, "g1", forwarded[0].GroupID)
}

func TestIngestAfterCancelIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	agg := NewAggregator(ctx, Options{QuietPeriod: quiet, MaxPhotos: 4})
	cancel()

	agg.Ingest("g1", "u1", payload(1), "")
	assert.Zero(t, agg.Pending())
	agg.Close()
}
