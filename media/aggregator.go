// Package media merges photo bursts that arrive as separate chat events into one batch.
package media

import (
	"context"
	"sync"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/rs/zerolog/log"
)

// Batch is a finished burst.
type Batch struct {
	GroupID string
	ActorID string
	Photos  []model.PhotoPayload
	Caption string
}

// Handler receives finished bursts. It runs on the group's waiter goroutine.
type Handler func(ctx context.Context, b Batch)

// Options configure an Aggregator.
type Options struct {
	// QuietPeriod is how long a group must receive nothing before it is finished.
	QuietPeriod time.Duration
	// MaxPhotos caps a burst. Larger bursts go to Overflow instead of Forward.
	MaxPhotos int
	Forward   Handler
	Overflow  Handler
}

type group struct {
	actorID string
	photos  []model.PhotoPayload
	caption string
	reset   chan struct{}
	stop    chan struct{}
}

// Aggregator collects photos per group id. Each group has one waiter goroutine which
// finishes the group once QuietPeriod passes without a new photo.
type Aggregator struct {
	ctx  context.Context
	opts Options

	mu     sync.Mutex
	groups map[string]*group
	closed bool
	wg     sync.WaitGroup
}

// NewAggregator creates an aggregator. Waiters stop, dropping their photos, when ctx is done.
func NewAggregator(ctx context.Context, opts Options) *Aggregator {
	return &Aggregator{
		ctx:    ctx,
		opts:   opts,
		groups: make(map[string]*group),
	}
}

// Ingest adds a photo to the group. The first non-empty caption of a burst is kept.
// Photos arriving after Close or after ctx is done are dropped.
func (a *Aggregator) Ingest(groupID, actorID string, photo model.PhotoPayload, caption string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.ctx.Err() != nil {
		log.Debug().Str("group", groupID).Str("actor", actorID).Msg("aggregator closed, photo dropped")
		return
	}

	g, ok := a.groups[groupID]
	if !ok {
		g = &group{
			actorID: actorID,
			reset:   make(chan struct{}, 1),
			stop:    make(chan struct{}),
		}
		a.groups[groupID] = g
		a.wg.Add(1)
		go a.wait(groupID, g)
	}
	g.photos = append(g.photos, photo)
	if g.caption == "" {
		g.caption = caption
	}
	if ok {
		select {
		case g.reset <- struct{}{}:
		default:
		}
	}
}

// ClearActor drops every unfinished group of the actor without forwarding it.
func (a *Aggregator) ClearActor(actorID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for id, g := range a.groups {
		if g.actorID == actorID {
			delete(a.groups, id)
			close(g.stop)
		}
	}
}

// Pending returns the number of unfinished groups.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.groups)
}

// Wait blocks until the waiters started so far have returned. It must not run
// concurrently with Ingest; use Close for that.
func (a *Aggregator) Wait() {
	a.wg.Wait()
}

// Close stops accepting photos and blocks until all waiters have returned.
func (a *Aggregator) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.wg.Wait()
}

func (a *Aggregator) wait(groupID string, g *group) {
	defer a.wg.Done()

	timer := time.NewTimer(a.opts.QuietPeriod)
	defer timer.Stop()

	for {
		select {
		case <-g.reset:
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(a.opts.QuietPeriod)
		case <-timer.C:
			a.finish(groupID, g)
			return
		case <-g.stop:
			return
		case <-a.ctx.Done():
			a.remove(groupID, g)
			return
		}
	}
}

// remove deletes the entry if it still belongs to g and reports whether it did.
func (a *Aggregator) remove(groupID string, g *group) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.groups[groupID] != g {
		return false
	}
	delete(a.groups, groupID)
	return true
}

func (a *Aggregator) finish(groupID string, g *group) {
	a.mu.Lock()
	if a.groups[groupID] != g {
		a.mu.Unlock()
		return
	}
	delete(a.groups, groupID)
	batch := Batch{
		GroupID: groupID,
		ActorID: g.actorID,
		Photos:  g.photos,
		Caption: g.caption,
	}
	a.mu.Unlock()

	if a.opts.MaxPhotos > 0 && len(batch.Photos) > a.opts.MaxPhotos {
		log.Warn().Str("group", groupID).Str("actor", batch.ActorID).
			Int("photos", len(batch.Photos)).Int("max", a.opts.MaxPhotos).Msg("photo burst over capacity, discarded")
		if a.opts.Overflow != nil {
			a.opts.Overflow(a.ctx, batch)
		}
		return
	}
	log.Debug().Str("group", groupID).Int("photos", len(batch.Photos)).Msg("photo burst finished")
	if a.opts.Forward != nil {
		a.opts.Forward(a.ctx, batch)
	}
}
