package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/babushkian/OTBot/catalog"
	"github.com/babushkian/OTBot/messaging"
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/notify"
	"github.com/babushkian/OTBot/state"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// TryAgain is shown when storage fails and the step can be repeated.
const TryAgain = "Something went wrong while saving, please try again."

type Submissions interface {
	Create(ctx context.Context, sub *model.Submission) (string, error)
}

type Photos interface {
	Put(ctx context.Context, data []byte) (model.Photo, error)
}

type Locations interface {
	List(ctx context.Context) ([]model.Location, error)
}

type Authorizer interface {
	CanReport(ctx context.Context, userID string) bool
	Reviewers(ctx context.Context) ([]string, error)
}

// MediaClearer drops unfinished photo bursts of an actor.
type MediaClearer interface {
	ClearActor(actorID string)
}

// Actor is the chat user driving a conversation.
type Actor struct {
	ID   string
	Name string
}

// Deps are the collaborators of an Engine. Notifier, Publisher and Auth may be nil.
type Deps struct {
	Store             state.Store
	Submissions       Submissions
	Photos            Photos
	Locations         Locations
	Catalog           *catalog.Catalog
	Auth              Authorizer
	Notifier          notify.Notifier
	Publisher         messaging.Publisher
	AllowEmptyActions bool
}

// Engine runs intake conversations. Events of one actor are handled strictly one after
// another; different actors proceed in parallel.
type Engine struct {
	Deps
	locker *state.Locker
	media  MediaClearer
	now    func() time.Time
}

func NewEngine(deps Deps) *Engine {
	if deps.Catalog == nil {
		deps.Catalog = catalog.Default()
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.Nop{}
	}
	return &Engine{Deps: deps, locker: state.NewLocker(), now: time.Now}
}

// SetMedia registers the aggregator feeding this engine, so bursts of an actor are
// dropped once the conversation moves on.
func (e *Engine) SetMedia(m MediaClearer) {
	e.media = m
}

// Result is what one dispatched event produced.
type Result struct {
	State      State
	Replies    []model.Reply
	Submission *model.Submission
}

// Dispatch feeds one event into the actor's intake conversation. The returned Result
// always carries the replies for the actor, also when err is set. Errors are marked
// with the model error classes and never leave the conversation broken.
func (e *Engine) Dispatch(ctx context.Context, actor Actor, ev Event) (*Result, error) {
	if ev.Type == EventStart && e.Auth != nil && !e.Auth.CanReport(ctx, actor.ID) {
		return &Result{State: StateIdle, Replies: []model.Reply{{Text: "You are not allowed to file violation reports."}}},
			errors.Mark(errors.Newf("user %s may not report", actor.ID), model.ErrForbidden)
	}

	key := model.ConversationKey(actor.ID, model.KindIntake)
	unlock := e.locker.Lock(key)
	defer unlock()

	cur, draft, err := e.load(ctx, key)
	if err != nil {
		return transient(cur), err
	}

	if ev.Type == EventPhoto && cur == StateAwaitingPhoto && len(ev.Payloads) > 0 {
		photos, err := e.storePhotos(ctx, ev.Payloads)
		if err != nil {
			if errors.Is(err, model.ErrValidation) {
				return &Result{State: cur, Replies: []model.Reply{{Text: "Could not read the photo. Send it as a JPEG or PNG image."}}}, err
			}
			return transient(cur), err
		}
		ev.Photos = photos
	}

	menu := Menu{Catalog: e.Catalog, AllowEmptyActions: e.AllowEmptyActions}
	if cur == StateAwaitingPhoto || cur == StateAwaitingLocation {
		if menu.Locations, err = e.Locations.List(ctx); err != nil {
			return transient(cur), err
		}
	}

	out := Transition(cur, draft, ev, menu)
	if ev.Type == EventStart {
		out.Draft.ReporterID = actor.ID
		out.Draft.ReporterName = actor.Name
	}
	res := &Result{State: out.Next, Replies: out.Replies}

	if out.Commit {
		sub := out.Draft.Submission()
		if _, err := e.Submissions.Create(ctx, sub); err != nil {
			log.Error().Err(err).Str("actor", actor.ID).Msg("failed to commit submission")
			res.State = StateAwaitingConfirm
			res.Replies = []model.Reply{{Text: TryAgain}, prompt(StateAwaitingConfirm, out.Draft, menu)}
			if saveErr := e.save(ctx, actor.ID, StateAwaitingConfirm, out.Draft); saveErr != nil {
				log.Error().Err(saveErr).Str("actor", actor.ID).Msg("failed to keep draft after commit failure")
			}
			if !errors.Is(err, model.ErrPersistence) {
				err = errors.Mark(err, model.ErrPersistence)
			}
			return res, err
		}
		log.Info().Str("submission", sub.ID).Int("number", sub.Number).Str("reporter", actor.ID).Msg("submission committed")
		res.Submission = sub
		res.Replies = []model.Reply{{Text: fmt.Sprintf("Report #%d saved and sent for review.", sub.Number)}}
		e.announce(ctx, sub)
	}

	if out.Next == StateIdle {
		if err := e.Store.Delete(ctx, key); err != nil {
			log.Error().Err(err).Str("actor", actor.ID).Msg("failed to drop finished conversation")
		}
	} else if err := e.save(ctx, actor.ID, out.Next, out.Draft); err != nil {
		return transient(cur), err
	}

	if e.media != nil && (out.Next == StateIdle || (cur == StateAwaitingPhoto && out.Next != StateAwaitingPhoto)) {
		e.media.ClearActor(actor.ID)
	}
	return res, out.Err
}

// Current returns the state of the actor's intake conversation.
func (e *Engine) Current(ctx context.Context, actorID string) (State, error) {
	cur, _, err := e.load(ctx, model.ConversationKey(actorID, model.KindIntake))
	return cur, err
}

func (e *Engine) load(ctx context.Context, key string) (State, Draft, error) {
	conv, err := e.Store.Load(ctx, key)
	if err != nil {
		return StateIdle, Draft{}, err
	}
	if conv == nil {
		return StateIdle, Draft{}, nil
	}
	var draft Draft
	if len(conv.Draft) > 0 {
		if err := json.Unmarshal(conv.Draft, &draft); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("unreadable draft, starting over")
			return StateIdle, Draft{}, nil
		}
	}
	return State(conv.State), draft, nil
}

func (e *Engine) save(ctx context.Context, actorID string, s State, draft Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return e.Store.Save(ctx, &model.Conversation{
		ActorID:   actorID,
		Kind:      model.KindIntake,
		State:     string(s),
		Draft:     raw,
		UpdatedAt: e.now(),
	})
}

func (e *Engine) storePhotos(ctx context.Context, payloads []model.PhotoPayload) ([]model.Photo, error) {
	photos := make([]model.Photo, 0, len(payloads))
	for _, p := range payloads {
		rec, err := e.Photos.Put(ctx, p.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "store %s", p.Name)
		}
		photos = append(photos, rec)
	}
	return photos, nil
}

// announce tells the reviewers about a new submission and publishes the event.
// Failures are logged; the submission stays committed.
func (e *Engine) announce(ctx context.Context, sub *model.Submission) {
	if e.Notifier != nil && e.Auth != nil {
		reviewers, err := e.Auth.Reviewers(ctx)
		if err != nil {
			log.Error().Err(err).Msg("failed to list reviewers")
		}
		text := fmt.Sprintf("New violation report #%d from %s\nLocation: %s\nCategory: %s\nUse /check to review it.",
			sub.Number, sub.ReporterName, sub.LocationName, sub.Category)
		to := make([]notify.Recipient, 0, len(reviewers))
		for _, id := range reviewers {
			to = append(to, notify.User(id))
		}
		if err := notify.Broadcast(ctx, e.Notifier, to, text); err != nil {
			log.Error().Err(err).Str("submission", sub.ID).Msg("failed to notify reviewers")
		}
	}

	err := e.Publisher.PublishSubmissionCreated(ctx, messaging.SubmissionCreatedMessage{
		SubmissionID: sub.ID,
		Number:       sub.Number,
		ReporterID:   sub.ReporterID,
		LocationName: sub.LocationName,
		Category:     sub.Category,
		Photos:       len(sub.Photos),
		Timestamp:    sub.CreatedAt.Unix(),
	})
	if err != nil {
		log.Error().Err(err).Str("submission", sub.ID).Msg("failed to publish submission.created")
	}
}

func transient(s State) *Result {
	return &Result{State: s, Replies: []model.Reply{{Text: TryAgain}}}
}

// OverCapacity is the notice sent when a photo burst is larger than allowed.
func OverCapacity(got, max int) model.Reply {
	return model.Reply{Text: fmt.Sprintf("You sent %d photos, at most %d are allowed per report. None of them were kept, please send fewer.", got, max)}
}
