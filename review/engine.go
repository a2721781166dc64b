package review

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/babushkian/OTBot/messaging"
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/notify"
	"github.com/babushkian/OTBot/state"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// maxListed keeps a submission list within one chat message.
const maxListed = 20

const tryAgain = "Could not update the report, please try again."

type Submissions interface {
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	GetByStatus(ctx context.Context, status model.Status) ([]*model.Submission, error)
	UpdateStatus(ctx context.Context, id string, from, to model.Status) error
}

type Renderer interface {
	Render(title string, subs ...*model.Submission) (notify.Document, error)
}

type PhotoReader interface {
	Read(p model.Photo) ([]byte, error)
}

type Authorizer interface {
	CanReview(ctx context.Context, userID string) bool
}

// Deps are the collaborators of an Engine. Auth, Publisher and Photos may be nil;
// with an empty AudienceChannelID nothing is broadcast.
type Deps struct {
	Store             state.Store
	Submissions       Submissions
	Renderer          Renderer
	Photos            PhotoReader
	Auth              Authorizer
	Notifier          notify.Notifier
	Publisher         messaging.Publisher
	AudienceChannelID string
}

type Actor struct {
	ID   string
	Name string
}

// Engine runs review conversations, one per reviewer.
type Engine struct {
	Deps
	locker *state.Locker
	now    func() time.Time
}

func NewEngine(deps Deps) *Engine {
	if deps.Publisher == nil {
		deps.Publisher = messaging.Nop{}
	}
	return &Engine{Deps: deps, locker: state.NewLocker(), now: time.Now}
}

type Result struct {
	State      State
	Replies    []model.Reply
	Submission *model.Submission
}

// Dispatch feeds one event into the reviewer's conversation. No status changes without
// a confirmed request, and each confirmation changes the status at most once.
func (e *Engine) Dispatch(ctx context.Context, actor Actor, ev Event) (*Result, error) {
	if e.Auth != nil && !e.Auth.CanReview(ctx, actor.ID) {
		return reply(StateIdle, "Only administrators can review reports."),
			errors.Mark(errors.Newf("user %s may not review", actor.ID), model.ErrForbidden)
	}

	key := model.ConversationKey(actor.ID, model.KindReview)
	unlock := e.locker.Lock(key)
	defer unlock()

	cur, draft, err := e.load(ctx, key)
	if err != nil {
		return reply(cur, tryAgain), err
	}

	switch ev.Type {
	case EventList:
		e.drop(ctx, key)
		return e.list(ctx, ev.Flow)

	case EventOpen:
		return e.open(ctx, actor, key, ev.SubmissionID)

	case EventCancel:
		if cur == StateIdle {
			return reply(StateIdle, "There is no review in progress."), validation("cancel while idle")
		}
		e.drop(ctx, key)
		return reply(StateIdle, "Review cancelled, nothing was changed."), nil

	case EventRequest:
		t, ok := transitions[ev.Action]
		if cur != StateReview || !ok || t.from != draft.Flow.Source() {
			return e.reprompt(cur, draft, "That action is not available now."), validation("request %s in %s", ev.Action, cur)
		}
		if err := e.save(ctx, actor.ID, t.confirm, draft); err != nil {
			return reply(cur, tryAgain), err
		}
		return &Result{State: t.confirm, Replies: []model.Reply{confirmPrompt(ev.Action, draft)}}, nil

	case EventConfirm:
		action, ok := actionFor(cur)
		if !ok {
			return e.reprompt(cur, draft, "There is nothing to confirm."), validation("confirm in %s", cur)
		}
		e.drop(ctx, key)
		if !ev.Yes {
			return reply(StateIdle, "Nothing was changed."), nil
		}
		return e.apply(ctx, actor, action, draft)
	}
	return e.reprompt(cur, draft, "Unexpected input."), validation("%s event", ev.Type)
}

func (e *Engine) list(ctx context.Context, flow Flow) (*Result, error) {
	subs, err := e.Submissions.GetByStatus(ctx, flow.Source())
	if err != nil {
		return reply(StateIdle, tryAgain), err
	}
	if len(subs) == 0 {
		return reply(StateIdle, fmt.Sprintf("There are no %s reports.", flow.Source().Label())), nil
	}
	r := model.Reply{Text: fmt.Sprintf("%d %s report(s). Choose one:", len(subs), flow.Source().Label())}
	for i, sub := range subs {
		if i == maxListed {
			r.Text += fmt.Sprintf("\nShowing the oldest %d.", maxListed)
			break
		}
		r.Options = append(r.Options, model.Option{
			ID:    openOptionPrefix + sub.ID,
			Label: fmt.Sprintf("#%d %s", sub.Number, sub.LocationName),
		})
	}
	return &Result{State: StateIdle, Replies: []model.Reply{r}}, nil
}

func (e *Engine) open(ctx context.Context, actor Actor, key, id string) (*Result, error) {
	sub, err := e.Submissions.GetByID(ctx, id)
	if err != nil {
		return reply(StateIdle, tryAgain), err
	}
	var flow Flow
	switch {
	case sub == nil:
		e.drop(ctx, key)
		return reply(StateIdle, "That report no longer exists."), errors.Mark(errors.Newf("submission %s", id), model.ErrNotFound)
	case sub.Status == model.StatusPendingReview:
		flow = FlowCheck
	case sub.Status == model.StatusActive:
		flow = FlowClose
	default:
		e.drop(ctx, key)
		return reply(StateIdle, fmt.Sprintf("Report #%d is already %s.", sub.Number, sub.Status.Label())),
			errors.Mark(errors.Newf("submission %s is %s", id, sub.Status), model.ErrNotFound)
	}

	draft := Draft{SubmissionID: sub.ID, Number: sub.Number, Flow: flow}
	if err := e.save(ctx, actor.ID, StateReview, draft); err != nil {
		return reply(StateIdle, tryAgain), err
	}

	if e.Renderer != nil && e.Notifier != nil {
		doc, err := e.Renderer.Render(fmt.Sprintf("Violation #%d", sub.Number), sub)
		if err == nil {
			err = e.Notifier.SendDocument(ctx, notify.User(actor.ID), doc)
		}
		if err != nil {
			log.Error().Err(err).Str("submission", sub.ID).Msg("failed to send review preview")
		}
	}
	return &Result{State: StateReview, Replies: []model.Reply{reviewPrompt(sub, draft)}, Submission: sub}, nil
}

// apply performs the confirmed status change.
func (e *Engine) apply(ctx context.Context, actor Actor, action Action, draft Draft) (*Result, error) {
	t := transitions[action]
	if err := e.Submissions.UpdateStatus(ctx, draft.SubmissionID, t.from, t.to); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return reply(StateIdle, fmt.Sprintf("Report #%d was changed by someone else, nothing was done.", draft.Number)), err
		}
		log.Error().Err(err).Str("submission", draft.SubmissionID).Msg("status update failed")
		// the confirmation stays open so the reviewer can simply press Yes again
		if saveErr := e.save(ctx, actor.ID, t.confirm, draft); saveErr != nil {
			log.Error().Err(saveErr).Str("reviewer", actor.ID).Msg("failed to keep review after update failure")
		}
		return &Result{State: t.confirm, Replies: []model.Reply{{Text: tryAgain}, confirmPrompt(action, draft)}}, err
	}
	log.Info().Str("submission", draft.SubmissionID).Str("from", string(t.from)).Str("to", string(t.to)).
		Str("reviewer", actor.ID).Msg("submission status changed")

	sub, err := e.Submissions.GetByID(ctx, draft.SubmissionID)
	if err != nil || sub == nil {
		log.Error().Err(err).Str("submission", draft.SubmissionID).Msg("failed to reload submission after status change")
		sub = &model.Submission{ID: draft.SubmissionID, Number: draft.Number, Status: t.to}
	}
	e.announce(ctx, actor, action, t, sub)
	return &Result{
		State:      StateIdle,
		Replies:    []model.Reply{{Text: fmt.Sprintf("Report #%d is now %s.", sub.Number, t.to.Label())}},
		Submission: sub,
	}, nil
}

// announce notifies the reporter and, for activation and closing, the audience channel.
// Failures are logged; the status change stands.
func (e *Engine) announce(ctx context.Context, actor Actor, action Action, t transition, sub *model.Submission) {
	if e.Notifier != nil {
		if sub.ReporterID != "" {
			if err := e.Notifier.SendText(ctx, notify.User(sub.ReporterID), reporterNotice(action, sub)); err != nil {
				log.Error().Err(err).Str("submission", sub.ID).Msg("failed to notify reporter")
			}
		}
		if e.AudienceChannelID != "" {
			switch action {
			case ActionActivate:
				e.broadcast(ctx, sub)
			case ActionClose:
				text := fmt.Sprintf("Violation #%d at %s has been corrected.", sub.Number, sub.LocationName)
				if err := e.Notifier.SendText(ctx, notify.Channel(e.AudienceChannelID), text); err != nil {
					log.Error().Err(err).Str("submission", sub.ID).Msg("failed to notify audience")
				}
			}
		}
	}

	err := e.Publisher.PublishStatusUpdated(ctx, messaging.StatusUpdatedMessage{
		SubmissionID: sub.ID,
		Number:       sub.Number,
		OldStatus:    string(t.from),
		NewStatus:    string(t.to),
		ReviewerID:   actor.ID,
		Timestamp:    e.now().Unix(),
	})
	if err != nil {
		log.Error().Err(err).Str("submission", sub.ID).Msg("failed to publish submission.status.updated")
	}
}

// broadcast sends a newly active violation to the audience: a summary with the first
// photo, then the full report document.
func (e *Engine) broadcast(ctx context.Context, sub *model.Submission) {
	to := notify.Channel(e.AudienceChannelID)
	caption := audienceSummary(sub)
	sent := false
	if e.Photos != nil && len(sub.Photos) > 0 {
		first := sub.Photos[0]
		data, err := e.Photos.Read(first)
		if err != nil {
			log.Error().Err(err).Str("photo", first.Hash).Msg("failed to read photo for broadcast")
		} else {
			doc := notify.Document{Name: path.Base(first.Path), ContentType: first.ContentType(), Data: data, Caption: caption}
			if err := e.Notifier.SendDocument(ctx, to, doc); err != nil {
				log.Error().Err(err).Str("submission", sub.ID).Msg("failed to broadcast photo")
			}
			sent = true
		}
	}
	if !sent {
		if err := e.Notifier.SendText(ctx, to, caption); err != nil {
			log.Error().Err(err).Str("submission", sub.ID).Msg("failed to broadcast summary")
		}
	}
	if e.Renderer == nil {
		return
	}
	doc, err := e.Renderer.Render(fmt.Sprintf("Violation #%d", sub.Number), sub)
	if err == nil {
		err = e.Notifier.SendDocument(ctx, to, doc)
	}
	if err != nil {
		log.Error().Err(err).Str("submission", sub.ID).Msg("failed to broadcast report")
	}
}

func (e *Engine) load(ctx context.Context, key string) (State, Draft, error) {
	conv, err := e.Store.Load(ctx, key)
	if err != nil || conv == nil {
		return StateIdle, Draft{}, err
	}
	var draft Draft
	if err := json.Unmarshal(conv.Draft, &draft); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("unreadable review draft, starting over")
		return StateIdle, Draft{}, nil
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
		Kind:      model.KindReview,
		State:     string(s),
		Draft:     raw,
		UpdatedAt: e.now(),
	})
}

func (e *Engine) drop(ctx context.Context, key string) {
	if err := e.Store.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to drop review conversation")
	}
}

// reprompt keeps the conversation where it is and repeats its question.
func (e *Engine) reprompt(cur State, draft Draft, text string) *Result {
	res := reply(cur, text)
	switch cur {
	case StateReview:
		res.Replies = append(res.Replies, actionsPrompt(draft))
	case StateConfirmActivate, StateConfirmReject, StateConfirmClose:
		a, _ := actionFor(cur)
		res.Replies = append(res.Replies, confirmPrompt(a, draft))
	}
	return res
}

func reply(s State, text string) *Result {
	return &Result{State: s, Replies: []model.Reply{{Text: text}}}
}

func validation(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), model.ErrValidation)
}

func reviewPrompt(sub *model.Submission, draft Draft) model.Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Violation #%d (%s)\n", sub.Number, sub.Status.Label())
	fmt.Fprintf(&b, "Reported by: %s\n", sub.ReporterName)
	fmt.Fprintf(&b, "Location: %s\n", sub.LocationName)
	fmt.Fprintf(&b, "Category: %s\n", sub.Category)
	fmt.Fprintf(&b, "Description: %s\n", sub.Description)
	if len(sub.Actions) > 0 {
		fmt.Fprintf(&b, "Remedial actions: %s\n", strings.Join(sub.Actions, "; "))
	}
	r := actionsPrompt(draft)
	r.Text = b.String() + r.Text
	return r
}

func actionsPrompt(draft Draft) model.Reply {
	r := model.Reply{Text: "What do you want to do?"}
	if draft.Flow == FlowClose {
		r.Options = append(r.Options, model.Option{ID: optRequest + ":" + string(ActionClose), Label: "Mark corrected"})
	} else {
		r.Options = append(r.Options,
			model.Option{ID: optRequest + ":" + string(ActionActivate), Label: "Approve"},
			model.Option{ID: optRequest + ":" + string(ActionReject), Label: "Reject", Danger: true},
		)
	}
	r.Options = append(r.Options, model.Option{ID: OptCancelReview, Label: "Cancel"})
	return r
}

func confirmPrompt(a Action, draft Draft) model.Reply {
	return model.Reply{
		Text: fmt.Sprintf("Really %s report #%d?", transitions[a].verb, draft.Number),
		Options: []model.Option{
			{ID: optConfirm + ":yes", Label: "Yes"},
			{ID: optConfirm + ":no", Label: "No", Danger: true},
		},
	}
}

func reporterNotice(a Action, sub *model.Submission) string {
	switch a {
	case ActionActivate:
		return fmt.Sprintf("Your report #%d was approved and is now active.", sub.Number)
	case ActionReject:
		return fmt.Sprintf("Your report #%d was rejected.", sub.Number)
	}
	return fmt.Sprintf("Violation #%d from your report has been corrected.", sub.Number)
}

func audienceSummary(sub *model.Submission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Safety violation #%d\n", sub.Number)
	fmt.Fprintf(&b, "Location: %s\n", sub.LocationName)
	fmt.Fprintf(&b, "Category: %s\n", sub.Category)
	fmt.Fprintf(&b, "Description: %s", sub.Description)
	if len(sub.Actions) > 0 {
		fmt.Fprintf(&b, "\nRemedial actions: %s", strings.Join(sub.Actions, "; "))
	}
	return b.String()
}
