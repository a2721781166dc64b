package violation

import (
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/review"
	"github.com/babushkian/OTBot/workflow"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

func (h *Handlers) check(i *discordgo.InteractionCreate) { h.list(i, review.FlowCheck) }
func (h *Handlers) close(i *discordgo.InteractionCreate) { h.list(i, review.FlowClose) }

func (h *Handlers) list(i *discordgo.InteractionCreate, flow review.Flow) {
	if !h.deferReply(i) {
		return
	}
	a := h.actor(i)
	res, err := h.Review.Dispatch(h.ctx, review.Actor(a), review.Event{Type: review.EventList, Flow: flow})
	logOutcome(err, "list "+string(flow), a.ID)
	h.edit(i, replyOf(res.Replies))
}

func (h *Handlers) reviewOption(i *discordgo.InteractionCreate) {
	ev, ok := review.ParseOption(i.MessageComponentData().CustomID)
	if !ok {
		log.Warn().Str("custom_id", i.MessageComponentData().CustomID).Msg("unknown review button")
		return
	}
	if !h.deferReply(i) {
		return
	}
	a := h.actor(i)
	res, err := h.Review.Dispatch(h.ctx, review.Actor(a), ev)
	logOutcome(err, string(ev.Type), a.ID)
	h.edit(i, replyOf(res.Replies))
}

// cancel abandons the caller's report in progress, or else their review.
func (h *Handlers) cancel(i *discordgo.InteractionCreate) {
	if !h.deferReply(i) {
		return
	}
	a := h.actor(i)

	st, err := h.Intake.Current(h.ctx, a.ID)
	if err != nil {
		logOutcome(err, "cancel", a.ID)
	}
	if st != workflow.StateIdle {
		res, err := h.Intake.Dispatch(h.ctx, workflow.Actor(a), workflow.Event{Type: workflow.EventCancel})
		logOutcome(err, "cancel intake", a.ID)
		h.edit(i, replyOf(res.Replies))
		return
	}
	if h.Auth != nil && !h.Auth.CanReview(h.ctx, a.ID) {
		h.edit(i, model.Reply{Text: "There is nothing to cancel."})
		return
	}
	res, err := h.Review.Dispatch(h.ctx, review.Actor(a), review.Event{Type: review.EventCancel})
	logOutcome(err, "cancel review", a.ID)
	h.edit(i, replyOf(res.Replies))
}
