package violation

import (
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/utils"
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type actor struct {
	ID   string
	Name string
}

func (h *Handlers) actor(i *discordgo.InteractionCreate) actor {
	a := actor{Name: utils.DisplayName(i)}
	if u := utils.InteractionUser(i); u != nil {
		a.ID = u.ID
	}
	h.touch(a.ID, a.Name)
	return a
}

func (h *Handlers) touch(userID, name string) {
	if h.Users == nil || userID == "" {
		return
	}
	if err := h.Users.Touch(h.ctx, userID, name); err != nil {
		log.Debug().Err(err).Str("user", userID).Msg("failed to record user")
	}
}

// deferReply acknowledges an interaction so the work may take longer than Discord's
// response window. Button presses keep their message for the later edit; commands
// get a new reply, private when used in a guild.
func (h *Handlers) deferReply(i *discordgo.InteractionCreate) bool {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if i.Type == discordgo.InteractionMessageComponent {
		resp.Type = discordgo.InteractionResponseDeferredMessageUpdate
	} else if i.GuildID != "" {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := h.session.InteractionRespond(i.Interaction, resp); err != nil {
		log.Error().Err(err).Str("interaction", i.ID).Msg("failed to acknowledge interaction")
		return false
	}
	return true
}

func (h *Handlers) edit(i *discordgo.InteractionCreate, r model.Reply) {
	if _, err := h.session.InteractionResponseEdit(i.Interaction, webhookEdit(r)); err != nil {
		log.Error().Err(err).Str("interaction", i.ID).Msg("failed to edit interaction response")
	}
}

func (h *Handlers) send(channelID string, r model.Reply) error {
	if r.Text == "" && len(r.Options) == 0 {
		return nil
	}
	_, err := h.session.ChannelMessageSendComplex(channelID, messageSend(r), discordgo.WithContext(h.ctx))
	if err != nil {
		log.Error().Err(err).Str("channel", channelID).Msg("failed to send message")
	}
	return err
}

func (h *Handlers) sendDM(userID string, r model.Reply) error {
	ch, err := h.session.UserChannelCreate(userID, discordgo.WithContext(h.ctx))
	if err != nil {
		return errors.Wrapf(err, "open DM with %s", userID)
	}
	return h.send(ch.ID, r)
}

func replyOf(replies []model.Reply) model.Reply {
	r := mergeReplies(replies)
	if r.Text == "" {
		r.Text = "Done."
	}
	return r
}

// logOutcome logs an engine error at the level its class deserves. User mistakes are
// routine, storage and transport failures are not.
func logOutcome(err error, what, actorID string) {
	if err == nil {
		return
	}
	var ev *zerolog.Event
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrEmptyInput):
		ev = log.Debug()
	case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrCapacity):
		ev = log.Warn()
	default:
		ev = log.Error()
	}
	ev.Err(err).Str("actor", actorID).Msgf("%s failed", what)
}
