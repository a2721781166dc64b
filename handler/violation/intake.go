package violation

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/avast/retry-go"
	"github.com/babushkian/OTBot/media"
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/workflow"
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

func (h *Handlers) detect(i *discordgo.InteractionCreate) {
	if !h.deferReply(i) {
		return
	}
	a := h.actor(i)
	res, err := h.Intake.Dispatch(h.ctx, workflow.Actor(a), workflow.Event{Type: workflow.EventStart})
	logOutcome(err, "detect", a.ID)
	reply := replyOf(res.Replies)
	if i.GuildID == "" || err != nil {
		h.edit(i, reply)
		return
	}

	// 在服务器中使用时，表单通过私信继续
	if err := h.sendDM(a.ID, reply); err != nil {
		log.Warn().Err(err).Str("actor", a.ID).Msg("failed to open the report in DMs")
		h.edit(i, model.Reply{Text: "I could not message you. Allow direct messages from server members and try again."})
		return
	}
	h.edit(i, model.Reply{Text: "I sent you a direct message, continue the report there."})
}

func (h *Handlers) intakeOption(i *discordgo.InteractionCreate) {
	ev, ok := workflow.ParseOption(i.MessageComponentData().CustomID)
	if !ok {
		log.Warn().Str("custom_id", i.MessageComponentData().CustomID).Msg("unknown intake button")
		return
	}
	if !h.deferReply(i) {
		return
	}
	a := h.actor(i)
	res, err := h.Intake.Dispatch(h.ctx, workflow.Actor(a), ev)
	logOutcome(err, string(ev.Type), a.ID)
	h.edit(i, replyOf(res.Replies))
}

// message handles direct messages: photos go to the aggregator, text to the intake.
func (h *Handlers) message(m *discordgo.MessageCreate) {
	if m.GuildID != "" || m.Author == nil {
		return
	}
	name := m.Author.GlobalName
	if name == "" {
		name = m.Author.Username
	}
	h.touch(m.Author.ID, name)

	if images := imageAttachments(m.Attachments); len(images) > 0 {
		if h.media == nil {
			log.Error().Msg("photo received but no aggregator is set")
			return
		}
		for _, att := range images {
			p, err := h.download(h.ctx, att)
			if err != nil {
				logOutcome(err, "download "+att.Filename, m.Author.ID)
				h.send(m.ChannelID, model.Reply{Text: "Could not receive " + att.Filename + ", please send it again."})
				continue
			}
			h.media.Ingest(m.ChannelID, m.Author.ID, p, m.Content)
		}
		return
	}

	if strings.TrimSpace(m.Content) == "" {
		return
	}
	a := workflow.Actor{ID: m.Author.ID, Name: name}
	res, err := h.Intake.Dispatch(h.ctx, a, workflow.Event{Type: workflow.EventText, Caption: m.Content})
	logOutcome(err, "text", a.ID)
	h.send(m.ChannelID, replyOf(res.Replies))
}

// OnBatch feeds a finished photo burst into the intake.
func (h *Handlers) OnBatch(ctx context.Context, b media.Batch) {
	res, err := h.Intake.Dispatch(ctx, workflow.Actor{ID: b.ActorID}, workflow.Event{
		Type:     workflow.EventPhoto,
		Payloads: b.Photos,
		Caption:  b.Caption,
	})
	logOutcome(err, "photo", b.ActorID)
	h.send(b.GroupID, replyOf(res.Replies))
}

// OnOverflow tells the reporter that a burst was discarded.
func (h *Handlers) OnOverflow(_ context.Context, b media.Batch) {
	log.Warn().Str("actor", b.ActorID).Int("photos", len(b.Photos)).Msg("photo burst over capacity")
	h.send(b.GroupID, workflow.OverCapacity(len(b.Photos), h.MaxPhotos))
}

func imageAttachments(atts []*discordgo.MessageAttachment) []*discordgo.MessageAttachment {
	var out []*discordgo.MessageAttachment
	for _, a := range atts {
		if strings.HasPrefix(a.ContentType, "image/") || (a.ContentType == "" && a.Width > 0) {
			out = append(out, a)
		}
	}
	return out
}

func (h *Handlers) download(ctx context.Context, att *discordgo.MessageAttachment) (model.PhotoPayload, error) {
	tooLarge := errors.Mark(errors.Newf("attachment %s is larger than %d bytes", att.Filename, h.MaxAttachmentBytes), model.ErrCapacity)
	if int64(att.Size) > h.MaxAttachmentBytes {
		return model.PhotoPayload{}, tooLarge
	}

	var data []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			resp, err := h.Client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= http.StatusInternalServerError {
				return errors.Newf("fetch %s: status %d", att.Filename, resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(errors.Newf("fetch %s: status %d", att.Filename, resp.StatusCode))
			}
			data, err = io.ReadAll(io.LimitReader(resp.Body, h.MaxAttachmentBytes+1))
			if err != nil {
				return err
			}
			if int64(len(data)) > h.MaxAttachmentBytes {
				return retry.Unrecoverable(tooLarge)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return model.PhotoPayload{}, err
	}
	return model.PhotoPayload{Name: att.Filename, Data: data}, nil
}
