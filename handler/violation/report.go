package violation

import (
	"bytes"
	"fmt"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/report"
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// maxContent is Discord's message length limit. Longer texts are sent as a file.
const maxContent = 2000

// reportQuery reads the /report subcommand. No subcommand means the active reports.
func reportQuery(i *discordgo.InteractionCreate) report.Query {
	q := report.Query{Mode: report.ModeStatus}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return q
	}
	sub := data.Options[0]
	q.Mode = report.Mode(sub.Name)
	for _, o := range sub.Options {
		switch o.Name {
		case "status":
			q.Status = model.Status(o.StringValue())
		case "number":
			q.Number = int(o.IntValue())
		case "year":
			q.Year = int(o.IntValue())
		case "from":
			q.From = o.StringValue()
		case "to":
			q.To = o.StringValue()
		}
	}
	return q
}

func (h *Handlers) report(i *discordgo.InteractionCreate) {
	if !h.deferReply(i) {
		return
	}
	a := h.actor(i)
	if h.Auth != nil && !h.Auth.CanReview(h.ctx, a.ID) {
		h.edit(i, model.Reply{Text: "Only administrators can build reports."})
		return
	}

	q := reportQuery(i)
	sel, err := report.Select(h.ctx, h.Submissions, q, time.Now())
	if errors.Is(err, model.ErrValidation) {
		h.edit(i, model.Reply{Text: fmt.Sprintf("Cannot build this report: %v. Dates are written as dd-mm-yyyy.", err)})
		return
	}
	if err != nil {
		logOutcome(err, "report", a.ID)
		h.edit(i, model.Reply{Text: "Could not load the reports, please try again."})
		return
	}
	if len(sel.Subs) == 0 {
		h.edit(i, model.Reply{Text: sel.Empty})
		return
	}

	if q.Mode == report.ModeStats {
		text := report.Summarize(sel.Subs).Text(sel.Title)
		if len(text) <= maxContent {
			h.edit(i, model.Reply{Text: text})
			return
		}
		h.upload(i, a, sel.Title, &discordgo.File{Name: "stats.txt", ContentType: "text/plain", Reader: bytes.NewReader([]byte(text))})
		return
	}

	doc, err := h.Renderer.Render(sel.Title, sel.Subs...)
	if err != nil {
		logOutcome(err, "report", a.ID)
		h.edit(i, model.Reply{Text: "Could not build the report, please try again."})
		return
	}
	h.upload(i, a, fmt.Sprintf("%s: %d report(s).", sel.Title, len(sel.Subs)), &discordgo.File{
		Name:        doc.Name,
		ContentType: doc.ContentType,
		Reader:      bytes.NewReader(doc.Data),
	})
}

func (h *Handlers) upload(i *discordgo.InteractionCreate, a actor, content string, file *discordgo.File) {
	_, err := h.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
		Files:   []*discordgo.File{file},
	})
	if err != nil {
		log.Error().Err(err).Str("actor", a.ID).Msg("failed to upload report")
	}
}
