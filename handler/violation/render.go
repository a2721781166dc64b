package violation

import (
	"strings"

	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/utils"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// Discord message limits.
const (
	maxButtonsPerRow = 5
	maxRows          = 5
	maxLabelLen      = 80
	maxContentLen    = 2000
)

// Components lays options out as button rows.
func Components(opts []model.Option) []discordgo.MessageComponent {
	if len(opts) > maxButtonsPerRow*maxRows {
		log.Warn().Int("options", len(opts)).Msg("too many options for one message, dropping the rest")
		opts = opts[:maxButtonsPerRow*maxRows]
	}
	rows := make([]discordgo.MessageComponent, 0, (len(opts)+maxButtonsPerRow-1)/maxButtonsPerRow)
	for start := 0; start < len(opts); start += maxButtonsPerRow {
		end := start + maxButtonsPerRow
		if end > len(opts) {
			end = len(opts)
		}
		buttons := make([]discordgo.MessageComponent, 0, end-start)
		for _, o := range opts[start:end] {
			buttons = append(buttons, button(o))
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

func button(o model.Option) discordgo.Button {
	style := discordgo.SecondaryButton
	switch {
	case o.Danger:
		style = discordgo.DangerButton
	case o.Selected:
		style = discordgo.SuccessButton
	}
	b := discordgo.Button{
		Label:    clip(o.Label, maxLabelLen),
		Style:    style,
		CustomID: o.ID,
	}
	if o.Selected {
		b.Emoji = &discordgo.ComponentEmoji{Name: "✅"}
	}
	return b
}

// mergeReplies folds several replies into one message. Texts are joined and the options
// of the last reply that has any win.
func mergeReplies(replies []model.Reply) model.Reply {
	var (
		texts []string
		out   model.Reply
	)
	for _, r := range replies {
		if r.Text != "" {
			texts = append(texts, r.Text)
		}
		if len(r.Options) > 0 {
			out.Options = r.Options
		}
	}
	out.Text = strings.Join(texts, "\n\n")
	return out
}

func messageSend(r model.Reply) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    clip(r.Text, maxContentLen),
		Components: Components(r.Options),
	}
}

func webhookEdit(r model.Reply) *discordgo.WebhookEdit {
	components := Components(r.Options)
	return &discordgo.WebhookEdit{
		Content:    utils.StringPtr(clip(r.Text, maxContentLen)),
		Components: &components,
	}
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
