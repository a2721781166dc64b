package violation

import (
	"fmt"
	"strings"

	"github.com/babushkian/OTBot/model"
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
)

func (h *Handlers) location(i *discordgo.InteractionCreate) {
	if !h.deferReply(i) {
		return
	}
	a := h.actor(i)
	if h.Auth != nil && !h.Auth.CanReview(h.ctx, a.ID) {
		h.edit(i, model.Reply{Text: "Only administrators can manage locations."})
		return
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, o := range sub.Options {
		opts[o.Name] = o
	}

	var text string
	switch sub.Name {
	case "list":
		text = h.listLocations()
	case "add":
		loc := model.Location{Name: strings.TrimSpace(opts["name"].StringValue())}
		if o, ok := opts["description"]; ok {
			loc.Description = o.StringValue()
		}
		if o, ok := opts["responsible"]; ok {
			loc.ResponsibleID = o.UserValue(nil).ID
		}
		id, err := h.Locations.Upsert(h.ctx, loc)
		switch {
		case errors.Is(err, model.ErrValidation):
			text = "The location name must not be empty."
		case err != nil:
			logOutcome(err, "add location", a.ID)
			text = "Could not save the location, please try again."
		default:
			text = fmt.Sprintf("Location #%d %q saved.", id, loc.Name)
		}
	case "remove":
		id := opts["id"].IntValue()
		err := h.Locations.Delete(h.ctx, id)
		switch {
		case errors.Is(err, model.ErrNotFound):
			text = fmt.Sprintf("There is no location #%d.", id)
		case err != nil:
			logOutcome(err, "remove location", a.ID)
			text = "Could not remove the location, please try again."
		default:
			text = fmt.Sprintf("Location #%d removed.", id)
		}
	}
	h.edit(i, model.Reply{Text: text})
}

func (h *Handlers) listLocations() string {
	locs, err := h.Locations.List(h.ctx)
	if err != nil {
		logOutcome(err, "list locations", "")
		return "Could not load the locations, please try again."
	}
	if len(locs) == 0 {
		return "No locations yet. Add one with /location add."
	}
	var b strings.Builder
	for _, l := range locs {
		fmt.Fprintf(&b, "#%d %s", l.ID, l.Name)
		if l.Description != "" {
			fmt.Fprintf(&b, ": %s", l.Description)
		}
		if l.ResponsibleID != "" {
			fmt.Fprintf(&b, " (<@%s>)", l.ResponsibleID)
		} else if l.ResponsibleText != "" {
			fmt.Fprintf(&b, " (%s)", l.ResponsibleText)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
