package violation

import (
	"fmt"
	"strings"

	"github.com/babushkian/OTBot/model"
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
)

// roleTarget reads the "user" option of a role command.
type roleTarget struct {
	ID   string
	Name string
}

func targetOf(i *discordgo.InteractionCreate) (roleTarget, map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	data := i.ApplicationCommandData()
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, o := range data.Options {
		opts[o.Name] = o
	}
	var t roleTarget
	if o, ok := opts["user"]; ok {
		t.ID = o.UserValue(nil).ID
	}
	t.Name = t.ID
	if data.Resolved != nil {
		if m, ok := data.Resolved.Members[t.ID]; ok && m.Nick != "" {
			t.Name = m.Nick
		} else if u, ok := data.Resolved.Users[t.ID]; ok {
			t.Name = u.Username
			if u.GlobalName != "" {
				t.Name = u.GlobalName
			}
		}
	}
	return t, opts
}

// roleCommand defers the reply, checks the caller is an administrator and hands the
// target user to fn, whose text becomes the reply.
func (h *Handlers) roleCommand(i *discordgo.InteractionCreate, fn func(a actor, t roleTarget, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) string) {
	if !h.deferReply(i) {
		return
	}
	a := h.actor(i)
	if h.Auth != nil && !h.Auth.CanReview(h.ctx, a.ID) {
		h.edit(i, model.Reply{Text: "Only administrators can manage roles."})
		return
	}
	t, opts := targetOf(i)
	switch {
	case h.Users == nil:
		h.edit(i, model.Reply{Text: "Roles are not stored by this bot."})
	case t.ID == "":
		h.edit(i, model.Reply{Text: "Choose a user."})
	case t.ID == a.ID:
		h.edit(i, model.Reply{Text: "You cannot change your own role."})
	default:
		h.edit(i, model.Reply{Text: fn(a, t, opts)})
	}
}

func (h *Handlers) approve(i *discordgo.InteractionCreate) {
	h.roleCommand(i, func(a actor, t roleTarget, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) string {
		role := model.RoleReporter
		if o, ok := opts["role"]; ok {
			role = model.Role(o.StringValue())
		}
		if role != model.RoleReporter && role != model.RoleAdmin {
			return fmt.Sprintf("Unknown role %q.", role)
		}
		name := t.Name
		if o, ok := opts["name"]; ok && strings.TrimSpace(o.StringValue()) != "" {
			name = strings.TrimSpace(o.StringValue())
		}
		if err := h.Users.Upsert(h.ctx, model.User{ID: t.ID, Name: name, Role: role}); err != nil {
			logOutcome(err, "approve user", a.ID)
			return "Could not save the role, please try again."
		}
		return fmt.Sprintf("%s (<@%s>) is now %s.", name, t.ID, roleLabel(role))
	})
}

func (h *Handlers) disapprove(i *discordgo.InteractionCreate) {
	h.roleCommand(i, func(a actor, t roleTarget, _ map[string]*discordgo.ApplicationCommandInteractionDataOption) string {
		u, err := h.Users.Get(h.ctx, t.ID)
		if err != nil {
			logOutcome(err, "disapprove user", a.ID)
			return "Could not load the user, please try again."
		}
		if u == nil || u.Role == model.RoleUser {
			return fmt.Sprintf("<@%s> has no granted role.", t.ID)
		}
		u.Role = model.RoleUser
		if err := h.Users.Upsert(h.ctx, *u); err != nil {
			logOutcome(err, "disapprove user", a.ID)
			return "Could not save the role, please try again."
		}
		return fmt.Sprintf("<@%s> is no longer approved.", t.ID)
	})
}

// deleteApproval forgets a user. Only users without a granted role may be deleted.
func (h *Handlers) deleteApproval(i *discordgo.InteractionCreate) {
	h.roleCommand(i, func(a actor, t roleTarget, _ map[string]*discordgo.ApplicationCommandInteractionDataOption) string {
		u, err := h.Users.Get(h.ctx, t.ID)
		if err != nil {
			logOutcome(err, "delete user", a.ID)
			return "Could not load the user, please try again."
		}
		if u != nil && u.Role != model.RoleUser {
			return fmt.Sprintf("<@%s> is still %s. Use /disapprove first.", t.ID, roleLabel(u.Role))
		}
		err = h.Users.Delete(h.ctx, t.ID)
		switch {
		case errors.Is(err, model.ErrNotFound):
			return fmt.Sprintf("<@%s> is not known to the bot.", t.ID)
		case err != nil:
			logOutcome(err, "delete user", a.ID)
			return "Could not delete the user, please try again."
		}
		return fmt.Sprintf("<@%s> was removed.", t.ID)
	})
}

func roleLabel(r model.Role) string {
	switch r {
	case model.RoleAdmin:
		return "an administrator"
	case model.RoleReporter:
		return "a reporter"
	}
	return "a user"
}
