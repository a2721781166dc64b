package handler

import (
	"strings"

	"github.com/babushkian/OTBot/utils"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

var (
	commandHandlers   = make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	componentHandlers = make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate))
	messageHandlers   []func(s *discordgo.Session, m *discordgo.MessageCreate)

	// events keeps the events of one user in arrival order
	events = NewQueue()
)

// AddCommandHandler registers a handler for a slash command.
func AddCommandHandler(name string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	commandHandlers[name] = handler
}

// AddComponentHandler registers a handler for a message component. The key is the part
// of the custom ID before the first ":".
func AddComponentHandler(prefix string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate)) {
	componentHandlers[prefix] = handler
}

// AddMessageHandler registers a handler for every message not sent by a bot.
func AddMessageHandler(handler func(s *discordgo.Session, m *discordgo.MessageCreate)) {
	messageHandlers = append(messageHandlers, handler)
}

// OnInteractionCreate is the main interaction router. Interactions of one user are
// handled one at a time in the order they were received.
func OnInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	key := i.ID
	if u := utils.InteractionUser(i); u != nil {
		key = u.ID
	}
	if !events.Do(key, func() { routeInteraction(s, i) }) {
		log.Warn().Str("interaction", i.ID).Msg("shutting down, interaction dropped")
	}
}

func routeInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if handler, ok := commandHandlers[i.ApplicationCommandData().Name]; ok {
			handler(s, i)
		}
	case discordgo.InteractionMessageComponent:
		if handler, ok := componentHandlers[ComponentKey(i.MessageComponentData().CustomID)]; ok {
			handler(s, i)
		}
	}
}

// OnMessageCreate fans a message out to the registered message handlers, queued behind
// the author's earlier events.
func OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// 忽略机器人的消息
	if m.Author == nil || m.Author.Bot {
		return
	}
	queued := events.Do(m.Author.ID, func() {
		for _, handler := range messageHandlers {
			handler(s, m)
		}
	})
	if !queued {
		log.Warn().Str("message", m.ID).Msg("shutting down, message dropped")
	}
}

// Drain stops accepting events and waits for the queued ones to finish.
func Drain() {
	events.Close()
}

// ComponentKey returns the routing key of a custom ID.
func ComponentKey(customID string) string {
	parts := strings.SplitN(customID, ":", 2)
	return parts[0]
}
