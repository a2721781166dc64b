package handler

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestComponentKey(t *testing.T) {
	assert.Equal(t, "loc", ComponentKey("loc:12"))
	assert.Equal(t, "cat", ComponentKey("cat:ppe/helmet"))
	assert.Equal(t, "act_ok", ComponentKey("act_ok"))
	assert.Equal(t, "rv_open", ComponentKey("rv_open:9f1c"))
}

func press(user, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:   customID,
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: customID},
		User: &discordgo.User{ID: user},
	}}
}

func TestEventsOfOneUserKeepArrivalOrder(t *testing.T) {
	tr := &trace{}
	AddComponentHandler("order_test", func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		id := i.MessageComponentData().CustomID
		if id == "order_test:1" {
			// the first press is slow to handle
			time.Sleep(40 * time.Millisecond)
		}
		tr.add(id)
	})
	AddMessageHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author.ID == "order-user" {
			tr.add("text:" + m.Content)
		}
	})

	OnInteractionCreate(nil, press("order-user", "order_test:1"))
	OnInteractionCreate(nil, press("order-user", "order_test:2"))
	OnMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		Author:  &discordgo.User{ID: "order-user"},
		Content: "hello",
	}})
	OnInteractionCreate(nil, press("order-user", "order_test:3"))
	events.Wait()

	assert.Equal(t, []string{"order_test:1", "order_test:2", "text:hello", "order_test:3"}, tr.snapshot())
}

func TestBotMessagesAreIgnored(t *testing.T) {
	tr := &trace{}
	AddMessageHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author.ID == "bot-user" {
			tr.add(m.Content)
		}
	})

	OnMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		Author:  &discordgo.User{ID: "bot-user", Bot: true},
		Content: "ping",
	}})
	events.Wait()

	assert.Empty(t, tr.snapshot())
}
