package utils

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestInteractionUser(t *testing.T) {
	guild := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Member: &discordgo.Member{Nick: "Bob the foreman", User: &discordgo.User{ID: "1", Username: "bob"}},
	}}
	assert.Equal(t, "1", InteractionUser(guild).ID)
	assert.Equal(t, "Bob the foreman", DisplayName(guild))

	dm := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		User: &discordgo.User{ID: "2", Username: "alice", GlobalName: "Alice"},
	}}
	assert.Equal(t, "2", InteractionUser(dm).ID)
	assert.Equal(t, "Alice", DisplayName(dm))

	assert.Equal(t, "", DisplayName(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{}}))
}
