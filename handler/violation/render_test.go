package violation

import (
	"strconv"
	"strings"
	"testing"

	"github.com/babushkian/OTBot/model"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func options(n int) []model.Option {
	opts := make([]model.Option, n)
	for i := range opts {
		opts[i] = model.Option{ID: "act:" + strconv.Itoa(i), Label: "Action " + strconv.Itoa(i)}
	}
	return opts
}

func TestComponentsRows(t *testing.T) {
	rows := Components(options(12))
	require.Len(t, rows, 3)
	assert.Len(t, rows[0].(discordgo.ActionsRow).Components, 5)
	assert.Len(t, rows[2].(discordgo.ActionsRow).Components, 2)

	assert.Len(t, Components(options(40)), maxRows)
	assert.Empty(t, Components(nil))
}

func TestComponentsStyles(t *testing.T) {
	rows := Components([]model.Option{
		{ID: "a", Label: "plain"},
		{ID: "b", Label: "picked", Selected: true},
		{ID: "cancel_intake", Label: "Cancel", Danger: true},
		{ID: "c", Label: strings.Repeat("x", 120)},
	})
	buttons := rows[0].(discordgo.ActionsRow).Components

	assert.Equal(t, discordgo.SecondaryButton, buttons[0].(discordgo.Button).Style)
	assert.Equal(t, discordgo.SuccessButton, buttons[1].(discordgo.Button).Style)
	assert.NotNil(t, buttons[1].(discordgo.Button).Emoji)
	assert.Equal(t, discordgo.DangerButton, buttons[2].(discordgo.Button).Style)
	assert.Equal(t, "cancel_intake", buttons[2].(discordgo.Button).CustomID)
	assert.Len(t, []rune(buttons[3].(discordgo.Button).Label), maxLabelLen)
}

func TestMergeReplies(t *testing.T) {
	merged := mergeReplies([]model.Reply{
		{Text: "Please choose a location from the list."},
		{Text: "Where did it happen?", Options: []model.Option{{ID: "loc:1", Label: "Workshop 1"}}},
		{Text: ""},
	})
	assert.Equal(t, "Please choose a location from the list.\n\nWhere did it happen?", merged.Text)
	require.Len(t, merged.Options, 1)
	assert.Equal(t, "loc:1", merged.Options[0].ID)

	assert.Equal(t, model.Reply{}, mergeReplies(nil))
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	long := strings.Repeat("я", maxContentLen+5)
	assert.Len(t, []rune(messageSend(model.Reply{Text: long}).Content), maxContentLen)
}
