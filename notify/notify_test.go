package notify

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	channelID string
	content   string
	files     map[string]string
}

type fakeSession struct {
	failures int
	sent     []sent
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	return &discordgo.Channel{ID: "dm-" + recipientID}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	files := map[string]string{}
	for _, file := range data.Files {
		b, _ := io.ReadAll(file.Reader)
		files[file.Name] = string(b)
	}
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("gateway hiccup")
	}
	f.sent = append(f.sent, sent{channelID: channelID, content: data.Content, files: files})
	return &discordgo.Message{ID: "m"}, nil
}

func TestSendTextToUserOpensDM(t *testing.T) {
	s := &fakeSession{}
	d := NewDiscord(s)

	require.NoError(t, d.SendText(context.Background(), User("42"), "hello"))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "dm-42", s.sent[0].channelID)
	assert.Equal(t, "hello", s.sent[0].content)
}

func TestSendDocumentRetriesWithFullBody(t *testing.T) {
	s := &fakeSession{failures: 1}
	d := NewDiscord(s)

	err := d.SendDocument(context.Background(), Channel("c1"), Document{Name: "r.json", Data: []byte("{}"), Caption: "report"})
	require.NoError(t, err)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "c1", s.sent[0].channelID)
	assert.Equal(t, "{}", s.sent[0].files["r.json"])
}

func TestSendGivesUp(t *testing.T) {
	s := &fakeSession{failures: 10}
	d := NewDiscord(s)

	err := d.SendText(context.Background(), Channel("c1"), "x")
	assert.Error(t, err)
	assert.Empty(t, s.sent)
}

func TestEmptyRecipient(t *testing.T) {
	d := NewDiscord(&fakeSession{})
	assert.Error(t, d.SendText(context.Background(), Recipient{}, "x"))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("a", maxContentLen+10)
	assert.Len(t, []rune(truncate(long)), maxContentLen)
	assert.Equal(t, "short", truncate("short"))
}

func TestBroadcastContinuesAfterFailure(t *testing.T) {
	d := NewDiscord(&fakeSession{})
	err := Broadcast(context.Background(), d, []Recipient{{}, User("1"), User("2")}, "hi")
	assert.Error(t, err)
	assert.Len(t, d.session.(*fakeSession).sent, 2)
}
