// Package notify delivers texts and files to chat users and channels.
package notify

import (
	"bytes"
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/bwmarrin/discordgo"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Recipient is either a user, reached by direct message, or a channel.
type Recipient struct {
	UserID    string
	ChannelID string
}

func User(id string) Recipient    { return Recipient{UserID: id} }
func Channel(id string) Recipient { return Recipient{ChannelID: id} }

func (r Recipient) String() string {
	if r.ChannelID != "" {
		return "channel:" + r.ChannelID
	}
	return "user:" + r.UserID
}

// Document is a file sent with an optional caption.
type Document struct {
	Name        string
	ContentType string
	Data        []byte
	Caption     string
}

type Notifier interface {
	SendText(ctx context.Context, to Recipient, text string) error
	SendDocument(ctx context.Context, to Recipient, doc Document) error
}

// Session is the part of *discordgo.Session the notifier uses.
type Session interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

const (
	maxAttempts   = 3
	initialDelay  = 500 * time.Millisecond
	maxRetryDelay = 5 * time.Second
	// Discord allows 5 messages per 5 seconds per channel; stay below it globally.
	sendRate  = rate.Limit(1)
	sendBurst = 5
	// Discord rejects message content longer than this.
	maxContentLen = 2000
)

// Discord sends notifications through a bot session.
type Discord struct {
	session Session
	limiter *rate.Limiter
}

func NewDiscord(session Session) *Discord {
	return &Discord{session: session, limiter: rate.NewLimiter(sendRate, sendBurst)}
}

func (d *Discord) SendText(ctx context.Context, to Recipient, text string) error {
	return d.send(ctx, to, &discordgo.MessageSend{Content: truncate(text)})
}

func (d *Discord) SendDocument(ctx context.Context, to Recipient, doc Document) error {
	return d.send(ctx, to, &discordgo.MessageSend{
		Content: truncate(doc.Caption),
		Files: []*discordgo.File{{
			Name:        doc.Name,
			ContentType: doc.ContentType,
			Reader:      bytes.NewReader(doc.Data),
		}},
	})
}

func (d *Discord) send(ctx context.Context, to Recipient, msg *discordgo.MessageSend) error {
	channelID, err := d.resolve(ctx, to)
	if err != nil {
		return err
	}
	err = retry.Do(
		func() error {
			if err := d.limiter.Wait(ctx); err != nil {
				return retry.Unrecoverable(err)
			}
			// readers are consumed by a failed attempt
			for _, f := range msg.Files {
				if r, ok := f.Reader.(*bytes.Reader); ok {
					r.Seek(0, 0)
				}
			}
			_, err := d.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts),
		retry.Delay(initialDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Err(err).Uint("attempt", n+1).Str("to", to.String()).Msg("notification failed, retrying")
		}),
	)
	return errors.Wrapf(err, "notify %s", to)
}

func (d *Discord) resolve(ctx context.Context, to Recipient) (string, error) {
	if to.ChannelID != "" {
		return to.ChannelID, nil
	}
	if to.UserID == "" {
		return "", errors.New("empty recipient")
	}
	ch, err := d.session.UserChannelCreate(to.UserID, discordgo.WithContext(ctx))
	if err != nil {
		return "", errors.Wrapf(err, "open DM with %s", to.UserID)
	}
	return ch.ID, nil
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxContentLen {
		return s
	}
	return string(r[:maxContentLen-1]) + "…"
}

// Broadcast sends text to every recipient and returns the errors joined. One failed
// recipient does not stop the others.
func Broadcast(ctx context.Context, n Notifier, to []Recipient, text string) error {
	var errs error
	for _, r := range to {
		if err := n.SendText(ctx, r, text); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}
