// Package violation connects the intake and review workflows to Discord.
package violation

import (
	"context"
	"net/http"
	"time"

	"github.com/babushkian/OTBot/command/def"
	"github.com/babushkian/OTBot/handler"
	"github.com/babushkian/OTBot/model"
	"github.com/babushkian/OTBot/notify"
	"github.com/babushkian/OTBot/report"
	"github.com/babushkian/OTBot/review"
	"github.com/babushkian/OTBot/workflow"
	"github.com/bwmarrin/discordgo"
)

const defaultMaxAttachment = 10 << 20

// Session is the part of a Discord session the handlers use.
type Session interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Ingester collects photos into bursts.
type Ingester interface {
	Ingest(groupID, actorID string, photo model.PhotoPayload, caption string)
}

type Submissions interface {
	report.Source
}

type Locations interface {
	Upsert(ctx context.Context, loc model.Location) (int64, error)
	List(ctx context.Context) ([]model.Location, error)
	Delete(ctx context.Context, id int64) error
}

type Users interface {
	Touch(ctx context.Context, userID, name string) error
	Get(ctx context.Context, userID string) (*model.User, error)
	Upsert(ctx context.Context, user model.User) error
	Delete(ctx context.Context, userID string) error
}

type Renderer interface {
	Render(title string, subs ...*model.Submission) (notify.Document, error)
}

type Authorizer interface {
	CanReview(ctx context.Context, userID string) bool
}

// Deps are the collaborators of Handlers. Users and Client may be nil.
type Deps struct {
	Intake             *workflow.Engine
	Review             *review.Engine
	Submissions        Submissions
	Locations          Locations
	Users              Users
	Renderer           Renderer
	Auth               Authorizer
	Client             *http.Client
	MaxPhotos          int
	MaxAttachmentBytes int64
}

// Handlers serves the bot's commands, buttons and direct messages.
type Handlers struct {
	Deps
	ctx     context.Context
	session Session
	media   Ingester
}

func New(ctx context.Context, session Session, deps Deps) *Handlers {
	if deps.Client == nil {
		deps.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if deps.MaxAttachmentBytes <= 0 {
		deps.MaxAttachmentBytes = defaultMaxAttachment
	}
	return &Handlers{Deps: deps, ctx: ctx, session: session}
}

// SetMedia registers the aggregator that photo messages are fed into.
func (h *Handlers) SetMedia(m Ingester) {
	h.media = m
}

// RegisterHandlers registers all handlers of the violation package with the router.
func (h *Handlers) RegisterHandlers() {
	handler.AddCommandHandler(def.DetectCommand.Name, h.command(h.detect))
	handler.AddCommandHandler(def.CancelCommand.Name, h.command(h.cancel))
	handler.AddCommandHandler(def.CheckCommand.Name, h.command(h.check))
	handler.AddCommandHandler(def.CloseCommand.Name, h.command(h.close))
	handler.AddCommandHandler(def.ReportCommand.Name, h.command(h.report))
	handler.AddCommandHandler(def.LocationCommand.Name, h.command(h.location))
	handler.AddCommandHandler(def.ApproveCommand.Name, h.command(h.approve))
	handler.AddCommandHandler(def.DisapproveCommand.Name, h.command(h.disapprove))
	handler.AddCommandHandler(def.DeleteApprovalCommand.Name, h.command(h.deleteApproval))

	for _, prefix := range workflow.OptionPrefixes {
		handler.AddComponentHandler(prefix, h.command(h.intakeOption))
	}
	for _, prefix := range review.OptionPrefixes {
		handler.AddComponentHandler(prefix, h.command(h.reviewOption))
	}

	handler.AddMessageHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		h.message(m)
	})
}

func (h *Handlers) command(fn func(i *discordgo.InteractionCreate)) func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
		fn(i)
	}
}
