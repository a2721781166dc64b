// Package messaging publishes submission lifecycle events for other services.
package messaging

import (
	"context"

	"github.com/rs/zerolog/log"
)

const (
	ExchangeName = "otbot.events"

	RoutingKeySubmissionCreated = "submission.created"
	RoutingKeyStatusUpdated     = "submission.status.updated"
)

type SubmissionCreatedMessage struct {
	SubmissionID string `json:"submission_id"`
	Number       int    `json:"number"`
	ReporterID   string `json:"reporter_id"`
	LocationName string `json:"location_name"`
	Category     string `json:"category"`
	Photos       int    `json:"photos"`
	Timestamp    int64  `json:"timestamp"`
}

type StatusUpdatedMessage struct {
	SubmissionID string `json:"submission_id"`
	Number       int    `json:"number"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
	ReviewerID   string `json:"reviewer_id"`
	Timestamp    int64  `json:"timestamp"`
}

// Publisher sends lifecycle events. Failures are reported but never undo the change
// that caused the event.
type Publisher interface {
	PublishSubmissionCreated(ctx context.Context, msg SubmissionCreatedMessage) error
	PublishStatusUpdated(ctx context.Context, msg StatusUpdatedMessage) error
}

// Nop drops every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) PublishSubmissionCreated(_ context.Context, msg SubmissionCreatedMessage) error {
	log.Debug().Str("submission", msg.SubmissionID).Msg("event publishing disabled, submission.created dropped")
	return nil
}

func (Nop) PublishStatusUpdated(_ context.Context, msg StatusUpdatedMessage) error {
	log.Debug().Str("submission", msg.SubmissionID).Msg("event publishing disabled, submission.status.updated dropped")
	return nil
}
