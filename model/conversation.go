package model

import (
	"encoding/json"
	"time"
)

// Kind names a workflow. A conversation is keyed by (actor, kind), so two workflows never
// share a draft.
type Kind string

const (
	KindIntake Kind = "intake"
	KindReview Kind = "review"
)

// Conversation is the serialisable state of one workflow instance: a state tag and the
// draft the owning engine accumulates.
type Conversation struct {
	ActorID   string          `json:"actor_id"`
	Kind      Kind            `json:"kind"`
	State     string          `json:"state"`
	Draft     json.RawMessage `json:"draft,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ConversationKey builds the store key for (actor, kind).
func ConversationKey(actorID string, kind Kind) string {
	return string(kind) + ":" + actorID
}

// Key returns the store key of the conversation.
func (c *Conversation) Key() string {
	return ConversationKey(c.ActorID, c.Kind)
}
