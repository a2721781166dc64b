package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/babushkian/OTBot/model"
)

// ConversationStore keeps in-progress workflow state in the conversations table, so
// drafts survive a restart.
type ConversationStore struct {
	db *sql.DB
}

func NewConversationStore(db *sql.DB) *ConversationStore {
	return &ConversationStore{db: db}
}

// Load returns the conversation stored under key, or nil, nil.
func (s *ConversationStore) Load(ctx context.Context, key string) (*model.Conversation, error) {
	var (
		conv    model.Conversation
		kind    string
		draft   string
		updated int64
	)
	err := s.db.QueryRowContext(ctx, "SELECT actor_id, kind, state, draft, updated_at FROM conversations WHERE key = ?", key).
		Scan(&conv.ActorID, &kind, &conv.State, &draft, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, model.Persistence(err, "load conversation")
	}
	conv.Kind = model.Kind(kind)
	if draft != "" {
		conv.Draft = []byte(draft)
	}
	conv.UpdatedAt = time.Unix(updated, 0)
	return &conv, nil
}

// Save writes the conversation, replacing what was stored under its key.
func (s *ConversationStore) Save(ctx context.Context, conv *model.Conversation) error {
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO conversations(key, actor_id, kind, state, draft, updated_at)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET state = excluded.state, draft = excluded.draft, updated_at = excluded.updated_at`,
		conv.Key(), conv.ActorID, string(conv.Kind), conv.State, string(conv.Draft), conv.UpdatedAt.Unix())
	return model.Persistence(err, "save conversation")
}

// Delete drops the conversation stored under key. Deleting a missing key is not an error.
func (s *ConversationStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE key = ?", key)
	return model.Persistence(err, "delete conversation")
}
