package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/babushkian/OTBot/model"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PhotoRepository stores photo records keyed by content hash.
type PhotoRepository struct {
	db *sql.DB
}

func NewPhotoRepository(db *sql.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// GetByHash returns the record for hash, or nil, nil when it is unknown.
func (r *PhotoRepository) GetByHash(ctx context.Context, hash string) (*model.Photo, error) {
	var p model.Photo
	err := r.db.QueryRowContext(ctx, "SELECT hash, path, aspect_ratio FROM photos WHERE hash = ?", hash).
		Scan(&p.Hash, &p.Path, &p.AspectRatio)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, model.Persistence(err, "get photo")
	}
	return &p, nil
}

// Save records a photo. Records are immutable, so saving a known hash is a no-op.
func (r *PhotoRepository) Save(ctx context.Context, p model.Photo) error {
	return model.Persistence(insertPhoto(ctx, r.db, p, time.Now()), "save photo")
}

func insertPhoto(ctx context.Context, ex execer, p model.Photo, now time.Time) error {
	_, err := ex.ExecContext(ctx, "INSERT OR IGNORE INTO photos(hash, path, aspect_ratio, created_at) VALUES(?, ?, ?, ?)",
		p.Hash, p.Path, p.AspectRatio, now.Unix())
	return err
}
