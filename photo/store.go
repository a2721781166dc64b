// Package photo stores received images on disk, addressed by their content hash.
package photo

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
)

// Records is the metadata side of the store.
type Records interface {
	GetByHash(ctx context.Context, hash string) (*model.Photo, error)
	Save(ctx context.Context, p model.Photo) error
}

// Store writes images below dataDir/images/<hash[:2]>/<hash>.<ext>, ext following the decoded format.
type Store struct {
	dataDir string
	records Records
}

func NewStore(dataDir string, records Records) *Store {
	return &Store{dataDir: dataDir, records: records}
}

// Hash returns the hex sha256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var extensions = map[string]string{
	"jpeg": ".jpg",
	"png":  ".png",
	"gif":  ".gif",
}

// Inspect decodes the image header and returns width / height and the file extension
// of the detected format.
func Inspect(data []byte) (float64, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, "", errors.Mark(errors.Wrap(err, "decode image"), model.ErrValidation)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, "", errors.Mark(errors.Newf("image has size %dx%d", cfg.Width, cfg.Height), model.ErrValidation)
	}
	ext, ok := extensions[format]
	if !ok {
		return 0, "", errors.Mark(errors.Newf("unsupported image format %q", format), model.ErrValidation)
	}
	return float64(cfg.Width) / float64(cfg.Height), ext, nil
}

// Put stores data and returns its record. Storing the same bytes twice returns the
// existing record without touching the disk.
func (s *Store) Put(ctx context.Context, data []byte) (model.Photo, error) {
	if len(data) == 0 {
		return model.Photo{}, errors.Mark(errors.New("empty photo"), model.ErrValidation)
	}
	hash := Hash(data)
	existing, err := s.records.GetByHash(ctx, hash)
	if err != nil {
		return model.Photo{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	ratio, ext, err := Inspect(data)
	if err != nil {
		return model.Photo{}, err
	}

	rel := filepath.ToSlash(filepath.Join("images", hash[:2], hash+ext))
	full := filepath.Join(s.dataDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return model.Photo{}, model.Persistence(err, "create photo directory")
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return model.Photo{}, model.Persistence(err, "write photo")
	}

	p := model.Photo{Hash: hash, Path: rel, AspectRatio: ratio}
	if err := s.records.Save(ctx, p); err != nil {
		return model.Photo{}, err
	}
	log.Debug().Str("hash", hash).Float64("ratio", ratio).Msg("photo stored")
	return p, nil
}

// Read returns the bytes of a stored photo.
func (s *Store) Read(p model.Photo) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, filepath.FromSlash(p.Path)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Mark(errors.Wrapf(err, "photo %s", p.Hash), model.ErrNotFound)
		}
		return nil, model.Persistence(err, "read photo")
	}
	return data, nil
}
