package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"math"
	"time"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

const submissionColumns = `id, number, reporter_id, reporter_name, location_id, location_name,
	category, description, actions, status, created_at, updated_at`

// SubmissionRepository persists committed submissions.
type SubmissionRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db, now: time.Now}
}

// scanSubmission scans a row into a Submission struct.
func scanSubmission(scanner rowScanner) (*model.Submission, error) {
	var (
		sub              model.Submission
		actions          string
		status           string
		created, updated int64
	)
	err := scanner.Scan(
		&sub.ID, &sub.Number, &sub.ReporterID, &sub.ReporterName, &sub.LocationID, &sub.LocationName,
		&sub.Category, &sub.Description, &actions, &status, &created, &updated,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Return nil, nil if no submission is found
		}
		return nil, err
	}
	if err := json.Unmarshal([]byte(actions), &sub.Actions); err != nil {
		return nil, errors.Wrapf(err, "decode actions of %s", sub.ID)
	}
	sub.Status = model.Status(status)
	sub.CreatedAt = time.Unix(created, 0)
	sub.UpdatedAt = time.Unix(updated, 0)
	return &sub, nil
}

// Create stores a new submission with status pending review and returns its id.
// ID, Number, Status and timestamps of sub are filled in.
func (r *SubmissionRepository) Create(ctx context.Context, sub *model.Submission) (string, error) {
	if len(sub.Photos) == 0 {
		return "", errors.Mark(errors.New("submission has no photos"), model.ErrValidation)
	}
	actions, err := json.Marshal(sub.Actions)
	if err != nil {
		return "", err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", model.Persistence(err, "begin")
	}
	defer tx.Rollback() // Rollback on error

	now := r.now()
	number, err := nextSubmissionNumber(tx, now.Year())
	if err != nil {
		return "", model.Persistence(err, "next submission number")
	}

	id := uuid.New().String()
	_, err = tx.ExecContext(ctx, `INSERT INTO submissions(`+submissionColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, number, sub.ReporterID, sub.ReporterName, sub.LocationID, sub.LocationName,
		sub.Category, sub.Description, string(actions), string(model.StatusPendingReview), now.Unix(), now.Unix(),
	)
	if err != nil {
		return "", model.Persistence(err, "insert submission")
	}

	for pos, p := range sub.Photos {
		if err := insertPhoto(ctx, tx, p, now); err != nil {
			return "", model.Persistence(err, "insert photo")
		}
		_, err = tx.ExecContext(ctx, "INSERT OR IGNORE INTO submission_photos(submission_id, photo_hash, position) VALUES(?, ?, ?)", id, p.Hash, pos)
		if err != nil {
			return "", model.Persistence(err, "link photo")
		}
	}

	if err := tx.Commit(); err != nil {
		return "", model.Persistence(err, "commit submission")
	}

	sub.ID = id
	sub.Number = number
	sub.Status = model.StatusPendingReview
	sub.CreatedAt = time.Unix(now.Unix(), 0)
	sub.UpdatedAt = sub.CreatedAt
	return id, nil
}

// GetByID retrieves a submission with its photos. It returns nil, nil when there is none.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ?`, id)
	sub, err := scanSubmission(row)
	if err != nil {
		return nil, model.Persistence(err, "get submission")
	}
	if sub == nil {
		return nil, nil
	}
	if sub.Photos, err = r.photos(ctx, sub.ID); err != nil {
		return nil, err
	}
	return sub, nil
}

// GetByStatus lists submissions in the given status, oldest first.
func (r *SubmissionRepository) GetByStatus(ctx context.Context, status model.Status) ([]*model.Submission, error) {
	return r.list(ctx, "status = ?", string(status))
}

// GetByNumber retrieves the submission with the given number in year. Numbers restart
// every year. It returns nil, nil when there is none.
func (r *SubmissionRepository) GetByNumber(ctx context.Context, year, number int) (*model.Submission, error) {
	loc := r.now().Location()
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	to := from.AddDate(1, 0, 0)
	subs, err := r.list(ctx, "number = ? AND created_at >= ? AND created_at < ?", number, from.Unix(), to.Unix())
	if err != nil || len(subs) == 0 {
		return nil, err
	}
	return subs[0], nil
}

// GetCreatedBetween lists submissions of any status created in [from, to), oldest
// first. A zero to means no upper bound.
func (r *SubmissionRepository) GetCreatedBetween(ctx context.Context, from, to time.Time) ([]*model.Submission, error) {
	upper := int64(math.MaxInt64)
	if !to.IsZero() {
		upper = to.Unix()
	}
	return r.list(ctx, "created_at >= ? AND created_at < ?", from.Unix(), upper)
}

// list loads the submissions matching where together with their photos. Rows are read
// completely before the photos are queried, the pool has a single connection.
func (r *SubmissionRepository) list(ctx context.Context, where string, args ...any) ([]*model.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+submissionColumns+` FROM submissions
		WHERE `+where+` ORDER BY created_at ASC, number ASC`, args...)
	if err != nil {
		return nil, model.Persistence(err, "list submissions")
	}
	defer rows.Close()

	var submissions []*model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, model.Persistence(err, "scan submission")
		}
		if sub != nil {
			submissions = append(submissions, sub)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, model.Persistence(err, "list submissions")
	}
	rows.Close()

	for _, sub := range submissions {
		if sub.Photos, err = r.photos(ctx, sub.ID); err != nil {
			return nil, err
		}
	}
	return submissions, nil
}

// UpdateStatus moves a submission from one status to another. The write only happens
// when the stored status still equals from; otherwise ErrNotFound is returned.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id string, from, to model.Status) error {
	res, err := r.db.ExecContext(ctx, "UPDATE submissions SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), r.now().Unix(), id, string(from))
	if err != nil {
		return model.Persistence(err, "update status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Persistence(err, "update status")
	}
	if n == 0 {
		return errors.Mark(errors.Newf("submission %s is not %s", id, from), model.ErrNotFound)
	}
	return nil
}

func (r *SubmissionRepository) photos(ctx context.Context, submissionID string) ([]model.Photo, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT p.hash, p.path, p.aspect_ratio
		FROM submission_photos sp JOIN photos p ON p.hash = sp.photo_hash
		WHERE sp.submission_id = ? ORDER BY sp.position`, submissionID)
	if err != nil {
		return nil, model.Persistence(err, "list photos")
	}
	defer rows.Close()

	var photos []model.Photo
	for rows.Next() {
		var p model.Photo
		if err := rows.Scan(&p.Hash, &p.Path, &p.AspectRatio); err != nil {
			return nil, model.Persistence(err, "scan photo")
		}
		photos = append(photos, p)
	}
	return photos, model.Persistence(rows.Err(), "list photos")
}
