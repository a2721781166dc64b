package db

import (
	"context"
	"database/sql"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
)

// LocationRepository manages the locations reporters pick from.
type LocationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// Upsert inserts a location or updates the one with the same name, and returns its id.
func (r *LocationRepository) Upsert(ctx context.Context, loc model.Location) (int64, error) {
	if loc.Name == "" {
		return 0, errors.Mark(errors.New("location name is empty"), model.ErrValidation)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO locations(name, description, responsible_id, responsible_text)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET description = excluded.description,
			responsible_id = excluded.responsible_id, responsible_text = excluded.responsible_text`,
		loc.Name, loc.Description, loc.ResponsibleID, loc.ResponsibleText)
	if err != nil {
		return 0, model.Persistence(err, "upsert location")
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, "SELECT id FROM locations WHERE name = ?", loc.Name).Scan(&id); err != nil {
		return 0, model.Persistence(err, "upsert location")
	}
	return id, nil
}

// Get returns the location with id, or nil, nil if there is none.
func (r *LocationRepository) Get(ctx context.Context, id int64) (*model.Location, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, name, description, responsible_id, responsible_text FROM locations WHERE id = ?", id)
	loc, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, model.Persistence(err, "get location")
	}
	return loc, nil
}

// List returns all locations ordered by name.
func (r *LocationRepository) List(ctx context.Context) ([]model.Location, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description, responsible_id, responsible_text FROM locations ORDER BY name")
	if err != nil {
		return nil, model.Persistence(err, "list locations")
	}
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, model.Persistence(err, "scan location")
		}
		locations = append(locations, *loc)
	}
	return locations, model.Persistence(rows.Err(), "list locations")
}

// Delete removes a location. Submissions keep the denormalised location name.
func (r *LocationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM locations WHERE id = ?", id)
	if err != nil {
		return model.Persistence(err, "delete location")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Mark(errors.Newf("location %d", id), model.ErrNotFound)
	}
	return nil
}

func scanLocation(scanner rowScanner) (*model.Location, error) {
	var loc model.Location
	if err := scanner.Scan(&loc.ID, &loc.Name, &loc.Description, &loc.ResponsibleID, &loc.ResponsibleText); err != nil {
		return nil, err
	}
	return &loc, nil
}
