package repository

import (
	"context"
	"database/sql"

	"github.com/officefit/office-yoga/internal/model"
)

// CoachRepo provides read access to the coaches table. Coaches are
// reference data matched to events by name, so the only operation the
// API needs is a full listing.
type CoachRepo struct{ DB *sql.DB }

func NewCoachRepo(db *sql.DB) *CoachRepo { return &CoachRepo{DB: db} }

// List returns all coaches ordered by id.
func (r *CoachRepo) List(ctx context.Context) ([]model.Coach, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, description FROM coaches ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	coaches := make([]model.Coach, 0)
	for rows.Next() {
		var c model.Coach
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			c.Description = &v
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}
