package repository

import (
	"context"
	"database/sql"

	"github.com/officefit/office-yoga/internal/model"
)

// OfficeRepo provides read access to the offices table. Offices are
// static reference data; the office catalog endpoint and the chat front
// end's office picker are the only direct consumers, everything else
// reaches offices through joins.
type OfficeRepo struct{ DB *sql.DB }

func NewOfficeRepo(db *sql.DB) *OfficeRepo { return &OfficeRepo{DB: db} }

// List returns all offices ordered by id.
func (r *OfficeRepo) List(ctx context.Context) ([]model.Office, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, address FROM offices ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offices := make([]model.Office, 0)
	for rows.Next() {
		var o model.Office
		if err := rows.Scan(&o.ID, &o.Name, &o.Address); err != nil {
			return nil, err
		}
		offices = append(offices, o)
	}
	return offices, rows.Err()
}
