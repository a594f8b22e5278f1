package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/officefit/office-yoga/internal/model"
)

// UserRepo provides access to the users table. Users are always looked
// up by their telegram id; the numeric primary key never leaves the
// store layer except as a foreign key for registrations.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, telegram_id, employee_id, role, info, office, created_at, updated_at"

// Create inserts a new user and populates the generated ID. A duplicate
// telegram id maps to ErrUserExists via the unique key on the column.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	info, err := encodeInfo(u.Info)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, telegram_id, employee_id, role, info, office) VALUES (?,?,?,?,?,?)",
		u.Name, u.TelegramID, u.EmployeeID, u.Role, info, u.Office)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrUserExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByTelegramID fetches a user by the external chat identifier.
func (r *UserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE telegram_id=? LIMIT 1", telegramID)
	return scanUser(row)
}

// Exists reports whether a user with the given telegram id is present.
func (r *UserRepo) Exists(ctx context.Context, telegramID int64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE telegram_id=?", telegramID).Scan(&n)
	return n > 0, err
}

// UpdateInfo replaces the user's profile blob. Merge semantics live in
// the handler: it reads the current blob, merges the supplied keys and
// writes the result back here.
func (r *UserRepo) UpdateInfo(ctx context.Context, id uint64, info map[string]any) error {
	enc, err := encodeInfo(info)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE users SET info=? WHERE id=?", enc, id)
	return err
}

// UserUpdate carries the optional fields of a bulk profile update. Nil
// fields retain their prior values.
type UserUpdate struct {
	Name       *string
	EmployeeID *string
	Role       *string
	Info       map[string]any
}

// Update applies a bulk update to the user row, touching only the fields
// present in the request. The telegram id itself is never updated.
func (r *UserRepo) Update(ctx context.Context, id uint64, upd UserUpdate) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if upd.Name != nil {
		sets = append(sets, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.EmployeeID != nil {
		sets = append(sets, "employee_id=?")
		args = append(args, *upd.EmployeeID)
	}
	if upd.Role != nil {
		sets = append(sets, "role=?")
		args = append(args, *upd.Role)
	}
	if upd.Info != nil {
		enc, err := encodeInfo(upd.Info)
		if err != nil {
			return err
		}
		sets = append(sets, "info=?")
		args = append(args, enc)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ", ")+" WHERE id=?", args...)
	return err
}

// SetOffice stores the user's preferred office id. The id is not checked
// against the offices table: the catalog is small and static, and the
// front end only submits ids it just listed.
func (r *UserRepo) SetOffice(ctx context.Context, id uint64, officeID uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET office=? WHERE id=?", officeID, id)
	return err
}

// scanUser reads one users row, decoding the JSON info blob and the
// nullable columns.
func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var employeeID sql.NullString
	var info sql.NullString
	var office sql.NullInt64
	err := row.Scan(&u.ID, &u.Name, &u.TelegramID, &employeeID, &u.Role, &info, &office, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrUserNotFound
	}
	if err != nil {
		return u, err
	}
	if employeeID.Valid {
		v := employeeID.String
		u.EmployeeID = &v
	}
	if office.Valid {
		v := uint64(office.Int64)
		u.Office = &v
	}
	if info.Valid && info.String != "" {
		if err := json.Unmarshal([]byte(info.String), &u.Info); err != nil {
			return u, err
		}
	}
	return u, nil
}

// encodeInfo marshals the profile blob for storage. A nil map is stored
// as an empty object so reads never have to special-case NULL blobs
// created by this code path.
func encodeInfo(info map[string]any) (string, error) {
	if info == nil {
		info = map[string]any{}
	}
	b, err := json.Marshal(info)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
