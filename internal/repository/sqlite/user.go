package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pawferry/pawferry/pkg/models"
)

func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO users (name, email, password_hash, role, active, created, updated) VALUES (?, ?, ?, ?, 1, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Role, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, role, active, created, updated FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, name, email, password_hash, role, active, created, updated FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var active int
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &active, &u.Created, &u.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	u.Active = active != 0

	return &u, nil
}

func (r *SQLiteRepo) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, name, email, password_hash, role, active, created, updated FROM users ORDER BY created DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		var active int
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &active, &u.Created, &u.Updated); err != nil {
			return nil, err
		}
		u.Active = active != 0
		out = append(out, u)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM users`)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *SQLiteRepo) DeactivateUser(ctx context.Context, id int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE users SET active = 0, updated = ? WHERE id = ? AND active = 1`, now(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
