package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pawferry/pawferry/pkg/models"
)

func (r *SQLiteRepo) CreatePet(ctx context.Context, p *models.Pet) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("pet is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx, `INSERT INTO pets (owner_id, name, species, weight_kg, notes, deleted, created, updated) VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		p.OwnerID, p.Name, p.Species, p.WeightKg, p.Notes, ts, ts)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// GetOwnedPet collapses existence and ownership into one lookup and skips
// soft-deleted rows.
func (r *SQLiteRepo) GetOwnedPet(ctx context.Context, id, ownerID int64) (*models.Pet, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, owner_id, name, species, weight_kg, notes, created, updated FROM pets WHERE id = ? AND owner_id = ? AND deleted = 0`, id, ownerID)
	var p models.Pet
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.WeightKg, &p.Notes, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &p, nil
}

func (r *SQLiteRepo) ListPetsByOwner(ctx context.Context, ownerID int64) ([]models.Pet, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, owner_id, name, species, weight_kg, notes, created, updated FROM pets WHERE owner_id = ? AND deleted = 0 ORDER BY created DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Pet
	for rows.Next() {
		var p models.Pet
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.Species, &p.WeightKg, &p.Notes, &p.Created, &p.Updated); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) SoftDeletePet(ctx context.Context, id, ownerID int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE pets SET deleted = 1, updated = ? WHERE id = ? AND owner_id = ? AND deleted = 0`, now(), id, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
