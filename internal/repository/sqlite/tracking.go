package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pawferry/pawferry/pkg/models"
)

func (r *SQLiteRepo) CreateTracking(ctx context.Context, t *models.BookingTracking) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("tracking is nil")
	}

	pingedAt := t.PingedAt
	if pingedAt <= 0 {
		pingedAt = now()
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO booking_tracking (booking_id, latitude, longitude, pinged_at) VALUES (?, ?, ?, ?)`,
		t.BookingID, t.Latitude, t.Longitude, pingedAt)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// LatestTracking is the canonical current-position read: newest ping, one row.
func (r *SQLiteRepo) LatestTracking(ctx context.Context, bookingID int64) (*models.BookingTracking, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, booking_id, latitude, longitude, pinged_at FROM booking_tracking WHERE booking_id = ? ORDER BY pinged_at DESC, id DESC LIMIT 1`, bookingID)
	var t models.BookingTracking
	if err := row.Scan(&t.ID, &t.BookingID, &t.Latitude, &t.Longitude, &t.PingedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &t, nil
}
