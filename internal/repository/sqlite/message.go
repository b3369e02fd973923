package sqlite

import (
	"context"
	"fmt"

	"github.com/pawferry/pawferry/pkg/models"
)

func (r *SQLiteRepo) CreateMessage(ctx context.Context, m *models.BookingMessage) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("message is nil")
	}

	fromPilot := 0
	if m.FromPilot {
		fromPilot = 1
	}
	res, err := r.conn.Exec(ctx, `INSERT INTO booking_messages (booking_id, from_pilot, body, created) VALUES (?, ?, ?, ?)`,
		m.BookingID, fromPilot, m.Body, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

func (r *SQLiteRepo) ListMessages(ctx context.Context, bookingID int64) ([]models.BookingMessage, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, booking_id, from_pilot, body, created FROM booking_messages WHERE booking_id = ? ORDER BY created ASC, id ASC`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BookingMessage
	for rows.Next() {
		var m models.BookingMessage
		var fromPilot int
		if err := rows.Scan(&m.ID, &m.BookingID, &fromPilot, &m.Body, &m.Created); err != nil {
			return nil, err
		}
		m.FromPilot = fromPilot != 0
		out = append(out, m)
	}

	return out, rows.Err()
}
