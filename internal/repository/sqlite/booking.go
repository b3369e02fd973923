package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pawferry/pawferry/internal/booking"
	"github.com/pawferry/pawferry/pkg/models"
)

const bookingColumns = `id, user_id, pilot_id, pet_id, pickup_address, dropoff_address, scheduled_at, price_cents, status, created, updated`

// CreateBooking inserts the booking plus its service rows in one transaction.
func (r *SQLiteRepo) CreateBooking(ctx context.Context, b *models.Booking, services []models.BookingService) (int64, error) {
	if b == nil {
		return 0, fmt.Errorf("booking is nil")
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	res, err := tx.ExecContext(ctx, `INSERT INTO bookings (user_id, pet_id, pickup_address, dropoff_address, scheduled_at, price_cents, status, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.PetID, b.PickupAddress, b.DropoffAddress, b.ScheduledAt, b.PriceCents, booking.StatusPending, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, s := range services {
		if _, err := tx.ExecContext(ctx, `INSERT INTO booking_services (booking_id, name, price_cents) VALUES (?, ?, ?)`, id, s.Name, s.PriceCents); err != nil {
			return 0, fmt.Errorf("insert booking service: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return id, nil
}

// FindOwnedBooking is the single ownership-and-existence lookup.
func (r *SQLiteRepo) FindOwnedBooking(ctx context.Context, id, ownerID int64) (*models.Booking, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND user_id = ?`, id, ownerID)
	b, err := scanBooking(row)
	if err != nil || b == nil {
		return b, err
	}

	if err := r.loadServices(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (r *SQLiteRepo) FindPilotBooking(ctx context.Context, id, pilotID int64) (*models.Booking, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND pilot_id = ?`, id, pilotID)
	b, err := scanBooking(row)
	if err != nil || b == nil {
		return b, err
	}

	if err := r.loadServices(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func scanBooking(row *sql.Row) (*models.Booking, error) {
	var b models.Booking
	var pilot sql.NullInt64
	if err := row.Scan(&b.ID, &b.UserID, &pilot, &b.PetID, &b.PickupAddress, &b.DropoffAddress, &b.ScheduledAt, &b.PriceCents, &b.Status, &b.Created, &b.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}
	if pilot.Valid {
		b.PilotID = &pilot.Int64
	}

	return &b, nil
}

func (r *SQLiteRepo) loadServices(ctx context.Context, b *models.Booking) error {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, booking_id, name, price_cents FROM booking_services WHERE booking_id = ? ORDER BY id`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.BookingService
		if err := rows.Scan(&s.ID, &s.BookingID, &s.Name, &s.PriceCents); err != nil {
			return err
		}
		b.Services = append(b.Services, s)
	}

	return rows.Err()
}

func (r *SQLiteRepo) ListBookingsByOwner(ctx context.Context, ownerID int64, status string, limit, offset int) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ?`
	args := []any{ownerID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return r.listBookings(ctx, query, args...)
}

func (r *SQLiteRepo) CountBookingsByOwner(ctx context.Context, ownerID int64, status string) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = ?`
	args := []any{ownerID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}

	var count int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *SQLiteRepo) listBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		var b models.Booking
		var pilot sql.NullInt64
		if err := rows.Scan(&b.ID, &b.UserID, &pilot, &b.PetID, &b.PickupAddress, &b.DropoffAddress, &b.ScheduledAt, &b.PriceCents, &b.Status, &b.Created, &b.Updated); err != nil {
			return nil, err
		}
		if pilot.Valid {
			b.PilotID = &pilot.Int64
		}
		out = append(out, b)
	}

	return out, rows.Err()
}

// CancelBooking is a single guarded statement: the status precondition lives
// in the WHERE clause, so there is no read-then-write window.
func (r *SQLiteRepo) CancelBooking(ctx context.Context, id, ownerID int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE bookings SET status = ?, updated = ? WHERE id = ? AND user_id = ? AND status IN (?, ?)`,
		booking.StatusCancelled, now(), id, ownerID, booking.StatusPending, booking.StatusAccepted)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

func (r *SQLiteRepo) ListOpenBookings(ctx context.Context, limit, offset int) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = ? AND pilot_id IS NULL ORDER BY created DESC LIMIT ? OFFSET ?`
	return r.listBookings(ctx, query, booking.StatusPending, limit, offset)
}

func (r *SQLiteRepo) CountOpenBookings(ctx context.Context) (int64, error) {
	var count int64
	row := r.conn.QueryRow(ctx, `SELECT COUNT(*) FROM bookings WHERE status = ? AND pilot_id IS NULL`, booking.StatusPending)
	if err := row.Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// AcceptBooking assigns the pilot where the booking is still open, in one
// guarded statement.
func (r *SQLiteRepo) AcceptBooking(ctx context.Context, id, pilotID int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE bookings SET pilot_id = ?, status = ?, updated = ? WHERE id = ? AND status = ? AND pilot_id IS NULL`,
		pilotID, booking.StatusAccepted, now(), id, booking.StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// AdvanceBookingStatus moves from -> to, keyed on the current status so a
// stale caller changes nothing.
func (r *SQLiteRepo) AdvanceBookingStatus(ctx context.Context, id, pilotID int64, from, to string) (bool, error) {
	res, err := r.conn.Exec(ctx, `UPDATE bookings SET status = ?, updated = ? WHERE id = ? AND pilot_id = ? AND status = ?`,
		to, now(), id, pilotID, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
