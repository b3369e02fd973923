package repository

import (
	"context"

	"github.com/pawferry/pawferry/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookups scoped by an owner or pilot id collapse "does not exist" and "is not
// yours" into a single nil result so callers cannot leak the distinction.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	DeactivateUser(ctx context.Context, id int64) (bool, error)
}

type PetRepo interface {
	CreatePet(ctx context.Context, p *models.Pet) (int64, error)
	// GetOwnedPet returns the pet only when it belongs to ownerID and is not
	// soft-deleted.
	GetOwnedPet(ctx context.Context, id, ownerID int64) (*models.Pet, error)
	ListPetsByOwner(ctx context.Context, ownerID int64) ([]models.Pet, error)
	SoftDeletePet(ctx context.Context, id, ownerID int64) (bool, error)
}

type BookingRepo interface {
	// CreateBooking inserts the booking and its service rows in one
	// transaction and returns the new booking id.
	CreateBooking(ctx context.Context, b *models.Booking, services []models.BookingService) (int64, error)
	// FindOwnedBooking is the single ownership-and-existence lookup; the
	// returned booking includes its service rows.
	FindOwnedBooking(ctx context.Context, id, ownerID int64) (*models.Booking, error)
	ListBookingsByOwner(ctx context.Context, ownerID int64, status string, limit, offset int) ([]models.Booking, error)
	CountBookingsByOwner(ctx context.Context, ownerID int64, status string) (int64, error)
	// CancelBooking performs the guarded one-statement transition to
	// CANCELLED and reports whether a row changed.
	CancelBooking(ctx context.Context, id, ownerID int64) (bool, error)

	// Pilot side.
	ListOpenBookings(ctx context.Context, limit, offset int) ([]models.Booking, error)
	CountOpenBookings(ctx context.Context) (int64, error)
	// AcceptBooking assigns the pilot where the booking is still PENDING and
	// unassigned, in one guarded statement.
	AcceptBooking(ctx context.Context, id, pilotID int64) (bool, error)
	// AdvanceBookingStatus moves from -> to for the assigned pilot, keyed on
	// the current status so a stale caller changes nothing.
	AdvanceBookingStatus(ctx context.Context, id, pilotID int64, from, to string) (bool, error)
	FindPilotBooking(ctx context.Context, id, pilotID int64) (*models.Booking, error)
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, m *models.BookingMessage) (int64, error)
	ListMessages(ctx context.Context, bookingID int64) ([]models.BookingMessage, error)
}

type TrackingRepo interface {
	CreateTracking(ctx context.Context, t *models.BookingTracking) (int64, error)
	// LatestTracking returns the most recent ping for the booking, or nil
	// when none has been recorded yet.
	LatestTracking(ctx context.Context, bookingID int64) (*models.BookingTracking, error)
}
