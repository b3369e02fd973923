package mock

import (
	"context"

	"github.com/pawferry/pawferry/internal/booking"
	"github.com/pawferry/pawferry/pkg/models"
)

// Test helpers and mocks
type Mocks struct {
	Users    *UserRepoMock
	Pets     *PetRepoMock
	Bookings *BookingRepoMock
	Messages *MessageRepoMock
	Tracking *TrackingRepoMock
}

func NewMocks() *Mocks {
	return &Mocks{
		Users:    &UserRepoMock{},
		Pets:     &PetRepoMock{},
		Bookings: &BookingRepoMock{},
		Messages: &MessageRepoMock{},
		Tracking: &TrackingRepoMock{},
	}
}

type UserRepoMock struct {
	Stored    []*models.User
	CreateErr error
	nextID    int64
}

func (m *UserRepoMock) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	cp := *u
	cp.ID = m.nextID
	cp.Active = true
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range m.Stored {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *UserRepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.Stored {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *UserRepoMock) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	var out []models.User
	for i := offset; i < len(m.Stored) && len(out) < limit; i++ {
		out = append(out, *m.Stored[i])
	}
	return out, nil
}

func (m *UserRepoMock) CountUsers(ctx context.Context) (int64, error) {
	return int64(len(m.Stored)), nil
}

func (m *UserRepoMock) DeactivateUser(ctx context.Context, id int64) (bool, error) {
	for _, u := range m.Stored {
		if u.ID == id && u.Active {
			u.Active = false
			return true, nil
		}
	}
	return false, nil
}

type PetRepoMock struct {
	Stored    []*models.Pet
	CreateErr error
	nextID    int64
}

func (m *PetRepoMock) CreatePet(ctx context.Context, p *models.Pet) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	cp := *p
	cp.ID = m.nextID
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *PetRepoMock) GetOwnedPet(ctx context.Context, id, ownerID int64) (*models.Pet, error) {
	for _, p := range m.Stored {
		if p.ID == id && p.OwnerID == ownerID && !p.Deleted {
			return p, nil
		}
	}
	return nil, nil
}

func (m *PetRepoMock) ListPetsByOwner(ctx context.Context, ownerID int64) ([]models.Pet, error) {
	var out []models.Pet
	for _, p := range m.Stored {
		if p.OwnerID == ownerID && !p.Deleted {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *PetRepoMock) SoftDeletePet(ctx context.Context, id, ownerID int64) (bool, error) {
	for _, p := range m.Stored {
		if p.ID == id && p.OwnerID == ownerID && !p.Deleted {
			p.Deleted = true
			return true, nil
		}
	}
	return false, nil
}

type BookingRepoMock struct {
	Stored    []*models.Booking
	CreateErr error
	ListErr   error
	nextID    int64
}

func (m *BookingRepoMock) CreateBooking(ctx context.Context, b *models.Booking, services []models.BookingService) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	cp := *b
	cp.ID = m.nextID
	cp.Status = booking.StatusPending
	for i, s := range services {
		s.ID = int64(i + 1)
		s.BookingID = cp.ID
		cp.Services = append(cp.Services, s)
	}
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *BookingRepoMock) FindOwnedBooking(ctx context.Context, id, ownerID int64) (*models.Booking, error) {
	for _, b := range m.Stored {
		if b.ID == id && b.UserID == ownerID {
			return b, nil
		}
	}
	return nil, nil
}

func (m *BookingRepoMock) FindPilotBooking(ctx context.Context, id, pilotID int64) (*models.Booking, error) {
	for _, b := range m.Stored {
		if b.ID == id && b.PilotID != nil && *b.PilotID == pilotID {
			return b, nil
		}
	}
	return nil, nil
}

func (m *BookingRepoMock) ListBookingsByOwner(ctx context.Context, ownerID int64, status string, limit, offset int) ([]models.Booking, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var matched []models.Booking
	for _, b := range m.Stored {
		if b.UserID == ownerID && (status == "" || b.Status == status) {
			matched = append(matched, *b)
		}
	}
	return window(matched, limit, offset), nil
}

func (m *BookingRepoMock) CountBookingsByOwner(ctx context.Context, ownerID int64, status string) (int64, error) {
	var n int64
	for _, b := range m.Stored {
		if b.UserID == ownerID && (status == "" || b.Status == status) {
			n++
		}
	}
	return n, nil
}

func (m *BookingRepoMock) CancelBooking(ctx context.Context, id, ownerID int64) (bool, error) {
	for _, b := range m.Stored {
		if b.ID == id && b.UserID == ownerID && booking.Cancellable(b.Status) {
			b.Status = booking.StatusCancelled
			return true, nil
		}
	}
	return false, nil
}

func (m *BookingRepoMock) ListOpenBookings(ctx context.Context, limit, offset int) ([]models.Booking, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var matched []models.Booking
	for _, b := range m.Stored {
		if b.Status == booking.StatusPending && b.PilotID == nil {
			matched = append(matched, *b)
		}
	}
	return window(matched, limit, offset), nil
}

func (m *BookingRepoMock) CountOpenBookings(ctx context.Context) (int64, error) {
	var n int64
	for _, b := range m.Stored {
		if b.Status == booking.StatusPending && b.PilotID == nil {
			n++
		}
	}
	return n, nil
}

func (m *BookingRepoMock) AcceptBooking(ctx context.Context, id, pilotID int64) (bool, error) {
	for _, b := range m.Stored {
		if b.ID == id && b.Status == booking.StatusPending && b.PilotID == nil {
			pid := pilotID
			b.PilotID = &pid
			b.Status = booking.StatusAccepted
			return true, nil
		}
	}
	return false, nil
}

func (m *BookingRepoMock) AdvanceBookingStatus(ctx context.Context, id, pilotID int64, from, to string) (bool, error) {
	for _, b := range m.Stored {
		if b.ID == id && b.PilotID != nil && *b.PilotID == pilotID && b.Status == from {
			b.Status = to
			return true, nil
		}
	}
	return false, nil
}

type MessageRepoMock struct {
	Stored    []*models.BookingMessage
	CreateErr error
	nextID    int64
}

func (m *MessageRepoMock) CreateMessage(ctx context.Context, msg *models.BookingMessage) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	cp := *msg
	cp.ID = m.nextID
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *MessageRepoMock) ListMessages(ctx context.Context, bookingID int64) ([]models.BookingMessage, error) {
	var out []models.BookingMessage
	for _, msg := range m.Stored {
		if msg.BookingID == bookingID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

type TrackingRepoMock struct {
	Stored    []*models.BookingTracking
	CreateErr error
	nextID    int64
}

func (m *TrackingRepoMock) CreateTracking(ctx context.Context, t *models.BookingTracking) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	cp := *t
	cp.ID = m.nextID
	m.Stored = append(m.Stored, &cp)
	return cp.ID, nil
}

func (m *TrackingRepoMock) LatestTracking(ctx context.Context, bookingID int64) (*models.BookingTracking, error) {
	var latest *models.BookingTracking
	for _, t := range m.Stored {
		if t.BookingID != bookingID {
			continue
		}
		if latest == nil || t.PingedAt > latest.PingedAt {
			latest = t
		}
	}
	return latest, nil
}

func window(in []models.Booking, limit, offset int) []models.Booking {
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if limit < len(in) {
		in = in[:limit]
	}
	return in
}
