package sqlite_test

import (
	"context"
	"testing"

	dbfs "github.com/pawferry/pawferry/db"
	"github.com/pawferry/pawferry/internal/booking"
	dbpkg "github.com/pawferry/pawferry/internal/db"
	sqlite "github.com/pawferry/pawferry/internal/repository/sqlite"
	"github.com/pawferry/pawferry/pkg/models"
)

func setupRepo(t *testing.T) *sqlite.SQLiteRepo {
	t.Helper()
	ctx := context.Background()
	d, err := dbpkg.New(ctx, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := dbpkg.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return sqlite.New(d)
}

func seedOwnerAndPet(t *testing.T, repo *sqlite.SQLiteRepo) (ownerID, petID int64) {
	t.Helper()
	ctx := context.Background()

	ownerID, err := repo.CreateUser(ctx, &models.User{Name: "Maya", Email: "maya@example.com", PasswordHash: "hash", Role: models.RoleOwner})
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	petID, err = repo.CreatePet(ctx, &models.Pet{OwnerID: ownerID, Name: "Biscuit", Species: "dog", WeightKg: 9.5})
	if err != nil {
		t.Fatalf("create pet: %v", err)
	}

	return ownerID, petID
}

func seedBooking(t *testing.T, repo *sqlite.SQLiteRepo, ownerID, petID int64) int64 {
	t.Helper()
	b := &models.Booking{
		UserID:         ownerID,
		PetID:          petID,
		PickupAddress:  "12 Harbor Way",
		DropoffAddress: "9 Vet Plaza",
		ScheduledAt:    1700000000000,
		PriceCents:     4500,
	}
	id, err := repo.CreateBooking(context.Background(), b, nil)
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}

	return id
}

func TestUserRepo(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	// nil user should error
	if _, err := repo.CreateUser(ctx, nil); err == nil {
		t.Fatalf("expected error when creating nil user")
	}

	// Non-existing lookups should return nil, nil
	if got, err := repo.GetUserByID(ctx, 9999); err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing id, got %#v, %v", got, err)
	}
	if got, err := repo.GetUserByEmail(ctx, "a@a.com"); err != nil || got != nil {
		t.Fatalf("expected nil, nil for missing email, got %#v, %v", got, err)
	}

	id, err := repo.CreateUser(ctx, &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash", Role: models.RoleOwner})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}

	got, err := repo.GetUserByID(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("GetUserByID: %v, %#v", err, got)
	}
	if !got.Active {
		t.Fatalf("expected new user to be active")
	}

	// duplicate email must fail on the unique index
	if _, err := repo.CreateUser(ctx, &models.User{Name: "Alice2", Email: "alice@example.com", PasswordHash: "h", Role: models.RoleOwner}); err == nil {
		t.Fatalf("expected unique constraint error for duplicate email")
	}

	ok, err := repo.DeactivateUser(ctx, id)
	if err != nil || !ok {
		t.Fatalf("DeactivateUser: %v, %v", ok, err)
	}
	got, _ = repo.GetUserByID(ctx, id)
	if got.Active {
		t.Fatalf("expected user to be inactive after deactivation")
	}

	// second deactivate changes nothing
	ok, err = repo.DeactivateUser(ctx, id)
	if err != nil || ok {
		t.Fatalf("expected second deactivate to be a no-op, got %v, %v", ok, err)
	}
}

func TestPetRepo_OwnershipScoping(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	ownerID, petID := seedOwnerAndPet(t, repo)

	strangerID, err := repo.CreateUser(ctx, &models.User{Name: "Noa", Email: "noa@example.com", PasswordHash: "h", Role: models.RoleOwner})
	if err != nil {
		t.Fatalf("create stranger: %v", err)
	}

	// owner sees the pet
	if p, err := repo.GetOwnedPet(ctx, petID, ownerID); err != nil || p == nil {
		t.Fatalf("owner lookup failed: %#v, %v", p, err)
	}
	// a different owner gets the same nil as a missing pet
	if p, err := repo.GetOwnedPet(ctx, petID, strangerID); err != nil || p != nil {
		t.Fatalf("foreign lookup must be nil, got %#v, %v", p, err)
	}

	// soft delete hides the pet from owner lookups too
	if ok, err := repo.SoftDeletePet(ctx, petID, ownerID); err != nil || !ok {
		t.Fatalf("soft delete: %v, %v", ok, err)
	}
	if p, err := repo.GetOwnedPet(ctx, petID, ownerID); err != nil || p != nil {
		t.Fatalf("deleted pet must be invisible, got %#v, %v", p, err)
	}
	pets, err := repo.ListPetsByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("list pets: %v", err)
	}
	if len(pets) != 0 {
		t.Fatalf("expected no visible pets, got %d", len(pets))
	}
}

func TestBookingRepo_CreateWithServices(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	ownerID, petID := seedOwnerAndPet(t, repo)

	b := &models.Booking{
		UserID:         ownerID,
		PetID:          petID,
		PickupAddress:  "12 Harbor Way",
		DropoffAddress: "9 Vet Plaza",
		ScheduledAt:    1700000000000,
		PriceCents:     4500,
	}
	services := []models.BookingService{
		{Name: "crate rental", PriceCents: 500},
		{Name: "priority pickup", PriceCents: 1200},
	}
	id, err := repo.CreateBooking(ctx, b, services)
	if err != nil {
		t.Fatalf("CreateBooking: %v", err)
	}

	got, err := repo.FindOwnedBooking(ctx, id, ownerID)
	if err != nil || got == nil {
		t.Fatalf("FindOwnedBooking: %#v, %v", got, err)
	}
	if got.Status != booking.StatusPending {
		t.Fatalf("new booking must be PENDING, got %s", got.Status)
	}
	if len(got.Services) != 2 {
		t.Fatalf("expected 2 service rows, got %d", len(got.Services))
	}
	if got.Services[0].Name != "crate rental" {
		t.Fatalf("unexpected service row: %+v", got.Services[0])
	}
}

func TestBookingRepo_OwnershipCollapsedWithExistence(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	ownerID, petID := seedOwnerAndPet(t, repo)
	id := seedBooking(t, repo, ownerID, petID)

	strangerID, err := repo.CreateUser(ctx, &models.User{Name: "Noa", Email: "noa@example.com", PasswordHash: "h", Role: models.RoleOwner})
	if err != nil {
		t.Fatalf("create stranger: %v", err)
	}

	// a foreign booking and a nonexistent booking are indistinguishable
	if b, err := repo.FindOwnedBooking(ctx, id, strangerID); err != nil || b != nil {
		t.Fatalf("foreign booking must be nil, got %#v, %v", b, err)
	}
	if b, err := repo.FindOwnedBooking(ctx, 424242, ownerID); err != nil || b != nil {
		t.Fatalf("missing booking must be nil, got %#v, %v", b, err)
	}
}

func TestBookingRepo_CancelGuarded(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	ownerID, petID := seedOwnerAndPet(t, repo)
	id := seedBooking(t, repo, ownerID, petID)

	ok, err := repo.CancelBooking(ctx, id, ownerID)
	if err != nil || !ok {
		t.Fatalf("first cancel: %v, %v", ok, err)
	}
	got, _ := repo.FindOwnedBooking(ctx, id, ownerID)
	if got.Status != booking.StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", got.Status)
	}

	// second cancel must not match the guarded WHERE clause
	ok, err = repo.CancelBooking(ctx, id, ownerID)
	if err != nil || ok {
		t.Fatalf("second cancel must change nothing, got %v, %v", ok, err)
	}
	got, _ = repo.FindOwnedBooking(ctx, id, ownerID)
	if got.Status != booking.StatusCancelled {
		t.Fatalf("status must be unchanged, got %s", got.Status)
	}
}

func TestBookingRepo_PilotAcceptAndAdvance(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	ownerID, petID := seedOwnerAndPet(t, repo)
	id := seedBooking(t, repo, ownerID, petID)

	pilotID, err := repo.CreateUser(ctx, &models.User{Name: "Iris", Email: "iris@example.com", PasswordHash: "h", Role: models.RolePilot})
	if err != nil {
		t.Fatalf("create pilot: %v", err)
	}
	otherPilotID, err := repo.CreateUser(ctx, &models.User{Name: "Sam", Email: "sam@example.com", PasswordHash: "h", Role: models.RolePilot})
	if err != nil {
		t.Fatalf("create other pilot: %v", err)
	}

	open, err := repo.ListOpenBookings(ctx, 10, 0)
	if err != nil || len(open) != 1 {
		t.Fatalf("expected one open booking, got %d (%v)", len(open), err)
	}

	ok, err := repo.AcceptBooking(ctx, id, pilotID)
	if err != nil || !ok {
		t.Fatalf("accept: %v, %v", ok, err)
	}
	// a second accept, even by another pilot, must lose
	ok, err = repo.AcceptBooking(ctx, id, otherPilotID)
	if err != nil || ok {
		t.Fatalf("double accept must fail, got %v, %v", ok, err)
	}

	got, err := repo.FindPilotBooking(ctx, id, pilotID)
	if err != nil || got == nil || got.Status != booking.StatusAccepted {
		t.Fatalf("FindPilotBooking after accept: %#v, %v", got, err)
	}

	// only the assigned pilot may advance
	ok, err = repo.AdvanceBookingStatus(ctx, id, otherPilotID, booking.StatusAccepted, booking.StatusEnRouteToPickup)
	if err != nil || ok {
		t.Fatalf("foreign pilot advance must fail, got %v, %v", ok, err)
	}
	ok, err = repo.AdvanceBookingStatus(ctx, id, pilotID, booking.StatusAccepted, booking.StatusEnRouteToPickup)
	if err != nil || !ok {
		t.Fatalf("advance: %v, %v", ok, err)
	}

	// stale precondition changes nothing
	ok, err = repo.AdvanceBookingStatus(ctx, id, pilotID, booking.StatusAccepted, booking.StatusEnRouteToPickup)
	if err != nil || ok {
		t.Fatalf("stale advance must fail, got %v, %v", ok, err)
	}
}

func TestBookingRepo_ListPagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	ownerID, petID := seedOwnerAndPet(t, repo)

	for i := 0; i < 7; i++ {
		seedBooking(t, repo, ownerID, petID)
	}

	total, err := repo.CountBookingsByOwner(ctx, ownerID, booking.StatusPending)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 7 {
		t.Fatalf("expected 7 pending bookings, got %d", total)
	}

	// page 2 with limit 5 leaves 2 rows
	page2, err := repo.ListBookingsByOwner(ctx, ownerID, booking.StatusPending, 5, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("expected 2 rows on page 2, got %d", len(page2))
	}

	// status filter excludes cancelled rows
	if ok, err := repo.CancelBooking(ctx, page2[0].ID, ownerID); err != nil || !ok {
		t.Fatalf("cancel for filter test: %v, %v", ok, err)
	}
	total, _ = repo.CountBookingsByOwner(ctx, ownerID, booking.StatusPending)
	if total != 6 {
		t.Fatalf("expected 6 pending after one cancel, got %d", total)
	}
	all, _ := repo.CountBookingsByOwner(ctx, ownerID, "")
	if all != 7 {
		t.Fatalf("unfiltered count must stay 7, got %d", all)
	}
}

func TestMessageRepo_AppendOnlyLog(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	ownerID, petID := seedOwnerAndPet(t, repo)
	id := seedBooking(t, repo, ownerID, petID)

	for _, body := range []string{"is the crate ok?", "she gets nervous in cars"} {
		if _, err := repo.CreateMessage(ctx, &models.BookingMessage{BookingID: id, Body: body}); err != nil {
			t.Fatalf("create message: %v", err)
		}
	}

	msgs, err := repo.ListMessages(ctx, id)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Body != "is the crate ok?" {
		t.Fatalf("messages must come back oldest first, got %q", msgs[0].Body)
	}
	if msgs[0].FromPilot {
		t.Fatalf("owner message must not be flagged from_pilot")
	}
}

func TestTrackingRepo_LatestWins(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	ownerID, petID := seedOwnerAndPet(t, repo)
	id := seedBooking(t, repo, ownerID, petID)

	// none yet
	if tr, err := repo.LatestTracking(ctx, id); err != nil || tr != nil {
		t.Fatalf("expected no tracking yet, got %#v, %v", tr, err)
	}

	pings := []models.BookingTracking{
		{BookingID: id, Latitude: 48.85, Longitude: 2.35, PingedAt: 1000},
		{BookingID: id, Latitude: 48.86, Longitude: 2.36, PingedAt: 3000},
		{BookingID: id, Latitude: 48.87, Longitude: 2.37, PingedAt: 2000},
	}
	for i := range pings {
		if _, err := repo.CreateTracking(ctx, &pings[i]); err != nil {
			t.Fatalf("create tracking: %v", err)
		}
	}

	tr, err := repo.LatestTracking(ctx, id)
	if err != nil || tr == nil {
		t.Fatalf("latest tracking: %#v, %v", tr, err)
	}
	// newest ping timestamp wins, not insertion order
	if tr.PingedAt != 3000 || tr.Latitude != 48.86 {
		t.Fatalf("expected the ping at t=3000, got %+v", tr)
	}
}
