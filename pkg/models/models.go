package models

// Domain models matching the database schema in db/migrations/0001_init.sql

const (
	RoleOwner = "owner"
	RolePilot = "pilot"
	RoleAdmin = "admin"
)

type User struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	Role         string `json:"role" db:"role"`
	Active       bool   `json:"active" db:"active"`
	PasswordHash string `json:"-" db:"password_hash"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

type Pet struct {
	ID       int64   `json:"id" db:"id"`
	OwnerID  int64   `json:"owner_id" db:"owner_id"`
	Name     string  `json:"name" db:"name"`
	Species  string  `json:"species" db:"species"`
	WeightKg float64 `json:"weight_kg,omitempty" db:"weight_kg"`
	Notes    string  `json:"notes,omitempty" db:"notes"`
	Deleted  bool    `json:"-" db:"deleted"`
	Created  int64   `json:"created" db:"created"`
	Updated  int64   `json:"updated" db:"updated"`
}

type Booking struct {
	ID             int64            `json:"id" db:"id"`
	UserID         int64            `json:"user_id" db:"user_id"`
	PilotID        *int64           `json:"pilot_id,omitempty" db:"pilot_id"`
	PetID          int64            `json:"pet_id" db:"pet_id"`
	PickupAddress  string           `json:"pickup_address" db:"pickup_address"`
	DropoffAddress string           `json:"dropoff_address" db:"dropoff_address"`
	ScheduledAt    int64            `json:"scheduled_at" db:"scheduled_at"`
	PriceCents     int64            `json:"price_cents" db:"price_cents"`
	Status         string           `json:"status" db:"status"`
	Services       []BookingService `json:"services,omitempty"`
	Created        int64            `json:"created" db:"created"`
	Updated        int64            `json:"updated" db:"updated"`
}

type BookingService struct {
	ID         int64  `json:"id" db:"id"`
	BookingID  int64  `json:"booking_id" db:"booking_id"`
	Name       string `json:"name" db:"name"`
	PriceCents int64  `json:"price_cents" db:"price_cents"`
}

// BookingMessage rows are append-only; there is no update path.
type BookingMessage struct {
	ID        int64  `json:"id" db:"id"`
	BookingID int64  `json:"booking_id" db:"booking_id"`
	FromPilot bool   `json:"from_pilot" db:"from_pilot"`
	Body      string `json:"body" db:"body"`
	Created   int64  `json:"created" db:"created"`
}

// BookingTracking rows are append-only location samples; the newest row per
// booking is the current position.
type BookingTracking struct {
	ID        int64   `json:"id" db:"id"`
	BookingID int64   `json:"booking_id" db:"booking_id"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
	PingedAt  int64   `json:"pinged_at" db:"pinged_at"`
}
