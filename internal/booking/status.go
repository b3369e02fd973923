package booking

import "errors"

// Booking lifecycle states. A booking always starts at StatusPending and only
// ever moves along the edges encoded in next below; StatusCompleted and
// StatusCancelled are terminal.
const (
	StatusPending         = "PENDING"
	StatusAccepted        = "ACCEPTED"
	StatusEnRouteToPickup = "EN_ROUTE_TO_PICKUP"
	StatusPetPickedUp     = "PET_PICKED_UP"
	StatusEnRouteToDest   = "EN_ROUTE_TO_DESTINATION"
	StatusCompleted       = "COMPLETED"
	StatusCancelled       = "CANCELLED"
)

var ErrIllegalTransition = errors.New("illegal booking status transition")

// next maps each state to its single forward successor.
var next = map[string]string{
	StatusPending:         StatusAccepted,
	StatusAccepted:        StatusEnRouteToPickup,
	StatusEnRouteToPickup: StatusPetPickedUp,
	StatusPetPickedUp:     StatusEnRouteToDest,
	StatusEnRouteToDest:   StatusCompleted,
}

// ValidStatus reports whether s is a member of the legal-state set.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusEnRouteToPickup, StatusPetPickedUp,
		StatusEnRouteToDest, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to string) bool {
	if !ValidStatus(from) || !ValidStatus(to) {
		return false
	}
	if to == StatusCancelled {
		return Cancellable(from)
	}
	return next[from] == to
}

// Cancellable reports whether a booking in the given status may still be
// cancelled by its owner.
func Cancellable(status string) bool {
	return status == StatusPending || status == StatusAccepted
}

// Terminal reports whether no further transitions are permitted.
func Terminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// EnRoute reports whether the booking is in a state where tracking pings are
// meaningful.
func EnRoute(status string) bool {
	switch status {
	case StatusEnRouteToPickup, StatusPetPickedUp, StatusEnRouteToDest:
		return true
	}
	return false
}
