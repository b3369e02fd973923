package api

import (
	"net/http"

	"github.com/pawferry/pawferry/internal/booking"
	"github.com/pawferry/pawferry/pkg/models"
	"github.com/pawferry/pawferry/pkg/repository"
)

// PilotHandler serves the pilot side of the booking lifecycle. All routes are
// behind RequirePilot.
type PilotHandler struct {
	bookingRepo  repository.BookingRepo
	trackingRepo repository.TrackingRepo
}

func NewPilotHandler(br repository.BookingRepo, tr repository.TrackingRepo) *PilotHandler {
	return &PilotHandler{bookingRepo: br, trackingRepo: tr}
}

// ListOpen returns unassigned PENDING bookings any pilot may accept.
func (h *PilotHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	offset := (page - 1) * limit

	ctx := r.Context()
	items, err := h.bookingRepo.ListOpenBookings(ctx, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to list open bookings")
		return
	}
	total, err := h.bookingRepo.CountOpenBookings(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to count open bookings")
		return
	}

	if items == nil {
		items = []models.Booking{}
	}

	writeJSON(w, map[string]any{
		"bookings":   items,
		"pagination": paginate(total, page, limit),
	}, http.StatusOK)
}

// Accept assigns the calling pilot to an open booking. Losing the race for a
// booking is indistinguishable from the booking not existing.
func (h *PilotHandler) Accept(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	ctx := r.Context()
	changed, err := h.bookingRepo.AcceptBooking(ctx, id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to accept booking")
		return
	}
	if !changed {
		if b, err := h.bookingRepo.FindPilotBooking(ctx, id, claims.UserID); err == nil && b != nil {
			writeError(w, http.StatusBadRequest, CodeIllegalTransition, "booking already accepted")
			return
		}
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	b, err := h.bookingRepo.FindPilotBooking(ctx, id, claims.UserID)
	if err != nil || b == nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}

	writeJSON(w, map[string]any{"booking": b}, http.StatusOK)
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

// Advance moves an assigned booking one step along the forward path. Cancel
// is the owner's move and is rejected here.
func (h *PilotHandler) Advance(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	var req advanceStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	if !booking.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "unknown status")
		return
	}
	if req.Status == booking.StatusCancelled {
		writeError(w, http.StatusBadRequest, CodeIllegalTransition, "pilots cannot cancel bookings")
		return
	}

	ctx := r.Context()
	b, err := h.bookingRepo.FindPilotBooking(ctx, id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}
	if !booking.CanTransition(b.Status, req.Status) {
		writeError(w, http.StatusBadRequest, CodeIllegalTransition, "illegal status transition")
		return
	}

	changed, err := h.bookingRepo.AdvanceBookingStatus(ctx, id, claims.UserID, b.Status, req.Status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to update booking")
		return
	}
	if !changed {
		// the status moved under us; the precondition no longer holds
		writeError(w, http.StatusBadRequest, CodeIllegalTransition, "illegal status transition")
		return
	}

	updated, err := h.bookingRepo.FindPilotBooking(ctx, id, claims.UserID)
	if err != nil || updated == nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}

	writeJSON(w, map[string]any{"booking": updated}, http.StatusOK)
}

type trackingRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Ping appends a location sample. Pings are only meaningful while the pet is
// actually moving, so non-en-route states reject them.
func (h *PilotHandler) Ping(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	var req trackingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 || req.Longitude < -180 || req.Longitude > 180 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "coordinates out of range")
		return
	}

	ctx := r.Context()
	b, err := h.bookingRepo.FindPilotBooking(ctx, id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}
	if !booking.EnRoute(b.Status) {
		writeError(w, http.StatusBadRequest, CodeIllegalTransition, "booking is not en route")
		return
	}

	t := &models.BookingTracking{BookingID: b.ID, Latitude: req.Latitude, Longitude: req.Longitude}
	tid, err := h.trackingRepo.CreateTracking(ctx, t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to store tracking")
		return
	}
	t.ID = tid

	writeJSON(w, map[string]any{"tracking": t}, http.StatusCreated)
}
