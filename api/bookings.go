package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pawferry/pawferry/internal/booking"
	"github.com/pawferry/pawferry/pkg/models"
	"github.com/pawferry/pawferry/pkg/repository"
)

type BookingsHandler struct {
	bookingRepo  repository.BookingRepo
	petRepo      repository.PetRepo
	messageRepo  repository.MessageRepo
	trackingRepo repository.TrackingRepo
}

func NewBookingsHandler(br repository.BookingRepo, pr repository.PetRepo, mr repository.MessageRepo, tr repository.TrackingRepo) *BookingsHandler {
	return &BookingsHandler{bookingRepo: br, petRepo: pr, messageRepo: mr, trackingRepo: tr}
}

type createBookingRequest struct {
	PetID          int64                   `json:"petId"`
	PickupAddress  string                  `json:"pickupAddress"`
	DropoffAddress string                  `json:"dropoffAddress"`
	ScheduledAt    int64                   `json:"scheduledAt"`
	PriceCents     int64                   `json:"priceCents"`
	Services       []bookingServiceRequest `json:"services"`
}

type bookingServiceRequest struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

type pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int   `json:"pages"`
}

func paginate(total int64, page, limit int) pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}

// pageParams reads page/limit query parameters with the platform defaults.
func pageParams(r *http.Request) (page, limit int) {
	page, limit = 1, 10
	q := r.URL.Query()
	if p := q.Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}
	return page, limit
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func (h *BookingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "unreadable request body")
		return
	}

	ctx := r.Context()
	details, err := validateBody(ctx, createBookingSchema, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	if len(details) > 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid booking payload", details...)
		return
	}

	var req createBookingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}

	// pet lookup is scoped by the caller, so "not found" and "not yours"
	// are the same answer
	pet, err := h.petRepo.GetOwnedPet(ctx, req.PetID, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to create booking")
		return
	}
	if pet == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "pet not found")
		return
	}

	price := req.PriceCents
	services := make([]models.BookingService, 0, len(req.Services))
	for _, s := range req.Services {
		services = append(services, models.BookingService{Name: strings.TrimSpace(s.Name), PriceCents: s.PriceCents})
		price += s.PriceCents
	}

	b := &models.Booking{
		UserID:         claims.UserID,
		PetID:          pet.ID,
		PickupAddress:  strings.TrimSpace(req.PickupAddress),
		DropoffAddress: strings.TrimSpace(req.DropoffAddress),
		ScheduledAt:    req.ScheduledAt,
		PriceCents:     price,
	}
	id, err := h.bookingRepo.CreateBooking(ctx, b, services)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to create booking")
		return
	}

	created, err := h.bookingRepo.FindOwnedBooking(ctx, id, claims.UserID)
	if err != nil || created == nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load created booking")
		return
	}

	writeJSON(w, map[string]any{"booking": created}, http.StatusCreated)
}

func (h *BookingsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	status := r.URL.Query().Get("status")
	if status != "" && !booking.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "unknown status filter")
		return
	}
	page, limit := pageParams(r)
	offset := (page - 1) * limit

	ctx := r.Context()
	items, err := h.bookingRepo.ListBookingsByOwner(ctx, claims.UserID, status, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to list bookings")
		return
	}
	total, err := h.bookingRepo.CountBookingsByOwner(ctx, claims.UserID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to count bookings")
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

func (h *BookingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	b, err := h.bookingRepo.FindOwnedBooking(r.Context(), id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	writeJSON(w, map[string]any{"booking": b}, http.StatusOK)
}

// Cancel performs the one-way transition to CANCELLED. The status guard lives
// in the repository's WHERE clause; a missed update is classified afterwards
// as either not-found or an illegal transition.
func (h *BookingsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	ctx := r.Context()
	changed, err := h.bookingRepo.CancelBooking(ctx, id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to cancel booking")
		return
	}
	if !changed {
		b, err := h.bookingRepo.FindOwnedBooking(ctx, id, claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, CodeInternal, "failed to cancel booking")
			return
		}
		if b == nil {
			writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
			return
		}
		writeError(w, http.StatusBadRequest, CodeIllegalTransition, "booking can no longer be cancelled")
		return
	}

	b, err := h.bookingRepo.FindOwnedBooking(ctx, id, claims.UserID)
	if err != nil || b == nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}

	writeJSON(w, map[string]any{"booking": b}, http.StatusOK)
}

type createMessageRequest struct {
	Message string `json:"message"`
}

// CreateMessage appends an owner-originated entry to the booking's message
// log. Pilot messages do not travel through this endpoint.
func (h *BookingsHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	var req createMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "message must not be empty")
		return
	}

	ctx := r.Context()
	b, err := h.bookingRepo.FindOwnedBooking(ctx, id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	msg := &models.BookingMessage{BookingID: b.ID, FromPilot: false, Body: req.Message}
	msgID, err := h.messageRepo.CreateMessage(ctx, msg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to store message")
		return
	}
	msg.ID = msgID

	writeJSON(w, map[string]any{"message": msg}, http.StatusCreated)
}

func (h *BookingsHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	ctx := r.Context()
	b, err := h.bookingRepo.FindOwnedBooking(ctx, id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	msgs, err := h.messageRepo.ListMessages(ctx, b.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to list messages")
		return
	}
	if msgs == nil {
		msgs = []models.BookingMessage{}
	}

	writeJSON(w, map[string]any{"messages": msgs}, http.StatusOK)
}

// GetTracking returns the current position: the single most recent ping, not
// an average or interpolation.
func (h *BookingsHandler) GetTracking(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	ctx := r.Context()
	b, err := h.bookingRepo.FindOwnedBooking(ctx, id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load booking")
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "booking not found")
		return
	}

	t, err := h.trackingRepo.LatestTracking(ctx, b.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to load tracking")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "no tracking recorded yet")
		return
	}

	writeJSON(w, map[string]any{"tracking": t}, http.StatusOK)
}
