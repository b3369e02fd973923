package api

import (
	"net/http"
	"strings"

	"github.com/pawferry/pawferry/pkg/models"
	"github.com/pawferry/pawferry/pkg/repository"
)

type PetsHandler struct {
	petRepo repository.PetRepo
}

func NewPetsHandler(pr repository.PetRepo) *PetsHandler {
	return &PetsHandler{petRepo: pr}
}

type createPetRequest struct {
	Name     string  `json:"name"`
	Species  string  `json:"species"`
	WeightKg float64 `json:"weightKg"`
	Notes    string  `json:"notes"`
}

func (h *PetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	var req createPetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Species = strings.TrimSpace(req.Species)
	if req.Name == "" || req.Species == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "name and species are required")
		return
	}
	if req.WeightKg < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "weightKg must not be negative")
		return
	}

	pet := &models.Pet{
		OwnerID:  claims.UserID,
		Name:     req.Name,
		Species:  req.Species,
		WeightKg: req.WeightKg,
		Notes:    req.Notes,
	}
	id, err := h.petRepo.CreatePet(r.Context(), pet)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to create pet")
		return
	}
	pet.ID = id

	writeJSON(w, map[string]any{"pet": pet}, http.StatusCreated)
}

func (h *PetsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())

	pets, err := h.petRepo.ListPetsByOwner(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to list pets")
		return
	}
	if pets == nil {
		pets = []models.Pet{}
	}

	writeJSON(w, map[string]any{"pets": pets}, http.StatusOK)
}

// Delete soft-deletes; rows referenced by bookings stay in place.
func (h *PetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "pet not found")
		return
	}

	changed, err := h.petRepo.SoftDeletePet(r.Context(), id, claims.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to delete pet")
		return
	}
	if !changed {
		writeError(w, http.StatusNotFound, CodeNotFound, "pet not found")
		return
	}

	writeJSON(w, map[string]any{"deleted": true}, http.StatusOK)
}
