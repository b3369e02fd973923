package api

import (
	"net/http"

	"github.com/pawferry/pawferry/pkg/models"
	"github.com/pawferry/pawferry/pkg/repository"
)

// AdminHandler routes are behind RequireAdmin.
type AdminHandler struct {
	userRepo repository.UserRepo
}

func NewAdminHandler(ur repository.UserRepo) *AdminHandler {
	return &AdminHandler{userRepo: ur}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	offset := (page - 1) * limit

	ctx := r.Context()
	users, err := h.userRepo.ListUsers(ctx, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to list users")
		return
	}
	total, err := h.userRepo.CountUsers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to count users")
		return
	}

	if users == nil {
		users = []models.User{}
	}

	writeJSON(w, map[string]any{
		"users":      users,
		"pagination": paginate(total, page, limit),
	}, http.StatusOK)
}

// DeactivateUser disables an account. Accounts are never hard-deleted.
func (h *AdminHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, CodeNotFound, "user not found")
		return
	}

	changed, err := h.userRepo.DeactivateUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeInternal, "failed to deactivate user")
		return
	}
	if !changed {
		writeError(w, http.StatusNotFound, CodeNotFound, "user not found")
		return
	}

	writeJSON(w, map[string]any{"deactivated": true}, http.StatusOK)
}
