package crops

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/farm-management/internal"
	"github.com/frahmantamala/farm-management/internal/auth"
	"github.com/frahmantamala/farm-management/internal/transport"
)

// Handler consumes only what the core attaches to the request context: the
// live tenant connection and the resolved principal.
type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
	}
}

func (h *Handler) GetAllCrops(w http.ResponseWriter, r *http.Request) {
	db, ok := internal.TenantDBFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "no tenant database attached to this request")
		return
	}

	records, err := h.Service.GetAllCrops(db)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) GetCrop(w http.ResponseWriter, r *http.Request) {
	db, ok := internal.TenantDBFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "no tenant database attached to this request")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid crop id")
		return
	}

	record, err := h.Service.GetCrop(db, id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record)
}

func (h *Handler) CreateCrop(w http.ResponseWriter, r *http.Request) {
	db, ok := internal.TenantDBFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "no tenant database attached to this request")
		return
	}

	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateCropDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.CreateCrop(db, user.ID, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if _, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if appErr, ok := internal.IsAppError(err); ok {
		h.WriteError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.Logger.Error("crop operation failed", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
