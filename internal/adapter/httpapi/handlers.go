package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/pocketfin/pocketfin-backend/internal/domain"
	"github.com/pocketfin/pocketfin-backend/internal/usecase/movement"
	"github.com/pocketfin/pocketfin-backend/internal/usecase/reserve"
	"github.com/pocketfin/pocketfin-backend/internal/usecase/space"
)

// Handler holds the services behind the HTTP surface
type Handler struct {
	Spaces    *space.Service
	Reserves  *reserve.Service
	Movements *movement.Service
}

// NewHandler creates a new handler with the given services
func NewHandler(spaces *space.Service, reserves *reserve.Service, movements *movement.Service) *Handler {
	return &Handler{
		Spaces:    spaces,
		Reserves:  reserves,
		Movements: movements,
	}
}

// =============================================================================
// SPACE HANDLERS
// =============================================================================

// CreateSpace creates a new space owned by the caller
func (h *Handler) CreateSpace(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	var req CreateSpaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	created, err := h.Spaces.CreateSpace(r.Context(), principal, req.Name)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toSpaceDTO(created))
}

// ListSpaces returns the spaces the caller belongs to
func (h *Handler) ListSpaces(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	spaces, err := h.Spaces.ListSpaces(r.Context(), principal)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]SpaceDTO, len(spaces))
	for i, s := range spaces {
		dtos[i] = toSpaceDTO(s)
	}
	writeData(w, http.StatusOK, dtos)
}

// AddMember adds a member to a space (owner only)
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	spaceID, err := uuidParam(r, "spaceID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid space id", err)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	member, err := h.Spaces.AddMember(r.Context(), principal, spaceID, req.Email, domain.Role(req.Role))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toMemberDTO(member))
}

// =============================================================================
// RESERVE HANDLERS
// =============================================================================

// CreateReserve creates a new reserve in a space
func (h *Handler) CreateReserve(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	spaceID, err := uuidParam(r, "spaceID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid space id", err)
		return
	}

	var req CreateReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	target, err := optionalAmount(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid target amount", err)
		return
	}

	created, err := h.Reserves.CreateReserve(r.Context(), principal, spaceID, reserve.CreateReserveInput{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: target,
		Color:        req.Color,
		Icon:         req.Icon,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toReserveDTO(created))
}

// ListReserves returns all reserves of a space
func (h *Handler) ListReserves(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	spaceID, err := uuidParam(r, "spaceID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid space id", err)
		return
	}

	reserves, err := h.Reserves.ListReserves(r.Context(), principal, spaceID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]ReserveDTO, len(reserves))
	for i, rsv := range reserves {
		dtos[i] = toReserveDTO(rsv)
	}
	writeData(w, http.StatusOK, dtos)
}

// GetReserve returns a single reserve
func (h *Handler) GetReserve(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	id, err := uuidParam(r, "reserveID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reserve id", err)
		return
	}

	rsv, err := h.Reserves.GetReserve(r.Context(), principal, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toReserveDTO(rsv))
}

// UpdateReserve updates a reserve's editable fields
func (h *Handler) UpdateReserve(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	id, err := uuidParam(r, "reserveID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reserve id", err)
		return
	}

	var req UpdateReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	target, err := optionalAmount(req.TargetAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid target amount", err)
		return
	}

	updated, err := h.Reserves.UpdateReserve(r.Context(), principal, id, reserve.UpdateReserveInput{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: target,
		Color:        req.Color,
		Icon:         req.Icon,
		Active:       req.Active,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, toReserveDTO(updated))
}

// DeleteReserve removes a reserve and its movements
func (h *Handler) DeleteReserve(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	id, err := uuidParam(r, "reserveID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reserve id", err)
		return
	}

	if err := h.Reserves.DeleteReserve(r.Context(), principal, id); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// =============================================================================
// MOVEMENT HANDLERS
// =============================================================================

// ListMovements returns all movements of a reserve, date ascending
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	reserveID, err := uuidParam(r, "reserveID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reserve id", err)
		return
	}

	movements, err := h.Movements.ListMovements(r.Context(), principal, reserveID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	dtos := make([]MovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = toMovementWithReserveDTO(m)
	}
	writeData(w, http.StatusOK, dtos)
}

// CreateMovement records a deposit or withdrawal against a reserve
func (h *Handler) CreateMovement(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	reserveID, err := uuidParam(r, "reserveID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reserve id", err)
		return
	}

	var req CreateMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}

	created, err := h.Movements.CreateMovement(r.Context(), principal, reserveID, movement.CreateMovementInput{
		Type:        domain.MovementType(req.Type),
		Amount:      amount,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, toMovementDTO(created))
}

// DeleteMovement removes a movement and reverses its balance effect
func (h *Handler) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthenticated", nil)
		return
	}

	reserveID, err := uuidParam(r, "reserveID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid reserve id", err)
		return
	}
	movementID, err := uuidParam(r, "movementID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid movement id", err)
		return
	}

	if err := h.Movements.DeleteMovement(r.Context(), principal, reserveID, movementID); err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// =============================================================================
// HELPERS
// =============================================================================

// writeDomainError maps the domain error taxonomy to HTTP status codes.
// Forbidden responses stay generic so authorization failures don't reveal
// whether the resource exists.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, "Insufficient funds in reserve", err)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "Validation failed", err)
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", nil)
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, domain.ErrDuplicateMember):
		writeError(w, http.StatusConflict, "Member already exists", nil)
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

func optionalAmount(n json.Number) (*decimal.Decimal, error) {
	if n.String() == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, dataResponse{Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
