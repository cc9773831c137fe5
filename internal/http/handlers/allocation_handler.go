// Allocation HTTP handlers.
//
// This file exposes REST endpoints for allocation resources:
//   - POST   /allocations            (create, idempotent via Idempotency-Key)
//   - PUT    /allocations/{id}       (full replace)
//   - DELETE /allocations/{id}       (permanent delete)
//   - GET    /allocations/history    (filtered retrieval, capped)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. The business rules (double-booking,
// frozen past-dated records) live in the service layer; here they only get an
// HTTP status.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fleetops/go-fleet-backend/internal/domain"
	"github.com/fleetops/go-fleet-backend/internal/http/middleware"
	"github.com/fleetops/go-fleet-backend/internal/services"
	"github.com/fleetops/go-fleet-backend/internal/utils"
)

// dateLayout is the wire format for allocation dates (date only, no time).
const dateLayout = "2006-01-02"

//
// Service contracts (context-aware)
//

// AllocationService defines the allocation lifecycle operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AllocationService interface {
	// Create validates and stores a new allocation, returning its id.
	Create(ctx context.Context, in domain.AllocationInput) (string, error)
	// Update fully replaces the fields of an existing allocation.
	Update(ctx context.Context, id primitive.ObjectID, in domain.AllocationInput) error
	// Delete permanently removes an allocation.
	Delete(ctx context.Context, id primitive.ObjectID) error
	// History returns allocations matching the optional filter, capped.
	History(ctx context.Context, f domain.HistoryFilter) ([]domain.Allocation, error)
}

// IdempotencyStore persists create outcomes keyed by Idempotency-Key so that
// retried POSTs replay the original result instead of re-running the write.
// A nil store disables replay support.
type IdempotencyStore interface {
	// Get returns the non-expired record for key, or an error when absent.
	Get(ctx context.Context, key string, now time.Time) (*domain.IdempotencyRecord, error)
	// Record stores the outcome of a completed create. Best effort: failures
	// must not fail the request that already succeeded.
	Record(ctx context.Context, key, allocationID string, status int) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for allocations. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	allocSvc AllocationService
	idem     IdempotencyStore
}

// New constructs a Handlers instance bound to the given service. The
// idempotency store may be nil, which turns replay support off.
func New(allocSvc AllocationService, idem IdempotencyStore) *Handlers {
	return &Handlers{allocSvc: allocSvc, idem: idem}
}

//
// DTOs
//

// AllocationRequest is the JSON payload for creating or updating an
// allocation. The date is a plain calendar date; any time component is
// discarded server-side.
type AllocationRequest struct {
	// EmployeeID references the employee receiving the vehicle.
	EmployeeID int `json:"employee_id" binding:"required,gt=0" example:"123"`
	// VehicleID references the vehicle being allocated.
	VehicleID int `json:"vehicle_id" binding:"required,gt=0" example:"456"`
	// AllocationDate is the calendar date in YYYY-MM-DD form.
	AllocationDate string `json:"allocation_date" binding:"required" example:"2024-10-23"`
}

// CreateAllocationResponse is returned on a successful create (and on an
// idempotent replay of one).
type CreateAllocationResponse struct {
	// ID is the store-generated allocation identifier (ObjectID hex).
	ID string `json:"id" example:"671a0f7c9b1e8b6d1c2f3a4b"`
	// Message is a human-readable confirmation.
	Message string `json:"message" example:"Allocation created successfully"`
}

// MessageResponse is a generic confirmation envelope.
type MessageResponse struct {
	Message string `json:"message" example:"Allocation updated successfully"`
}

// HistoryResponse wraps the allocations matching a history query.
type HistoryResponse struct {
	Allocations []domain.Allocation `json:"allocations"`
	Count       int                 `json:"count"`
}

//
// Helpers
//

// bindAllocationRequest decodes and validates the request body, returning the
// service-layer input. A false return means the response was already written.
func bindAllocationRequest(c *gin.Context) (domain.AllocationInput, bool) {
	var req AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body: employee_id and vehicle_id must be positive, allocation_date is required")
		return domain.AllocationInput{}, false
	}
	date, err := time.Parse(dateLayout, req.AllocationDate)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "allocation_date must be a YYYY-MM-DD date")
		return domain.AllocationInput{}, false
	}
	return domain.AllocationInput{
		EmployeeID:     req.EmployeeID,
		VehicleID:      req.VehicleID,
		AllocationDate: date,
	}, true
}

// allocationID parses the :id path parameter, failing the request with 400
// when it is not a valid ObjectID hex string.
func allocationID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "allocation id must be a 24-character hex ObjectID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// failService translates service-layer sentinel errors into HTTP responses.
// fallbackCode is used for errors outside the sentinel taxonomy.
func failService(c *gin.Context, err error, fallbackCode string) {
	switch {
	case errors.Is(err, services.ErrVehicleConflict):
		fail(c, http.StatusConflict, ErrCodeConflict, "vehicle is already allocated for this date")
	case errors.Is(err, services.ErrPastDate):
		fail(c, http.StatusBadRequest, ErrCodePastDate, "allocation date is in the past")
	case errors.Is(err, services.ErrAllocationNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "allocation not found")
	case errors.Is(err, services.ErrStorageUnavailable):
		fail(c, http.StatusServiceUnavailable, ErrCodeUnavailable, "allocation store unavailable")
	default:
		fail(c, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

//
// Handlers
//

// CreateAllocation godoc
// @ID          createAllocation
// @Summary     Allocate a vehicle to an employee
// @Description Creates an allocation for a vehicle on a calendar date. Fails when the vehicle is already booked that day or the date is in the past. Safe to retry with an Idempotency-Key header.
// @Tags        Allocations
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false "Key for safe retries"  example(4f9d2a31-ccd8-4d1b-9c6e-0b6f2f1a7e55)
// @Param       body             body    handlers.AllocationRequest  true  "Allocation payload"
//
// @Success     201  {object}  handlers.CreateAllocationResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad payload or past date"
// @Failure     409  {object}  handlers.ErrorResponse  "Vehicle already allocated"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /allocations [post]
func (h *Handlers) CreateAllocation(c *gin.Context) {
	in, ok2 := bindAllocationRequest(c)
	if !ok2 {
		return
	}

	// Serve a stored result when the validator flagged this as a replay.
	if key, present := middleware.GetIdempotencyKey(c); present && h.idem != nil && middleware.IsReplay(c) {
		if rec, err := h.idem.Get(c.Request.Context(), key, time.Now().UTC()); err == nil {
			ok(c, rec.Status, CreateAllocationResponse{ID: rec.AllocationID, Message: "Allocation created successfully"})
			return
		}
		// Record vanished between lookup and fetch; run the create normally.
	}

	id, err := h.allocSvc.Create(c.Request.Context(), in)
	if err != nil {
		failService(c, err, ErrCodeCreateFailed)
		return
	}

	if key, present := middleware.GetIdempotencyKey(c); present && h.idem != nil {
		if err := h.idem.Record(c.Request.Context(), key, id, http.StatusCreated); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
		}
	}

	ok(c, http.StatusCreated, CreateAllocationResponse{ID: id, Message: "Allocation created successfully"})
}

// UpdateAllocation godoc
// @ID          updateAllocation
// @Summary     Replace an allocation
// @Description Overwrites all fields of an existing allocation. Rejected when the stored allocation date has already passed.
// @Tags        Allocations
// @Accept      json
// @Produce     json
//
// @Param       id    path  string  true  "Allocation ID (ObjectID hex)"  example(671a0f7c9b1e8b6d1c2f3a4b)
// @Param       body  body  handlers.AllocationRequest  true  "Replacement payload"
//
// @Success     200  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad payload, bad id, or frozen record"
// @Failure     404  {object}  handlers.ErrorResponse  "Allocation not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /allocations/{id} [put]
func (h *Handlers) UpdateAllocation(c *gin.Context) {
	id, ok2 := allocationID(c)
	if !ok2 {
		return
	}
	in, ok2 := bindAllocationRequest(c)
	if !ok2 {
		return
	}

	if err := h.allocSvc.Update(c.Request.Context(), id, in); err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "Allocation updated successfully"})
}

// DeleteAllocation godoc
// @ID          deleteAllocation
// @Summary     Delete an allocation
// @Description Permanently removes an allocation. Rejected when the stored allocation date has already passed.
// @Tags        Allocations
// @Produce     json
//
// @Param       id  path  string  true  "Allocation ID (ObjectID hex)"  example(671a0f7c9b1e8b6d1c2f3a4b)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id or frozen record"
// @Failure     404  {object}  handlers.ErrorResponse  "Allocation not found"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /allocations/{id} [delete]
func (h *Handlers) DeleteAllocation(c *gin.Context) {
	id, ok2 := allocationID(c)
	if !ok2 {
		return
	}

	if err := h.allocSvc.Delete(c.Request.Context(), id); err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	noContent(c)
}

// AllocationHistory godoc
// @ID          allocationHistory
// @Summary     Query allocation history
// @Description Returns allocations matching the optional filters, capped at 100 results. The date range applies only when both bounds are provided.
// @Tags        Allocations
// @Produce     json
//
// @Param       employee_id  query  int     false "Filter by employee ID"            example(7)
// @Param       vehicle_id   query  int     false "Filter by vehicle ID"             example(456)
// @Param       date_from    query  string  false "Range start (YYYY-MM-DD)"         example(2024-10-01)
// @Param       date_to      query  string  false "Range end (YYYY-MM-DD)"           example(2024-10-31)
//
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed filter"
// @Failure     503  {object}  handlers.ErrorResponse  "Store unavailable"
// @Router      /allocations/history [get]
func (h *Handlers) AllocationHistory(c *gin.Context) {
	f := domain.HistoryFilter{
		EmployeeID: utils.AtoiDefault(c.Query("employee_id"), 0),
		VehicleID:  utils.AtoiDefault(c.Query("vehicle_id"), 0),
	}

	for param, dst := range map[string]**time.Time{
		"date_from": &f.DateFrom,
		"date_to":   &f.DateTo,
	} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, param+" must be a YYYY-MM-DD date")
			return
		}
		*dst = &d
	}

	items, err := h.allocSvc.History(c.Request.Context(), f)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, HistoryResponse{Allocations: items, Count: len(items)})
}
