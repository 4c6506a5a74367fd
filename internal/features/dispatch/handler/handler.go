package handler

import (
	"errors"
	"net/http"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RoleHeader carries the caller's role for privileged order operations.
const RoleHeader = "X-Dispatch-Role"

// DispatchHandler exposes couriers, order assignment and manual review over HTTP.
type DispatchHandler struct {
	assignments ports.AssignmentService
	scheduler   ports.SchedulingService
	couriers    ports.CourierService
	review      ports.ManualReview
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(assignments ports.AssignmentService, scheduler ports.SchedulingService, couriers ports.CourierService, review ports.ManualReview) *DispatchHandler {
	return &DispatchHandler{
		assignments: assignments,
		scheduler:   scheduler,
		couriers:    couriers,
		review:      review,
	}
}

// Register mounts the dispatch routes.
func (h *DispatchHandler) Register(r fiber.Router) {
	r.Get("/couriers/nearby", h.Nearby)
	r.Get("/couriers/:id", h.GetCourier)
	r.Put("/couriers/:id/location", h.UpdateLocation)
	r.Post("/couriers/:id/shift", h.SetShift)

	r.Post("/orders/:id/preparing", h.Preparing)
	r.Post("/orders/:id/dispatch", h.DispatchNow)
	r.Post("/orders/:id/accept", h.Accept)
	r.Post("/orders/:id/reject", h.Reject)
	r.Post("/orders/:id/pickup", h.PickUp)
	r.Post("/orders/:id/complete", h.Complete)
	r.Post("/orders/:id/cancel", h.Cancel)
	r.Post("/orders/:id/reassign", h.Reassign)
	r.Get("/orders/:id/assignments", h.History)

	r.Get("/dispatch/manual", h.ManualQueue)
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// LocationRequest is a courier position ping.
type LocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ShiftRequest opens or closes a courier shift.
type ShiftRequest struct {
	Open     bool `json:"open"`
	Capacity int  `json:"capacity"`
}

// CourierActionRequest identifies the courier acting on an order.
type CourierActionRequest struct {
	CourierID string `json:"courier_id"`
	Reason    string `json:"reason,omitempty"`
}

// CancelRequest carries the cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ReassignRequest names the courier that should take over the order.
type ReassignRequest struct {
	CourierID string `json:"courier_id"`
	Note      string `json:"note"`
}

// UpdateLocation handles PUT /couriers/:id/location.
// @Summary Update courier location
// @Description Records a courier position ping used by nearest-courier search.
// @Tags Couriers
// @Accept json
// @Produce json
// @Param id path string true "Courier ID"
// @Param location body LocationRequest true "Position"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /couriers/{id}/location [put]
func (h *DispatchHandler) UpdateLocation(c *fiber.Ctx) error {
	var req LocationRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "Invalid request body")
	}

	p := domain.Point{Lat: req.Lat, Lng: req.Lng}
	if err := h.couriers.UpdateLocation(c.UserContext(), c.Params("id"), p); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetShift handles POST /couriers/:id/shift.
// @Summary Open or close a courier shift
// @Tags Couriers
// @Accept json
// @Produce json
// @Param id path string true "Courier ID"
// @Param shift body ShiftRequest true "Shift state"
// @Success 200 {object} domain.Courier
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /couriers/{id}/shift [post]
func (h *DispatchHandler) SetShift(c *fiber.Ctx) error {
	var req ShiftRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "Invalid request body")
	}

	id := c.Params("id")
	var err error
	if req.Open {
		err = h.couriers.OpenShift(c.UserContext(), id, req.Capacity)
	} else {
		err = h.couriers.CloseShift(c.UserContext(), id)
	}
	if err != nil {
		return h.respondError(c, err)
	}

	courier, err := h.couriers.Get(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(courier)
}

// GetCourier handles GET /couriers/:id.
// @Summary Get courier availability
// @Tags Couriers
// @Produce json
// @Param id path string true "Courier ID"
// @Success 200 {object} domain.Courier
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /couriers/{id} [get]
func (h *DispatchHandler) GetCourier(c *fiber.Ctx) error {
	courier, err := h.couriers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(courier)
}

// Nearby handles GET /couriers/nearby?lat=&lng=&radius_km=&limit=.
// @Summary Find nearby couriers
// @Description Lists fresh, eligible couriers within the radius, nearest first.
// @Tags Couriers
// @Produce json
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Param radius_km query number false "Search radius in km" default(3)
// @Param limit query int false "Maximum results" default(10)
// @Success 200 {object} map[string][]domain.Candidate
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /couriers/nearby [get]
func (h *DispatchHandler) Nearby(c *fiber.Ctx) error {
	var q struct {
		Lat      float64 `query:"lat"`
		Lng      float64 `query:"lng"`
		RadiusKm float64 `query:"radius_km"`
		Limit    int     `query:"limit"`
	}
	if err := c.QueryParser(&q); err != nil {
		return h.fail(c, http.StatusBadRequest, "Invalid query parameters")
	}
	if q.RadiusKm <= 0 {
		q.RadiusKm = 3
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	found, err := h.couriers.Nearby(c.UserContext(), domain.Point{Lat: q.Lat, Lng: q.Lng}, q.RadiusKm, q.Limit)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"couriers": found})
}

// Preparing handles POST /orders/:id/preparing.
// @Summary Schedule dispatch for a preparing order
// @Description Schedules the assignment flow so a courier arrives as the order is ready.
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 202 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /orders/{id}/preparing [post]
func (h *DispatchHandler) Preparing(c *fiber.Ctx) error {
	lead, err := h.scheduler.OnPreparing(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusAccepted).JSON(fiber.Map{
		"order_id":     c.Params("id"),
		"lead_minutes": int(lead.Minutes()),
	})
}

// DispatchNow handles POST /orders/:id/dispatch.
// @Summary Dispatch an order now
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 202 {object} map[string]string
// @Router /orders/{id}/dispatch [post]
func (h *DispatchHandler) DispatchNow(c *fiber.Ctx) error {
	h.scheduler.DispatchNow(c.Params("id"))
	return c.Status(http.StatusAccepted).JSON(fiber.Map{"order_id": c.Params("id")})
}

// Accept handles POST /orders/:id/accept.
// @Summary Accept an offer
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param action body CourierActionRequest true "Accepting courier"
// @Success 200 {object} domain.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /orders/{id}/accept [post]
func (h *DispatchHandler) Accept(c *fiber.Ctx) error {
	req, ok := h.courierAction(c)
	if !ok {
		return nil
	}
	asg, err := h.assignments.Accept(c.UserContext(), c.Params("id"), req.CourierID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(asg)
}

// Reject handles POST /orders/:id/reject.
// @Summary Reject an offer
// @Description The order is offered to the next nearest courier.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param action body CourierActionRequest true "Rejecting courier and reason"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/reject [post]
func (h *DispatchHandler) Reject(c *fiber.Ctx) error {
	req, ok := h.courierAction(c)
	if !ok {
		return nil
	}
	if err := h.assignments.Reject(c.UserContext(), c.Params("id"), req.CourierID, req.Reason); err != nil {
		return h.respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// PickUp handles POST /orders/:id/pickup.
// @Summary Mark an order picked up
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param action body CourierActionRequest true "Courier"
// @Success 200 {object} domain.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/pickup [post]
func (h *DispatchHandler) PickUp(c *fiber.Ctx) error {
	req, ok := h.courierAction(c)
	if !ok {
		return nil
	}
	asg, err := h.assignments.MarkPickedUp(c.UserContext(), c.Params("id"), req.CourierID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(asg)
}

// Complete handles POST /orders/:id/complete.
// @Summary Mark an order delivered
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param action body CourierActionRequest true "Courier"
// @Success 200 {object} domain.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/complete [post]
func (h *DispatchHandler) Complete(c *fiber.Ctx) error {
	req, ok := h.courierAction(c)
	if !ok {
		return nil
	}
	asg, err := h.assignments.Complete(c.UserContext(), c.Params("id"), req.CourierID)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(asg)
}

// Cancel handles POST /orders/:id/cancel.
// @Summary Cancel an order's dispatch
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Dispatch-Role header string true "Caller role (support, dispatcher, admin)"
// @Param cancel body CancelRequest false "Reason"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /orders/{id}/cancel [post]
func (h *DispatchHandler) Cancel(c *fiber.Ctx) error {
	var req CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return h.fail(c, http.StatusBadRequest, "Invalid request body")
		}
	}

	caps := capabilities(c)
	if !caps.Has(domain.CapCancelOrders) {
		return h.respondError(c, domain.ErrForbidden)
	}

	orderID := c.Params("id")
	unscheduled := h.scheduler.Cancel(orderID)
	err := h.assignments.Cancel(c.UserContext(), caps, orderID, req.Reason)
	if err != nil && !(unscheduled && errors.Is(err, domain.ErrNoActiveAssignment)) {
		return h.respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Reassign handles POST /orders/:id/reassign.
// @Summary Reassign an order to a courier
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param X-Dispatch-Role header string true "Caller role (dispatcher, admin)"
// @Param reassign body ReassignRequest true "Target courier"
// @Success 200 {object} domain.Assignment
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /orders/{id}/reassign [post]
func (h *DispatchHandler) Reassign(c *fiber.Ctx) error {
	var req ReassignRequest
	if err := c.BodyParser(&req); err != nil || req.CourierID == "" {
		return h.fail(c, http.StatusBadRequest, "courier_id is required")
	}

	asg, err := h.assignments.Reassign(c.UserContext(), capabilities(c), c.Params("id"), req.CourierID, req.Note)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(asg)
}

// History handles GET /orders/:id/assignments.
// @Summary List an order's assignments
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} map[string][]domain.Assignment
// @Failure 500 {object} ErrorResponse
// @Router /orders/{id}/assignments [get]
func (h *DispatchHandler) History(c *fiber.Ctx) error {
	hist, err := h.assignments.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"assignments": hist})
}

// ManualQueue handles GET /dispatch/manual.
// @Summary List orders awaiting manual dispatch
// @Tags Dispatch
// @Produce json
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} map[string][]domain.ManualEntry
// @Failure 500 {object} ErrorResponse
// @Router /dispatch/manual [get]
func (h *DispatchHandler) ManualQueue(c *fiber.Ctx) error {
	entries, err := h.review.Pending(c.UserContext(), c.QueryInt("limit", 50))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"orders": entries})
}

func (h *DispatchHandler) courierAction(c *fiber.Ctx) (CourierActionRequest, bool) {
	var req CourierActionRequest
	if err := c.BodyParser(&req); err != nil || req.CourierID == "" {
		_ = h.fail(c, http.StatusBadRequest, "courier_id is required")
		return req, false
	}
	return req, true
}

func capabilities(c *fiber.Ctx) domain.Capabilities {
	return domain.CapabilitiesForRole(c.Get(RoleHeader))
}

func (h *DispatchHandler) respondError(c *fiber.Ctx, err error) error {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Get().Error("Dispatch request failed",
			zap.String("path", c.Path()),
			zap.String("ray_id", rayID(c)),
			zap.Error(err),
		)
	}
	return h.fail(c, status, msg)
}

func (h *DispatchHandler) fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   rayID(c),
	})
}

func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrCourierNotFound),
		errors.Is(err, domain.ErrAssignmentNotFound),
		errors.Is(err, domain.ErrNoActiveAssignment):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrNotAssignedCourier):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrInvalidLocation),
		errors.Is(err, domain.ErrInvalidCapacity):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrMissingCoordinates):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, domain.ErrOfferExpired):
		return http.StatusGone, err.Error()
	case errors.Is(err, domain.ErrAssignmentActive),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrStaleTransition),
		errors.Is(err, domain.ErrCourierUnavailable),
		errors.Is(err, domain.ErrCourierIneligible):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
