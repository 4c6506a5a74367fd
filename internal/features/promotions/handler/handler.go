package handler

import (
	"errors"
	"net/http"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/promotions/domain"
	"courier-dispatch/internal/features/promotions/ports"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PromotionHandler prices carts and records redemptions.
type PromotionHandler struct {
	service ports.PromotionService
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(service ports.PromotionService) *PromotionHandler {
	return &PromotionHandler{
		service: service,
	}
}

// Register mounts the promotion routes.
func (h *PromotionHandler) Register(r fiber.Router) {
	r.Post("/promotions/evaluate", h.Evaluate)
	r.Post("/promotions/redeem", h.Redeem)
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
}

// RedeemRequest lists the promotions applied to a placed order.
type RedeemRequest struct {
	PromotionIDs []string `json:"promotion_ids"`
	UserID       string   `json:"user_id"`
}

// Evaluate handles POST /promotions/evaluate.
// A degraded result is still a 200: the cart is priced without promotions.
// @Summary Price a cart with promotions
// @Description Applies at most one delivery and one product promotion to the cart.
// @Tags Promotions
// @Accept json
// @Produce json
// @Param cart body domain.Cart true "Cart"
// @Success 200 {object} domain.Result
// @Failure 400 {object} ErrorResponse
// @Router /promotions/evaluate [post]
func (h *PromotionHandler) Evaluate(c *fiber.Ctx) error {
	var cart domain.Cart
	if err := c.BodyParser(&cart); err != nil {
		return h.fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := cart.Validate(); err != nil {
		return h.fail(c, http.StatusBadRequest, err.Error())
	}

	return c.JSON(h.service.Evaluate(c.UserContext(), cart))
}

// Redeem handles POST /promotions/redeem.
// @Summary Record promotion redemptions
// @Description Counts the applied promotions against their usage limits.
// @Tags Promotions
// @Accept json
// @Produce json
// @Param redeem body RedeemRequest true "Redeemed promotions"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /promotions/redeem [post]
func (h *PromotionHandler) Redeem(c *fiber.Ctx) error {
	var req RedeemRequest
	if err := c.BodyParser(&req); err != nil {
		return h.fail(c, http.StatusBadRequest, "Invalid request body")
	}
	if len(req.PromotionIDs) == 0 {
		return h.fail(c, http.StatusBadRequest, "promotion_ids is required")
	}

	if err := h.service.Redeem(c.UserContext(), req.PromotionIDs, req.UserID); err != nil {
		status, msg := statusFor(err)
		if status == http.StatusInternalServerError {
			logger.Get().Error("Promotion redemption failed",
				zap.Strings("promotion_ids", req.PromotionIDs),
				zap.String("ray_id", rayID(c)),
				zap.Error(err),
			)
		}
		return h.fail(c, status, msg)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *PromotionHandler) fail(c *fiber.Ctx, status int, msg string) error {
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
	case errors.Is(err, domain.ErrPromotionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrInvalidPromotion):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrPromotionNotActive),
		errors.Is(err, domain.ErrUsageLimitReached),
		errors.Is(err, domain.ErrUserLimitReached):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
