package fiber

import (
	"errors"
	"net/http"

	"site-analytics-service/internal/alerts/core/domain"
	"site-analytics-service/internal/alerts/core/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AlertUseCase interface {
	ListAlerts() []usecase.Alert
	RegisterDefinition(def domain.Definition) (uuid.UUID, error)
	UnregisterAlert(id uuid.UUID) error
}

type AlertHandler struct {
	uc AlertUseCase
}

func NewAlertHandler(uc AlertUseCase) *AlertHandler {
	return &AlertHandler{uc: uc}
}

// ListAlerts godoc
// @Summary List alert registrations
// @Description Returns every scheduled alert with its evaluation state
// @Tags Alerts
// @Produce json
// @Success 200 {array} AlertResponse
// @Router /alerts [get]
func (h *AlertHandler) ListAlerts(c *fiber.Ctx) error {
	alerts := h.uc.ListAlerts()
	resp := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		resp = append(resp, toAlertResponse(a))
	}
	return c.Status(http.StatusOK).JSON(resp)
}

// CreateAlert godoc
// @Summary Register an alert definition
// @Description Validates the definition and schedules its periodic evaluation
// @Tags Alerts
// @Accept json
// @Produce json
// @Param request body DefinitionRequest true "Alert definition"
// @Success 201 {object} CreateAlertResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /alerts [post]
func (h *AlertHandler) CreateAlert(c *fiber.Ctx) error {
	var req DefinitionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_json",
			Message: err.Error(),
		})
	}

	id, err := h.uc.RegisterDefinition(req.toDomain())
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidDefinition),
			errors.Is(err, usecase.ErrInvalidInterval),
			errors.Is(err, usecase.ErrInvalidDomain):
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error:   "invalid_definition",
				Message: err.Error(),
			})
		default:
			return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
				Error: "internal_server_error",
			})
		}
	}

	return c.Status(http.StatusCreated).JSON(CreateAlertResponse{ID: id.String()})
}

// DeleteAlert godoc
// @Summary Unregister an alert
// @Description Stops the alert timer and cancels a running evaluation
// @Tags Alerts
// @Param id path string true "Registration id"
// @Success 204
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /alerts/{id} [delete]
func (h *AlertHandler) DeleteAlert(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error:   "invalid_id",
			Message: err.Error(),
		})
	}

	if err := h.uc.UnregisterAlert(id); err != nil {
		if errors.Is(err, usecase.ErrRegistrationNotFound) {
			return c.Status(http.StatusNotFound).JSON(ErrorResponse{
				Error:   "not_found",
				Message: err.Error(),
			})
		}
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "internal_server_error",
		})
	}

	return c.SendStatus(http.StatusNoContent)
}
