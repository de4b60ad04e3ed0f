package notification

import (
	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	NotificationService NotificationService
}

func NewNotificationController(notificationService NotificationService) *NotificationController {
	return &NotificationController{
		NotificationService: notificationService,
	}
}

// ListChannels godoc
// @Summary List notification channels
// @Description List notification channels with optional title and type filters
// @Tags notification
// @Produce json
// @Param title query string false "Title substring"
// @Param type query string false "Channel type (webhook or email)"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param sort query string false "Sort field, prefix with - for descending"
// @Success 200 {object} query.NotificationChannelsResult
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/notification/channels [get]
func (ctrl *NotificationController) ListChannels(ctx *fiber.Ctx) error {
	opts := ListOptions{
		Title: ctx.Query("title"),
		Type:  ctx.Query("type"),
		Page:  ctx.QueryInt("page", 0),
		Size:  ctx.QueryInt("size", 0),
		Sort:  ctx.Query("sort"),
	}

	result, err := ctrl.NotificationService.ListChannels(ctx.UserContext(), opts)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(result)
}

// GetChannel godoc
// @Summary Get a notification channel
// @Tags notification
// @Produce json
// @Param id path string true "Channel ID"
// @Success 200 {object} Channel
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/notification/channels/{id} [get]
func (ctrl *NotificationController) GetChannel(ctx *fiber.Ctx) error {
	channel, err := ctrl.NotificationService.GetChannel(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if channel == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
	}
	return ctx.JSON(channel)
}

// CreateChannel godoc
// @Summary Create a notification channel
// @Tags notification
// @Accept json
// @Produce json
// @Param channel body Channel true "Channel definition"
// @Success 201 {object} Channel
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/notification/channels [post]
func (ctrl *NotificationController) CreateChannel(ctx *fiber.Ctx) error {
	var channel Channel
	if err := ctx.BodyParser(&channel); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ctrl.NotificationService.CreateChannel(ctx.UserContext(), &channel); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(channel)
}

// UpdateChannel godoc
// @Summary Update a notification channel
// @Tags notification
// @Accept json
// @Produce json
// @Param id path string true "Channel ID"
// @Param channel body Channel true "Channel definition"
// @Success 200 {object} Channel
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/notification/channels/{id} [put]
func (ctrl *NotificationController) UpdateChannel(ctx *fiber.Ctx) error {
	var channel Channel
	if err := ctx.BodyParser(&channel); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	channel.ID = ctx.Params("id")

	if err := ctrl.NotificationService.UpdateChannel(ctx.UserContext(), &channel); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(channel)
}

// DeleteChannel godoc
// @Summary Delete a notification channel
// @Tags notification
// @Param id path string true "Channel ID"
// @Success 204 {object} nil
// @Router /api/v1/notification/channels/{id} [delete]
func (ctrl *NotificationController) DeleteChannel(ctx *fiber.Ctx) error {
	if err := ctrl.NotificationService.DeleteChannel(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
