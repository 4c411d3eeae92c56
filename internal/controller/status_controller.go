package controller

import (
	"deepseek-chat-be/internal/pkg/serverutils"
	"deepseek-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IStatusController interface {
	RegisterRoutes(r fiber.Router)
	Status(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type statusController struct {
	statusService service.IStatusService
}

func NewStatusController(statusService service.IStatusService) IStatusController {
	return &statusController{statusService: statusService}
}

func (c *statusController) RegisterRoutes(r fiber.Router) {
	r.Get("/status", c.Status)
	r.Get("/health", c.Health)
}

// Status answers 503 with the same body when no backend works.
func (c *statusController) Status(ctx *fiber.Ctx) error {
	res := c.statusService.Status(ctx.UserContext())
	if !res.Success {
		ctx.Status(fiber.StatusServiceUnavailable)
	}
	return ctx.JSON(res)
}

func (c *statusController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"status": "alive"}))
}
