package controller

import (
	"net/http"

	"deepseek-chat-be/internal/pkg/serverutils"
	"deepseek-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	Identity(ctx *fiber.Ctx) error
}

type webhookController struct {
	webhookService service.IWebhookService
}

func NewWebhookController(webhookService service.IWebhookService) IWebhookController {
	return &webhookController{webhookService: webhookService}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhooks")
	h.Post("identity", c.Identity)
}

// Identity must see the raw body: the signature covers the exact bytes sent.
func (c *webhookController) Identity(ctx *fiber.Ctx) error {
	headers := http.Header{}
	for key, values := range ctx.GetReqHeaders() {
		for _, v := range values {
			headers.Add(key, v)
		}
	}

	payload := append([]byte(nil), ctx.Body()...)
	res, err := c.webhookService.HandleIdentityEvent(ctx.UserContext(), payload, headers)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Event received", res))
}
