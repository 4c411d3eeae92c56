package controller

import (
	"deepseek-chat-be/internal/dto"
	"deepseek-chat-be/internal/pkg/serverutils"
	"deepseek-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Rename(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Completion(ctx *fiber.Ctx) error
	EditMessage(ctx *fiber.Ctx) error
	DeleteMessage(ctx *fiber.Ctx) error
}

// Data is redeclared so an empty page still serialises as [].
type listResponse struct {
	serverutils.BaseResponse[any]
	Data       []*dto.ConversationResponse `json:"data"`
	Pagination dto.Pagination              `json:"pagination"`
}

type completionResponse struct {
	serverutils.BaseResponse[dto.MessageResponse]
	ApiUsed      string `json:"apiUsed"`
	MessageCount int    `json:"messageCount"`
}

type conversationController struct {
	conversationService service.IConversationService
	verifier            *serverutils.TokenVerifier
	limiter             *serverutils.RateLimiter
	completionReady     bool
}

func NewConversationController(
	conversationService service.IConversationService,
	verifier *serverutils.TokenVerifier,
	limiter *serverutils.RateLimiter,
	completionReady bool,
) IConversationController {
	return &conversationController{
		conversationService: conversationService,
		verifier:            verifier,
		limiter:             limiter,
		completionReady:     completionReady,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversations")
	h.Use(c.verifier.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.List)
	h.Post("rename", c.Rename)
	h.Post("delete", c.Delete)
	h.Post("completion", c.requireBackend, c.limiter.Middleware, c.Completion)
	h.Post("edit-message", c.EditMessage)
	h.Post("delete-message", c.DeleteMessage)
	h.Get(":id", c.Show)
}

// requireBackend rejects completions before the body is read when no model is configured.
func (c *conversationController) requireBackend(ctx *fiber.Ctx) error {
	if !c.completionReady {
		return serverutils.Unavailable("No API configured", nil)
	}
	return ctx.Next()
}

func parseBody(ctx *fiber.Ctx, req interface{}) error {
	if err := ctx.BodyParser(req); err != nil {
		return serverutils.Validation("Invalid request body")
	}
	return serverutils.ValidateRequest(req)
}

func (c *conversationController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	res, err := c.conversationService.Create(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Chat created", res))
}

func (c *conversationController) List(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.ListConversationsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return serverutils.Validation("Invalid query parameters")
	}

	res, err := c.conversationService.List(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(listResponse{
		BaseResponse: *serverutils.SuccessResponse[any]("", nil),
		Data:         res.Conversations,
		Pagination:   res.Pagination,
	})
}

func (c *conversationController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		// Not a valid id, so it cannot belong to the caller.
		return serverutils.NotFound("Chat not found")
	}

	res, err := c.conversationService.GetById(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("", res))
}

func (c *conversationController) Rename(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.RenameConversationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := c.conversationService.Rename(ctx.UserContext(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Chat Renamed", nil))
}

func (c *conversationController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.DeleteConversationRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	if err := c.conversationService.Delete(ctx.UserContext(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Chat Deleted", nil))
}

func (c *conversationController) Completion(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.CompletionRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.conversationService.AppendAndGenerate(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(completionResponse{
		BaseResponse: *serverutils.SuccessResponse("", res.Message),
		ApiUsed:      res.ApiUsed,
		MessageCount: res.MessageCount,
	})
}

func (c *conversationController) EditMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.EditMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.conversationService.EditMessage(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message edited successfully", res))
}

func (c *conversationController) DeleteMessage(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserID(ctx)
	if err != nil {
		return err
	}

	var req dto.DeleteMessageRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.conversationService.DeleteMessage(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message deleted successfully", res))
}
