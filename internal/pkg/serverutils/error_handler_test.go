package serverutils

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"deepseek-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	ChatId string `json:"chatId" validate:"required"`
	Name   string `json:"name" validate:"notblank"`
}

func TestErrorHandler_StatusMapping(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(logger.NewNopLogger())})
	app.Get("/not-found", func(*fiber.Ctx) error { return NotFound("Chat not found") })
	app.Get("/upstream", func(*fiber.Ctx) error { return Upstream("Both APIs failed", errors.New("boom")) })
	app.Get("/validation", func(*fiber.Ctx) error { return ValidateRequest(sampleRequest{Name: "  "}) })
	app.Get("/fiber", func(*fiber.Ctx) error { return fiber.ErrUpgradeRequired })
	app.Get("/plain", func(*fiber.Ctx) error { return errors.New("kaput") })

	tests := []struct {
		path        string
		wantCode    int
		wantMessage string
	}{
		{path: "/not-found", wantCode: 404, wantMessage: "Chat not found"},
		{path: "/upstream", wantCode: 502, wantMessage: "Both APIs failed"},
		{path: "/validation", wantCode: 400, wantMessage: "Missing or invalid fields: chatId (required), name (notblank)"},
		{path: "/fiber", wantCode: 426},
		{path: "/plain", wantCode: 500, wantMessage: "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var body BaseResponse[any]
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body.Message)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	wrapped := errors.Join(errors.New("ctx"), NotFound("x"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}
