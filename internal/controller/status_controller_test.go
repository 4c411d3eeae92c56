package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"deepseek-chat-be/internal/dto"
	"deepseek-chat-be/internal/repository/memory"
	"deepseek-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticStatus struct{ res *dto.StatusResponse }

func (s staticStatus) Status(context.Context) *dto.StatusResponse { return s.res }

func TestStatusRoutes(t *testing.T) {
	app := fiber.New()
	NewStatusController(staticStatus{res: &dto.StatusResponse{Success: true, Status: "connected", PrimaryAPI: "DeepSeek"}}).
		RegisterRoutes(app.Group("/api"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "DeepSeek", body.PrimaryAPI)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatusWithoutBackendsIsUnavailable(t *testing.T) {
	app := fiber.New()
	svc := service.NewStatusService(service.StatusTarget{}, memory.NewStatusRepository(time.Minute))
	NewStatusController(svc).RegisterRoutes(app.Group("/api"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var body dto.StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, "None", body.PrimaryAPI)
	assert.Equal(t, "No working API found", body.Message)
	assert.Equal(t, "not configured", body.Apis.DeepSeek.Status)
}
