package service

import (
	"context"
	"fmt"
	"time"

	"deepseek-chat-be/internal/dto"
	"deepseek-chat-be/internal/repository/memory"
	"deepseek-chat-be/pkg/llm"
	"deepseek-chat-be/pkg/llm/gateway"

	"golang.org/x/sync/singleflight"
)

const (
	probeTimeout  = 5 * time.Second
	noneAvailable = "None"
)

// StatusTarget describes the configured backends. Nil providers are "not configured".
type StatusTarget struct {
	Primary      llm.LLMProvider
	PrimaryModel string
	Secondary    llm.LLMProvider
	SecondaryURL string
}

type IStatusService interface {
	Status(ctx context.Context) *dto.StatusResponse
}

type statusService struct {
	target StatusTarget
	cache  *memory.StatusRepository
	group  singleflight.Group
}

func NewStatusService(target StatusTarget, cache *memory.StatusRepository) IStatusService {
	return &statusService{target: target, cache: cache}
}

// Status returns the cached probe if fresh; concurrent misses share one probe.
func (s *statusService) Status(ctx context.Context) *dto.StatusResponse {
	if cached, ok := s.cache.Get(); ok {
		return cached
	}

	v, _, _ := s.group.Do("probe", func() (interface{}, error) {
		if cached, ok := s.cache.Get(); ok {
			return cached, nil
		}
		// Detached so one caller hanging up doesn't fail the others.
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), probeTimeout)
		defer cancel()

		res := s.probe(probeCtx)
		s.cache.Save(res)
		return res, nil
	})
	return v.(*dto.StatusResponse)
}

func (s *statusService) probe(ctx context.Context) *dto.StatusResponse {
	apis := dto.BackendStatuses{
		DeepSeek:  dto.BackendStatus{Status: "not configured"},
		PythonApi: dto.BackendStatus{Status: "not configured"},
	}

	if s.target.Primary != nil {
		if err := s.target.Primary.Ping(ctx); err != nil {
			code := llm.StatusCode(err)
			if code == 0 {
				code = 500
			}
			apis.DeepSeek = dto.BackendStatus{Status: "error", Error: gateway.ProbeError(err), ErrorCode: code}
		} else {
			apis.DeepSeek = dto.BackendStatus{Available: true, Status: "connected", Model: s.target.PrimaryModel}
		}
	}

	if s.target.Secondary != nil {
		if err := s.target.Secondary.Ping(ctx); err != nil {
			apis.PythonApi = dto.BackendStatus{Status: "error", Error: secondaryProbeError(err)}
		} else {
			apis.PythonApi = dto.BackendStatus{Available: true, Status: "connected", URL: s.target.SecondaryURL}
		}
	}

	res := &dto.StatusResponse{
		Apis:        apis,
		PrimaryAPI:  noneAvailable,
		FallbackAPI: noneAvailable,
	}
	switch {
	case apis.DeepSeek.Available:
		res.PrimaryAPI = gateway.BackendPrimary
	case apis.PythonApi.Available:
		res.PrimaryAPI = gateway.BackendSecondary
	}
	if apis.DeepSeek.Available && apis.PythonApi.Available {
		res.FallbackAPI = gateway.BackendSecondary
	}

	res.Success = res.PrimaryAPI != noneAvailable
	if res.Success {
		res.Status = "connected"
		res.Message = res.PrimaryAPI + " API is working correctly"
	} else {
		res.Status = "error"
		res.Message = "No working API found"
	}
	return res
}

func secondaryProbeError(err error) string {
	if code := llm.StatusCode(err); code != 0 {
		return fmt.Sprintf("HTTP %d", code)
	}
	if err.Error() == "" {
		return "Connection failed"
	}
	return err.Error()
}
