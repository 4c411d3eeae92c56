package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"deepseek-chat-be/internal/repository/memory"
	"deepseek-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
)

type pingProvider struct {
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (p *pingProvider) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "", nil
}

func (p *pingProvider) Generate(context.Context, string, ...llm.Option) (string, error) {
	return "", nil
}

func (p *pingProvider) Ping(context.Context) error {
	p.calls.Add(1)
	time.Sleep(p.delay)
	return p.err
}

func TestStatusBothConnected(t *testing.T) {
	primary, secondary := &pingProvider{}, &pingProvider{}
	svc := NewStatusService(StatusTarget{Primary: primary, PrimaryModel: "deepseek-chat", Secondary: secondary, SecondaryURL: "http://py"}, memory.NewStatusRepository(time.Minute))

	res := svc.Status(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, "connected", res.Status)
	assert.Equal(t, "DeepSeek", res.PrimaryAPI)
	assert.Equal(t, "Python API", res.FallbackAPI)
	assert.Equal(t, "DeepSeek API is working correctly", res.Message)
	assert.Equal(t, "deepseek-chat", res.Apis.DeepSeek.Model)
	assert.Equal(t, "http://py", res.Apis.PythonApi.URL)
}

func TestStatusPrimaryErrorFallsToSecondary(t *testing.T) {
	primary := &pingProvider{err: &llm.ProviderError{Provider: "DeepSeek", StatusCode: http.StatusPaymentRequired, Err: errors.New("x")}}
	svc := NewStatusService(StatusTarget{Primary: primary, Secondary: &pingProvider{}}, memory.NewStatusRepository(time.Minute))

	res := svc.Status(context.Background())

	assert.True(t, res.Success)
	assert.Equal(t, "Python API", res.PrimaryAPI)
	assert.Equal(t, "None", res.FallbackAPI)
	assert.Equal(t, "Insufficient credits", res.Apis.DeepSeek.Error)
	assert.Equal(t, http.StatusPaymentRequired, res.Apis.DeepSeek.ErrorCode)
}

func TestStatusNothingConfigured(t *testing.T) {
	res := NewStatusService(StatusTarget{}, memory.NewStatusRepository(time.Minute)).Status(context.Background())

	assert.False(t, res.Success)
	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "No working API found", res.Message)
	assert.Equal(t, "not configured", res.Apis.DeepSeek.Status)
	assert.Equal(t, "not configured", res.Apis.PythonApi.Status)
}

func TestStatusIsCachedAndShared(t *testing.T) {
	primary := &pingProvider{delay: 20 * time.Millisecond}
	svc := NewStatusService(StatusTarget{Primary: primary}, memory.NewStatusRepository(time.Minute))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Status(context.Background())
		}()
	}
	wg.Wait()
	svc.Status(context.Background())

	assert.Equal(t, int32(1), primary.calls.Load())
}
