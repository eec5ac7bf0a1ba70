package services

import (
	"context"
	"sync"

	"github.com/jrj02/npc-dialogue/pkg/chat"
)

// MockLLMService is a mock implementation of LLMService for testing.
type MockLLMService struct {
	InitModelFunc    func(ctx context.Context, modelName string) error
	GenerateFunc     func(ctx context.Context, req *chat.GenerationRequest) (*GenerateOutput, error)
	IsModelReadyFunc func(ctx context.Context, modelName string) (bool, error)

	// Track calls for testing
	InitModelCalls []string
	GenerateCalls  []*chat.GenerationRequest

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLMService)(nil)

// NewMockLLMService creates a new mock LLM service.
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{
		InitModelCalls: make([]string, 0),
		GenerateCalls:  make([]*chat.GenerationRequest, 0),
	}
}

// InitModel mocks model initialization.
func (m *MockLLMService) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Generate mocks response generation. The default reply carries well-formed
// Mood:/Reply: labels.
func (m *MockLLMService) Generate(ctx context.Context, req *chat.GenerationRequest) (*GenerateOutput, error) {
	m.mu.Lock()
	generateFunc := m.GenerateFunc
	m.GenerateCalls = append(m.GenerateCalls, req)
	m.mu.Unlock()

	if generateFunc != nil {
		return generateFunc(ctx, req)
	}
	return &GenerateOutput{Text: "Mood: neutral\nReply: Mock response."}, nil
}

// IsModelReady mocks model readiness.
func (m *MockLLMService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}
	return true, nil
}

// SetResponse sets a fixed raw output for all Generate calls.
func (m *MockLLMService) SetResponse(text string, logProbs []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, req *chat.GenerationRequest) (*GenerateOutput, error) {
		return &GenerateOutput{Text: text, LogProbs: logProbs}, nil
	}
}

// SetGenerateError sets up the mock to fail all Generate calls.
func (m *MockLLMService) SetGenerateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateFunc = func(ctx context.Context, req *chat.GenerationRequest) (*GenerateOutput, error) {
		return nil, err
	}
}

// CallCount returns the number of Generate calls observed.
func (m *MockLLMService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls)
}

// LastRequest returns the most recent Generate request, or nil.
func (m *MockLLMService) LastRequest() *chat.GenerationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.GenerateCalls) == 0 {
		return nil
	}
	return m.GenerateCalls[len(m.GenerateCalls)-1]
}

// Reset clears all call tracking.
func (m *MockLLMService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GenerateCalls = make([]*chat.GenerationRequest, 0)
	m.GenerateFunc = nil
}
