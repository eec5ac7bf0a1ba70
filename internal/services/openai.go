package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jrj02/npc-dialogue/internal/logger"
	"github.com/jrj02/npc-dialogue/pkg/chat"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"

	DefaultOpenAITemperature = 0.7
)

// OpenAIService implements LLMService for OpenAI-compatible chat completion
// APIs. It requests per-token logprobs so the evaluation harness can compute
// real perplexity.
type OpenAIService struct {
	apiKey     string
	baseURL    string
	modelName  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIService creates a new OpenAI-compatible service instance.
// baseURL may be empty to target api.openai.com.
func NewOpenAIService(apiKey, baseURL, modelName string, logger *slog.Logger) *OpenAIService {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	return &OpenAIService{
		apiKey:    apiKey,
		baseURL:   baseURL,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

var _ LLMService = (*OpenAIService)(nil)

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	LogProbs    bool      `json:"logprobs,omitempty"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		LogProbs *struct {
			Content []struct {
				Token   string  `json:"token"`
				LogProb float64 `json:"logprob"`
			} `json:"content"`
		} `json:"logprobs"`
	} `json:"choices"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// InitModel is a no-op for hosted APIs.
func (s *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// Generate produces one completion with logprobs enabled.
func (s *OpenAIService) Generate(ctx context.Context, genReq *chat.GenerationRequest) (*GenerateOutput, error) {
	reqBody := openAIChatRequest{
		Model:       s.modelName,
		Messages:    buildMessages(genReq),
		MaxTokens:   genReq.MaxTokens,
		Temperature: DefaultOpenAITemperature,
		LogProbs:    true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := s.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.WithConversationID(s.logger, genReq.ConversationID.String()).Error(
			"OpenAI API returned error",
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return nil, fmt.Errorf("openai API error: %s", resp.Status)
	}

	var chatResp openAIChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if chatResp.Error != nil {
		return nil, fmt.Errorf("openai API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("openai API returned no choices")
	}

	choice := chatResp.Choices[0]
	out := &GenerateOutput{Text: choice.Message.Content}
	if choice.LogProbs != nil {
		out.LogProbs = make([]float64, 0, len(choice.LogProbs.Content))
		for _, tok := range choice.LogProbs.Content {
			out.LogProbs = append(out.LogProbs, tok.LogProb)
		}
	}
	return out, nil
}

// IsModelReady assumes hosted models are always ready.
func (s *OpenAIService) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	return true, nil
}
