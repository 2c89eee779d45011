package qa

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

const systemPrompt = "You are a helpful assistant for a museum ticket booking service. Answer visitor questions about museums, exhibitions, opening hours, and ticketing briefly and factually. If a question is unrelated to museums or visits, politely steer the visitor back."

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service answers free-form visitor questions through an OpenAI-compatible
// chat completion API.
type Service struct {
	client chatClient
	model  string
	logger *logging.Logger
}

// NewService creates a Q&A service.
func NewService(client chatClient, model string, logger *logging.Logger) *Service {
	if client == nil {
		panic("qa: chat client cannot be nil")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, model: model, logger: logger}
}

// NewServiceFromAPIKey builds a Service on the hosted OpenAI API.
func NewServiceFromAPIKey(apiKey, model string, logger *logging.Logger) *Service {
	return NewService(openai.NewClient(apiKey), model, logger)
}

// Ask forwards the visitor's question and returns the model's answer.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("qa: empty question")
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
		MaxTokens: 300,
	})
	if err != nil {
		s.logger.Error("qa completion failed", "error", err)
		return "", fmt.Errorf("qa: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("qa: completion returned no choices")
	}

	answer := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Debug("qa answered", "question_length", len(question), "answer_length", len(answer))
	return answer, nil
}
