package qa

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museobook/museum-ticketing-platform/pkg/logging"
)

type fakeChatClient struct {
	answer string
	err    error
	gotReq openai.ChatCompletionRequest
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.answer}},
		},
	}, nil
}

func TestAsk(t *testing.T) {
	client := &fakeChatClient{answer: "  The museum opens at 9am.  "}
	svc := NewService(client, "test-model", logging.New("error"))

	answer, err := svc.Ask(context.Background(), "When do you open?")

	require.NoError(t, err)
	assert.Equal(t, "The museum opens at 9am.", answer)
	assert.Equal(t, "test-model", client.gotReq.Model)
	require.Len(t, client.gotReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, client.gotReq.Messages[0].Role)
	assert.Equal(t, "When do you open?", client.gotReq.Messages[1].Content)
}

func TestAsk_EmptyQuestion(t *testing.T) {
	svc := NewService(&fakeChatClient{}, "", logging.New("error"))
	_, err := svc.Ask(context.Background(), "   ")
	assert.Error(t, err)
}

func TestAsk_ClientError(t *testing.T) {
	svc := NewService(&fakeChatClient{err: errors.New("rate limited")}, "", logging.New("error"))
	_, err := svc.Ask(context.Background(), "hello?")
	assert.Error(t, err)
}
