package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	dto "classku_backend/internals/features/chat/dto"
)

const (
	// hard ceiling on upstream latency; the handler answers the fallback
	// message instead of hanging the client
	upstreamTimeout = 15 * time.Second
	maxTokens       = 1000

	// answer body limit, upstream responses are small but never trusted
	maxResponseBytes = 1 << 20
)

// FallbackMessage is what every upstream failure degrades to. The endpoint
// still answers 200.
const FallbackMessage = "Sorry, the assistant is unavailable right now. Please try again in a moment."

var ErrUpstream = errors.New("chat upstream failed")

type ChatService struct {
	Endpoint string
	APIKey   string
	Client   *http.Client
}

func NewChatService(endpoint, apiKey string) *ChatService {
	return &ChatService{
		Endpoint: endpoint,
		APIKey:   apiKey,
		Client:   &http.Client{Timeout: upstreamTimeout},
	}
}

type upstreamRequest struct {
	Messages  []dto.ChatMessage `json:"messages"`
	MaxTokens int               `json:"max_tokens"`
}

type upstreamResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete forwards the conversation upstream and returns the assistant's
// reply. Every failure mode wraps ErrUpstream so the controller can degrade
// uniformly.
func (s *ChatService) Complete(ctx context.Context, messages []dto.ChatMessage) (string, error) {
	if s.Endpoint == "" {
		return "", fmt.Errorf("%w: no endpoint configured", ErrUpstream)
	}

	payload, err := sonic.Marshal(upstreamRequest{
		Messages:  messages,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	ctx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: upstream status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	var parsed upstreamResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUpstream)
	}
	return parsed.Choices[0].Message.Content, nil
}
