package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "classku_backend/internals/features/chat/dto"
)

func conversation() []dto.ChatMessage {
	return []dto.ChatMessage{
		{Role: "system", Content: "You help students with coursework."},
		{Role: "user", Content: "Explain rubric-based grading."},
	}
}

func TestComplete_ReturnsUpstreamReply(t *testing.T) {
	var got upstreamRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"A rubric splits the grade into criteria."}}]}`))
	}))
	defer srv.Close()

	svc := NewChatService(srv.URL, "test-key")
	reply, err := svc.Complete(context.Background(), conversation())
	require.NoError(t, err)
	assert.Equal(t, "A rubric splits the grade into criteria.", reply)
	assert.Equal(t, 1000, got.MaxTokens)
	assert.Len(t, got.Messages, 2)
}

func TestComplete_UpstreamErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewChatService(srv.URL, "")
	_, err := svc.Complete(context.Background(), conversation())
	require.ErrorIs(t, err, ErrUpstream)
}

func TestComplete_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	svc := NewChatService(srv.URL, "")
	_, err := svc.Complete(context.Background(), conversation())
	require.ErrorIs(t, err, ErrUpstream)
}

func TestComplete_GarbledBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	svc := NewChatService(srv.URL, "")
	_, err := svc.Complete(context.Background(), conversation())
	require.ErrorIs(t, err, ErrUpstream)
}

func TestComplete_NoEndpointConfigured(t *testing.T) {
	svc := NewChatService("", "")
	_, err := svc.Complete(context.Background(), conversation())
	require.ErrorIs(t, err, ErrUpstream)
}

func TestComplete_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"late"}}]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewChatService(srv.URL, "")
	_, err := svc.Complete(ctx, conversation())
	require.ErrorIs(t, err, ErrUpstream)
}
