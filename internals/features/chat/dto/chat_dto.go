package dto

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant system"`
	Content string `json:"content" validate:"required,max=8000"`
}

type ChatRequest struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,max=50,dive"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
	// true when the upstream call failed and Reply is the canned answer
	Degraded bool `json:"degraded"`
}
