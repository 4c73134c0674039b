package port

import (
	"context"
	"encoding/json"
)

// ChatMessage is a single turn in a tool-calling conversation.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolSpec describes a function the model may call.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall is a function call requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ChatRequest is a single completion request.
type ChatRequest struct {
	System   string
	Messages []ChatMessage
	Tools    []ToolSpec
	// ToolChoice forces a named tool when set.
	ToolChoice string
}

// ChatResponse is the model's reply.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
	Model     string
}

// ChatModel abstracts a tool-calling chat completion API.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
