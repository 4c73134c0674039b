package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptly/internal/config"
	"receiptly/internal/llm"
	"receiptly/internal/port"
	"receiptly/internal/scanner"
)

func TestOpenAIChat_Complete_ToolCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		assert.Equal(t, "gpt-4o-mini", reqBody["model"])
		assert.Equal(t, float64(1000), reqBody["max_completion_tokens"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]interface{})["role"])

		tools := reqBody["tools"].([]interface{})
		require.Len(t, tools, 1)
		fn := tools[0].(map[string]interface{})["function"].(map[string]interface{})
		assert.Equal(t, "save-to-database", fn["name"])

		choice := reqBody["tool_choice"].(map[string]interface{})
		assert.Equal(t, "save-to-database", choice["function"].(map[string]interface{})["name"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "gpt-4o-mini-2024-07-18",
			"choices": []map[string]interface{}{{
				"message": map[string]interface{}{
					"role": "assistant",
					"tool_calls": []map[string]interface{}{{
						"id":   "call_1",
						"type": "function",
						"function": map[string]interface{}{
							"name":      "save-to-database",
							"arguments": `{"receiptId":"abc"}`,
						},
					}},
				},
				"finish_reason": "tool_calls",
			}},
		})
	}))
	defer server.Close()

	chat := llm.NewOpenAIChat(&config.AgentConfig{APIKey: "k", Endpoint: server.URL})

	resp, err := chat.Complete(context.Background(), port.ChatRequest{
		System:   "You save receipts.",
		Messages: []port.ChatMessage{{Role: "user", Content: "save it"}},
		Tools: []port.ToolSpec{{
			Name:       "save-to-database",
			Parameters: json.RawMessage(`{"type":"object"}`),
		}},
		ToolChoice: "save-to-database",
	})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", resp.Model)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.ToolCalls[0].ID)
	assert.JSONEq(t, `{"receiptId":"abc"}`, string(resp.ToolCalls[0].Arguments))
}

func TestOpenAIChat_Complete_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	chat := llm.NewOpenAIChat(&config.AgentConfig{APIKey: "k", Endpoint: server.URL})

	_, err := chat.Complete(context.Background(), port.ChatRequest{Messages: []port.ChatMessage{{Role: "user", Content: "hi"}}})

	var rlErr *scanner.RateLimitError
	assert.True(t, errors.As(err, &rlErr))
}
