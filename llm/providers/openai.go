package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/c360studio/lrrit/llm"
)

func init() {
	llm.RegisterProvider(&OpenAIProvider{})
}

// OpenAIProvider implements the OpenAI chat completions API.
type OpenAIProvider struct{}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) BuildURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/v1/chat/completions"
}

func (p *OpenAIProvider) BuildRequestBody(model string, messages []llm.Message, temperature *float64, maxTokens int) ([]byte, error) {
	return buildChatCompletionsBody(model, messages, temperature, maxTokens)
}

func (p *OpenAIProvider) SetHeaders(req *http.Request) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
}

func (p *OpenAIProvider) ParseResponse(body []byte, model string) (*llm.Response, error) {
	return parseChatCompletionsResponse(body, model, "openai")
}

// buildChatCompletionsBody builds an OpenAI-compatible request body, shared
// by every provider that speaks the chat/completions dialect.
func buildChatCompletionsBody(model string, messages []llm.Message, temperature *float64, maxTokens int) ([]byte, error) {
	chatMessages := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, map[string]string{
			"role":    m.Role,
			"content": m.Content,
		})
	}

	body := map[string]any{
		"model":    model,
		"messages": chatMessages,
	}
	if temperature != nil {
		body["temperature"] = *temperature
	}
	if maxTokens > 0 {
		body["max_tokens"] = maxTokens
	}

	return json.Marshal(body)
}

// parseChatCompletionsResponse parses an OpenAI-compatible response.
func parseChatCompletionsResponse(body []byte, model, provider string) (*llm.Response, error) {
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Model string `json:"model"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse %s response: %w", provider, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s response contained no choices", provider)
	}

	respModel := resp.Model
	if respModel == "" {
		respModel = model
	}

	return &llm.Response{
		Content: resp.Choices[0].Message.Content,
		Model:   respModel,
		Usage: llm.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		FinishReason: resp.Choices[0].FinishReason,
	}, nil
}
