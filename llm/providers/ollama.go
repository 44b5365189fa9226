package providers

import (
	"net/http"
	"strings"

	"github.com/c360studio/lrrit/llm"
)

func init() {
	llm.RegisterProvider(&OllamaProvider{})
}

// OllamaProvider implements Ollama's OpenAI-compatible chat API.
type OllamaProvider struct{}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

func (p *OllamaProvider) BuildURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/v1/chat/completions"
}

func (p *OllamaProvider) BuildRequestBody(model string, messages []llm.Message, temperature *float64, maxTokens int) ([]byte, error) {
	return buildChatCompletionsBody(model, messages, temperature, maxTokens)
}

func (p *OllamaProvider) SetHeaders(req *http.Request) {
	// Ollama runs locally and requires no authentication.
}

func (p *OllamaProvider) ParseResponse(body []byte, model string) (*llm.Response, error) {
	return parseChatCompletionsResponse(body, model, "ollama")
}
