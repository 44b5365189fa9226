package llm

import (
	"net/http"
	"sync"
)

// Provider abstracts the API format differences between collaborator backends.
type Provider interface {
	// Name returns the provider identifier (e.g. "anthropic", "openai").
	Name() string

	// BuildURL constructs the full API URL from the base endpoint URL.
	BuildURL(baseURL string) string

	// BuildRequestBody constructs the provider-specific JSON request body.
	BuildRequestBody(model string, messages []Message, temperature *float64, maxTokens int) ([]byte, error)

	// SetHeaders sets provider-specific HTTP headers (auth, version).
	SetHeaders(req *http.Request)

	// ParseResponse parses the provider-specific response into a Response.
	ParseResponse(body []byte, model string) (*Response, error)
}

var (
	providersMu sync.RWMutex
	providers   = make(map[string]Provider)
)

// RegisterProvider registers a provider implementation by name.
// Providers typically register themselves in init().
func RegisterProvider(p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[p.Name()] = p
}

// GetProvider returns the registered provider with the given name, or nil.
func GetProvider(name string) Provider {
	providersMu.RLock()
	defer providersMu.RUnlock()
	return providers[name]
}
