package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/c360studio/lrrit/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapability(t *testing.T) {
	assert.Equal(t, model.CapabilityJudging, model.ParseCapability("judging"))
	assert.Equal(t, model.CapabilityScreening, model.ParseCapability("screening"))
	assert.Equal(t, model.CapabilityFast, model.ParseCapability("fast"))
	assert.Equal(t, model.Capability(""), model.ParseCapability("planning"))
}

func TestDefaultRegistryResolve(t *testing.T) {
	reg := model.NewDefaultRegistry()

	assert.Equal(t, "claude-sonnet", reg.Resolve(model.CapabilityJudging))
	assert.Equal(t, "claude-haiku", reg.Resolve(model.CapabilityFast))

	// Unknown capability falls back to the default model.
	assert.Equal(t, "qwen", reg.Resolve(model.Capability("unknown")))
}

func TestGetFallbackChain(t *testing.T) {
	reg := model.NewDefaultRegistry()

	chain := reg.GetFallbackChain(model.CapabilityJudging)
	assert.Equal(t, []string{"claude-sonnet", "claude-haiku", "qwen"}, chain)

	chain = reg.GetFallbackChain(model.Capability("unknown"))
	assert.Equal(t, []string{"qwen"}, chain)
}

func TestGetEndpoint(t *testing.T) {
	reg := model.NewDefaultRegistry()

	ep := reg.GetEndpoint("claude-sonnet")
	require.NotNil(t, ep)
	assert.Equal(t, "anthropic", ep.Provider)

	assert.Nil(t, reg.GetEndpoint("nope"))
}

func TestSetEndpointAndCapability(t *testing.T) {
	reg := model.NewRegistry(nil, nil)

	reg.SetEndpoint("local", &model.EndpointConfig{Provider: "ollama", Model: "m"})
	reg.SetCapability(model.CapabilityJudging, &model.CapabilityConfig{Preferred: []string{"local"}})
	reg.SetDefault("local")

	assert.Equal(t, "local", reg.Resolve(model.CapabilityJudging))
	require.NotNil(t, reg.GetEndpoint("local"))
	assert.Contains(t, reg.ListEndpoints(), "local")
	assert.Contains(t, reg.ListCapabilities(), model.CapabilityJudging)
}

func TestRegistryJSONRoundTrip(t *testing.T) {
	reg := model.NewDefaultRegistry()

	data, err := json.Marshal(reg)
	require.NoError(t, err)

	var decoded model.Registry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "claude-sonnet", decoded.Resolve(model.CapabilityJudging))
}

func TestLoadFromJSON(t *testing.T) {
	raw := `{
		"model_registry": {
			"capabilities": {
				"judging": {"preferred": ["fixture"], "fallback": []}
			},
			"endpoints": {
				"fixture": {"provider": "openai", "url": "https://example.org/v1", "model": "fixture-model"}
			},
			"defaults": {"model": "fixture"}
		}
	}`

	reg, err := model.LoadFromJSON([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "fixture", reg.Resolve(model.CapabilityJudging))

	ep := reg.GetEndpoint("fixture")
	require.NotNil(t, ep)
	assert.Equal(t, "fixture-model", ep.Model)
}

func TestCircuitBreaker(t *testing.T) {
	reg := model.NewDefaultRegistry()
	reg.SetHealthConfig(model.HealthConfig{
		FailureThreshold: 2,
		RecoveryTimeout:  50 * time.Millisecond,
		HalfOpenRequests: 1,
	})

	assert.True(t, reg.IsEndpointAvailable("claude-sonnet"))

	reg.MarkEndpointFailure("claude-sonnet")
	assert.True(t, reg.IsEndpointAvailable("claude-sonnet"))

	reg.MarkEndpointFailure("claude-sonnet")
	assert.False(t, reg.IsEndpointAvailable("claude-sonnet"))

	// Half-open after the recovery timeout.
	time.Sleep(60 * time.Millisecond)
	assert.True(t, reg.IsEndpointAvailable("claude-sonnet"))

	// Success closes the circuit.
	reg.MarkEndpointSuccess("claude-sonnet")
	health := reg.GetEndpointHealth("claude-sonnet")
	require.NotNil(t, health)
	assert.True(t, health.Available)
	assert.False(t, health.CircuitOpen)
	assert.Equal(t, 0, health.FailureCount)
}

func TestGetAvailableFallbackChain(t *testing.T) {
	reg := model.NewDefaultRegistry()
	reg.SetHealthConfig(model.HealthConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  time.Minute,
	})

	reg.MarkEndpointFailure("claude-sonnet")
	chain := reg.GetAvailableFallbackChain(model.CapabilityJudging)
	assert.Equal(t, []string{"claude-haiku", "qwen"}, chain)

	// All endpoints down: return the full chain anyway.
	reg.MarkEndpointFailure("claude-haiku")
	reg.MarkEndpointFailure("qwen")
	chain = reg.GetAvailableFallbackChain(model.CapabilityJudging)
	assert.Equal(t, []string{"claude-sonnet", "claude-haiku", "qwen"}, chain)
}
