package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiring(t *testing.T) {
	cmd := rootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"evaluate", "rubric", "serve", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestEvaluateFlags(t *testing.T) {
	cmd := evaluateCmd(&globalFlags{})

	for _, name := range []string{"dimensions", "format", "out", "partial"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "missing flag --%s", name)
	}

	assert.Equal(t, "markdown", cmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "true", cmd.Flags().Lookup("partial").DefValue)
	assert.Equal(t, "o", cmd.Flags().Lookup("out").Shorthand)
}
