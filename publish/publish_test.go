package publish_test

import (
	"context"
	"testing"

	"github.com/c360studio/lrrit/publish"
	"github.com/c360studio/lrrit/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilPublisherIsNoop(t *testing.T) {
	var p *publish.Publisher

	err := p.PublishReport(context.Background(), &review.Report{ID: "r-1"})
	assert.NoError(t, err)

	// Close on nil must not panic either.
	p.Close()
}

func TestConnectRejectsUnreachableServer(t *testing.T) {
	_, err := publish.Connect(context.Background(),
		"nats://127.0.0.1:1", "LRRIT", "lrrit")
	require.Error(t, err)
}
