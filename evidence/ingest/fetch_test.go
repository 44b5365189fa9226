package ingest_test

import (
	"net"
	"testing"

	"github.com/c360studio/lrrit/evidence/ingest"
	"github.com/stretchr/testify/assert"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid https", "https://example.org/report.html", false},
		{"http rejected", "http://example.org/report.html", true},
		{"localhost", "https://localhost/report", true},
		{"loopback ip", "https://127.0.0.1/report", true},
		{"private ip", "https://192.168.1.10/report", true},
		{"cgnat ip", "https://100.64.0.1/report", true},
		{"local domain", "https://intranet.local/report", true},
		{"internal domain", "https://docs.internal/report", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ingest.ValidateURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	private := []string{"10.0.0.1", "172.16.0.1", "192.168.0.1", "127.0.0.1", "169.254.1.1", "100.64.0.1", "fe80::1", "fc00::1", "::1", "::ffff:10.0.0.1"}
	for _, addr := range private {
		assert.True(t, ingest.IsPrivateIP(net.ParseIP(addr)), addr)
	}

	public := []string{"8.8.8.8", "151.101.1.6", "2606:4700::1111"}
	for _, addr := range public {
		assert.False(t, ingest.IsPrivateIP(net.ParseIP(addr)), addr)
	}
}
