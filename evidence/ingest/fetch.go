package ingest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/c360studio/lrrit/evidence"
	readability "github.com/go-shiori/go-readability"
)

// maxFetchSize limits fetched page bodies.
const maxFetchSize = 10 * 1024 * 1024 // 10MB

// Reserved ranges beyond what net.IP classifies on its own.
var (
	cgnat    *net.IPNet // 100.64.0.0/10 carrier-grade NAT
	v6unique *net.IPNet // fc00::/7 IPv6 unique local
	v6link   *net.IPNet // fe80::/10 IPv6 link-local
)

func init() {
	for _, cidr := range []struct {
		s   string
		dst **net.IPNet
	}{
		{"100.64.0.0/10", &cgnat},
		{"fc00::/7", &v6unique},
		{"fe80::/10", &v6link},
	} {
		_, network, err := net.ParseCIDR(cidr.s)
		if err != nil {
			panic("invalid reserved CIDR: " + err.Error())
		}
		*cidr.dst = network
	}
}

// ValidateURL validates a report URL for SSRF safety.
// HTTPS is required; localhost, private IPs, and local domains are blocked.
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "https" {
		return fmt.Errorf("only HTTPS URLs are allowed")
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		return fmt.Errorf("localhost URLs are not allowed")
	}
	if strings.HasSuffix(host, ".local") || strings.HasSuffix(host, ".internal") {
		return fmt.Errorf("local domain URLs are not allowed")
	}

	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return fmt.Errorf("private IP addresses are not allowed")
	}
	return nil
}

// IsPrivateIP checks if an IP is in private or reserved ranges, handling
// IPv4, IPv6, and IPv4-mapped IPv6 addresses.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if v4 := ip.To4(); v4 != nil {
		ip = v4
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return true
		}
	}

	return cgnat.Contains(ip) || v6unique.Contains(ip) || v6link.Contains(ip)
}

// Fetcher retrieves report pages over HTTPS and builds evidence packs from
// the readable article content.
type Fetcher struct {
	httpClient *http.Client
	converter  *Converter
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchClient sets a custom HTTP client.
func WithFetchClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// NewFetcher creates a Fetcher with a 30s default timeout.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		converter:  NewConverter(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads a report page, extracts the readable article, converts it
// to markdown, and returns the fragmented pack.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*evidence.Pack, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch report: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("read report body: %w", err)
	}

	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extract readable article: %w", err)
	}

	result, err := f.converter.Convert([]byte(article.Content))
	if err != nil {
		return nil, fmt.Errorf("convert article: %w", err)
	}

	title := article.Title
	if title == "" {
		title = result.Title
	}

	return Build(urlReportID(rawURL), title, rawURL, result.Markdown)
}

// urlReportID derives a readable report id from a URL.
func urlReportID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Slug(rawURL)
	}

	slug := Slug(parsed.Hostname() + "-" + strings.Trim(parsed.Path, "/"))
	if len(slug) > 80 {
		slug = strings.TrimRight(slug[:80], "-")
	}
	return "web-" + slug
}
