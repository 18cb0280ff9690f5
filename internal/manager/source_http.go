package manager

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"servecore/pkg/types"
)

// HTTPSource downloads dense artifacts over HTTP(S). 404 and connection
// failures are reported as ErrSourceUnavailable.
type HTTPSource struct {
	client *http.Client
}

// NewHTTPSource returns a source using client, or a pooled client with dial
// and TLS timeouts when client is nil. Request deadlines come from the
// caller's context.
func NewHTTPSource(client *http.Client) *HTTPSource {
	if client == nil {
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          16,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
		client = &http.Client{Transport: tr}
	}
	return &HTTPSource{client: client}
}

func (s *HTTPSource) Fetch(ctx context.Context, spec types.ModelSpec) (Model, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.Path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/octet-stream")
	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("model %s: %w: %v", spec.Name, ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("model %s: %w: %s", spec.Name, ErrSourceUnavailable, resp.Status)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("model %s: fetch %s: %s", spec.Name, spec.Path, resp.Status)
	}
	return decodeDense(ctx, spec, bufio.NewReader(resp.Body))
}
