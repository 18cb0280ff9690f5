package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"servecore/internal/config"
	"servecore/internal/httpapi"
	"servecore/internal/manager"
	"servecore/internal/service"
)

// writeDenseModel writes an in x out identity-like artifact plus its sidecar.
func writeDenseModel(t *testing.T, dir, name string, in, out, priority int) {
	t.Helper()
	weights := make([]float32, in*out)
	for o := 0; o < out && o < in; o++ {
		weights[o*in+o] = 1
	}
	var buf bytes.Buffer
	if err := manager.EncodeDense(&buf, weights, make([]float32, out)); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".bin"), buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write model %s: %v", name, err)
	}
	sidecar := []byte("input_shape: [" + itoa(in) + "]\noutput_size: " + itoa(out) + "\npriority: " + itoa(priority) + "\n")
	if err := os.WriteFile(filepath.Join(dir, name+".yaml"), sidecar, 0o644); err != nil {
		t.Fatalf("write sidecar %s: %v", name, err)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

// newServer wires a real Service behind the HTTP router.
func newServer(t *testing.T, cfg config.Config) (*httptest.Server, *service.Service) {
	t.Helper()
	if cfg.CacheSweepInterval == 0 {
		cfg.CacheSweepInterval = config.Duration(-1)
	}
	svc, err := service.New(cfg, zerolog.Nop(), service.Options{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(func() {
		srv.Close()
		svc.Close()
	})
	return srv, svc
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode
}
