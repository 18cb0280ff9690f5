package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"servecore/pkg/types"
)

func TestSetBaseContext_NilResetsToBackground(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	SetBaseContext(ctx)
	// nolint:staticcheck // SA1012: this test intentionally passes nil to verify fallback behavior
	SetBaseContext(nil)
	cancel()
	if serverBaseCtx.Err() != nil {
		t.Fatal("base context should be Background after nil reset")
	}
}

func TestJoinContexts_CancelsWhenEitherDone(t *testing.T) {
	for _, first := range []string{"a", "b"} {
		a, ac := context.WithCancel(context.Background())
		b, bc := context.WithCancel(context.Background())
		j, cancelJ := joinContexts(a, b)
		if first == "a" {
			ac()
		} else {
			bc()
		}
		select {
		case <-j.Done():
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("joined context did not cancel when %s canceled", first)
		}
		cancelJ()
		ac()
		bc()
	}
}

func TestShutdownCancelsInflightTask(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	SetBaseContext(base)
	defer SetBaseContext(nil)

	svc := &blockingService{started: make(chan struct{})}
	done := make(chan int, 1)
	go func() {
		w := do(t, NewMux(svc), http.MethodPost, "/tasks/c", `{}`)
		done <- w.Code
	}()
	<-svc.started
	cancel()
	select {
	case code := <-done:
		if code != http.StatusServiceUnavailable {
			t.Fatalf("status=%d", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after base context cancel")
	}
}

// blockingService blocks RunTask until ctx is done.
type blockingService struct {
	mockService
	started chan struct{}
}

func (b *blockingService) RunTask(ctx context.Context, _ string, _ json.RawMessage) (types.TaskResponse, error) {
	close(b.started)
	<-ctx.Done()
	return types.TaskResponse{}, ctx.Err()
}
