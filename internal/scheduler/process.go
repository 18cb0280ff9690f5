package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

const stderrTailBytes = 4096

// ProcessExecutor runs every task in a fresh OS process. The payload is
// written to the child's stdin as JSON and the child's stdout must hold a
// single JSON document, returned as json.RawMessage. On deadline the child
// receives SIGTERM and is killed after KillGrace.
type ProcessExecutor struct {
	Path string
	Args []string
	// Env is appended to the parent environment.
	Env       []string
	KillGrace time.Duration
	Logger    zerolog.Logger
}

func (p *ProcessExecutor) Execute(ctx context.Context, task TaskInfo, payload any) (any, error) {
	if strings.TrimSpace(p.Path) == "" {
		return nil, errors.New("process executor: path is empty")
	}
	in, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	grace := p.KillGrace
	if grace <= 0 {
		grace = defaultKillGrace
	}

	cmd := exec.CommandContext(ctx, p.Path, p.Args...)
	cmd.Env = append(os.Environ(), p.Env...)
	cmd.Env = append(cmd.Env, "SERVECORE_TASK_ID="+task.ID, "SERVECORE_TASK_CATEGORY="+task.Category)
	cmd.Stdin = bytes.NewReader(in)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
	cmd.WaitDelay = grace

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker process: %w", err)
	}
	pid := cmd.Process.Pid
	p.Logger.Debug().Str("component", "process_executor").Str("event", "spawn").
		Str("task", task.ID).Str("category", task.Category).Int("pid", pid).Msg("")

	werr := cmd.Wait()
	if ctx.Err() != nil {
		p.Logger.Warn().Str("component", "process_executor").Str("event", "terminated").
			Str("task", task.ID).Int("pid", pid).Msg("worker process terminated at deadline")
		return nil, ctx.Err()
	}
	if werr != nil {
		return nil, fmt.Errorf("worker process exited: %w; stderr tail: %s", werr, tail(stderr.String(), stderrTailBytes))
	}
	out := bytes.TrimSpace(stdout.Bytes())
	if len(out) == 0 {
		return nil, nil
	}
	if !json.Valid(out) {
		return nil, fmt.Errorf("worker process wrote invalid JSON (%d bytes)", len(out))
	}
	return json.RawMessage(out), nil
}

func tail(s string, n int) string {
	if len(s) > n {
		return s[len(s)-n:]
	}
	return s
}
