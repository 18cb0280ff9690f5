package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"servecore/internal/manager"
	"servecore/internal/scheduler"
	"servecore/pkg/types"
)

func TestRunTask_ErrorMapping(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		want  int
		retry bool
	}{
		{"unknown category", scheduler.UnknownCategoryError{Category: "x"}, http.StatusNotFound, false},
		{"unknown model in body", scheduler.ExecutionError{TaskID: "t", Category: "model-inference", Err: manager.UnknownModelError{Name: "m"}}, http.StatusNotFound, false},
		{"timeout", scheduler.TaskTimeoutError{TaskID: "t", Category: "data-analysis", Timeout: time.Second}, http.StatusServiceUnavailable, true},
		{"load failure", scheduler.ExecutionError{TaskID: "t", Err: manager.ModelLoadError{Name: "m", Err: errors.New("boom")}}, http.StatusServiceUnavailable, true},
		{"scheduler closed", scheduler.ErrClosed, http.StatusServiceUnavailable, false},
		{"http error in body", scheduler.ExecutionError{TaskID: "t", Err: mockHTTPError{msg: "bad input", code: http.StatusBadRequest}}, http.StatusBadRequest, false},
		{"plain failure", scheduler.ExecutionError{TaskID: "t", Err: errors.New("boom")}, http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, NewMux(&mockService{taskErr: tc.err}), http.MethodPost, "/tasks/c", `{}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d", w.Code, tc.want)
			}
			if got := w.Header().Get("Retry-After") != ""; got != tc.retry {
				t.Fatalf("Retry-After present=%v want %v", got, tc.retry)
			}
			var body types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("json: %v", err)
			}
			if body.Code != tc.want || body.Error == "" {
				t.Fatalf("unexpected error body: %+v", body)
			}
		})
	}
}

func TestLoadModel_ErrorMapping(t *testing.T) {
	w := do(t, NewMux(&mockService{loadErr: manager.UnknownModelError{Name: "nope"}}), http.MethodPost, "/models/nope/load", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	w = do(t, NewMux(&mockService{loadErr: manager.ErrClosed}), http.MethodPost, "/models/m/load", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestSetRetryAfter(t *testing.T) {
	SetRetryAfter(30 * time.Second)
	defer SetRetryAfter(5 * time.Second)
	w := do(t, NewMux(&mockService{taskErr: scheduler.TaskTimeoutError{TaskID: "t"}}), http.MethodPost, "/tasks/c", `{}`)
	if got := w.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("Retry-After=%q", got)
	}
}
