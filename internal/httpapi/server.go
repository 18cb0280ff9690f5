package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"servecore/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.ModelSpec
	Status() types.StatusResponse
	Ready() bool
	LoadModel(ctx context.Context, name string, force bool) (types.LoadResponse, error)
	UnloadModel(name string) bool
	WarmUp(ctx context.Context, names []string) int
	RunTask(ctx context.Context, category string, payload json.RawMessage) (types.TaskResponse, error)
	ClearCache(ctx context.Context, namespace string) bool
}

type api struct {
	svc Service
}

// NewMux builds the HTTP router around svc.
func NewMux(svc Service) http.Handler {
	a := &api{svc: svc}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(RequestLogger)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}

	r.Get("/healthz", a.healthz)
	r.Get("/readyz", a.readyz)
	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(inflight)
		r.Get("/status", a.status)
		r.Get("/models", a.listModels)
		r.Post("/models/warmup", a.warmUp)
		r.Post("/models/{name}/load", a.loadModel)
		r.Delete("/models/{name}", a.unloadModel)
		r.Post("/tasks/{category}", a.runTask)
		r.Delete("/cache/{namespace}", a.clearCache)
	})

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	opts := cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: corsAllowedMethods,
		AllowedHeaders: corsAllowedHeaders,
		MaxAge:         300,
	}
	if len(opts.AllowedMethods) == 0 {
		opts.AllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	}
	if len(opts.AllowedHeaders) == 0 {
		opts.AllowedHeaders = []string{"Content-Type", "X-Log-Level", "X-Request-Id"}
	}
	return opts
}

// healthz godoc
// @Summary      Liveness probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "ok"
// @Router       /healthz [get]
func (a *api) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz godoc
// @Summary      Readiness probe
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "ready"
// @Failure      503  {string}  string  "closed"
// @Router       /readyz [get]
func (a *api) readyz(w http.ResponseWriter, _ *http.Request) {
	if a.svc.Ready() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("closed"))
}

// status godoc
// @Summary      Scheduler, model and cache statistics
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (a *api) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.svc.Status())
}

// listModels godoc
// @Summary      List the model catalog
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Router       /models [get]
func (a *api) listModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: a.svc.ListModels()})
}

// warmUp godoc
// @Summary      Load several models in parallel
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        body  body      types.WarmupRequest  true  "Models to load"
// @Success      200   {object}  types.WarmupResponse
// @Failure      400   {object}  types.ErrorResponse
// @Failure      415   {object}  types.ErrorResponse
// @Router       /models/warmup [post]
func (a *api) warmUp(w http.ResponseWriter, r *http.Request) {
	var req types.WarmupRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	n := a.svc.WarmUp(ctx, req.Models)
	writeJSON(w, http.StatusOK, types.WarmupResponse{Requested: len(req.Models), Loaded: n})
}

// loadModel godoc
// @Summary      Load a model, optionally forcing a reload
// @Tags         models
// @Produce      json
// @Param        name   path      string  true   "Model name"
// @Param        force  query     bool    false  "Reload even if resident"
// @Success      200    {object}  types.LoadResponse
// @Failure      404    {object}  types.ErrorResponse
// @Failure      503    {object}  types.ErrorResponse
// @Router       /models/{name}/load [post]
func (a *api) loadModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := a.svc.LoadModel(ctx, name, force)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// unloadModel godoc
// @Summary      Unload a resident model
// @Tags         models
// @Produce      json
// @Param        name  path      string  true  "Model name"
// @Success      200   {object}  types.LoadResponse
// @Failure      404   {object}  types.ErrorResponse
// @Router       /models/{name} [delete]
func (a *api) unloadModel(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !a.svc.UnloadModel(name) {
		writeJSONError(w, http.StatusNotFound, "model not resident: "+name)
		return
	}
	writeJSON(w, http.StatusOK, types.LoadResponse{Model: name, Loaded: false})
}

// runTask godoc
// @Summary      Run a task and wait for its result
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        category  path      string  true  "Task category"
// @Param        body      body      object  true  "Category-specific payload"
// @Success      200       {object}  types.TaskResponse
// @Failure      400       {object}  types.ErrorResponse
// @Failure      404       {object}  types.ErrorResponse
// @Failure      415       {object}  types.ErrorResponse
// @Failure      500       {object}  types.ErrorResponse
// @Failure      503       {object}  types.ErrorResponse
// @Router       /tasks/{category} [post]
func (a *api) runTask(w http.ResponseWriter, r *http.Request) {
	var payload json.RawMessage
	if !decodeJSONBody(w, r, &payload) {
		return
	}
	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := a.svc.RunTask(ctx, chi.URLParam(r, "category"), payload)
	if err != nil {
		// client went away; nobody to answer
		if r.Context().Err() != nil {
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// clearCache godoc
// @Summary      Clear one cache namespace
// @Tags         cache
// @Param        namespace  path  string  true  "Namespace (predictions, features, analysis)"
// @Success      204
// @Failure      404  {object}  types.ErrorResponse
// @Router       /cache/{namespace} [delete]
func (a *api) clearCache(w http.ResponseWriter, r *http.Request) {
	ns := chi.URLParam(r, "namespace")
	if !a.svc.ClearCache(r.Context(), ns) {
		writeJSONError(w, http.StatusNotFound, "unknown cache namespace: "+ns)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeJSONBody enforces the JSON content type and body limit, writing the
// error response itself when it returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		// MaxBytesReader errors land here too; report 400 without size details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
