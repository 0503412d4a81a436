// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness and build version
//	POST /v1/layout     config document in, units and points out
//	POST /v1/units      config document in, units dictionary out
//	POST /v1/preview    config document in, SVG or DOT preview out
//
// The request body is the raw config document. Its Content-Type selects the
// decoder (application/json, application/toml, application/yaml); a
// ?format= query parameter overrides it and YAML is the fallback.
//
// Failures are reported as
//
//	{"run_id": "...", "error": {"code": "UNKNOWN_REFERENCE", "path": "...", "message": "..."}}
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/fcoury/ergogen-rs-sub000/pkg/buildinfo"
	"github.com/fcoury/ergogen-rs-sub000/pkg/config"
	"github.com/fcoury/ergogen-rs-sub000/pkg/errors"
	"github.com/fcoury/ergogen-rs-sub000/pkg/observability"
	"github.com/fcoury/ergogen-rs-sub000/pkg/pipeline"
	"github.com/fcoury/ergogen-rs-sub000/pkg/render/preview"
)

// Default timeouts.
const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
	router chi.Router
}

// New builds a server around runner. A nil logger discards output.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{runner: runner, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(middleware.Timeout(DefaultRequestTimeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Post("/units", s.handleUnits)
		r.Post("/preview", s.handlePreview)
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

type layoutResponse struct {
	*pipeline.Result
	Cached bool `json:"cached"`
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := readOptions(r)
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	writeJSON(w, http.StatusOK, layoutResponse{Result: res, Cached: res.CacheInfo.LayoutHit})
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	opts, err := readOptions(r)
	if err != nil {
		s.writeError(w, r, runID, err)
		return
	}
	u, err := s.runner.Units(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, runID, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"run_id": runID, "units": u})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	opts, err := readOptions(r)
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	popts, err := previewOptions(r)
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, "", err)
		return
	}
	data, err := s.runner.Preview(r.Context(), res, popts)
	if err != nil {
		s.writeError(w, r, res.RunID, err)
		return
	}

	ctype := "image/svg+xml"
	if popts.Format == preview.FormatDOT {
		ctype = "text/vnd.graphviz; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("X-Run-ID", res.RunID)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// readOptions reads the body and picks its format.
func readOptions(r *http.Request) (pipeline.Options, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, pipeline.MaxInputSize+1))
	if err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	format, err := requestFormat(r)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Input:   body,
		Format:  format,
		Source:  r.URL.Path,
		Refresh: r.URL.Query().Get("refresh") == "true",
	}, nil
}

func requestFormat(r *http.Request) (config.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return config.ParseFormat(f)
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/json":
		return config.FormatJSON, nil
	case "application/toml":
		return config.FormatTOML, nil
	}
	return config.FormatYAML, nil
}

func previewOptions(r *http.Request) (preview.Options, error) {
	q := r.URL.Query()
	opts := preview.Options{
		Format: q.Get("output"),
		Binds:  q.Get("binds") == "true",
	}
	if s := q.Get("scale"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidValue, "scale %q is not a number", s)
		}
		opts.Scale = v
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidValue, err, "preview options")
	}
	return opts, nil
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Path    string      `json:"path,omitempty"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, runID string, err error) {
	if runID == "" {
		runID = uuid.NewString()
	}
	status := statusFor(err)
	body := errorBody{Code: errors.GetCode(err), Path: errors.GetPath(err), Message: errors.UserMessage(err)}
	if body.Code == "" {
		body.Code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "run", runID, "err", err)
		observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
		body.Message = "internal error"
	}
	writeJSON(w, status, map[string]any{"run_id": runID, "error": body})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case "", errors.ErrCodeInternal:
		if stderrors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
