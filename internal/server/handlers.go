package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	apperr "github.com/matzehuels/avatarstack/pkg/errors"
	"github.com/matzehuels/avatarstack/pkg/observability"
	"github.com/matzehuels/avatarstack/pkg/pipeline"
	"github.com/matzehuels/avatarstack/pkg/ring"
	"github.com/matzehuels/avatarstack/pkg/scene"
)

// Response headers.
const (
	HeaderRenderID = "X-Render-ID"
	HeaderCache    = "X-Cache"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := pipeline.LayoutRequest{
		Size: scene.DefaultSize,
		Fit:  q.Get("fit"),
		Gap:  ring.DefaultGap,
	}

	var err error
	if req.Size, err = intParam(q.Get("size"), req.Size); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "size"))
		return
	}
	if req.Count, err = intParam(q.Get("count"), 1); err != nil {
		s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "count"))
		return
	}
	if v := q.Get("gap"); v != "" {
		if req.Gap, err = strconv.ParseFloat(v, 64); err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "gap"))
			return
		}
	}

	data, hit, err := s.runner.Layout(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderCache, cacheHeader(hit))
	w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatJSON])
	_, _ = w.Write(data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := pipeline.Options{
		Formats:    []string{format},
		SkipImages: true,
		Debug:      q.Get("debug") == "true" || q.Get("debug") == "1",
	}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "scale"))
			return
		}
		opts.Scale = scale
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	start := time.Now()
	scn, err := scene.Decode(body, scene.FormatJSON)
	observability.Pipeline().OnSceneLoad(r.Context(), "request", sceneElements(scn), time.Since(start), err)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Render(r.Context(), scn, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set(HeaderRenderID, res.ID)
	w.Header().Set(HeaderCache, cacheHeader(res.CacheInfo.RenderHit))
	_, _ = w.Write(res.Artifacts[format])
}

type errorResponse struct {
	Code      string `json:"code"`
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// StatusCode maps an error to an HTTP status.
func StatusCode(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case apperr.IsValidation(err):
		return http.StatusBadRequest
	case apperr.Is(err, apperr.ErrCodeUnsupported):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	code := apperr.GetCode(err)
	if code == "" {
		code = apperr.ErrCodeInternal
	}

	msg := apperr.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:      string(code),
		Error:     msg,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func sceneElements(s *scene.Scene) int {
	if s == nil {
		return 0
	}
	return len(s.Elements)
}

func intParam(v string, def int) (int, error) {
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
