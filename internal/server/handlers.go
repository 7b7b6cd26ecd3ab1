package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/pipeline"
	"github.com/matzehuels/imagepuzzler/pkg/preview"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
)

// defaultEditorWidth is the container width of the editor canvas when the
// request gives none.
const defaultEditorWidth = 1000

// itemView is the JSON form of an item, without the raster.
type itemView struct {
	Index     int            `json:"index"`
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	MIME      string         `json:"mime"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Complete  bool           `json:"complete"`
	Selection *geometry.Rect `json:"selection"`
	Label     puzzle.Label   `json:"label"`
}

func newItemView(i int, it puzzle.Item) itemView {
	return itemView{
		Index:     i,
		ID:        it.ID,
		Name:      it.Name,
		MIME:      it.MIME,
		Width:     it.Natural.W,
		Height:    it.Natural.H,
		Complete:  it.Complete(),
		Selection: it.Selection,
		Label:     it.Label.Normalize(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/quiz.html", http.StatusFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "images": s.project.Len()})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	items := make([]itemView, s.project.Len())
	for i, it := range s.project.Items {
		items[i] = newItemView(i, it)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":       s.project.DisplayName(),
		"settings":   s.project.Settings,
		"items":      items,
		"incomplete": len(s.project.Incomplete()),
	})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	i := indexFrom(r.Context())
	it, _ := s.project.Item(i)
	s.writeJSON(w, http.StatusOK, newItemView(i, it))
}

// handlePlan renders the reveal plan; ?format= selects json (default),
// dot or svg.
func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	format := queryDefault(r, "format", pipeline.FormatJSON)
	opts := pipeline.Options{Format: format, Index: indexFrom(r.Context())}
	data, hit, err := s.runner.TimelineWithCacheInfo(r.Context(), s.project, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeArtifact(w, format, data, hit)
}

// handleFrame renders one PNG frame. t is a duration after activation
// ("1.2s", or "end" for the final frame, the default); w and h set the
// viewport.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	opts, err := previewOptions(r, pipeline.FormatPNG)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if opts.At, err = parseAt(r.URL.Query().Get("t")); err != nil {
		s.writeError(w, err)
		return
	}
	s.renderPreview(w, r, opts)
}

// handleGIF renders the whole reveal as an animated GIF.
func (s *Server) handleGIF(w http.ResponseWriter, r *http.Request) {
	opts, err := previewOptions(r, pipeline.FormatGIF)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if v := r.URL.Query().Get("fps"); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps <= 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "fps must be a positive integer, got %q", v))
			return
		}
		opts.FPS = fps
	}
	s.renderPreview(w, r, opts)
}

func (s *Server) renderPreview(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	data, hit, err := s.runner.PreviewWithCacheInfo(r.Context(), s.project, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeArtifact(w, opts.Format, data, hit)
}

// handleEditor renders the editor canvas with the selection marked, as
// wide as ?width= allows.
func (s *Server) handleEditor(w http.ResponseWriter, r *http.Request) {
	width, err := queryFloat(r, "width", defaultEditorWidth)
	if err != nil {
		s.writeError(w, err)
		return
	}
	it, _ := s.project.Item(indexFrom(r.Context()))
	img, frame, err := preview.EditorCanvas(it, width)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(pipeline.FormatPNG))
	w.Header().Set("X-Display-Scale", strconv.FormatFloat(frame.Scale, 'f', -1, 64))
	if err := preview.EncodePNG(w, img); err != nil {
		s.logger.Warn("write editor canvas", "error", err)
	}
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	data, hit, err := s.runner.ExportWithCacheInfo(r.Context(), s.project, pipeline.Options{Format: pipeline.FormatHTML})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeArtifact(w, pipeline.FormatHTML, data, hit)
}

// =============================================================================
// Request Parsing
// =============================================================================

func previewOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := pipeline.Options{Format: format, Index: indexFrom(r.Context()), Refresh: r.URL.Query().Has("refresh")}
	var err error
	if opts.Width, err = queryFloat(r, "w", pipeline.DefaultWidth); err != nil {
		return opts, err
	}
	if opts.Height, err = queryFloat(r, "h", pipeline.DefaultHeight); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryDefault(r *http.Request, name, def string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return def
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive number, got %q", name, v)
	}
	return f, nil
}

func parseAt(v string) (time.Duration, error) {
	if v == "" || strings.EqualFold(v, "end") {
		return -1, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, `t must be a non-negative duration or "end", got %q`, v)
	}
	return d, nil
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) writeArtifact(w http.ResponseWriter, format string, data []byte, hit bool) {
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write response", "format", format, "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", pipeline.ContentType(pipeline.FormatJSON))
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Warn("encode response", "error", err)
	}
}

type errorBody struct {
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, errorBody{Code: errors.GetCode(err), Message: errors.UserMessage(err)})
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidSelection,
		errors.ErrCodeInvalidVariant, errors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case errors.ErrCodeIncompleteProject:
		return http.StatusConflict
	case errors.ErrCodeDegenerateSelection:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
