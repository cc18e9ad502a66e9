package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/emtpl"
	"github.com/vango-dev/emtpl/internal/errors"
	"github.com/vango-dev/emtpl/pkg/render"
	"github.com/vango-dev/emtpl/pkg/source"
	"github.com/vango-dev/emtpl/pkg/vdom"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": emtpl.Version})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	body := http.MaxBytesReader(w, r.Body, s.config.MaxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.writeError(w, errors.New("X001").WithDetail("invalid request body").Wrap(err))
		return
	}

	ctx := r.Context()
	st := s.engine.Store()
	if req.Snapshot != "" && st == nil {
		s.writeError(w, errors.New("X001").
			WithDetail("snapshot "+req.Snapshot+" requested but no store is configured").
			WithSuggestion("Set store.path in emtpl.json"))
		return
	}

	var prev *vdom.Element
	if req.Snapshot != "" {
		var err error
		if prev, err = st.Get(req.Snapshot); err != nil {
			s.writeError(w, err)
			return
		}
	}

	root, err := s.render(ctx, &req, prev)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := response(root)
	if req.Snapshot != "" {
		if resp.Rev, err = st.Put(req.Snapshot, root); err != nil {
			s.writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	names, err := s.engine.Templates(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": names})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	tree, err := s.engine.Template(r.Context(), name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"name":   name,
		"markup": vdom.InnerMarkup(tree),
		"tree":   vdom.ToSnapshot(tree),
	})
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Store()
	if st == nil {
		writeJSON(w, http.StatusOK, map[string]any{"snapshots": []string{}})
		return
	}
	names, err := st.Names()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": names})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	st := s.engine.Store()
	if st == nil {
		http.NotFound(w, r)
		return
	}
	rec, err := st.Record(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if rec == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Store()
	if st == nil {
		http.NotFound(w, r)
		return
	}
	if err := st.Delete(chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// render renders req against prev.
func (s *Server) render(ctx context.Context, req *RenderRequest, prev *vdom.Element) (*vdom.Element, error) {
	var (
		tree *vdom.Element
		err  error
	)
	switch {
	case req.Markup != "" && req.Template != "":
		return nil, errors.New("X001").WithDetail("template and markup are mutually exclusive")
	case req.Markup != "":
		tree, err = s.engine.Parse(ctx, req.Markup)
	case req.Template != "":
		tree, err = s.engine.Template(ctx, req.Template)
	default:
		return nil, errors.New("X001").WithDetail("template or markup is required")
	}
	if err != nil {
		return nil, err
	}
	return s.engine.Render(ctx, tree, prev, req.State, nil)
}

func response(root *vdom.Element) *RenderResponse {
	return &RenderResponse{
		HTML:    render.HTML(root),
		Tree:    vdom.ToSnapshot(root),
		Changed: vdom.HasChange(root),
	}
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case stderrors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case source.IsNotFound(err):
		return http.StatusNotFound
	}
	switch errors.CategoryOf(err) {
	case errors.CategoryParse, errors.CategoryConfig, errors.CategoryRender:
		return http.StatusUnprocessableEntity
	case errors.CategoryCLI:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, &RenderResponse{Error: errorBody(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
