package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/internal/filter"
	"github.com/classmap/runtime/internal/logger"
	"github.com/classmap/runtime/internal/persistence"
	"github.com/classmap/runtime/internal/registry"
	"github.com/classmap/runtime/internal/render"
	"github.com/classmap/runtime/pkg/dashboard"
)

// errorResponse is the JSON body for error replies.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps the error category to an HTTP status and writes a JSON
// error body.
func writeError(w http.ResponseWriter, err error) {
	status := errhandling.HTTPStatus(err)
	classified := errhandling.Classify(err)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err.Error())
	} else {
		logger.Debug("request rejected", "status", status, "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: classified.Message,
		Code:  classified.Code,
	})
}

// writeJSON writes v as a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to write response", "error", err.Error())
	}
}

// runSelection derives the dashboard tables for the request's query
// parameters. A "q" parameter adds an ad-hoc where predicate on top of
// the selection; those runs bypass the memo table.
func (s *Server) runSelection(r *http.Request) (*dashboard.DashboardData, error) {
	query := r.URL.Query()
	sel := filter.ParseQuery(query)

	if source := query.Get(filter.ParamWhere); source != "" {
		adHoc, err := filter.NewWhere(source)
		if err != nil {
			return nil, err
		}
		data, _, err := s.executor.RunAdHoc(r.Context(), sel, adHoc)
		return data, err
	}

	data, _, err := s.executor.Run(r.Context(), sel)
	return data, err
}

// handlePage serves the dashboard HTML page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sel := filter.ParseQuery(r.URL.Query())
	data, err := s.runSelection(r)
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := render.RenderPage(s.cfg.Name, sel, s.executor.Options(), data.Stats)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", render.ContentTypeHTML)
	if _, err := w.Write(page); err != nil {
		logger.Warn("failed to write page", "error", err.Error())
	}
}

// handleHealth reports liveness, the dataset generation, and cache
// counters.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	hits, misses, size := s.executor.CacheStats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"generation":  s.executor.Store().Generation(),
		"cacheHits":   hits,
		"cacheMisses": misses,
		"cacheSize":   size,
	})
}

// handleOptions serves the filter widget option lists.
func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.executor.Options())
}

// handleCrossTab serves the cross-tabulation for a selection.
func (s *Server) handleCrossTab(w http.ResponseWriter, r *http.Request) {
	data, err := s.runSelection(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data.CrossTab)
}

// handleChoropleth serves the per-county aggregate for a selection.
func (s *Server) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	data, err := s.runSelection(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data.Geo)
}

// handleStats serves the summary statistics for a selection.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	data, err := s.runSelection(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data.Stats)
}

// handleView renders one registered view as SVG. Unknown view types are
// 404, not the stub fallback: the stub exists for configured-but-missing
// renderers, while a URL typo should be visible to the caller.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	viewType := mux.Vars(r)["type"]
	if registry.Get(viewType) == nil {
		writeError(w, errhandling.NewNotFoundError("UNKNOWN_VIEW", "unknown view type: "+viewType))
		return
	}

	data, err := s.runSelection(r)
	if err != nil {
		writeError(w, err)
		return
	}

	renderer := registry.Build(viewType, s.deps)
	body, err := renderer.Render(data)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	if _, err := w.Write(body); err != nil {
		logger.Warn("failed to write view", "view", viewType, "error", err.Error())
	}
}

// saveBookmarkRequest is the POST /api/bookmarks body.
type saveBookmarkRequest struct {
	Name      string              `json:"name"`
	Selection dashboard.Selection `json:"selection"`
}

// handleListBookmarks lists saved bookmarks sorted by name.
func (s *Server) handleListBookmarks(w http.ResponseWriter, _ *http.Request) {
	if s.bookmarks == nil {
		writeError(w, errhandling.NewNotFoundError("BOOKMARKS_DISABLED", "bookmark storage is not configured"))
		return
	}

	bookmarks, err := s.bookmarks.List()
	if err != nil {
		writeError(w, err)
		return
	}
	if bookmarks == nil {
		bookmarks = []dashboard.Bookmark{}
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

// handleSaveBookmark saves or overwrites a named bookmark.
func (s *Server) handleSaveBookmark(w http.ResponseWriter, r *http.Request) {
	if s.bookmarks == nil {
		writeError(w, errhandling.NewNotFoundError("BOOKMARKS_DISABLED", "bookmark storage is not configured"))
		return
	}

	var req saveBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errhandling.NewInputError("INVALID_BOOKMARK_BODY", "invalid bookmark request body", err))
		return
	}

	bookmark, err := s.bookmarks.Save(req.Name, req.Selection)
	if err != nil {
		if errors.Is(err, persistence.ErrInvalidName) {
			writeError(w, errhandling.NewInputError("INVALID_BOOKMARK_NAME", err.Error(), err))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookmark)
}

// handleGetBookmark loads one bookmark by name.
func (s *Server) handleGetBookmark(w http.ResponseWriter, r *http.Request) {
	if s.bookmarks == nil {
		writeError(w, errhandling.NewNotFoundError("BOOKMARKS_DISABLED", "bookmark storage is not configured"))
		return
	}

	name := mux.Vars(r)["name"]
	bookmark, err := s.bookmarks.Load(name)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			writeError(w, errhandling.NewNotFoundError("BOOKMARK_NOT_FOUND", "bookmark not found: "+name))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmark)
}

// handleDeleteBookmark deletes one bookmark by name.
func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if s.bookmarks == nil {
		writeError(w, errhandling.NewNotFoundError("BOOKMARKS_DISABLED", "bookmark storage is not configured"))
		return
	}

	name := mux.Vars(r)["name"]
	if err := s.bookmarks.Delete(name); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			writeError(w, errhandling.NewNotFoundError("BOOKMARK_NOT_FOUND", "bookmark not found: "+name))
			return
		}
		if errors.Is(err, persistence.ErrInvalidName) {
			writeError(w, errhandling.NewInputError("INVALID_BOOKMARK_NAME", err.Error(), err))
			return
		}
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
