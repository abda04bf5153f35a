package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/cvfeed/internal/rendering"
	"github.com/jonathan/cvfeed/internal/types"
)

// handleCandidatePage renders one candidate with links to its neighbours.
// Ids that are not integers are treated like unknown ids.
func (s *Server) handleCandidatePage(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.notFoundPage(w, r, fmt.Sprintf("Candidate %q does not exist", raw))
		return
	}

	candidate, err := s.store.GetCandidate(r.Context(), id)
	if err != nil {
		s.errorPage(w, r, err)
		return
	}
	if candidate == nil {
		s.notFoundPage(w, r, fmt.Sprintf("Candidate %d does not exist", id))
		return
	}

	nav, err := s.store.GetAdjacentIDs(r.Context(), id)
	if err != nil {
		s.errorPage(w, r, err)
		return
	}

	meta := rendering.RecordMeta{
		Source:         candidate.Source,
		SourceFileName: candidate.SourceFileName,
		CreatedAt:      candidate.CreatedAt,
	}
	page := rendering.NewCandidatePage(candidate.ID, candidate.Data, meta, nav.Prev, nav.Next)
	s.htmlResponse(w, r, http.StatusOK, func(out io.Writer) error {
		return rendering.RenderCandidatePage(out, page)
	})
}

// handleCandidatesPage renders the job title list and every candidate.
func (s *Server) handleCandidatesPage(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListDistinctJobTitles(r.Context())
	if err != nil {
		s.errorPage(w, r, err)
		return
	}

	entries, err := s.store.ListCandidateProjections(r.Context(), 0, 0)
	if err != nil {
		s.errorPage(w, r, err)
		return
	}

	page := rendering.NewCandidatesPage(jobs, entries)
	s.htmlResponse(w, r, http.StatusOK, func(out io.Writer) error {
		return rendering.RenderCandidatesPage(out, page)
	})
}

// handleListCandidates returns [id, projection] pairs. after_id and limit
// page through the table by id; without limit every record is returned.
func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	afterID, limit, err := parsePagination(r)
	if err != nil {
		s.apiError(w, r, err)
		return
	}

	entries, err := s.store.ListCandidateProjections(r.Context(), afterID, limit)
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if entries == nil {
		entries = []types.ProjectionEntry{}
	}
	s.jsonResponse(w, http.StatusOK, entries)
}

// handleListJobs returns the distinct job titles.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListDistinctJobTitles(r.Context())
	if err != nil {
		s.apiError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []string{}
	}
	s.jsonResponse(w, http.StatusOK, jobs)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parsePagination(r *http.Request) (afterID int64, limit int, err error) {
	q := r.URL.Query()

	if v := q.Get("after_id"); v != "" {
		afterID, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, &ErrInvalidParam{Name: "after_id", Value: v, Reason: "must be an integer"}
		}
		if afterID < 0 {
			return 0, 0, &ErrInvalidParam{Name: "after_id", Value: v, Reason: "must not be negative"}
		}
	}

	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			return 0, 0, &ErrInvalidParam{Name: "limit", Value: v, Reason: "must be an integer"}
		}
		if limit < 1 || limit > MaxPageSize {
			return 0, 0, &ErrInvalidParam{Name: "limit", Value: v, Reason: fmt.Sprintf("must be between 1 and %d", MaxPageSize)}
		}
	}

	return afterID, limit, nil
}

func (s *Server) apiError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	s.errorResponse(w, status, publicMessage(err))
}

func (s *Server) notFoundPage(w http.ResponseWriter, r *http.Request, message string) {
	s.htmlResponse(w, r, http.StatusNotFound, func(out io.Writer) error {
		return rendering.RenderStatusPage(out, "Not Found", message)
	})
}

func (s *Server) errorPage(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("request_id", RequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	s.htmlResponse(w, r, http.StatusInternalServerError, func(out io.Writer) error {
		return rendering.RenderStatusPage(out, "Server Error", "The candidate data could not be loaded. Please try again later.")
	})
}

// htmlResponse renders into a buffer so a template failure can still be
// answered with a 500.
func (s *Server) htmlResponse(w http.ResponseWriter, r *http.Request, status int, render func(io.Writer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.logger.Error("failed to render page",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("failed to write page", zap.Error(err))
	}
}
