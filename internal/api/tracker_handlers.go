package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sincelast/internal/apperr"
	"sincelast/internal/bootstrap/logging"
	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/errs"
	"sincelast/internal/ports"
	"sincelast/internal/usecase/tracker"
	"sincelast/internal/validate"
)

func idParam(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("id", "Invalid id")
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, apperr.Validation("", "Invalid request body"))
		return false
	}
	return true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tracker.GetDashboardStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var limitPtr, offsetPtr *int
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, apperr.Validation("limit", "Limit must be a number between 1 and 100"))
			return
		}
		limitPtr = &limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, apperr.Validation("offset", "Offset must be a non-negative number"))
			return
		}
		offsetPtr = &offset
	}
	if result := validate.Search(validate.SearchInput{Limit: limitPtr, Offset: offsetPtr}); !result.Valid {
		writeValidation(w, result)
		return
	}

	filter := ports.IssueFilter{
		Status:   domain.Status(q.Get("status")),
		Severity: domain.Severity(q.Get("severity")),
	}
	if raw := q.Get("category"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, r, apperr.Validation("category", "Invalid category id"))
			return
		}
		filter.CategoryID = &categoryID
	}
	if limitPtr != nil {
		filter.Limit = *limitPtr
	} else {
		filter.Limit = s.pagination.DefaultLimit
	}
	if offsetPtr != nil {
		filter.Offset = *offsetPtr
	}

	issues, err := s.tracker.SearchIssues(r.Context(), q.Get("q"), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

type issueBody struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CategoryID  *uint64 `json:"categoryId"`
	Severity    string  `json:"severity"`
	Status      string  `json:"status"`
	Tags        *string `json:"tags"`
	Attachments *string `json:"attachments"`
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var body issueBody
	if !decodeBody(w, r, &body) {
		return
	}

	if result := validate.Issue(validate.IssueInput{
		Title:       body.Title,
		Description: body.Description,
		Severity:    body.Severity,
		Status:      body.Status,
	}); !result.Valid {
		writeValidation(w, result)
		return
	}

	issue, err := s.tracker.CreateIssue(r.Context(), tracker.CreateIssueInput{
		Title:       body.Title,
		Description: body.Description,
		CategoryID:  body.CategoryID,
		Severity:    domain.Severity(body.Severity),
		Status:      domain.Status(body.Status),
		Tags:        body.Tags,
		Attachments: body.Attachments,
	}, userFrom(r).UserID)
	if err != nil {
		// A non-nil issue alongside the error means the issue row exists
		// but the accident record does not; the client must see that.
		if issue != nil {
			writeIssuePartial(w, r, issue, err)
			return
		}
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, issue)
}

// partialIssueResponse reports a creation that half-succeeded: the issue
// persisted but its automatic accident record did not.
type partialIssueResponse struct {
	Success bool         `json:"success"`
	Error   errorBody    `json:"error"`
	Issue   *ports.Issue `json:"issue"`
}

func writeIssuePartial(w http.ResponseWriter, r *http.Request, issue *ports.Issue, err error) {
	body, status := errorBodyOf(err)
	logging.Error(r.Context(), "issue created without accident record",
		slog.Uint64("issue_id", issue.IssueID),
		slog.Any("err", errs.Loggable(err)))
	writeJSON(w, status, partialIssueResponse{Error: body, Issue: issue})
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.tracker.GetIssueWithSolutions(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if view == nil {
		writeNotFound(w, r, "Issue")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		// Raw so an explicit null (detach the category) stays
		// distinguishable from the key being absent (leave it alone).
		CategoryID  json.RawMessage `json:"categoryId"`
		Severity    *string         `json:"severity"`
		Status      *string         `json:"status"`
		Tags        *string         `json:"tags"`
		Attachments *string         `json:"attachments"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if body.Severity != nil && !domain.ValidSeverity(domain.Severity(*body.Severity)) {
		writeError(w, r, apperr.Validation("severity", "Invalid severity level"))
		return
	}
	if body.Status != nil && !domain.ValidStatus(domain.Status(*body.Status)) {
		writeError(w, r, apperr.Validation("status", "Invalid status"))
		return
	}

	input := tracker.UpdateIssueInput{
		Title:       body.Title,
		Description: body.Description,
		Tags:        body.Tags,
		Attachments: body.Attachments,
	}
	if len(body.CategoryID) > 0 {
		if string(body.CategoryID) == "null" {
			input.ClearCategory = true
		} else {
			var categoryID uint64
			if err := json.Unmarshal(body.CategoryID, &categoryID); err != nil {
				writeError(w, r, apperr.Validation("categoryId", "Invalid category id"))
				return
			}
			input.CategoryID = &categoryID
		}
	}
	if body.Severity != nil {
		severity := domain.Severity(*body.Severity)
		input.Severity = &severity
	}
	if body.Status != nil {
		status := domain.Status(*body.Status)
		input.Status = &status
	}

	issue, err := s.tracker.UpdateIssue(r.Context(), id, input, userFrom(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.tracker.DeleteIssue(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSolutions(w http.ResponseWriter, r *http.Request) {
	var issueID *uint64
	if raw := r.URL.Query().Get("issue"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, r, apperr.Validation("issue", "Invalid issue id"))
			return
		}
		issueID = &id
	}

	solutions, err := s.tracker.ListSolutions(r.Context(), issueID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, solutions)
}

type solutionBody struct {
	IssueID       uint64   `json:"issueId"`
	Description   string   `json:"description"`
	Steps         string   `json:"steps"`
	Effectiveness *float64 `json:"effectivenessRating"`
	Verified      bool     `json:"verified"`
}

func (s *Server) handleCreateSolution(w http.ResponseWriter, r *http.Request) {
	var body solutionBody
	if !decodeBody(w, r, &body) {
		return
	}

	if result := validate.Solution(validate.SolutionInput{
		IssueID:       body.IssueID,
		Description:   body.Description,
		Steps:         body.Steps,
		Effectiveness: body.Effectiveness,
	}); !result.Valid {
		writeValidation(w, result)
		return
	}

	input := tracker.CreateSolutionInput{
		IssueID:     body.IssueID,
		Description: body.Description,
		Steps:       body.Steps,
		Verified:    body.Verified,
	}
	if body.Effectiveness != nil {
		input.Effectiveness = *body.Effectiveness
	}

	solution, err := s.tracker.CreateSolution(r.Context(), input, userFrom(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, solution)
}

func (s *Server) handleUpdateSolution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Description   *string  `json:"description"`
		Steps         *string  `json:"steps"`
		Effectiveness *float64 `json:"effectivenessRating"`
		Verified      *bool    `json:"verified"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if body.Effectiveness != nil {
		if eff := *body.Effectiveness; eff < 1 || eff > 5 {
			writeError(w, r, apperr.Validation("effectiveness", "Effectiveness must be a number between 1 and 5"))
			return
		}
	}

	solution, err := s.tracker.UpdateSolution(r.Context(), id, tracker.UpdateSolutionInput{
		Description:   body.Description,
		Steps:         body.Steps,
		Effectiveness: body.Effectiveness,
		Verified:      body.Verified,
	}, userFrom(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, solution)
}

func (s *Server) handleDeleteSolution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.tracker.DeleteSolution(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerifySolution(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	solution, err := s.tracker.VerifySolution(r.Context(), id, userFrom(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, solution)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.tracker.GetAllCategoriesWithStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

type categoryBody struct {
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Color         string  `json:"color"`
	AccidentReset *bool   `json:"accidentResetTrigger"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body categoryBody
	if !decodeBody(w, r, &body) {
		return
	}

	description := ""
	if body.Description != nil {
		description = *body.Description
	}
	if result := validate.Category(validate.CategoryInput{
		Name:        body.Name,
		Description: description,
		Color:       body.Color,
	}); !result.Valid {
		writeValidation(w, result)
		return
	}

	category, err := s.tracker.CreateCategory(r.Context(), tracker.CreateCategoryInput{
		Name:          body.Name,
		Description:   body.Description,
		Color:         body.Color,
		AccidentReset: body.AccidentReset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	view, err := s.tracker.GetCategoryWithStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if view == nil {
		writeNotFound(w, r, "Category")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Name          *string `json:"name"`
		Description   *string `json:"description"`
		Color         *string `json:"color"`
		AccidentReset *bool   `json:"accidentResetTrigger"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	category, err := s.tracker.UpdateCategory(r.Context(), id, tracker.UpdateCategoryInput{
		Name:          body.Name,
		Description:   body.Description,
		Color:         body.Color,
		AccidentReset: body.AccidentReset,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.tracker.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccidents(w http.ResponseWriter, r *http.Request) {
	accidents, err := s.tracker.ListAccidents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, accidents)
}

func (s *Server) handleRecordAccident(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IssueID      uint64  `json:"issueId"`
		CategoryID   *uint64 `json:"categoryId"`
		OccurredAt   *string `json:"occurredAt"`
		ResetCounter *bool   `json:"resetCounter"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.IssueID == 0 {
		writeError(w, r, apperr.Validation("issueId", "Valid issue ID is required"))
		return
	}

	accident, err := s.tracker.RecordAccident(r.Context(), tracker.RecordAccidentInput{
		IssueID:      body.IssueID,
		CategoryID:   body.CategoryID,
		OccurredAt:   body.OccurredAt,
		ResetCounter: body.ResetCounter,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, accident)
}
