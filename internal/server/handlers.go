package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/collabops/brief-cli/internal/briefs"
	"github.com/collabops/brief-cli/internal/convert"
	"github.com/collabops/brief-cli/internal/lifecycle"
	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/store"
	"github.com/collabops/brief-cli/internal/subscription"
	"github.com/collabops/brief-cli/internal/textextract"
)

type ctxKey int

const creatorKey ctxKey = iota

type creatorIdentity struct {
	ID   string
	Tier string
}

// requireCreator pulls the creator identity from the gateway headers.
func requireCreator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Creator-ID")
		if id == "" {
			respondError(w, http.StatusUnauthorized, "missing X-Creator-ID header")
			return
		}
		ident := creatorIdentity{
			ID:   id,
			Tier: r.Header.Get("X-Subscription-Tier"),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), creatorKey, ident)))
	})
}

func creatorFrom(r *http.Request) creatorIdentity {
	ident, _ := r.Context().Value(creatorKey).(creatorIdentity)
	return ident
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateBrief(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	var req struct {
		Text string   `json:"text"`
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := s.svc.CreateFromText(r.Context(), ident.ID, ident.Tier, req.Text)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if len(req.Tags) > 0 {
		if b, err = s.svc.UpdateMeta(r.Context(), ident.ID, b.BriefID, req.Tags, ""); err != nil {
			respondServiceError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleUploadBrief(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close() //nolint:errcheck

	if header.Size > s.opts.MaxUploadBytes {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUploadBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	b, err := s.svc.CreateFromFile(r.Context(), ident.ID, ident.Tier, header.Filename, data)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBriefs(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	filter := store.BriefFilter{
		Status:           model.BriefStatus(r.URL.Query().Get("status")),
		ExtractionStatus: model.ExtractionStatus(r.URL.Query().Get("extraction_status")),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	list, err := s.svc.List(r.Context(), ident.ID, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if list == nil {
		list = []model.Brief{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"briefs": list, "count": len(list)})
}

func (s *Server) handleGetBrief(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	b, err := s.svc.Get(r.Context(), ident.ID, chi.URLParam(r, "briefID"), true)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpdateMeta(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	var req struct {
		Tags  []string `json:"tags"`
		Notes string   `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := s.svc.UpdateMeta(r.Context(), ident.ID, chi.URLParam(r, "briefID"), req.Tags, req.Notes)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBrief(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	if err := s.svc.Delete(r.Context(), ident.ID, chi.URLParam(r, "briefID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleArchiveBrief(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	if err := s.svc.Archive(r.Context(), ident.ID, chi.URLParam(r, "briefID")); err != nil {
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReanalyze(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	if err := s.svc.Reanalyze(r.Context(), ident.ID, chi.URLParam(r, "briefID"), ident.Tier); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (s *Server) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := s.svc.AddCustomQuestion(r.Context(), ident.ID, chi.URLParam(r, "briefID"), req.Question)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleAnswerQuestion(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	var req struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := s.svc.AnswerQuestion(r.Context(), ident.ID, chi.URLParam(r, "briefID"), chi.URLParam(r, "questionID"), req.Answer)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleSendClarifications(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	var req struct {
		To          string `json:"to"`
		CreatorName string `json:"creator_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	email, err := s.svc.SendClarifications(r.Context(), ident.ID, chi.URLParam(r, "briefID"), req.To, req.CreatorName)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, email)
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	ident := creatorFrom(r)

	var req struct {
		Overrides *model.ConversionOverrides `json:"overrides"`
	}
	// An absent body means no overrides; chunked requests report no
	// ContentLength, so decode whatever is there.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	deal, err := s.converter.Convert(r.Context(), ident.ID, chi.URLParam(r, "briefID"), req.Overrides)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, deal)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps domain errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, briefs.ErrQuestionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrBriefConverted),
		errors.Is(err, convert.ErrAlreadyConverted),
		errors.Is(err, lifecycle.ErrInvalidTransition):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, convert.ErrNotReady):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, subscription.ErrQuotaExceeded),
		errors.Is(err, subscription.ErrAIUnavailable):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, briefs.ErrEmptyBrief),
		errors.Is(err, briefs.ErrBriefTooLong),
		errors.Is(err, briefs.ErrNoQuestions),
		errors.Is(err, textextract.ErrUnsupportedFormat),
		errors.Is(err, textextract.ErrEmptyContent):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
