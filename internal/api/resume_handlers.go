package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"resume-forge/internal/database"
	"resume-forge/internal/models"
	"resume-forge/internal/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
)

const maxUploadBytes = 10 << 20

func (s *Server) generateUniqueID(ctx context.Context) (string, error) {
	maxRetries := 10

	generateID, err := nanoid.Standard(21)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		id := generateID()
		exists, err := s.store.ResumeExists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("failed to check for resume existence: %w", err)
		}
		if !exists {
			return id, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}

// formatFromUpload maps the declared media type, falling back to the file
// extension when the client sent a generic content type.
func formatFromUpload(contentType, filename string) (models.SourceFormat, bool) {
	switch {
	case strings.Contains(contentType, "application/pdf"):
		return models.FormatPDF, true
	case strings.Contains(contentType, "wordprocessingml"):
		return models.FormatDOCX, true
	case strings.Contains(contentType, "text/plain"):
		return models.FormatTXT, true
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return models.FormatPDF, true
	case ".docx":
		return models.FormatDOCX, true
	case ".txt":
		return models.FormatTXT, true
	}
	return "", false
}

// @Summary      Upload a resume
// @Description  Accepts a multipart upload, extracts its text and creates a record in the uploaded state.
// @Tags         resumes
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file   formData  file    true   "Resume file (pdf, docx or txt)"
// @Param        title  formData  string  false  "Record title, defaults to the filename"
// @Success      201  {object}  Envelope{data=models.Resume}
// @Failure      400  {object}  Envelope
// @Failure      409  {object}  Envelope
// @Failure      422  {object}  Envelope
// @Router       /resumes [post]
func (s *Server) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, r, models.NewValidationError("error parsing multipart form"))
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, models.NewValidationError("file field is required"))
		return
	}
	defer file.Close()

	format, ok := formatFromUpload(handler.Header.Get("Content-Type"), handler.Filename)
	if !ok {
		s.respondError(w, r, models.NewValidationError("unsupported file type, expected pdf, docx or txt"))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	text, err := s.extractor.Extract(data, format)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		s.respondError(w, r, models.NewValidationError("extracted resume text is empty"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = handler.Filename
	}

	resumeID, err := s.generateUniqueID(r.Context())
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	if err := s.storage.Save(resumeID, bytes.NewReader(data)); err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	resume, err := s.store.CreateResume(r.Context(), database.CreateResumeParams{
		ID:           resumeID,
		OwnerID:      claims.UserID,
		Title:        title,
		Filename:     handler.Filename,
		SourceFormat: format,
		OriginalText: text,
	})
	if err != nil {
		// the DB row is the source of truth, drop the orphaned file
		if delErr := s.storage.Delete(resumeID); delErr != nil {
			s.respondError(w, r, models.NewInternalError(delErr))
			return
		}
		if errors.Is(err, database.ErrDuplicateFilename) {
			s.respondError(w, r, models.NewConflictError(err.Error()))
			return
		}
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	s.journal(r, claims.UserID, resume.ID, database.EventResumeUploaded, map[string]interface{}{
		"filename": resume.Filename,
		"format":   resume.SourceFormat,
	})

	s.respond(w, r, http.StatusCreated, "resume uploaded", resume)
}

type ResumeListResponse struct {
	Items    []models.Resume `json:"items"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// @Summary      List resumes
// @Description  Lists the caller's resume records, newest first.
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "Page number, starting at 1"
// @Param        page_size  query     int  false  "Items per page, max 100"
// @Success      200  {object}  Envelope{data=ResumeListResponse}
// @Router       /resumes [get]
func (s *Server) ListResumesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	resumes, err := s.store.ListResumes(r.Context(), claims.UserID, pageSize, (page-1)*pageSize)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	total, err := s.store.CountResumes(r.Context(), claims.UserID)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	s.respond(w, r, http.StatusOK, "resumes", ResumeListResponse{
		Items:    resumes,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// getOwnedResume resolves the path ID against the caller. Missing and
// not-owned are the same 404.
func (s *Server) getOwnedResume(r *http.Request) (*models.Resume, error) {
	claims := GetUserFromContext(r.Context())
	resumeID := chi.URLParam(r, "resumeId")

	resume, err := s.store.GetResumeForOwner(r.Context(), resumeID, claims.UserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if resume == nil {
		return nil, models.NewNotFoundError("resume not found")
	}
	return resume, nil
}

// @Summary      Get a resume
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Param        resumeId  path      string  true  "Resume ID"
// @Success      200  {object}  Envelope{data=models.Resume}
// @Failure      404  {object}  Envelope
// @Router       /resumes/{resumeId} [get]
func (s *Server) GetResumeHandler(w http.ResponseWriter, r *http.Request) {
	resume, err := s.getOwnedResume(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, "resume", resume)
}

type UpdateResumeRequest struct {
	Title string `json:"title"`
}

// @Summary      Update a resume title
// @Tags         resumes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resumeId             path      string               true  "Resume ID"
// @Param        updateResumeRequest  body      UpdateResumeRequest  true  "New title"
// @Success      200  {object}  Envelope{data=models.Resume}
// @Failure      400  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /resumes/{resumeId} [patch]
func (s *Server) UpdateResumeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	resumeID := chi.URLParam(r, "resumeId")

	var req UpdateResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, models.NewValidationError("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, r, models.NewValidationError("title cannot be empty"))
		return
	}

	resume, err := s.store.UpdateResumeTitle(r.Context(), resumeID, claims.UserID, req.Title)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if resume == nil {
		s.respondError(w, r, models.NewNotFoundError("resume not found"))
		return
	}

	s.journal(r, claims.UserID, resume.ID, database.EventResumeRenamed, map[string]interface{}{
		"title": resume.Title,
	})

	s.respond(w, r, http.StatusOK, "resume updated", resume)
}

// @Summary      Delete a resume
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Param        resumeId  path      string  true  "Resume ID"
// @Success      200  {object}  Envelope
// @Failure      404  {object}  Envelope
// @Router       /resumes/{resumeId} [delete]
func (s *Server) DeleteResumeHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	resumeID := chi.URLParam(r, "resumeId")

	deleted, err := s.store.DeleteResume(r.Context(), resumeID, claims.UserID)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}
	if !deleted {
		s.respondError(w, r, models.NewNotFoundError("resume not found"))
		return
	}

	if err := s.storage.Delete(resumeID); err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	s.journal(r, claims.UserID, resumeID, database.EventResumeDeleted, nil)

	s.respond(w, r, http.StatusOK, "resume deleted", nil)
}

var formatContentTypes = map[models.SourceFormat]string{
	models.FormatPDF:  "application/pdf",
	models.FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	models.FormatTXT:  "text/plain; charset=utf-8",
}

// @Summary      Download the original upload
// @Tags         resumes
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        resumeId  path      string  true  "Resume ID"
// @Success      200  {file}    file
// @Failure      404  {object}  Envelope
// @Router       /resumes/{resumeId}/download [get]
func (s *Server) DownloadResumeHandler(w http.ResponseWriter, r *http.Request) {
	resume, err := s.getOwnedResume(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	rc, err := s.storage.Get(resume.ID)
	if err != nil {
		s.respondError(w, r, models.NewNotFoundError("stored file not found"))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", formatContentTypes[resume.SourceFormat])
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resume.Filename))
	io.Copy(w, rc)
}

// @Summary      Get a resume's history
// @Description  Returns the journal of everything that happened to one record, newest first.
// @Tags         resumes
// @Produce      json
// @Security     BearerAuth
// @Param        resumeId  path      string  true  "Resume ID"
// @Success      200  {object}  Envelope{data=[]database.Event}
// @Failure      404  {object}  Envelope
// @Router       /resumes/{resumeId}/history [get]
func (s *Server) GetResumeHistoryHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	resume, err := s.getOwnedResume(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	events, err := s.store.GetResumeHistory(r.Context(), claims.UserID, resume.ID, 100)
	if err != nil {
		s.respondError(w, r, models.NewInternalError(err))
		return
	}

	s.respond(w, r, http.StatusOK, "history", events)
}

// journal records a CRUD event and pushes it to the owner's websocket
// clients. The response does not depend on the journal write.
func (s *Server) journal(r *http.Request, userID int64, resumeID, eventType string, payload map[string]interface{}) {
	if err := s.store.LogEvent(r.Context(), userID, &resumeID, eventType, payload); err != nil {
		slog.Error("failed to journal event", "event_type", eventType, "error", err)
	}
	s.wsHub.Publish(userID, websocket.EventMessage{
		EventType: eventType,
		ResumeID:  resumeID,
		Payload:   payload,
	})
}
