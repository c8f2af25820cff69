package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hdnotes/notes-api/internal/model"
	"github.com/hdnotes/notes-api/internal/payload"
	"github.com/hdnotes/notes-api/internal/usecase"
	"github.com/hdnotes/notes-api/shared/validator"
)

// NoteHandler exposes the owner-scoped note CRUD endpoints. Every route is
// mounted behind the access guard, so the user is always on the context.
type NoteHandler struct {
	noteUsecase usecase.NoteUsecase
	validate    *validator.Validator
	logger      *zerolog.Logger
}

// NewNoteHandler creates a new NoteHandler instance.
func NewNoteHandler(
	noteUsecase usecase.NoteUsecase,
	validate *validator.Validator,
	logger *zerolog.Logger,
) *NoteHandler {
	return &NoteHandler{
		noteUsecase: noteUsecase,
		validate:    validate,
		logger:      logger,
	}
}

// Create handles POST /api/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req payload.CreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := h.validate.Struct(req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	note, err := h.noteUsecase.CreateNote(r.Context(), user.ID, req.Title, req.Content)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create note")
		respondInternalError(w)
		return
	}

	respondSuccess(w, http.StatusCreated, "Note created successfully", map[string]any{
		"note": noteResponse(note),
	})
}

// List handles GET /api/notes with query parameters page, limit and search.
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	result, err := h.noteUsecase.ListNotes(r.Context(), usecase.ListNotesParams{
		OwnerID: user.ID,
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list notes")
		respondInternalError(w)
		return
	}

	notes := make([]payload.NoteResponse, 0, len(result.Notes))
	for _, note := range result.Notes {
		notes = append(notes, noteResponse(note))
	}

	respondSuccess(w, http.StatusOK, "", payload.NoteListResponse{
		Notes: notes,
		Pagination: payload.Pagination{
			CurrentPage: result.CurrentPage,
			TotalPages:  result.TotalPages,
			TotalNotes:  result.TotalNotes,
			HasNext:     result.HasNext,
			HasPrev:     result.HasPrev,
		},
	})
}

// GetByID handles GET /api/notes/{id}.
func (h *NoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	note, err := h.noteUsecase.GetNote(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		if errors.Is(err, usecase.ErrNoteNotFound) {
			respondError(w, http.StatusNotFound, "Note not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to get note")
		respondInternalError(w)
		return
	}

	respondSuccess(w, http.StatusOK, "", map[string]any{
		"note": noteResponse(note),
	})
}

// Update handles PUT /api/notes/{id}. Only the provided fields change.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req payload.UpdateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if errs := h.validate.Struct(req); errs != nil {
		respondValidationErrors(w, errs)
		return
	}

	note, err := h.noteUsecase.UpdateNote(r.Context(), chi.URLParam(r, "id"), user.ID, usecase.UpdateNoteParams{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrNoteNotFound) {
			respondError(w, http.StatusNotFound, "Note not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to update note")
		respondInternalError(w)
		return
	}

	respondSuccess(w, http.StatusOK, "Note updated successfully", map[string]any{
		"note": noteResponse(note),
	})
}

// Delete handles DELETE /api/notes/{id}.
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	err := h.noteUsecase.DeleteNote(r.Context(), chi.URLParam(r, "id"), user.ID)
	if err != nil {
		if errors.Is(err, usecase.ErrNoteNotFound) {
			respondError(w, http.StatusNotFound, "Note not found")
			return
		}

		h.logger.Error().Err(err).Msg("failed to delete note")
		respondInternalError(w)
		return
	}

	respondSuccess(w, http.StatusOK, "Note deleted successfully", nil)
}

func noteResponse(note *model.Note) payload.NoteResponse {
	return payload.NoteResponse{
		ID:        note.ID.Hex(),
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func queryInt(r *http.Request, name string, fallback int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 1 {
		return fallback
	}

	return value
}
