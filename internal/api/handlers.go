package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/zettel/internal/models"
	"github.com/starford/zettel/internal/zettel"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *zettel.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc *zettel.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// ListNotes handles GET /notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")
	notes, err := h.svc.ListNotes(r.Context(), limit, offset)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, NoteListResponse{Notes: notes, Count: len(notes)})
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(h.logger, w,http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	result, err := h.svc.CreateNote(r.Context(), zettel.CreateNoteInput{
		Title:    req.Title,
		Content:  req.Content,
		NoteType: models.NoteType(req.NoteType),
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusCreated, result)
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, note)
}

// UpdateNote handles PATCH /notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(h.logger, w,http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	in := zettel.UpdateNoteInput{
		ID:      chi.URLParam(r, "id"),
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if req.NoteType != nil {
		nt := models.NoteType(*req.NoteType)
		in.NoteType = &nt
	}
	result, err := h.svc.UpdateNote(r.Context(), in)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, result)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(h.logger, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.SearchNotes(r.Context(), zettel.SearchInput{
		Query:    r.URL.Query().Get("q"),
		NoteType: models.NoteType(r.URL.Query().Get("note_type")),
		Limit:    queryInt(r, "limit"),
	})
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, NoteListResponse{Notes: notes, Count: len(notes)})
}

// NoteTags handles GET /notes/{id}/tags.
func (h *Handler) NoteTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.NoteTags(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, TagListResponse{Tags: tags, Count: len(tags)})
}

// AddTags handles POST /notes/{id}/tags.
func (h *Handler) AddTags(w http.ResponseWriter, r *http.Request) {
	var req AddTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(h.logger, w,http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	result, err := h.svc.AddTags(r.Context(), chi.URLParam(r, "id"), req.Tags)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, result)
}

// AllTags handles GET /tags.
func (h *Handler) AllTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.AllTags(r.Context())
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, TagListResponse{Tags: tags, Count: len(tags)})
}

// NotesByTag handles GET /tags/{name}/notes.
func (h *Handler) NotesByTag(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.NotesByTag(r.Context(), chi.URLParam(r, "name"), queryInt(r, "limit"))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, NoteListResponse{Notes: notes, Count: len(notes)})
}

// CreateLink handles POST /links.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(h.logger, w,http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	result, err := h.svc.CreateLink(r.Context(), zettel.CreateLinkInput{
		SourceID:      req.SourceID,
		TargetID:      req.TargetID,
		LinkType:      models.LinkType(req.LinkType),
		Description:   req.Description,
		Bidirectional: req.Bidirectional,
	})
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusCreated, result)
}

// RemoveLink handles DELETE /links. Match parameters come from the query
// string since DELETE bodies are unreliable across proxies.
func (h *Handler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.RemoveLink(r.Context(), zettel.RemoveLinkInput{
		SourceID:      q.Get("source_id"),
		TargetID:      q.Get("target_id"),
		LinkType:      models.LinkType(q.Get("link_type")),
		Bidirectional: q.Get("bidirectional") == "true",
	})
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, result)
}

// LinkedNotes handles GET /notes/{id}/links.
func (h *Handler) LinkedNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.LinkedNotes(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("direction"))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, NoteListResponse{Notes: notes, Count: len(notes)})
}

// FindSimilar handles GET /notes/{id}/similar.
func (h *Handler) FindSimilar(w http.ResponseWriter, r *http.Request) {
	threshold := 0.3
	if v := r.URL.Query().Get("threshold"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(h.logger, w,http.StatusBadRequest, errorBody("threshold must be a number"))
			return
		}
		threshold = parsed
	}
	results, err := h.svc.FindSimilar(r.Context(), chi.URLParam(r, "id"), threshold, queryInt(r, "limit"))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, SimilarResponse{Results: results, Count: len(results)})
}

// ExportNote handles GET /notes/{id}/export.
func (h *Handler) ExportNote(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ExportNote(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("format"))
	if err != nil {
		writeError(h.logger, w, err)
		return
	}
	writeJSON(h.logger, w,http.StatusOK, result)
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}
