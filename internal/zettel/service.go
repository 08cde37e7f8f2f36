// Package zettel implements the note graph service: note lifecycle, tag
// attachment, bidirectional linking, and heuristic similarity scoring.
//
// The service is stateless per call. Every operation re-reads what it needs
// from the store and holds no lock or cache, so concurrent instances need no
// coordination. Multi-step operations (read-then-patch-then-re-read, the two
// existence checks before a link write) are not transactional: a concurrent
// delete between steps can leave a write referencing a just-deleted note.
// Callers needing stronger guarantees must add conditional writes upstream.
package zettel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/zettel/internal/apperr"
	"github.com/starford/zettel/internal/codec"
	"github.com/starford/zettel/internal/models"
	"github.com/starford/zettel/internal/store"
)

// Store is the data-store client the service requires.
type Store interface {
	Get(ctx context.Context, resource string, params url.Values) (json.RawMessage, error)
	Post(ctx context.Context, resource string, body any, params url.Values) (json.RawMessage, error)
	Patch(ctx context.Context, resource string, body any, params url.Values) (json.RawMessage, error)
	Delete(ctx context.Context, resource string, params url.Values) (json.RawMessage, error)
}

// Embedder produces similarity-ready vectors. Embed returns nil when no
// vector could be produced; that is never a reason to fail a write.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
	Available() bool
}

// Service coordinates the store, codec, and embedding provider.
type Service struct {
	store  Store
	embed  Embedder
	logger *slog.Logger
}

// NewService creates a note graph service.
func NewService(st Store, embed Embedder, logger *slog.Logger) *Service {
	return &Service{store: st, embed: embed, logger: logger}
}

// NoteResult is the success value of note lifecycle operations. Warnings
// list enhancements that degraded (embedding, tag attachment) without
// failing the operation.
type NoteResult struct {
	Note      models.Note `json:"note"`
	AddedTags []string    `json:"added_tags,omitempty"`
	Warnings  []string    `json:"warnings,omitempty"`
}

// DeleteResult marks a successful deletion. The entity itself is gone.
type DeleteResult struct {
	Message string `json:"message"`
}

// CreateNoteInput holds the arguments for CreateNote.
type CreateNoteInput struct {
	Title    string
	Content  string
	NoteType models.NoteType
	Tags     []string
}

// Validate checks required fields and the note type enum.
func (in CreateNoteInput) Validate() error {
	if err := validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Content, validation.Required),
	); err != nil {
		return err
	}
	if !models.ValidNoteType(in.NoteType) {
		return fmt.Errorf("invalid note type %q, must be one of: %s", in.NoteType, noteTypeList())
	}
	return nil
}

// CreateNote validates input, writes the note with a fresh embedding, and
// attaches any supplied tags. When the store answers the insert with an
// empty body the note is reconciled by a follow-up lookup by title; two
// concurrent creates sharing a title can cross-read through that fallback.
func (s *Service) CreateNote(ctx context.Context, in CreateNoteInput) (*NoteResult, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)
	in.NoteType = normalizeNoteType(in.NoteType)
	if err := in.Validate(); err != nil {
		return nil, apperr.Validationf("%v", err)
	}

	var warnings []string
	vec := s.embedText(ctx, in.Title, in.Content)
	if vec == nil && s.embed.Available() {
		warnings = append(warnings, "embedding generation failed")
	}

	raw, err := s.store.Post(ctx, "/notes", codec.NotePayload(in.Title, in.Content, in.NoteType, vec), nil)
	if err != nil {
		return nil, err
	}

	note := codec.DecodeNote(raw)
	if note == nil {
		s.logger.Debug("create returned empty body, reconciling by title",
			slog.String("title", in.Title))
		note, err = s.fetchNoteByTitle(ctx, in.Title)
		if err != nil {
			return nil, apperr.Storef(0, "note created but failed to retrieve details: %v", err)
		}
	}

	result := &NoteResult{Note: *note, Warnings: warnings}
	if len(in.Tags) > 0 {
		added, tagWarnings := s.attachTags(ctx, note.ID, in.Tags)
		result.AddedTags = added
		result.Warnings = append(result.Warnings, tagWarnings...)
	}

	s.logger.Info("note created", slog.String("id", note.ID), slog.String("title", note.Title))
	return result, nil
}

// GetNote fetches a single note by id.
func (s *Service) GetNote(ctx context.Context, id string) (*models.Note, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validationf("note id is required")
	}
	raw, err := s.store.Get(ctx, "/notes", store.Params("id", store.Eq(id)))
	if err != nil {
		return nil, err
	}
	note := codec.DecodeNote(raw)
	if note == nil {
		return nil, apperr.NotFoundf("note not found: %s", id)
	}
	return note, nil
}

// GetNoteByTitle fetches a single note by exact title.
func (s *Service) GetNoteByTitle(ctx context.Context, title string) (*models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validationf("title is required")
	}
	return s.fetchNoteByTitle(ctx, title)
}

func (s *Service) fetchNoteByTitle(ctx context.Context, title string) (*models.Note, error) {
	raw, err := s.store.Get(ctx, "/notes", store.Params("title", store.Eq(title)))
	if err != nil {
		return nil, err
	}
	note := codec.DecodeNote(raw)
	if note == nil {
		return nil, apperr.NotFoundf("note not found: %s", title)
	}
	return note, nil
}

// UpdateNoteInput holds the arguments for UpdateNote. Nil pointer fields are
// left unchanged; a supplied title or content must be non-blank. Tags, when
// non-empty, are attached additively.
type UpdateNoteInput struct {
	ID       string
	Title    *string
	Content  *string
	NoteType *models.NoteType
	Tags     []string
}

// UpdateNote applies a partial update. The embedding is regenerated from the
// merged title and content whenever either changes, and updated_at is always
// refreshed. Returns the freshly re-read note.
func (s *Service) UpdateNote(ctx context.Context, in UpdateNoteInput) (*NoteResult, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, apperr.Validationf("note id is required")
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return nil, apperr.Validationf("title cannot be empty")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		return nil, apperr.Validationf("content cannot be empty")
	}
	if in.NoteType != nil {
		nt := normalizeNoteType(*in.NoteType)
		if !models.ValidNoteType(nt) {
			return nil, apperr.Validationf("invalid note type %q, must be one of: %s", *in.NoteType, noteTypeList())
		}
		in.NoteType = &nt
	}

	existing, err := s.GetNote(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	patch := map[string]any{
		"updated_at": nowTimestamp(),
	}
	if in.Title != nil {
		patch["title"] = codec.Truncate(*in.Title, models.MaxTitleLen)
	}
	if in.Content != nil {
		patch["content"] = codec.Truncate(*in.Content, models.MaxContentLen)
	}
	if in.NoteType != nil {
		patch["note_type"] = string(*in.NoteType)
	}

	var warnings []string
	if in.Title != nil || in.Content != nil {
		title := existing.Title
		if in.Title != nil {
			title = *in.Title
		}
		content := existing.Content
		if in.Content != nil {
			content = *in.Content
		}
		if vec := s.embedText(ctx, title, content); vec != nil {
			patch["embedding"] = vec
		} else if s.embed.Available() {
			warnings = append(warnings, "embedding generation failed")
		}
	}

	if _, err := s.store.Patch(ctx, "/notes", patch, store.Params("id", store.Eq(in.ID))); err != nil {
		return nil, err
	}

	result := &NoteResult{Warnings: warnings}
	if len(in.Tags) > 0 {
		added, tagWarnings := s.attachTags(ctx, in.ID, in.Tags)
		result.AddedTags = added
		result.Warnings = append(result.Warnings, tagWarnings...)
	}

	updated, err := s.GetNote(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	result.Note = *updated

	s.logger.Info("note updated", slog.String("id", in.ID))
	return result, nil
}

// DeleteNote removes a note after confirming it exists.
func (s *Service) DeleteNote(ctx context.Context, id string) (*DeleteResult, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperr.Validationf("note id is required")
	}
	if _, err := s.GetNote(ctx, id); err != nil {
		return nil, err
	}
	if _, err := s.store.Delete(ctx, "/notes", store.Params("id", store.Eq(id))); err != nil {
		return nil, err
	}
	s.logger.Info("note deleted", slog.String("id", id))
	return &DeleteResult{Message: "note deleted successfully"}, nil
}

// ListNotes returns notes ordered by recency. limit defaults to 100.
func (s *Service) ListNotes(ctx context.Context, limit, offset int) ([]models.Note, error) {
	if limit <= 0 {
		limit = 100
	}
	params := store.Params(
		"select", "*",
		"order", store.Desc("updated_at"),
		"limit", fmt.Sprint(limit),
		"offset", fmt.Sprint(offset),
	)
	raw, err := s.store.Get(ctx, "/notes", params)
	if err != nil {
		return nil, err
	}
	return codec.DecodeNotes(raw), nil
}

// embedText generates the note embedding from the combined title and content.
func (s *Service) embedText(ctx context.Context, title, content string) []float32 {
	return s.embed.Embed(ctx, strings.TrimSpace(title+"\n\n"+content))
}

func nowTimestamp() string {
	return models.Timestamp(time.Now())
}

func normalizeNoteType(t models.NoteType) models.NoteType {
	if t == "" {
		return models.NotePermanent
	}
	return models.NoteType(strings.ToLower(string(t)))
}

func noteTypeList() string {
	parts := make([]string, len(models.NoteTypes))
	for i, t := range models.NoteTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}
