package zettel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/zettel/internal/apperr"
	"github.com/starford/zettel/internal/codec"
	"github.com/starford/zettel/internal/models"
	"github.com/starford/zettel/internal/store"
)

// AddTagsResult reports which tag names were attached. Per-name failures
// are excluded from Added and surfaced as warnings; partial success is the
// norm, not an error state.
type AddTagsResult struct {
	Added    []string `json:"added_tags"`
	Warnings []string `json:"warnings,omitempty"`
}

// AddTags attaches tag names to a note with find-or-create semantics per
// name. The store enforces no uniqueness constraint on tag names, so a lost
// find-or-create race can leave a duplicate name; the lookup-first order
// makes steady state converge on a single tag per name.
func (s *Service) AddTags(ctx context.Context, noteID string, names []string) (*AddTagsResult, error) {
	if strings.TrimSpace(noteID) == "" {
		return nil, apperr.Validationf("note id is required")
	}
	added, warnings := s.attachTags(ctx, noteID, names)
	return &AddTagsResult{Added: added, Warnings: warnings}, nil
}

// attachTags is the shared implementation used by note creation and update.
// Duplicate names within one call are processed once.
func (s *Service) attachTags(ctx context.Context, noteID string, names []string) (added, warnings []string) {
	added = []string{}
	for _, name := range dedupeNames(names) {
		tagID, err := s.findOrCreateTag(ctx, name)
		if err != nil {
			s.logger.Warn("failed to resolve tag", slog.String("name", name),
				slog.String("error", err.Error()))
			warnings = append(warnings, fmt.Sprintf("tag %q skipped: %v", name, err))
			continue
		}
		payload := codec.NoteTagPayload(noteID, tagID)
		if _, err := s.store.Post(ctx, "/note_tags", payload, nil); err != nil {
			s.logger.Warn("failed to attach tag", slog.String("name", name),
				slog.String("error", err.Error()))
			warnings = append(warnings, fmt.Sprintf("tag %q skipped: %v", name, err))
			continue
		}
		added = append(added, name)
	}
	return added, warnings
}

// findOrCreateTag returns the id of the tag with the given name, creating
// it when absent.
func (s *Service) findOrCreateTag(ctx context.Context, name string) (string, error) {
	raw, err := s.store.Get(ctx, "/tags", store.Params("name", store.Eq(name)))
	if err != nil {
		return "", err
	}
	if tag := codec.DecodeTag(raw); tag != nil && tag.ID != "" {
		return tag.ID, nil
	}

	raw, err = s.store.Post(ctx, "/tags", codec.TagPayload(name), nil)
	if err != nil {
		return "", err
	}
	if tag := codec.DecodeTag(raw); tag != nil && tag.ID != "" {
		return tag.ID, nil
	}

	// The store answered the insert with an empty body; re-read by name.
	raw, err = s.store.Get(ctx, "/tags", store.Params("name", store.Eq(name)))
	if err != nil {
		return "", err
	}
	if tag := codec.DecodeTag(raw); tag != nil && tag.ID != "" {
		return tag.ID, nil
	}
	return "", apperr.Storef(0, "tag %q created but could not be read back", name)
}

// NoteTags returns the tags attached to a note: join rows first, then a
// batch fetch of the referenced tag records. Empty when the note has none.
func (s *Service) NoteTags(ctx context.Context, noteID string) ([]models.Tag, error) {
	if strings.TrimSpace(noteID) == "" {
		return nil, apperr.Validationf("note id is required")
	}
	raw, err := s.store.Get(ctx, "/note_tags", store.Params(
		"note_id", store.Eq(noteID),
		"select", "tag_id",
	))
	if err != nil {
		return nil, err
	}
	tagIDs := codec.DecodeJoinIDs(raw, "tag_id")
	if len(tagIDs) == 0 {
		return []models.Tag{}, nil
	}

	raw, err = s.store.Get(ctx, "/tags", store.Params(
		"or", store.OrEq("id", tagIDs...),
		"select", "*",
	))
	if err != nil {
		return nil, err
	}
	return codec.DecodeTags(raw), nil
}

// AllTags returns every tag ordered by name ascending.
func (s *Service) AllTags(ctx context.Context) ([]models.Tag, error) {
	raw, err := s.store.Get(ctx, "/tags", store.Params(
		"select", "*",
		"order", store.Asc("name"),
	))
	if err != nil {
		return nil, err
	}
	return codec.DecodeTags(raw), nil
}

// NotesByTag returns notes carrying the named tag, newest first.
func (s *Service) NotesByTag(ctx context.Context, tagName string, limit int) ([]models.Note, error) {
	if strings.TrimSpace(tagName) == "" {
		return nil, apperr.Validationf("tag name is required")
	}
	if limit <= 0 {
		limit = 50
	}

	raw, err := s.store.Get(ctx, "/tags", store.Params("name", store.Eq(tagName)))
	if err != nil {
		return nil, err
	}
	tag := codec.DecodeTag(raw)
	if tag == nil || tag.ID == "" {
		return nil, apperr.NotFoundf("tag not found: %s", tagName)
	}

	raw, err = s.store.Get(ctx, "/note_tags", store.Params(
		"tag_id", store.Eq(tag.ID),
		"select", "note_id",
	))
	if err != nil {
		return nil, err
	}
	noteIDs := codec.DecodeJoinIDs(raw, "note_id")
	if len(noteIDs) == 0 {
		return []models.Note{}, nil
	}

	raw, err = s.store.Get(ctx, "/notes", store.Params(
		"or", store.OrEq("id", noteIDs...),
		"select", "*",
		"order", store.Desc("updated_at"),
		"limit", fmt.Sprint(limit),
	))
	if err != nil {
		return nil, err
	}
	return codec.DecodeNotes(raw), nil
}

// dedupeNames trims, drops empties, and keeps the first occurrence of each
// name so a single call is idempotent under duplicates.
func dedupeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
