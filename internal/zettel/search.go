package zettel

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/zettel/internal/apperr"
	"github.com/starford/zettel/internal/codec"
	"github.com/starford/zettel/internal/models"
	"github.com/starford/zettel/internal/store"
)

// SearchInput holds the filters for SearchNotes. All fields are optional.
type SearchInput struct {
	Query    string
	NoteType models.NoteType
	Tags     []string
	Limit    int
}

// SearchNotes filters notes by case-insensitive substring match over title
// or content, and by exact note type. Results come back newest first.
//
// Tag filtering is a known gap: it needs a join-based store query that the
// current filter convention cannot express, so the Tags field is accepted
// but ignored.
func (s *Service) SearchNotes(ctx context.Context, in SearchInput) ([]models.Note, error) {
	if in.Limit <= 0 {
		in.Limit = 50
	}
	params := store.Params(
		"select", "*",
		"order", store.Desc("updated_at"),
		"limit", fmt.Sprint(in.Limit),
	)

	if q := strings.TrimSpace(in.Query); q != "" {
		params.Set("or", store.OrILike(q, "title", "content"))
	}
	if in.NoteType != "" {
		nt := normalizeNoteType(in.NoteType)
		if !models.ValidNoteType(nt) {
			return nil, apperr.Validationf("invalid note type %q, must be one of: %s", in.NoteType, noteTypeList())
		}
		params.Set("note_type", store.Eq(string(nt)))
	}
	if len(in.Tags) > 0 {
		s.logger.Debug("tag filter ignored in search, pending join support")
	}

	raw, err := s.store.Get(ctx, "/notes", params)
	if err != nil {
		return nil, err
	}
	return codec.DecodeNotes(raw), nil
}
