package api

import (
	"github.com/starford/zettel/internal/models"
	"github.com/starford/zettel/internal/zettel"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	NoteType string   `json:"note_type,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// UpdateNoteRequest is the request body for a partial note update. Nil
// fields are left unchanged.
type UpdateNoteRequest struct {
	Title    *string  `json:"title,omitempty"`
	Content  *string  `json:"content,omitempty"`
	NoteType *string  `json:"note_type,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// AddTagsRequest is the request body for attaching tags to a note.
type AddTagsRequest struct {
	Tags []string `json:"tags"`
}

// CreateLinkRequest is the request body for creating a link.
type CreateLinkRequest struct {
	SourceID      string `json:"source_id"`
	TargetID      string `json:"target_id"`
	LinkType      string `json:"link_type,omitempty"`
	Description   string `json:"description,omitempty"`
	Bidirectional bool   `json:"bidirectional,omitempty"`
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []models.Note `json:"notes"`
	Count int           `json:"count"`
}

// TagListResponse wraps tag listings.
type TagListResponse struct {
	Tags  []models.Tag `json:"tags"`
	Count int          `json:"count"`
}

// SimilarResponse wraps similarity results.
type SimilarResponse struct {
	Results []zettel.SimilarNote `json:"results"`
	Count   int                  `json:"count"`
}
