package zettel

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/zettel/internal/apperr"
)

// FormatMarkdown is the only export format currently supported.
const FormatMarkdown = "markdown"

// ExportResult carries a rendered note.
type ExportResult struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}

// ExportNote renders a note into a textual representation. Unsupported
// formats fail with a validation error naming the requested format.
func (s *Service) ExportNote(ctx context.Context, noteID, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatMarkdown
	}
	if format != FormatMarkdown {
		return nil, apperr.Validationf("unsupported export format: %s", format)
	}

	note, err := s.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	tags, err := s.NoteTags(ctx, noteID)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", note.Title)
	fmt.Fprintf(&b, "%s\n\n", note.Content)
	fmt.Fprintf(&b, "**Type:** %s\n", note.NoteType)
	if len(tags) > 0 {
		names := make([]string, len(tags))
		for i, t := range tags {
			names[i] = t.Name
		}
		fmt.Fprintf(&b, "**Tags:** %s\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "**Created:** %s\n", note.CreatedAt)
	fmt.Fprintf(&b, "**Updated:** %s\n", note.UpdatedAt)

	return &ExportResult{Format: format, Content: b.String()}, nil
}
