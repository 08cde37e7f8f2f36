// Package codec translates between raw store records and the domain types,
// and builds write payloads. Decoding fails softly: an empty or malformed
// record yields nil (callers treat nil as "not found"), a malformed list
// yields an empty slice. No side effects beyond pure transformation.
package codec

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/starford/zettel/internal/models"
)

type noteRecord struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	NoteType  string          `json:"note_type"`
	Embedding json.RawMessage `json:"embedding"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func (r noteRecord) toNote() models.Note {
	return models.Note{
		ID:        r.ID,
		Title:     r.Title,
		Content:   r.Content,
		NoteType:  models.NoteType(r.NoteType),
		Embedding: decodeEmbedding(r.Embedding),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// DecodeNote maps a store response holding zero or more note rows to the
// first note, or nil when the response is empty or not note-shaped.
func DecodeNote(raw json.RawMessage) *models.Note {
	rec, ok := firstRecord[noteRecord](raw)
	if !ok || rec.ID == "" {
		return nil
	}
	n := rec.toNote()
	return &n
}

// DecodeNotes maps a list response to notes. Empty or non-list input yields
// an empty slice, never an error.
func DecodeNotes(raw json.RawMessage) []models.Note {
	var recs []noteRecord
	if len(raw) == 0 || json.Unmarshal(raw, &recs) != nil {
		return []models.Note{}
	}
	notes := make([]models.Note, len(recs))
	for i, r := range recs {
		notes[i] = r.toNote()
	}
	return notes
}

// DecodeTag maps a store response to the first tag, or nil when absent.
func DecodeTag(raw json.RawMessage) *models.Tag {
	rec, ok := firstRecord[models.Tag](raw)
	if !ok {
		return nil
	}
	return &rec
}

// DecodeTags maps a list response to tags.
func DecodeTags(raw json.RawMessage) []models.Tag {
	var tags []models.Tag
	if len(raw) == 0 || json.Unmarshal(raw, &tags) != nil {
		return []models.Tag{}
	}
	return tags
}

// DecodeLinks maps a list response to links.
func DecodeLinks(raw json.RawMessage) []models.Link {
	var links []models.Link
	if len(raw) == 0 || json.Unmarshal(raw, &links) != nil {
		return []models.Link{}
	}
	return links
}

// DecodeJoinIDs extracts one column (note_id or tag_id) from note_tag rows.
func DecodeJoinIDs(raw json.RawMessage, column string) []string {
	var rows []map[string]string
	if len(raw) == 0 || json.Unmarshal(raw, &rows) != nil {
		return []string{}
	}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id := row[column]; id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// decodeEmbedding handles both representations the store uses for vector
// columns: a JSON float array and a "[0.1,0.2,...]" string.
func decodeEmbedding(raw json.RawMessage) []float32 {
	if len(raw) == 0 {
		return nil
	}
	var vec []float32
	if json.Unmarshal(raw, &vec) == nil {
		return vec
	}
	var s string
	if json.Unmarshal(raw, &s) == nil && strings.HasPrefix(s, "[") {
		if json.Unmarshal([]byte(s), &vec) == nil {
			return vec
		}
	}
	return nil
}

// NotePayload builds the insert payload for a note, stamping both
// timestamps to the current time. A nil embedding is omitted.
func NotePayload(title, content string, noteType models.NoteType, embedding []float32) map[string]any {
	now := models.Timestamp(time.Now())
	payload := map[string]any{
		"title":      Truncate(title, models.MaxTitleLen),
		"content":    Truncate(content, models.MaxContentLen),
		"note_type":  string(noteType),
		"created_at": now,
		"updated_at": now,
	}
	if embedding != nil {
		payload["embedding"] = embedding
	}
	return payload
}

// TagPayload builds the insert payload for a tag.
func TagPayload(name string) map[string]any {
	return map[string]any{
		"name":       Truncate(name, models.MaxTagNameLen),
		"created_at": models.Timestamp(time.Now()),
	}
}

// NoteTagPayload builds the insert payload for a note-tag join row.
func NoteTagPayload(noteID, tagID string) map[string]any {
	return map[string]any{
		"note_id":    noteID,
		"tag_id":     tagID,
		"created_at": models.Timestamp(time.Now()),
	}
}

// LinkPayload builds the insert payload for a directed link.
func LinkPayload(sourceID, targetID string, linkType models.LinkType, description string) map[string]any {
	payload := map[string]any{
		"source_id":  sourceID,
		"target_id":  targetID,
		"link_type":  string(linkType),
		"created_at": models.Timestamp(time.Now()),
	}
	if description != "" {
		payload["description"] = Truncate(description, models.MaxDescriptionLen)
	}
	return payload
}

// Truncate trims s and clips it to max characters. Limits count runes, not
// bytes, so multibyte text is never cut mid-rune.
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > max {
		return string([]rune(s)[:max])
	}
	return s
}

func firstRecord[T any](raw json.RawMessage) (T, bool) {
	var zero T
	if len(raw) == 0 {
		return zero, false
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var list []T
		if json.Unmarshal(raw, &list) != nil || len(list) == 0 {
			return zero, false
		}
		return list[0], true
	}
	var rec T
	if json.Unmarshal(raw, &rec) != nil {
		return zero, false
	}
	return rec, true
}
