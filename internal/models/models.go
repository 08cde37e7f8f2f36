// Package models defines the domain types for the note graph.
package models

import "time"

// Field limits enforced before anything is sent to the store.
const (
	MaxTitleLen       = 500
	MaxContentLen     = 10000
	MaxTagNameLen     = 100
	MaxDescriptionLen = 500
)

// NoteType classifies a note in the Zettelkasten method.
type NoteType string

const (
	NotePermanent  NoteType = "permanent"
	NoteFleeting   NoteType = "fleeting"
	NoteLiterature NoteType = "literature"
	NoteStructure  NoteType = "structure"
	NoteHub        NoteType = "hub"
)

// NoteTypes lists every valid note type.
var NoteTypes = []NoteType{NotePermanent, NoteFleeting, NoteLiterature, NoteStructure, NoteHub}

// ValidNoteType reports whether t is a known note type.
func ValidNoteType(t NoteType) bool {
	for _, v := range NoteTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Note is an atomic knowledge unit. IDs and creation timestamps are assigned
// by the store; Embedding is nil when no provider credential was available
// at write time.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	NoteType  NoteType  `json:"note_type"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// Tag is a named label attachable to many notes.
type Tag struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// NoteTag is the join row between a note and a tag. It is created and
// deleted only as a side effect of note tag management.
type NoteTag struct {
	NoteID    string `json:"note_id"`
	TagID     string `json:"tag_id"`
	CreatedAt string `json:"created_at"`
}

// LinkType classifies a directed relation between two notes.
type LinkType string

const (
	LinkReference      LinkType = "reference"
	LinkExtends        LinkType = "extends"
	LinkExtendedBy     LinkType = "extended_by"
	LinkRefines        LinkType = "refines"
	LinkRefinedBy      LinkType = "refined_by"
	LinkContradicts    LinkType = "contradicts"
	LinkContradictedBy LinkType = "contradicted_by"
	LinkQuestions      LinkType = "questions"
	LinkQuestionedBy   LinkType = "questioned_by"
	LinkSupports       LinkType = "supports"
	LinkSupportedBy    LinkType = "supported_by"
	LinkRelated        LinkType = "related"
)

// LinkTypes lists every valid link type.
var LinkTypes = []LinkType{
	LinkReference, LinkExtends, LinkExtendedBy, LinkRefines, LinkRefinedBy,
	LinkContradicts, LinkContradictedBy, LinkQuestions, LinkQuestionedBy,
	LinkSupports, LinkSupportedBy, LinkRelated,
}

// ValidLinkType reports whether t is a known link type.
func ValidLinkType(t LinkType) bool {
	for _, v := range LinkTypes {
		if t == v {
			return true
		}
	}
	return false
}

// inverseLinkTypes maps each link type to its mutual inverse. Symmetric
// types (reference, related) map to themselves.
var inverseLinkTypes = map[LinkType]LinkType{
	LinkReference:      LinkReference,
	LinkExtends:        LinkExtendedBy,
	LinkExtendedBy:     LinkExtends,
	LinkRefines:        LinkRefinedBy,
	LinkRefinedBy:      LinkRefines,
	LinkContradicts:    LinkContradictedBy,
	LinkContradictedBy: LinkContradicts,
	LinkQuestions:      LinkQuestionedBy,
	LinkQuestionedBy:   LinkQuestions,
	LinkSupports:       LinkSupportedBy,
	LinkSupportedBy:    LinkSupports,
	LinkRelated:        LinkRelated,
}

// InverseLinkType returns the inverse type used for the second record of a
// bidirectional link. Unknown types map to themselves.
func InverseLinkType(t LinkType) LinkType {
	if inv, ok := inverseLinkTypes[t]; ok {
		return inv
	}
	return t
}

// Link is a directed, typed relation between two notes.
type Link struct {
	SourceID    string   `json:"source_id"`
	TargetID    string   `json:"target_id"`
	LinkType    LinkType `json:"link_type"`
	Description string   `json:"description,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

// Timestamp formats t the way the store expects timestamp columns.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
