package zettel_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/starford/zettel/internal/apperr"
	"github.com/starford/zettel/internal/models"
	"github.com/starford/zettel/internal/testutil"
	"github.com/starford/zettel/internal/zettel"
)

// lengthEmbedder produces a vector derived from the input text, so changed
// text yields a changed vector.
func lengthEmbedder() *testutil.StubEmbedder {
	return &testutil.StubEmbedder{Vec: func(text string) []float32 {
		return []float32{float32(len(text)), 1}
	}}
}

func TestCreateAndGetNote(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()

	result, err := svc.CreateNote(ctx, zettel.CreateNoteInput{
		Title:   "Atomic habits",
		Content: "Small changes compound.",
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Note.ID == "" {
		t.Fatal("created note has no id")
	}
	if result.Note.NoteType != models.NotePermanent {
		t.Errorf("note_type = %s, want permanent default", result.Note.NoteType)
	}

	got, err := svc.GetNote(ctx, result.Note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Atomic habits" || got.Content != "Small changes compound." {
		t.Errorf("got %+v", got)
	}
	if got.Embedding != nil {
		t.Error("embedding should be nil without a credential")
	}
}

func TestCreateNoteWithEmbedding(t *testing.T) {
	svc, _ := testutil.TestServiceWithEmbedder(t, lengthEmbedder())
	ctx := context.Background()

	result, err := svc.CreateNote(ctx, zettel.CreateNoteInput{Title: "T", Content: "C"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetNote(ctx, result.Note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Embedding) == 0 {
		t.Fatal("embedding missing despite configured credential")
	}
}

func TestCreateNoteValidation(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()

	cases := []zettel.CreateNoteInput{
		{Title: "", Content: "body"},
		{Title: "title", Content: ""},
		{Title: "title", Content: "body", NoteType: "ephemeral"},
	}
	for i, in := range cases {
		if _, err := svc.CreateNote(ctx, in); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("case %d: err = %v, want validation error", i, err)
		}
	}
}

func TestCreateNoteEmptyResponseFallback(t *testing.T) {
	svc, fake := testutil.TestService(t)
	fake.EmptyWriteBodies = true
	ctx := context.Background()

	result, err := svc.CreateNote(ctx, zettel.CreateNoteInput{Title: "Lookup me", Content: "body"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Note.ID == "" {
		t.Fatal("fallback lookup did not recover the created note")
	}
	if result.Note.Title != "Lookup me" {
		t.Errorf("title = %s", result.Note.Title)
	}
}

func TestGetNoteNotFound(t *testing.T) {
	svc, _ := testutil.TestService(t)
	if _, err := svc.GetNote(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestGetNoteByTitle(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, zettel.CreateNoteInput{Title: "Exact title", Content: "body"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetNoteByTitle(ctx, "Exact title")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != created.Note.ID {
		t.Errorf("id = %s, want %s", got.ID, created.Note.ID)
	}
	if _, err := svc.GetNoteByTitle(ctx, "No such title"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestUpdateNotePartial(t *testing.T) {
	svc, _ := testutil.TestServiceWithEmbedder(t, lengthEmbedder())
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, zettel.CreateNoteInput{Title: "Before", Content: "unchanged content"})
	if err != nil {
		t.Fatal(err)
	}
	before, err := svc.GetNote(ctx, created.Note.ID)
	if err != nil {
		t.Fatal(err)
	}

	newTitle := "After"
	result, err := svc.UpdateNote(ctx, zettel.UpdateNoteInput{ID: created.Note.ID, Title: &newTitle})
	if err != nil {
		t.Fatal(err)
	}
	if result.Note.Title != "After" {
		t.Errorf("title = %s", result.Note.Title)
	}
	if result.Note.Content != "unchanged content" {
		t.Errorf("content changed: %s", result.Note.Content)
	}
	// Merged text changed, so the vector must differ from the original.
	if len(result.Note.Embedding) == 0 || result.Note.Embedding[0] == before.Embedding[0] {
		t.Errorf("embedding not regenerated: before=%v after=%v", before.Embedding, result.Note.Embedding)
	}
	if result.Note.UpdatedAt == "" {
		t.Error("updated_at not set")
	}
}

func TestUpdateNoteTypeOnlyKeepsEmbedding(t *testing.T) {
	svc, fake := testutil.TestServiceWithEmbedder(t, lengthEmbedder())
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, zettel.CreateNoteInput{Title: "T", Content: "C"})
	if err != nil {
		t.Fatal(err)
	}
	nt := models.NoteHub
	if _, err := svc.UpdateNote(ctx, zettel.UpdateNoteInput{ID: created.Note.ID, NoteType: &nt}); err != nil {
		t.Fatal(err)
	}

	rows := fake.Rows("notes")
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0]["note_type"] != "hub" {
		t.Errorf("note_type = %v", rows[0]["note_type"])
	}
}

func TestUpdateNoteRejectsBlankValues(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, zettel.CreateNoteInput{Title: "Keep", Content: "keep body"})
	if err != nil {
		t.Fatal(err)
	}

	empty := ""
	blank := "   "
	cases := []zettel.UpdateNoteInput{
		{ID: created.Note.ID, Title: &empty},
		{ID: created.Note.ID, Title: &blank},
		{ID: created.Note.ID, Content: &empty},
		{ID: created.Note.ID, Content: &blank},
	}
	for i, in := range cases {
		if _, err := svc.UpdateNote(ctx, in); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("case %d: err = %v, want validation error", i, err)
		}
	}

	got, err := svc.GetNote(ctx, created.Note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Keep" || got.Content != "keep body" {
		t.Errorf("note changed despite rejected updates: %+v", got)
	}
}

func TestUpdateNoteValidatesBeforeFetching(t *testing.T) {
	svc, _ := testutil.TestService(t)
	nt := models.NoteType("ephemeral")

	// Invalid input on a nonexistent note must fail validation, proving no
	// store read ran first.
	_, err := svc.UpdateNote(context.Background(), zettel.UpdateNoteInput{ID: "missing", NoteType: &nt})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("err = %v, want validation error before any lookup", err)
	}
}

func TestUpdateNoteMissing(t *testing.T) {
	svc, _ := testutil.TestService(t)
	title := "x"
	_, err := svc.UpdateNote(context.Background(), zettel.UpdateNoteInput{ID: "missing", Title: &title})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestDeleteNoteThenGetFails(t *testing.T) {
	svc, _ := testutil.TestService(t)
	ctx := context.Background()

	created, err := svc.CreateNote(ctx, zettel.CreateNoteInput{Title: "Doomed", Content: "body"})
	if err != nil {
		t.Fatal(err)
	}
	result, err := svc.DeleteNote(ctx, created.Note.ID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Message == "" {
		t.Error("empty success marker")
	}
	if _, err := svc.GetNote(ctx, created.Note.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found after delete", err)
	}
}

func TestDeleteNoteMissing(t *testing.T) {
	svc, _ := testutil.TestService(t)
	if _, err := svc.DeleteNote(context.Background(), "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
}

func TestListNotesLimitAndOrder(t *testing.T) {
	svc, fake := testutil.TestService(t)
	for i := 0; i < 5; i++ {
		fake.Seed("notes", testutil.Row{
			"title":      fmt.Sprintf("Note %d", i),
			"content":    "body",
			"note_type":  "permanent",
			"created_at": fmt.Sprintf("2026-01-0%dT00:00:00Z", i+1),
			"updated_at": fmt.Sprintf("2026-01-0%dT00:00:00Z", i+1),
		})
	}

	notes, err := svc.ListNotes(context.Background(), 3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 3 {
		t.Fatalf("len = %d", len(notes))
	}
	if notes[0].Title != "Note 4" {
		t.Errorf("first = %s, want most recently updated", notes[0].Title)
	}
	if !strings.HasPrefix(notes[0].UpdatedAt, "2026-01-05") {
		t.Errorf("updated_at = %s", notes[0].UpdatedAt)
	}
}

func TestCreateNoteTruncatesOverlongFields(t *testing.T) {
	svc, fake := testutil.TestService(t)
	long := strings.Repeat("t", models.MaxTitleLen+50)

	if _, err := svc.CreateNote(context.Background(), zettel.CreateNoteInput{Title: long, Content: "body"}); err != nil {
		t.Fatal(err)
	}
	rows := fake.Rows("notes")
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if stored, _ := rows[0]["title"].(string); len(stored) != models.MaxTitleLen {
		t.Errorf("stored title len = %d, want %d", len(stored), models.MaxTitleLen)
	}
}
