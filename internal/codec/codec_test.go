package codec

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/starford/zettel/internal/models"
)

func TestDecodeNoteFromList(t *testing.T) {
	raw := json.RawMessage(`[{"id":"n1","title":"Hello","content":"World","note_type":"permanent","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-02T00:00:00Z"}]`)
	note := DecodeNote(raw)
	if note == nil {
		t.Fatal("DecodeNote returned nil")
	}
	if note.ID != "n1" || note.Title != "Hello" || note.NoteType != models.NotePermanent {
		t.Errorf("unexpected note: %+v", note)
	}
}

func TestDecodeNoteSoftFail(t *testing.T) {
	cases := map[string]json.RawMessage{
		"nil":        nil,
		"empty list": json.RawMessage(`[]`),
		"null":       json.RawMessage(`null`),
		"garbage":    json.RawMessage(`{"no`),
		"no id":      json.RawMessage(`[{}]`),
	}
	for name, raw := range cases {
		if note := DecodeNote(raw); note != nil {
			t.Errorf("%s: expected nil, got %+v", name, note)
		}
	}
}

func TestDecodeNotesNeverErrors(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage(`{}`), json.RawMessage(`"x"`)} {
		notes := DecodeNotes(raw)
		if notes == nil || len(notes) != 0 {
			t.Errorf("DecodeNotes(%s) = %v, want empty slice", raw, notes)
		}
	}
	notes := DecodeNotes(json.RawMessage(`[{"id":"a"},{"id":"b"}]`))
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2", len(notes))
	}
}

func TestDecodeEmbeddingForms(t *testing.T) {
	array := json.RawMessage(`[{"id":"n1","embedding":[0.5,1.5]}]`)
	note := DecodeNote(array)
	if note == nil || len(note.Embedding) != 2 || note.Embedding[1] != 1.5 {
		t.Errorf("array form: %+v", note)
	}

	// pgvector columns often come back as a string.
	str := json.RawMessage(`[{"id":"n2","embedding":"[0.25,0.75]"}]`)
	note = DecodeNote(str)
	if note == nil || len(note.Embedding) != 2 || note.Embedding[0] != 0.25 {
		t.Errorf("string form: %+v", note)
	}

	absent := json.RawMessage(`[{"id":"n3","embedding":null}]`)
	note = DecodeNote(absent)
	if note == nil || note.Embedding != nil {
		t.Errorf("null form: %+v", note)
	}
}

func TestDecodeJoinIDs(t *testing.T) {
	raw := json.RawMessage(`[{"tag_id":"t1"},{"tag_id":"t2"},{"tag_id":""}]`)
	ids := DecodeJoinIDs(raw, "tag_id")
	if len(ids) != 2 || ids[0] != "t1" || ids[1] != "t2" {
		t.Errorf("ids = %v", ids)
	}
	if ids := DecodeJoinIDs(nil, "tag_id"); len(ids) != 0 {
		t.Errorf("nil input ids = %v", ids)
	}
}

func TestNotePayloadStampsTimestamps(t *testing.T) {
	payload := NotePayload("Title", "Content", models.NoteFleeting, []float32{0.1})
	if payload["created_at"] == "" || payload["created_at"] != payload["updated_at"] {
		t.Errorf("timestamps: created=%v updated=%v", payload["created_at"], payload["updated_at"])
	}
	if payload["note_type"] != "fleeting" {
		t.Errorf("note_type = %v", payload["note_type"])
	}
	if _, ok := payload["embedding"]; !ok {
		t.Error("embedding missing from payload")
	}

	payload = NotePayload("Title", "Content", models.NotePermanent, nil)
	if _, ok := payload["embedding"]; ok {
		t.Error("nil embedding should be omitted")
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", models.MaxTitleLen+10)
	if got := Truncate(long, models.MaxTitleLen); len(got) != models.MaxTitleLen {
		t.Errorf("len = %d, want %d", len(got), models.MaxTitleLen)
	}
	if got := Truncate("  padded  ", 100); got != "padded" {
		t.Errorf("got %q", got)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	// 200 CJK runes are 600 bytes but still well under a 500-char limit.
	cjk := strings.Repeat("世", 200)
	if got := Truncate(cjk, models.MaxTitleLen); got != cjk {
		t.Errorf("text under the character limit was cut to %d runes", utf8.RuneCountInString(got))
	}

	got := Truncate(strings.Repeat("世", 600), models.MaxTitleLen)
	if n := utf8.RuneCountInString(got); n != models.MaxTitleLen {
		t.Errorf("runes = %d, want %d", n, models.MaxTitleLen)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got[len(got)-4:])
	}
}

func TestLinkPayloadOmitsEmptyDescription(t *testing.T) {
	payload := LinkPayload("a", "b", models.LinkExtends, "")
	if _, ok := payload["description"]; ok {
		t.Error("empty description should be omitted")
	}
	payload = LinkPayload("a", "b", models.LinkExtends, "why")
	if payload["description"] != "why" {
		t.Errorf("description = %v", payload["description"])
	}
}
