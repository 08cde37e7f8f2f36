package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/zettel/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	svc, _ := testutil.TestService(t)
	return New(svc, testutil.DiscardLogger())
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(resultText(t, result)), &out); err != nil {
		t.Fatalf("tool result is not JSON: %v", err)
	}
	return out
}

func mustCreateNote(t *testing.T, s *Server, title string, args map[string]any) string {
	t.Helper()
	full := map[string]any{"title": title, "content": "body"}
	for k, v := range args {
		full[k] = v
	}
	result, err := s.createNote(context.Background(), callReq(full))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("create_note failed: %s", resultText(t, result))
	}
	note := resultJSON(t, result)["note"].(map[string]any)
	return note["id"].(string)
}

func TestCreateNoteTool(t *testing.T) {
	s := testServer(t)

	result, err := s.createNote(context.Background(), callReq(map[string]any{
		"title":   "MCP note",
		"content": "body",
		"tags":    "go, zettel, , go",
	}))
	if err != nil {
		t.Fatal(err)
	}
	body := resultJSON(t, result)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	added := body["added_tags"].([]any)
	if len(added) != 2 {
		t.Errorf("added_tags = %v, want comma list split and deduplicated", added)
	}
}

func TestCreateNoteToolMissingArgs(t *testing.T) {
	s := testServer(t)

	result, err := s.createNote(context.Background(), callReq(map[string]any{"title": "no content"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing content")
	}
}

func TestGetNoteToolByIDOrTitle(t *testing.T) {
	s := testServer(t)
	id := mustCreateNote(t, s, "Findable", nil)
	ctx := context.Background()

	result, err := s.getNote(ctx, callReq(map[string]any{"id": id}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("get by id failed: %s", resultText(t, result))
	}

	result, err = s.getNote(ctx, callReq(map[string]any{"title": "Findable"}))
	if err != nil {
		t.Fatal(err)
	}
	note := resultJSON(t, result)["note"].(map[string]any)
	if note["id"] != id {
		t.Errorf("id = %v, want %s", note["id"], id)
	}

	result, err = s.getNote(ctx, callReq(map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error when both id and title are absent")
	}
}

func TestUpdateNoteTool(t *testing.T) {
	s := testServer(t)
	id := mustCreateNote(t, s, "Old title", nil)

	result, err := s.updateNote(context.Background(), callReq(map[string]any{
		"id":    id,
		"title": "New title",
	}))
	if err != nil {
		t.Fatal(err)
	}
	note := resultJSON(t, result)["note"].(map[string]any)
	if note["title"] != "New title" {
		t.Errorf("title = %v", note["title"])
	}
	if note["content"] != "body" {
		t.Errorf("content = %v, want unchanged", note["content"])
	}
}

func TestDeleteNoteTool(t *testing.T) {
	s := testServer(t)
	id := mustCreateNote(t, s, "Doomed", nil)
	ctx := context.Background()

	result, err := s.deleteNote(ctx, callReq(map[string]any{"id": id}))
	if err != nil {
		t.Fatal(err)
	}
	if result.IsError {
		t.Fatalf("delete failed: %s", resultText(t, result))
	}

	result, err = s.getNote(ctx, callReq(map[string]any{"id": id}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error for deleted note")
	}
}

func TestCreateLinkToolRejectsSelfLink(t *testing.T) {
	s := testServer(t)
	id := mustCreateNote(t, s, "Lonely", nil)

	result, err := s.createLink(context.Background(), callReq(map[string]any{
		"source_id": id,
		"target_id": id,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error for self link")
	}
	if !strings.Contains(resultText(t, result), "different") {
		t.Errorf("message = %s", resultText(t, result))
	}
}

func TestCreateLinkToolBidirectional(t *testing.T) {
	s := testServer(t)
	a := mustCreateNote(t, s, "A", nil)
	b := mustCreateNote(t, s, "B", nil)

	result, err := s.createLink(context.Background(), callReq(map[string]any{
		"source_id":     a,
		"target_id":     b,
		"link_type":     "supports",
		"bidirectional": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	body := resultJSON(t, result)
	if body["inverse_created"] != true {
		t.Errorf("inverse_created = %v", body["inverse_created"])
	}
	if body["link_type"] != "supports" {
		t.Errorf("link_type = %v", body["link_type"])
	}
}

func TestSearchAndListTools(t *testing.T) {
	s := testServer(t)
	mustCreateNote(t, s, "Alpha note", nil)
	mustCreateNote(t, s, "Beta note", nil)
	ctx := context.Background()

	result, err := s.searchNotes(ctx, callReq(map[string]any{"query": "alpha"}))
	if err != nil {
		t.Fatal(err)
	}
	if body := resultJSON(t, result); body["count"] != float64(1) {
		t.Errorf("count = %v", body["count"])
	}

	result, err = s.listNotes(ctx, callReq(map[string]any{"limit": 1}))
	if err != nil {
		t.Fatal(err)
	}
	if body := resultJSON(t, result); body["count"] != float64(1) {
		t.Errorf("count = %v", body["count"])
	}
}

func TestTagTools(t *testing.T) {
	s := testServer(t)
	mustCreateNote(t, s, "Tagged", map[string]any{"tags": "alpha"})
	ctx := context.Background()

	result, err := s.getAllTags(ctx, callReq(nil))
	if err != nil {
		t.Fatal(err)
	}
	if body := resultJSON(t, result); body["count"] != float64(1) {
		t.Errorf("count = %v", body["count"])
	}

	result, err = s.getNotesByTag(ctx, callReq(map[string]any{"tag": "alpha"}))
	if err != nil {
		t.Fatal(err)
	}
	if body := resultJSON(t, result); body["count"] != float64(1) {
		t.Errorf("count = %v", body["count"])
	}

	result, err = s.getNotesByTag(ctx, callReq(map[string]any{"tag": "unknown"}))
	if err != nil {
		t.Fatal(err)
	}
	if !result.IsError {
		t.Error("expected tool error for unknown tag")
	}
}

func TestExportNoteTool(t *testing.T) {
	s := testServer(t)
	id := mustCreateNote(t, s, "Exported", nil)

	result, err := s.exportNote(context.Background(), callReq(map[string]any{"id": id}))
	if err != nil {
		t.Fatal(err)
	}
	body := resultJSON(t, result)
	if body["format"] != "markdown" {
		t.Errorf("format = %v", body["format"])
	}
	if content, _ := body["content"].(string); !strings.HasPrefix(content, "# Exported") {
		t.Errorf("content = %q", content)
	}
}

func TestSplitTags(t *testing.T) {
	cases := map[string][]string{
		"":            nil,
		"  ":          nil,
		"a":           {"a"},
		"a, b ,c":     {"a", "b", "c"},
		",a,,b,":      {"a", "b"},
		"one, , two ": {"one", "two"},
	}
	for in, want := range cases {
		got := splitTags(in)
		if len(got) != len(want) {
			t.Errorf("splitTags(%q) = %v, want %v", in, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("splitTags(%q)[%d] = %q, want %q", in, i, got[i], want[i])
			}
		}
	}
}

func TestToolRegistration(t *testing.T) {
	s := testServer(t)
	if s.MCPServer() == nil {
		t.Fatal("underlying MCP server not initialized")
	}
}
