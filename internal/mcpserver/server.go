// Package mcpserver exposes the note graph service as MCP (Model Context
// Protocol) tools over stdio transport. Every tool answers with a uniform
// envelope: {"success": true, ...} or a tool error carrying a message;
// nothing raises past this boundary.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/zettel/internal/models"
	"github.com/starford/zettel/internal/zettel"
)

// Server wraps the MCP server with the note graph tools.
type Server struct {
	mcp    *server.MCPServer
	svc    *zettel.Service
	logger *slog.Logger
}

// New creates an MCP server with all tools registered.
func New(svc *zettel.Service, logger *slog.Logger) *Server {
	s := &Server{svc: svc, logger: logger}

	s.mcp = server.NewMCPServer(
		"Zettel",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a new Zettelkasten note with optional tags."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Note title (max 500 chars)")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note content (max 10000 chars)")),
		mcp.WithString("note_type", mcp.Description("One of: permanent, fleeting, literature, structure, hub (default permanent)")),
		mcp.WithString("tags", mcp.Description("Comma-separated tag names")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("get_note",
		mcp.WithDescription("Retrieve a note by id or by exact title."),
		mcp.WithString("id", mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("Note title, used when id is absent")),
	), s.getNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Update a note. Only supplied fields change; tags are added, not replaced."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("content", mcp.Description("New content")),
		mcp.WithString("note_type", mcp.Description("New note type")),
		mcp.WithString("tags", mcp.Description("Comma-separated tag names to add")),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Delete a note by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Search notes by substring over title or content, optionally filtered by note type."),
		mcp.WithString("query", mcp.Description("Search term")),
		mcp.WithString("note_type", mcp.Description("Exact note type filter")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 50)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes ordered by most recently updated."),
		mcp.WithNumber("limit", mcp.Description("Max results (default 100)")),
		mcp.WithNumber("offset", mcp.Description("Rows to skip")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("create_link",
		mcp.WithDescription("Create a typed directed link between two notes, optionally bidirectional "+
			"(a second link with the inverse type is written target-to-source)."),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("Source note id")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Target note id")),
		mcp.WithString("link_type", mcp.Description("One of: reference, extends, extended_by, refines, refined_by, "+
			"contradicts, contradicted_by, questions, questioned_by, supports, supported_by, related (default reference)")),
		mcp.WithString("description", mcp.Description("Optional link description (max 500 chars)")),
		mcp.WithBoolean("bidirectional", mcp.Description("Also create the inverse link")),
	), s.createLink)

	s.mcp.AddTool(mcp.NewTool("remove_link",
		mcp.WithDescription("Remove links between two notes by exact source/target match."),
		mcp.WithString("source_id", mcp.Required(), mcp.Description("Source note id")),
		mcp.WithString("target_id", mcp.Required(), mcp.Description("Target note id")),
		mcp.WithString("link_type", mcp.Description("Restrict removal to one link type")),
		mcp.WithBoolean("bidirectional", mcp.Description("Also remove the mirrored link")),
	), s.removeLink)

	s.mcp.AddTool(mcp.NewTool("get_linked_notes",
		mcp.WithDescription("Get notes linked to a note in the given direction."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("direction", mcp.Description("outgoing, incoming, or both (default outgoing)")),
	), s.getLinkedNotes)

	s.mcp.AddTool(mcp.NewTool("find_similar_notes",
		mcp.WithDescription("Rank notes by structural similarity to a reference note (shared tags and links)."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Reference note id")),
		mcp.WithNumber("threshold", mcp.Description("Minimum similarity in [0,1] (default 0.3)")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 5)")),
	), s.findSimilarNotes)

	s.mcp.AddTool(mcp.NewTool("get_all_tags",
		mcp.WithDescription("List every tag, ordered by name."),
	), s.getAllTags)

	s.mcp.AddTool(mcp.NewTool("get_notes_by_tag",
		mcp.WithDescription("List notes carrying a tag, newest first."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag name")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 50)")),
	), s.getNotesByTag)

	s.mcp.AddTool(mcp.NewTool("export_note",
		mcp.WithDescription("Export a note in a textual format. Currently only markdown."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithString("format", mcp.Description("Export format (default markdown)")),
	), s.exportNote)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.svc.CreateNote(ctx, zettel.CreateNoteInput{
		Title:    title,
		Content:  content,
		NoteType: models.NoteType(req.GetString("note_type", "")),
		Tags:     splitTags(req.GetString("tags", "")),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{
		"note":       result.Note,
		"added_tags": result.AddedTags,
		"warnings":   result.Warnings,
	}), nil
}

func (s *Server) getNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	title := req.GetString("title", "")
	if id == "" && title == "" {
		return mcp.NewToolResultError("either id or title is required"), nil
	}

	var (
		note *models.Note
		err  error
	)
	if id != "" {
		note, err = s.svc.GetNote(ctx, id)
	} else {
		note, err = s.svc.GetNoteByTitle(ctx, title)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"note": note}), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	in := zettel.UpdateNoteInput{ID: id, Tags: splitTags(req.GetString("tags", ""))}
	if v := req.GetString("title", ""); v != "" {
		in.Title = &v
	}
	if v := req.GetString("content", ""); v != "" {
		in.Content = &v
	}
	if v := req.GetString("note_type", ""); v != "" {
		nt := models.NoteType(v)
		in.NoteType = &nt
	}

	result, err := s.svc.UpdateNote(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{
		"note":       result.Note,
		"added_tags": result.AddedTags,
		"warnings":   result.Warnings,
	}), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.svc.DeleteNote(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"message": result.Message}), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.SearchNotes(ctx, zettel.SearchInput{
		Query:    req.GetString("query", ""),
		NoteType: models.NoteType(req.GetString("note_type", "")),
		Limit:    req.GetInt("limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"notes": notes, "count": len(notes)}), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.ListNotes(ctx, req.GetInt("limit", 0), req.GetInt("offset", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"notes": notes, "count": len(notes)}), nil
}

func (s *Server) createLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := req.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.svc.CreateLink(ctx, zettel.CreateLinkInput{
		SourceID:      sourceID,
		TargetID:      targetID,
		LinkType:      models.LinkType(req.GetString("link_type", "")),
		Description:   req.GetString("description", ""),
		Bidirectional: req.GetBool("bidirectional", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{
		"source_note":     result.SourceNote,
		"target_note":     result.TargetNote,
		"link_type":       result.LinkType,
		"inverse_created": result.InverseCreated,
		"warnings":        result.Warnings,
	}), nil
}

func (s *Server) removeLink(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sourceID, err := req.RequireString("source_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	targetID, err := req.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.svc.RemoveLink(ctx, zettel.RemoveLinkInput{
		SourceID:      sourceID,
		TargetID:      targetID,
		LinkType:      models.LinkType(req.GetString("link_type", "")),
		Bidirectional: req.GetBool("bidirectional", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"message": result.Message}), nil
}

func (s *Server) getLinkedNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.LinkedNotes(ctx, id, req.GetString("direction", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"notes": notes, "count": len(notes)}), nil
}

func (s *Server) findSimilarNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.FindSimilar(ctx, id,
		req.GetFloat("threshold", 0.3), req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"results": results, "count": len(results)}), nil
}

func (s *Server) getAllTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.AllTags(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"tags": tags, "count": len(tags)}), nil
}

func (s *Server) getNotesByTag(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes, err := s.svc.NotesByTag(ctx, tag, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"notes": notes, "count": len(notes)}), nil
}

func (s *Server) exportNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := s.svc.ExportNote(ctx, id, req.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.success(map[string]any{"format": result.Format, "content": result.Content}), nil
}

// success renders the uniform success envelope.
func (s *Server) success(payload map[string]any) *mcp.CallToolResult {
	envelope := map[string]any{"success": true}
	for k, v := range payload {
		envelope[k] = v
	}
	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		s.logger.Error("envelope encoding failed", slog.String("error", err.Error()))
		return mcp.NewToolResultError("internal encoding error")
	}
	return mcp.NewToolResultText(string(out))
}

// splitTags turns a comma-separated list into trimmed tag names.
func splitTags(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
