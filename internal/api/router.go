package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/starford/zettel/internal/zettel"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
func NewRouter(svc *zettel.Service, authEnabled bool, token string, logger *slog.Logger) chi.Router {
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token, logger))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/{id}", h.GetNote)
	r.Patch("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	// Per-note graph operations.
	r.Get("/notes/{id}/tags", h.NoteTags)
	r.Post("/notes/{id}/tags", h.AddTags)
	r.Get("/notes/{id}/links", h.LinkedNotes)
	r.Get("/notes/{id}/similar", h.FindSimilar)
	r.Get("/notes/{id}/export", h.ExportNote)

	// Search.
	r.Get("/search", h.Search)

	// Tags.
	r.Get("/tags", h.AllTags)
	r.Get("/tags/{name}/notes", h.NotesByTag)

	// Links.
	r.Post("/links", h.CreateLink)
	r.Delete("/links", h.RemoveLink)

	return r
}
