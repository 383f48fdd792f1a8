package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/notes/internal/domain"
)

// listingResponse is the context of every paginated note listing.
type listingResponse struct {
	pageContext
	Posts       domain.Page[domain.Note] `json:"posts"`
	IsPaginated bool                     `json:"is_paginated"`
}

// postResponse is the context of the note detail page.
type postResponse struct {
	pageContext
	Post domain.Note `json:"post"`
}

// Home handles GET /.
// Lists published notes, page size from Options, ?page= selects the page.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	s.listing(w, r, domain.NoteFilter{Visibility: domain.Published}, "Home", 0)
}

// ShowCategory handles GET /category/{catSlug}.
func (s *Server) ShowCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := s.svc.Categories.GetBySlug(r.Context(), chi.URLParam(r, "catSlug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f := domain.NoteFilter{Visibility: domain.Published, CategorySlug: cat.Slug}
	s.listing(w, r, f, "Category: "+cat.Name, cat.ID)
}

// ShowTag handles GET /tag/{tagSlug}.
func (s *Server) ShowTag(w http.ResponseWriter, r *http.Request) {
	tag, err := s.svc.Tags.GetBySlug(r.Context(), chi.URLParam(r, "tagSlug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f := domain.NoteFilter{Visibility: domain.Published, TagSlug: tag.Slug}
	s.listing(w, r, f, "Tag: "+tag.Tag, 0)
}

// ShowPost handles GET /post/{postSlug}. Drafts are 404.
func (s *Server) ShowPost(w http.ResponseWriter, r *http.Request) {
	note, err := s.svc.Notes.GetPublished(r.Context(), chi.URLParam(r, "postSlug"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pc, err := s.pageContext(r, note.Title, note.Category.ID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, postResponse{pageContext: pc, Post: note})
}

func (s *Server) listing(w http.ResponseWriter, r *http.Request, f domain.NoteFilter, title string, catSelected int64) {
	var page *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		s.notFound(w, r)
		return
	}

	posts, err := s.svc.Notes.List(r.Context(), f, domain.NewPaginationParams(page, s.opts.PageSize))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pc, err := s.pageContext(r, title, catSelected)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, listingResponse{
		pageContext: pc,
		Posts:       posts,
		IsPaginated: posts.NumPages > 1,
	})
}
