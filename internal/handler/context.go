package handler

import (
	"fmt"
	"net/http"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/middleware"
)

// menuItem is one entry of the main navigation.
type menuItem struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// pageContext is the shared part of every page: site chrome, the sidebar
// aggregates and the signed-in user. Handlers embed it in their response.
type pageContext struct {
	Site        string                 `json:"site"`
	Title       string                 `json:"title"`
	Menu        []menuItem             `json:"menu"`
	CatSelected int64                  `json:"cat_selected"`
	Categories  []domain.CategoryCount `json:"categories"`
	Tags        []domain.TagCount      `json:"tags"`
	User        *domain.Identity       `json:"user,omitempty"`
}

// pageContext builds the shared context. catSelected is the id of the
// category being browsed, or 0.
func (s *Server) pageContext(r *http.Request, title string, catSelected int64) (pageContext, error) {
	ctx := r.Context()

	cats, err := s.svc.Sidebar.Categories(ctx)
	if err != nil {
		return pageContext{}, fmt.Errorf("handler.pageContext: %w", err)
	}
	tags, err := s.svc.Sidebar.Tags(ctx)
	if err != nil {
		return pageContext{}, fmt.Errorf("handler.pageContext: %w", err)
	}
	if cats == nil {
		cats = []domain.CategoryCount{}
	}
	if tags == nil {
		tags = []domain.TagCount{}
	}

	pc := pageContext{
		Site:        s.opts.SiteName,
		Title:       title,
		CatSelected: catSelected,
		Categories:  cats,
		Tags:        tags,
	}

	id, signedIn := middleware.IdentityFrom(ctx)
	pc.Menu = append(pc.Menu, menuItem{Title: "About", URL: "/about"})
	if signedIn && id.Has(domain.PermAddNote) {
		pc.Menu = append(pc.Menu, menuItem{Title: "Add note", URL: "/addpage"})
	}
	pc.Menu = append(pc.Menu, menuItem{Title: "Contact", URL: "/contact"})
	if signedIn {
		pc.User = &id
		pc.Menu = append(pc.Menu, menuItem{Title: "Log out", URL: "/logout"})
	} else {
		pc.Menu = append(pc.Menu, menuItem{Title: "Log in", URL: s.opts.LoginURL})
	}
	return pc, nil
}

// identity returns the signed-in user, or nil.
func identity(r *http.Request) *domain.Identity {
	if id, ok := middleware.IdentityFrom(r.Context()); ok {
		return &id
	}
	return nil
}
