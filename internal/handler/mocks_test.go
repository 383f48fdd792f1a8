package handler_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/handler"
	"github.com/pkordes/notes/internal/middleware"
)

// ---- mock NoteServicer -----------------------------------------------------

type mockNoteServicer struct {
	list         func(ctx context.Context, f domain.NoteFilter, p domain.PaginationParams) (domain.Page[domain.Note], error)
	getPublished func(ctx context.Context, slug string) (domain.Note, error)
	getByID      func(ctx context.Context, id int64) (domain.Note, error)
	create       func(ctx context.Context, in domain.NoteInput, author *domain.Identity) (domain.Note, error)
	update       func(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error)
	delete       func(ctx context.Context, id int64) error
}

func (m *mockNoteServicer) List(ctx context.Context, f domain.NoteFilter, p domain.PaginationParams) (domain.Page[domain.Note], error) {
	return m.list(ctx, f, p)
}
func (m *mockNoteServicer) GetPublished(ctx context.Context, slug string) (domain.Note, error) {
	return m.getPublished(ctx, slug)
}
func (m *mockNoteServicer) GetByID(ctx context.Context, id int64) (domain.Note, error) {
	return m.getByID(ctx, id)
}
func (m *mockNoteServicer) Create(ctx context.Context, in domain.NoteInput, author *domain.Identity) (domain.Note, error) {
	return m.create(ctx, in, author)
}
func (m *mockNoteServicer) Update(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error) {
	return m.update(ctx, id, in)
}
func (m *mockNoteServicer) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

// compile-time check: mockNoteServicer must satisfy handler.NoteServicer.
var _ handler.NoteServicer = (*mockNoteServicer)(nil)

// ---- catalog mocks ---------------------------------------------------------

type mockCategoryServicer struct {
	getBySlug func(ctx context.Context, slug string) (domain.Category, error)
	list      func(ctx context.Context) ([]domain.Category, error)
}

func (m *mockCategoryServicer) GetBySlug(ctx context.Context, slug string) (domain.Category, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockCategoryServicer) List(ctx context.Context) ([]domain.Category, error) {
	return m.list(ctx)
}

var _ handler.CategoryServicer = (*mockCategoryServicer)(nil)

type mockTagServicer struct {
	getBySlug func(ctx context.Context, slug string) (domain.Tag, error)
	list      func(ctx context.Context) ([]domain.Tag, error)
}

func (m *mockTagServicer) GetBySlug(ctx context.Context, slug string) (domain.Tag, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockTagServicer) List(ctx context.Context) ([]domain.Tag, error) {
	return m.list(ctx)
}

var _ handler.TagServicer = (*mockTagServicer)(nil)

type mockSidebar struct {
	categories func(ctx context.Context) ([]domain.CategoryCount, error)
	tags       func(ctx context.Context) ([]domain.TagCount, error)
}

func (m *mockSidebar) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	return m.categories(ctx)
}
func (m *mockSidebar) Tags(ctx context.Context) ([]domain.TagCount, error) {
	return m.tags(ctx)
}

var _ handler.SidebarServicer = (*mockSidebar)(nil)

type mockAuthServicer struct {
	login func(ctx context.Context, username, password string) (domain.Session, error)
}

func (m *mockAuthServicer) Login(ctx context.Context, username, password string) (domain.Session, error) {
	return m.login(ctx, username, password)
}

var _ handler.AuthServicer = (*mockAuthServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.ExportRow, error) {
	return m.export(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- fixtures --------------------------------------------------------------

var travel = domain.Category{ID: 1, Name: "Travel", Slug: "travel"}

// travelSidebar reports one published note in Travel, tagged "road".
func travelSidebar() *mockSidebar {
	return &mockSidebar{
		categories: func(context.Context) ([]domain.CategoryCount, error) {
			return []domain.CategoryCount{{Category: travel, Total: 1}}, nil
		},
		tags: func(context.Context) ([]domain.TagCount, error) {
			return []domain.TagCount{{Tag: domain.Tag{ID: 1, Tag: "Road", Slug: "road"}, Total: 1}}, nil
		},
	}
}

func catalogChoices() (*mockCategoryServicer, *mockTagServicer) {
	cats := &mockCategoryServicer{
		getBySlug: func(_ context.Context, slug string) (domain.Category, error) {
			if slug == travel.Slug {
				return travel, nil
			}
			return domain.Category{}, domain.ErrNotFound
		},
		list: func(context.Context) ([]domain.Category, error) { return []domain.Category{travel}, nil },
	}
	tags := &mockTagServicer{
		getBySlug: func(_ context.Context, slug string) (domain.Tag, error) {
			if slug == "road" {
				return domain.Tag{ID: 1, Tag: "Road", Slug: "road"}, nil
			}
			return domain.Tag{}, domain.ErrNotFound
		},
		list: func(context.Context) ([]domain.Tag, error) {
			return []domain.Tag{{ID: 1, Tag: "Road", Slug: "road"}}, nil
		},
	}
	return cats, tags
}

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server around svc. Sidebar and catalog lookups
// default to the Travel fixtures when unset.
func newHTTPHandler(svc handler.Services) http.Handler {
	cats, tags := catalogChoices()
	if svc.Sidebar == nil {
		svc.Sidebar = travelSidebar()
	}
	if svc.Categories == nil {
		svc.Categories = cats
	}
	if svc.Tags == nil {
		svc.Tags = tags
	}
	log := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	srv := handler.NewServer(svc, handler.Options{SiteName: "Notes", PageSize: 5, LoginURL: "/login"}, log)
	return srv.Routes()
}

// serve runs req through h, signed in as id when id is non-nil.
func serve(h http.Handler, req *http.Request, id *domain.Identity) *httptest.ResponseRecorder {
	if id != nil {
		req = req.WithContext(middleware.WithIdentity(req.Context(), *id))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func editorWith(perms ...domain.Permission) *domain.Identity {
	return &domain.Identity{UserID: 7, Username: "editor", Permissions: perms}
}
