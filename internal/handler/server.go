// Package handler implements the HTTP handlers for the notes server.
// All handlers are methods on Server. Methods are split into domain-specific
// files (notes.go, forms.go, auth.go, etc.) but share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/middleware"
)

// NoteServicer defines the note operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type NoteServicer interface {
	List(ctx context.Context, f domain.NoteFilter, p domain.PaginationParams) (domain.Page[domain.Note], error)
	GetPublished(ctx context.Context, slug string) (domain.Note, error)
	GetByID(ctx context.Context, id int64) (domain.Note, error)
	Create(ctx context.Context, in domain.NoteInput, author *domain.Identity) (domain.Note, error)
	Update(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error)
	Delete(ctx context.Context, id int64) error
}

// CategoryServicer defines the category lookups the handlers depend on.
type CategoryServicer interface {
	GetBySlug(ctx context.Context, slug string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
}

// TagServicer defines the tag lookups the handlers depend on.
type TagServicer interface {
	GetBySlug(ctx context.Context, slug string) (domain.Tag, error)
	List(ctx context.Context) ([]domain.Tag, error)
}

// SidebarServicer provides the published-count aggregates shown on every page.
type SidebarServicer interface {
	Categories(ctx context.Context) ([]domain.CategoryCount, error)
	Tags(ctx context.Context) ([]domain.TagCount, error)
}

// AuthServicer signs users in.
type AuthServicer interface {
	Login(ctx context.Context, username, password string) (domain.Session, error)
}

// ExportServicer defines the business operations the export handler depends on.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Services bundles the Server's dependencies.
// Tests set only the ones the routes under test touch.
type Services struct {
	Notes      NoteServicer
	Categories CategoryServicer
	Tags       TagServicer
	Sidebar    SidebarServicer
	Auth       AuthServicer
	Export     ExportServicer
}

// Options carries presentation settings.
type Options struct {
	// SiteName is injected into every page context.
	SiteName string
	// PageSize is the number of notes per listing page.
	PageSize int
	// LoginURL receives permission failures, with ?next= appended.
	LoginURL string
}

// Server holds the dependencies of every handler.
type Server struct {
	svc  Services
	opts Options
	log  *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// Zero-valued options fall back to defaults.
func NewServer(svc Services, opts Options, log *slog.Logger) *Server {
	if opts.PageSize < 1 {
		opts.PageSize = domain.DefaultPageSize
	}
	if opts.LoginURL == "" {
		opts.LoginURL = "/login"
	}
	if opts.SiteName == "" {
		opts.SiteName = "Notes"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, opts: opts, log: log}
}

// Routes returns the router for every endpoint. Authentication must run
// before it (see middleware.NewAuthenticate); Routes only enforces permissions.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.StripSlashes)
	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Get("/", s.Home)
	r.Get("/category/{catSlug}", s.ShowCategory)
	r.Get("/tag/{tagSlug}", s.ShowTag)
	r.Get("/post/{postSlug}", s.ShowPost)
	r.Get("/about", s.About)
	r.Get("/contact", s.Contact)

	r.Get("/login", s.LoginPage)
	r.Post("/login", s.Login)
	r.Post("/logout", s.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequirePermission(domain.PermAddNote, s.opts.LoginURL))
		r.Get("/addpage", s.AddNoteForm)
		r.Post("/addpage", s.AddNote)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequirePermission(domain.PermChangeNote, s.opts.LoginURL))
		r.Get("/edit/{pk}", s.EditNoteForm)
		r.Post("/edit/{pk}", s.EditNote)
		r.Get("/export", s.GetExport)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequirePermission(domain.PermDeleteNote, s.opts.LoginURL))
		r.Get("/delete/{pk}", s.DeleteNoteForm)
		r.Post("/delete/{pk}", s.DeleteNote)
	})

	return r
}
