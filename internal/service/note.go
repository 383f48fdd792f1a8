// Package service contains the business logic for the notes application.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/repo"
	"github.com/pkordes/notes/internal/slug"
)

// slugAttempts bounds how often Create regenerates a slug after losing an
// insert race to a concurrent writer.
const slugAttempts = 3

// NoteService implements business logic for Note operations.
type NoteService struct {
	notes      repo.NoteRepo
	categories repo.CategoryRepo
	tags       repo.TagRepo
	slugs      *slug.Generator
	validate   *Validator
	sidebar    *Sidebar
}

// NewNoteService constructs a NoteService. sidebar may be nil, in which case
// no aggregate cache is invalidated on writes.
func NewNoteService(notes repo.NoteRepo, categories repo.CategoryRepo, tags repo.TagRepo, sidebar *Sidebar) *NoteService {
	return &NoteService{
		notes:      notes,
		categories: categories,
		tags:       tags,
		slugs:      slug.NewGenerator(notes.SlugExists),
		validate:   NewValidator(),
		sidebar:    sidebar,
	}
}

// List returns one page of notes matching f.
// Page numbers below 1, beyond the last page or too large to address
// return domain.ErrNotFound;
// page 1 of an empty listing is valid.
func (s *NoteService) List(ctx context.Context, f domain.NoteFilter, p domain.PaginationParams) (domain.Page[domain.Note], error) {
	if !p.Addressable() {
		return domain.Page[domain.Note]{}, fmt.Errorf("service.NoteService.List: page %d: %w", p.Page, domain.ErrNotFound)
	}
	notes, total, err := s.notes.List(ctx, f, p)
	if err != nil {
		return domain.Page[domain.Note]{}, fmt.Errorf("service.NoteService.List: %w", err)
	}
	page := domain.NewPage(notes, p, total)
	if p.Page > page.NumPages {
		return domain.Page[domain.Note]{}, fmt.Errorf("service.NoteService.List: page %d: %w", p.Page, domain.ErrNotFound)
	}
	return page, nil
}

// GetPublished returns a published note by slug.
// Unpublished notes are reported as domain.ErrNotFound.
func (s *NoteService) GetPublished(ctx context.Context, sl string) (domain.Note, error) {
	n, err := s.notes.GetBySlug(ctx, sl, domain.Published)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.GetPublished: %w", err)
	}
	return n, nil
}

// GetByID returns a note by id regardless of publication state.
func (s *NoteService) GetByID(ctx context.Context, id int64) (domain.Note, error) {
	n, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.GetByID: %w", err)
	}
	return n, nil
}

// ListAll returns every note regardless of publication state.
func (s *NoteService) ListAll(ctx context.Context) ([]domain.Note, error) {
	notes, err := s.notes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.NoteService.ListAll: %w", err)
	}
	return notes, nil
}

// Create validates in, assigns a unique slug derived from the title and
// persists the note. author may be nil.
func (s *NoteService) Create(ctx context.Context, in domain.NoteInput, author *domain.Identity) (domain.Note, error) {
	in = normalizeInput(in)
	if err := s.check(ctx, in); err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Create: %w", err)
	}

	var authorID *int64
	if author != nil {
		id := author.UserID
		authorID = &id
	}

	var lastErr error
	for range slugAttempts {
		sl, err := s.slugs.Generate(ctx, in.Title)
		if err != nil {
			return domain.Note{}, fmt.Errorf("service.NoteService.Create: %w", err)
		}
		n, err := s.notes.Create(ctx, in, sl, authorID)
		if errors.Is(err, domain.ErrConflict) {
			lastErr = err
			continue
		}
		if err != nil {
			return domain.Note{}, fmt.Errorf("service.NoteService.Create: %w", err)
		}
		s.sidebar.Invalidate()
		return n, nil
	}
	return domain.Note{}, fmt.Errorf("service.NoteService.Create: %w", lastErr)
}

// Update validates in and overwrites the note's editable fields.
// The slug is left as assigned at creation.
func (s *NoteService) Update(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error) {
	in = normalizeInput(in)
	if err := s.check(ctx, in); err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Update: %w", err)
	}
	n, err := s.notes.Update(ctx, id, in)
	if err != nil {
		return domain.Note{}, fmt.Errorf("service.NoteService.Update: %w", err)
	}
	s.sidebar.Invalidate()
	return n, nil
}

// Delete removes a note and its tag links.
func (s *NoteService) Delete(ctx context.Context, id int64) error {
	if err := s.notes.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.NoteService.Delete: %w", err)
	}
	s.sidebar.Invalidate()
	return nil
}

// check runs struct validation, then confirms the referenced category and
// tags exist. All field problems are reported together.
func (s *NoteService) check(ctx context.Context, in domain.NoteInput) error {
	verr := &domain.ValidationError{Fields: map[string]string{}}
	if err := s.validate.Validate(in); err != nil {
		var fe *domain.ValidationError
		if !errors.As(err, &fe) {
			return err
		}
		verr = fe
	}

	if _, ok := verr.Fields["category"]; !ok {
		_, err := s.categories.GetByID(ctx, in.CategoryID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			verr.Fields["category"] = "select a valid choice"
		case err != nil:
			return err
		}
	}

	if _, ok := verr.Fields["tags"]; !ok && len(in.TagIDs) > 0 {
		found, err := s.tags.ListByIDs(ctx, in.TagIDs)
		if err != nil {
			return err
		}
		if len(found) != len(in.TagIDs) {
			verr.Fields["tags"] = "select a valid choice"
		}
	}

	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

// normalizeInput trims the title, drops an empty image path and removes
// duplicate tag ids while keeping their order.
func normalizeInput(in domain.NoteInput) domain.NoteInput {
	in.Title = strings.TrimSpace(in.Title)
	if in.Image != nil && strings.TrimSpace(*in.Image) == "" {
		in.Image = nil
	}
	if len(in.TagIDs) > 1 {
		seen := make(map[int64]struct{}, len(in.TagIDs))
		ids := make([]int64, 0, len(in.TagIDs))
		for _, id := range in.TagIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		in.TagIDs = ids
	}
	return in
}
