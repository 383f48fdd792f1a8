package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/repo"
)

// ExportService assembles a full flat export of all notes.
type ExportService struct {
	notes repo.NoteRepo
}

// NewExportService constructs an ExportService backed by the provided repo.
func NewExportService(notes repo.NoteRepo) *ExportService {
	return &ExportService{notes: notes}
}

// Export returns one ExportRow per note, published or not, in listing order.
// Tag slugs are sorted alphabetically.
func (s *ExportService) Export(ctx context.Context) ([]domain.ExportRow, error) {
	notes, err := s.notes.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(notes))
	for _, n := range notes {
		tags := make([]string, 0, len(n.Tags))
		for _, t := range n.Tags {
			tags = append(tags, t.Slug)
		}
		slices.Sort(tags)

		var author string
		if n.AuthorName != nil {
			author = *n.AuthorName
		}

		rows = append(rows, domain.ExportRow{
			NoteID:       n.ID,
			Title:        n.Title,
			Slug:         n.Slug,
			IsPublished:  n.IsPublished,
			CategorySlug: n.Category.Slug,
			Author:       author,
			CreatedAt:    n.CreatedAt,
			UpdatedAt:    n.UpdatedAt,
			Tags:         tags,
		})
	}
	return rows, nil
}
