package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/notes/internal/domain"
)

// TagRepo defines the persistence operations for Tags.
// Note-tag links live in the note_tags join table and are written by NoteRepo.
type TagRepo interface {
	// Upsert inserts a tag by slug, or returns the existing tag if the slug
	// already exists. The label of the first creator is preserved on conflict.
	Upsert(ctx context.Context, label, slug string) (domain.Tag, error)

	// GetBySlug retrieves a tag by slug.
	GetBySlug(ctx context.Context, slug string) (domain.Tag, error)

	// ListByIDs returns the tags whose ids are in ids, ordered by slug.
	// Unknown ids are silently skipped; callers compare lengths.
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error)

	// List returns all tags ordered by slug.
	List(ctx context.Context) ([]domain.Tag, error)

	// ListWithPublishedCounts returns tags annotated with their number of
	// published notes. Tags on no published note are left out.
	ListWithPublishedCounts(ctx context.Context) ([]domain.TagCount, error)

	// Delete removes a tag and detaches it from every note.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error
}

// pgTagRepo is the Postgres implementation of TagRepo.
type pgTagRepo struct {
	db db
}

// NewTagRepo constructs a TagRepo backed by the provided db connection.
func NewTagRepo(db db) TagRepo {
	return &pgTagRepo{db: db}
}

// Upsert inserts a tag or returns the existing row on slug conflict.
// The DO UPDATE SET trick forces the RETURNING clause to fire even when
// the conflict handler skips the insert; without it, RETURNING returns
// nothing on DO NOTHING conflicts.
func (r *pgTagRepo) Upsert(ctx context.Context, label, slug string) (domain.Tag, error) {
	const q = `
		INSERT INTO tags (tag, slug)
		VALUES (@tag, @slug)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, tag, slug`

	t, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"tag": label, "slug": slug}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.Upsert: %w", err)
	}
	return t, nil
}

func (r *pgTagRepo) GetBySlug(ctx context.Context, slug string) (domain.Tag, error) {
	const q = `SELECT id, tag, slug FROM tags WHERE slug = @slug`

	t, err := scanTag(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("repo.TagRepo.GetBySlug: %w", err)
	}
	return t, nil
}

func (r *pgTagRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error) {
	const q = `SELECT id, tag, slug FROM tags WHERE id = ANY(@ids) ORDER BY slug`

	tags, err := r.list(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListByIDs: %w", err)
	}
	return tags, nil
}

func (r *pgTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	const q = `SELECT id, tag, slug FROM tags ORDER BY slug`

	tags, err := r.list(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.List: %w", err)
	}
	return tags, nil
}

func (r *pgTagRepo) ListWithPublishedCounts(ctx context.Context) ([]domain.TagCount, error) {
	const q = `
		SELECT t.id, t.tag, t.slug, count(n.id) AS total
		FROM tags t
		JOIN note_tags nt ON nt.tag_id = t.id
		JOIN notes n ON n.id = nt.note_id AND n.is_published
		GROUP BY t.id
		HAVING count(n.id) > 0
		ORDER BY t.slug`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListWithPublishedCounts: %w", err)
	}
	defer rows.Close()

	out := []domain.TagCount{}
	for rows.Next() {
		var t domain.TagCount
		if err := rows.Scan(&t.ID, &t.Tag.Tag, &t.Slug, &t.Total); err != nil {
			return nil, fmt.Errorf("repo.TagRepo.ListWithPublishedCounts: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TagRepo.ListWithPublishedCounts: rows: %w", err)
	}
	return out, nil
}

// Delete removes a tag. note_tags rows referencing it are dropped by
// ON DELETE CASCADE; the notes themselves are untouched.
func (r *pgTagRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM tags WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TagRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TagRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTagRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Tag, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return tags, nil
}

// scanTag maps a single database row into a domain.Tag.
func scanTag(s scanner) (domain.Tag, error) {
	var t domain.Tag
	if err := s.Scan(&t.ID, &t.Tag, &t.Slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Tag{}, domain.ErrNotFound
		}
		return domain.Tag{}, err
	}
	return t, nil
}
