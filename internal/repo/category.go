package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pkordes/notes/internal/domain"
)

// CategoryRepo defines the persistence operations for Categories.
type CategoryRepo interface {
	// Create inserts a category. Returns domain.ErrConflict if the name or slug is taken.
	Create(ctx context.Context, name, slug string) (domain.Category, error)

	// GetByID retrieves a category by primary key.
	GetByID(ctx context.Context, id int64) (domain.Category, error)

	// GetBySlug retrieves a category by slug.
	GetBySlug(ctx context.Context, slug string) (domain.Category, error)

	// List returns all categories ordered by name.
	List(ctx context.Context) ([]domain.Category, error)

	// ListWithPublishedCounts returns categories annotated with their number of
	// published notes. Categories with no published notes are left out.
	ListWithPublishedCounts(ctx context.Context) ([]domain.CategoryCount, error)

	// Delete removes a category. Returns domain.ErrProtected if any note,
	// published or not, still references it.
	Delete(ctx context.Context, id int64) error
}

// pgCategoryRepo is the Postgres implementation of CategoryRepo.
type pgCategoryRepo struct {
	db db
}

// NewCategoryRepo constructs a CategoryRepo backed by the provided db connection.
func NewCategoryRepo(db db) CategoryRepo {
	return &pgCategoryRepo{db: db}
}

func (r *pgCategoryRepo) Create(ctx context.Context, name, slug string) (domain.Category, error) {
	const q = `
		INSERT INTO categories (name, slug)
		VALUES (@name, @slug)
		RETURNING id, name, slug`

	c, err := scanCategory(r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": name, "slug": slug}))
	if err != nil {
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.Create: %w", mapWriteError(err))
	}
	return c, nil
}

func (r *pgCategoryRepo) GetByID(ctx context.Context, id int64) (domain.Category, error) {
	const q = `SELECT id, name, slug FROM categories WHERE id = @id`

	c, err := scanCategory(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.GetByID: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) GetBySlug(ctx context.Context, slug string) (domain.Category, error) {
	const q = `SELECT id, name, slug FROM categories WHERE slug = @slug`

	c, err := scanCategory(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Category{}, fmt.Errorf("repo.CategoryRepo.GetBySlug: %w", err)
	}
	return c, nil
}

func (r *pgCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	const q = `SELECT id, name, slug FROM categories ORDER BY name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: %w", err)
	}
	defer rows.Close()

	cats := []domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.CategoryRepo.List: scan: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.List: rows: %w", err)
	}
	return cats, nil
}

func (r *pgCategoryRepo) ListWithPublishedCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	const q = `
		SELECT c.id, c.name, c.slug, count(n.id) AS total
		FROM categories c
		JOIN notes n ON n.category_id = c.id AND n.is_published
		GROUP BY c.id
		HAVING count(n.id) > 0
		ORDER BY c.name`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.ListWithPublishedCounts: %w", err)
	}
	defer rows.Close()

	out := []domain.CategoryCount{}
	for rows.Next() {
		var c domain.CategoryCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Total); err != nil {
			return nil, fmt.Errorf("repo.CategoryRepo.ListWithPublishedCounts: scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CategoryRepo.ListWithPublishedCounts: rows: %w", err)
	}
	return out, nil
}

// Delete relies on the ON DELETE RESTRICT foreign key from notes.category_id.
func (r *pgCategoryRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM categories WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("repo.CategoryRepo.Delete: %w", domain.ErrProtected)
		}
		return fmt.Errorf("repo.CategoryRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CategoryRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanCategory maps a single database row into a domain.Category.
func scanCategory(s scanner) (domain.Category, error) {
	var c domain.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Category{}, domain.ErrNotFound
		}
		return domain.Category{}, err
	}
	return c, nil
}
