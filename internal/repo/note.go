// Package repo contains all database access logic for the notes application.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/notes/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so multi-statement writes nest cleanly inside a test transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NoteRepo defines the persistence operations for Notes.
// Both the published-only and the unrestricted scope go through the same
// methods; domain.Visibility selects between them.
type NoteRepo interface {
	// List returns one page of notes matching f, ordered by title ascending then
	// creation time descending, together with the total number of matches.
	List(ctx context.Context, f domain.NoteFilter, p domain.PaginationParams) ([]domain.Note, int64, error)

	// ListAll returns every note in listing order, regardless of publication state.
	ListAll(ctx context.Context) ([]domain.Note, error)

	// GetBySlug retrieves a note by slug within the given scope.
	// Returns domain.ErrNotFound if it does not exist or is not visible.
	GetBySlug(ctx context.Context, slug string, vis domain.Visibility) (domain.Note, error)

	// GetByID retrieves a note by primary key, regardless of publication state.
	// Returns domain.ErrNotFound if no note with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Note, error)

	// SlugExists reports whether any note already uses slug.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// Create inserts a note with its tag links in one transaction and returns
	// the persisted record. Returns domain.ErrConflict if slug is taken.
	Create(ctx context.Context, in domain.NoteInput, slug string, authorID *int64) (domain.Note, error)

	// Update overwrites the editable fields and the tag set of a note.
	// The slug and created_at are never touched.
	// Returns domain.ErrNotFound if no note with that ID exists.
	Update(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error)

	// Delete removes a note and its tag links. Returns domain.ErrNotFound if
	// it does not exist.
	Delete(ctx context.Context, id int64) error
}

// pgNoteRepo is the Postgres implementation of NoteRepo.
type pgNoteRepo struct {
	db db
}

// NewNoteRepo constructs a NoteRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewNoteRepo(db db) NoteRepo {
	return &pgNoteRepo{db: db}
}

// noteSelect joins the category (always needed for listings) and the author
// name. Callers append WHERE / ORDER BY clauses.
const noteSelect = `
	SELECT n.id, n.title, n.slug, n.image, n.content, n.created_at, n.updated_at,
	       n.is_published, c.id, c.name, c.slug, n.author_id, u.username
	FROM notes n
	JOIN categories c ON c.id = n.category_id
	LEFT JOIN users u ON u.id = n.author_id`

// noteOrder is the listing order. id breaks ties so pages never overlap.
const noteOrder = ` ORDER BY n.title ASC, n.created_at DESC, n.id ASC`

// noteWhere builds the WHERE clause for a filter. Both scopes share it so the
// published/unrestricted split lives in exactly one place.
func noteWhere(f domain.NoteFilter) (string, pgx.NamedArgs) {
	var conds []string
	args := pgx.NamedArgs{}

	if f.Visibility == domain.Published {
		conds = append(conds, "n.is_published")
	}
	if f.CategorySlug != "" {
		conds = append(conds, "c.slug = @category_slug")
		args["category_slug"] = f.CategorySlug
	}
	if f.TagSlug != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM note_tags nt
			JOIN tags t ON t.id = nt.tag_id
			WHERE nt.note_id = n.id AND t.slug = @tag_slug)`)
		args["tag_slug"] = f.TagSlug
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one page of notes for the filter plus the total match count.
func (r *pgNoteRepo) List(ctx context.Context, f domain.NoteFilter, p domain.PaginationParams) ([]domain.Note, int64, error) {
	where, args := noteWhere(f)

	var total int64
	countQ := `SELECT count(*) FROM notes n JOIN categories c ON c.id = n.category_id` + where
	if err := r.db.QueryRow(ctx, countQ, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.NoteRepo.List: count: %w", err)
	}

	args["limit"] = p.Limit
	args["offset"] = p.Offset()
	notes, err := r.query(ctx, noteSelect+where+noteOrder+` LIMIT @limit OFFSET @offset`, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.NoteRepo.List: %w", err)
	}
	return notes, total, nil
}

// ListAll returns every note, tags included, in listing order.
func (r *pgNoteRepo) ListAll(ctx context.Context) ([]domain.Note, error) {
	notes, err := r.query(ctx, noteSelect+noteOrder, pgx.NamedArgs{})
	if err != nil {
		return nil, fmt.Errorf("repo.NoteRepo.ListAll: %w", err)
	}
	return notes, nil
}

// GetBySlug retrieves a note by slug within the given scope.
func (r *pgNoteRepo) GetBySlug(ctx context.Context, slug string, vis domain.Visibility) (domain.Note, error) {
	where, args := noteWhere(domain.NoteFilter{Visibility: vis})
	if where == "" {
		where = " WHERE n.slug = @slug"
	} else {
		where += " AND n.slug = @slug"
	}
	args["slug"] = slug

	n, err := r.one(ctx, noteSelect+where, args)
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.GetBySlug: %w", err)
	}
	return n, nil
}

// GetByID retrieves a note by primary key in the unrestricted scope.
func (r *pgNoteRepo) GetByID(ctx context.Context, id int64) (domain.Note, error) {
	n, err := r.one(ctx, noteSelect+` WHERE n.id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.GetByID: %w", err)
	}
	return n, nil
}

// SlugExists reports whether slug is already in use.
func (r *pgNoteRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM notes WHERE slug = @slug)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.NoteRepo.SlugExists: %w", err)
	}
	return exists, nil
}

// Create inserts the note row and its tag links in a single transaction.
// An author that no longer exists is stored as NULL, the same state
// ON DELETE SET NULL leaves behind.
func (r *pgNoteRepo) Create(ctx context.Context, in domain.NoteInput, slug string, authorID *int64) (domain.Note, error) {
	const q = `
		INSERT INTO notes (title, slug, image, content, is_published, category_id, author_id)
		VALUES (@title, @slug, @image, @content, @is_published, @category_id,
		        (SELECT id FROM users WHERE id = @author_id))
		RETURNING id`

	var created domain.Note
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, q, pgx.NamedArgs{
			"title":        in.Title,
			"slug":         slug,
			"image":        in.Image, // nil becomes NULL
			"content":      in.Content,
			"is_published": in.IsPublished,
			"category_id":  in.CategoryID,
			"author_id":    authorID,
		}).Scan(&id)
		if err != nil {
			return mapWriteError(err)
		}
		if err := linkTags(ctx, tx, id, in.TagIDs); err != nil {
			return err
		}
		created, err = (&pgNoteRepo{db: tx}).GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.Create: %w", err)
	}
	return created, nil
}

// Update overwrites the editable fields and replaces the tag set.
func (r *pgNoteRepo) Update(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error) {
	const q = `
		UPDATE notes
		SET title        = @title,
		    image        = @image,
		    content      = @content,
		    is_published = @is_published,
		    category_id  = @category_id,
		    updated_at   = greatest(now(), created_at)
		WHERE id = @id`

	var updated domain.Note
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q, pgx.NamedArgs{
			"id":           id,
			"title":        in.Title,
			"image":        in.Image,
			"content":      in.Content,
			"is_published": in.IsPublished,
			"category_id":  in.CategoryID,
		})
		if err != nil {
			return mapWriteError(err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM note_tags WHERE note_id = @id`, pgx.NamedArgs{"id": id}); err != nil {
			return err
		}
		if err := linkTags(ctx, tx, id, in.TagIDs); err != nil {
			return err
		}
		updated, err = (&pgNoteRepo{db: tx}).GetByID(ctx, id)
		return err
	})
	if err != nil {
		return domain.Note{}, fmt.Errorf("repo.NoteRepo.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a note by primary key. note_tags rows go with it via
// ON DELETE CASCADE; the category is untouched.
func (r *pgNoteRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM notes WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.NoteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.NoteRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// linkTags inserts one note_tags row per tag id. Duplicate ids are ignored.
func linkTags(ctx context.Context, tx pgx.Tx, noteID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	const q = `
		INSERT INTO note_tags (note_id, tag_id)
		SELECT @note_id, unnest(@tag_ids::bigint[])
		ON CONFLICT (note_id, tag_id) DO NOTHING`

	if _, err := tx.Exec(ctx, q, pgx.NamedArgs{"note_id": noteID, "tag_ids": tagIDs}); err != nil {
		return mapWriteError(err)
	}
	return nil
}

// query runs a note SELECT and attaches tags to every returned note.
func (r *pgNoteRepo) query(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Note, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	if err := r.attachTags(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// one runs a note SELECT expected to match at most one row.
func (r *pgNoteRepo) one(ctx context.Context, q string, args pgx.NamedArgs) (domain.Note, error) {
	n, err := scanNote(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Note{}, err
	}
	notes := []domain.Note{n}
	if err := r.attachTags(ctx, notes); err != nil {
		return domain.Note{}, err
	}
	return notes[0], nil
}

// attachTags loads the tags of all notes in one query instead of one per note.
func (r *pgNoteRepo) attachTags(ctx context.Context, notes []domain.Note) error {
	if len(notes) == 0 {
		return nil
	}
	ids := make([]int64, len(notes))
	index := make(map[int64]int, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
		index[n.ID] = i
		notes[i].Tags = []domain.Tag{}
	}

	const q = `
		SELECT nt.note_id, t.id, t.tag, t.slug
		FROM note_tags nt
		JOIN tags t ON t.id = nt.tag_id
		WHERE nt.note_id = ANY(@ids)
		ORDER BY t.slug`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			noteID int64
			t      domain.Tag
		)
		if err := rows.Scan(&noteID, &t.ID, &t.Tag, &t.Slug); err != nil {
			return fmt.Errorf("tags: scan: %w", err)
		}
		i := index[noteID]
		notes[i].Tags = append(notes[i].Tags, t)
	}
	return rows.Err()
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scan helpers to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanNote maps a noteSelect row into a domain.Note (without tags).
func scanNote(s scanner) (domain.Note, error) {
	var n domain.Note
	err := s.Scan(
		&n.ID, &n.Title, &n.Slug, &n.Image, &n.Content, &n.CreatedAt, &n.UpdatedAt,
		&n.IsPublished, &n.Category.ID, &n.Category.Name, &n.Category.Slug,
		&n.AuthorID, &n.AuthorName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Note{}, domain.ErrNotFound
		}
		return domain.Note{}, err
	}
	return n, nil
}

// Postgres SQLSTATE codes the repos translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// pgCode returns the SQLSTATE of err, or "" if err is not a Postgres error.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapWriteError translates constraint violations on insert/update into domain
// errors: a duplicate key is a conflict, a dangling reference is bad input.
func mapWriteError(err error) error {
	switch pgCode(err) {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %w", domain.ErrConflict, err)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return err
}
