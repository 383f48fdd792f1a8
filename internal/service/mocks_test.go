package service_test

import (
	"context"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/repo"
)

// mockNoteRepo is a hand-written test double for repo.NoteRepo.
// Each method is a function field; set only the ones your test needs.
type mockNoteRepo struct {
	list       func(ctx context.Context, f domain.NoteFilter, p domain.PaginationParams) ([]domain.Note, int64, error)
	listAll    func(ctx context.Context) ([]domain.Note, error)
	getBySlug  func(ctx context.Context, slug string, vis domain.Visibility) (domain.Note, error)
	getByID    func(ctx context.Context, id int64) (domain.Note, error)
	slugExists func(ctx context.Context, slug string) (bool, error)
	create     func(ctx context.Context, in domain.NoteInput, slug string, authorID *int64) (domain.Note, error)
	update     func(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error)
	delete     func(ctx context.Context, id int64) error
}

func (m *mockNoteRepo) List(ctx context.Context, f domain.NoteFilter, p domain.PaginationParams) ([]domain.Note, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockNoteRepo) ListAll(ctx context.Context) ([]domain.Note, error) {
	return m.listAll(ctx)
}
func (m *mockNoteRepo) GetBySlug(ctx context.Context, slug string, vis domain.Visibility) (domain.Note, error) {
	return m.getBySlug(ctx, slug, vis)
}
func (m *mockNoteRepo) GetByID(ctx context.Context, id int64) (domain.Note, error) {
	return m.getByID(ctx, id)
}
func (m *mockNoteRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return m.slugExists(ctx, slug)
}
func (m *mockNoteRepo) Create(ctx context.Context, in domain.NoteInput, slug string, authorID *int64) (domain.Note, error) {
	return m.create(ctx, in, slug, authorID)
}
func (m *mockNoteRepo) Update(ctx context.Context, id int64, in domain.NoteInput) (domain.Note, error) {
	return m.update(ctx, id, in)
}
func (m *mockNoteRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

// compile-time check: mockNoteRepo must satisfy repo.NoteRepo.
var _ repo.NoteRepo = (*mockNoteRepo)(nil)

type mockCategoryRepo struct {
	create                  func(ctx context.Context, name, slug string) (domain.Category, error)
	getByID                 func(ctx context.Context, id int64) (domain.Category, error)
	getBySlug               func(ctx context.Context, slug string) (domain.Category, error)
	list                    func(ctx context.Context) ([]domain.Category, error)
	listWithPublishedCounts func(ctx context.Context) ([]domain.CategoryCount, error)
	delete                  func(ctx context.Context, id int64) error
}

func (m *mockCategoryRepo) Create(ctx context.Context, name, slug string) (domain.Category, error) {
	return m.create(ctx, name, slug)
}
func (m *mockCategoryRepo) GetByID(ctx context.Context, id int64) (domain.Category, error) {
	return m.getByID(ctx, id)
}
func (m *mockCategoryRepo) GetBySlug(ctx context.Context, slug string) (domain.Category, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockCategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	return m.list(ctx)
}
func (m *mockCategoryRepo) ListWithPublishedCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	return m.listWithPublishedCounts(ctx)
}
func (m *mockCategoryRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.CategoryRepo = (*mockCategoryRepo)(nil)

type mockTagRepo struct {
	upsert                  func(ctx context.Context, label, slug string) (domain.Tag, error)
	getBySlug               func(ctx context.Context, slug string) (domain.Tag, error)
	listByIDs               func(ctx context.Context, ids []int64) ([]domain.Tag, error)
	list                    func(ctx context.Context) ([]domain.Tag, error)
	listWithPublishedCounts func(ctx context.Context) ([]domain.TagCount, error)
	delete                  func(ctx context.Context, id int64) error
}

func (m *mockTagRepo) Upsert(ctx context.Context, label, slug string) (domain.Tag, error) {
	return m.upsert(ctx, label, slug)
}
func (m *mockTagRepo) GetBySlug(ctx context.Context, slug string) (domain.Tag, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockTagRepo) ListByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	return m.list(ctx)
}
func (m *mockTagRepo) ListWithPublishedCounts(ctx context.Context) ([]domain.TagCount, error) {
	return m.listWithPublishedCounts(ctx)
}
func (m *mockTagRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.TagRepo = (*mockTagRepo)(nil)

type mockUserRepo struct {
	create        func(ctx context.Context, u domain.User) (domain.User, error)
	getByID       func(ctx context.Context, id int64) (domain.User, error)
	getByUsername func(ctx context.Context, username string) (domain.User, error)
	delete        func(ctx context.Context, id int64) error
}

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return m.getByUsername(ctx, username)
}
func (m *mockUserRepo) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

// ---- helpers ---------------------------------------------------------------

// knownCatalog returns category and tag repos where category 1 and tags
// 1 and 2 exist.
func knownCatalog() (*mockCategoryRepo, *mockTagRepo) {
	cats := &mockCategoryRepo{
		getByID: func(_ context.Context, id int64) (domain.Category, error) {
			if id == 1 {
				return domain.Category{ID: 1, Name: "Travel", Slug: "travel"}, nil
			}
			return domain.Category{}, domain.ErrNotFound
		},
	}
	tags := &mockTagRepo{
		listByIDs: func(_ context.Context, ids []int64) ([]domain.Tag, error) {
			var out []domain.Tag
			for _, id := range ids {
				if id == 1 || id == 2 {
					out = append(out, domain.Tag{ID: id})
				}
			}
			return out, nil
		},
	}
	return cats, tags
}
