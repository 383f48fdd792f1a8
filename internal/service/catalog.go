package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/pkordes/notes/internal/domain"
	"github.com/pkordes/notes/internal/repo"
	"github.com/pkordes/notes/internal/slug"
)

// CategoryService implements business logic for Category operations.
type CategoryService struct {
	categories repo.CategoryRepo
}

// NewCategoryService constructs a CategoryService backed by the provided repo.
func NewCategoryService(r repo.CategoryRepo) *CategoryService {
	return &CategoryService{categories: r}
}

// Create adds a category. An empty slugText is derived from name.
// Returns domain.ErrValidation if either normalizes to empty.
func (s *CategoryService) Create(ctx context.Context, name, slugText string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Create: %w", domain.NewFieldError("name", "this field is required"))
	}
	if slugText == "" {
		slugText = name
	}
	sl := slug.Slugify(slugText)
	if sl == "" {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Create: %w", domain.NewFieldError("slug", "is invalid"))
	}

	c, err := s.categories.Create(ctx, name, sl)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.Create: %w", err)
	}
	return c, nil
}

// GetBySlug returns the category with the given slug.
func (s *CategoryService) GetBySlug(ctx context.Context, sl string) (domain.Category, error) {
	c, err := s.categories.GetBySlug(ctx, sl)
	if err != nil {
		return domain.Category{}, fmt.Errorf("service.CategoryService.GetBySlug: %w", err)
	}
	return c, nil
}

// List returns every category, for form choices.
func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.CategoryService.List: %w", err)
	}
	return cats, nil
}

// DeleteBySlug removes a category.
// Returns domain.ErrProtected while any note references it.
func (s *CategoryService) DeleteBySlug(ctx context.Context, sl string) error {
	c, err := s.categories.GetBySlug(ctx, sl)
	if err != nil {
		return fmt.Errorf("service.CategoryService.DeleteBySlug: %w", err)
	}
	if err := s.categories.Delete(ctx, c.ID); err != nil {
		return fmt.Errorf("service.CategoryService.DeleteBySlug: %w", err)
	}
	return nil
}

// TagService implements business logic for Tag operations.
// Its primary responsibility is slug normalization: all tag identity is
// determined by slug.
type TagService struct {
	tags    repo.TagRepo
	sidebar *Sidebar
}

// NewTagService constructs a TagService. sidebar may be nil.
func NewTagService(tags repo.TagRepo, sidebar *Sidebar) *TagService {
	return &TagService{tags: tags, sidebar: sidebar}
}

// UpsertByLabel normalizes label to a slug and inserts the tag if the slug is new.
// Returns domain.ErrValidation if label is empty or normalizes to empty.
func (s *TagService) UpsertByLabel(ctx context.Context, label string) (domain.Tag, error) {
	label = strings.TrimSpace(label)
	sl := slug.Slugify(label)
	if sl == "" {
		return domain.Tag{}, fmt.Errorf("service.TagService.UpsertByLabel: %w", domain.NewFieldError("tag", "this field is required"))
	}
	t, err := s.tags.Upsert(ctx, label, sl)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.UpsertByLabel: %w", err)
	}
	return t, nil
}

// GetBySlug returns the tag with the given slug.
func (s *TagService) GetBySlug(ctx context.Context, sl string) (domain.Tag, error) {
	t, err := s.tags.GetBySlug(ctx, sl)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.GetBySlug: %w", err)
	}
	return t, nil
}

// List returns every tag, for form choices.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TagService.List: %w", err)
	}
	return tags, nil
}

// DeleteBySlug removes a tag and detaches it from all notes.
func (s *TagService) DeleteBySlug(ctx context.Context, sl string) error {
	t, err := s.tags.GetBySlug(ctx, sl)
	if err != nil {
		return fmt.Errorf("service.TagService.DeleteBySlug: %w", err)
	}
	if err := s.tags.Delete(ctx, t.ID); err != nil {
		return fmt.Errorf("service.TagService.DeleteBySlug: %w", err)
	}
	s.sidebar.Invalidate()
	return nil
}

const (
	sidebarCategoriesKey = "sidebar:categories"
	sidebarTagsKey       = "sidebar:tags"
)

// Sidebar serves the per-category and per-tag published note counts shown
// next to every listing. Results are cached read-through and dropped whenever
// a note changes.
//
// A read that overlaps an Invalidate is returned but not cached: gen counts
// invalidations and set only stores results read under the current one.
type Sidebar struct {
	categories repo.CategoryRepo
	tags       repo.TagRepo
	cache      *cache.Cache

	mu  sync.Mutex
	gen uint64
}

// NewSidebar returns a Sidebar caching aggregates for ttl.
// A zero ttl disables caching.
func NewSidebar(categories repo.CategoryRepo, tags repo.TagRepo, ttl time.Duration) *Sidebar {
	var c *cache.Cache
	if ttl > 0 {
		c = cache.New(ttl, 2*ttl)
	}
	return &Sidebar{categories: categories, tags: tags, cache: c}
}

// Categories returns categories with at least one published note.
func (s *Sidebar) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	gen, v, ok := s.get(sidebarCategoriesKey)
	if ok {
		return v.([]domain.CategoryCount), nil
	}
	cats, err := s.categories.ListWithPublishedCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Sidebar.Categories: %w", err)
	}
	s.set(gen, sidebarCategoriesKey, cats)
	return cats, nil
}

// Tags returns tags attached to at least one published note.
func (s *Sidebar) Tags(ctx context.Context) ([]domain.TagCount, error) {
	gen, v, ok := s.get(sidebarTagsKey)
	if ok {
		return v.([]domain.TagCount), nil
	}
	tags, err := s.tags.ListWithPublishedCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.Sidebar.Tags: %w", err)
	}
	s.set(gen, sidebarTagsKey, tags)
	return tags, nil
}

// Invalidate drops cached aggregates. Safe on a nil Sidebar.
func (s *Sidebar) Invalidate() {
	if s == nil || s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cache.Delete(sidebarCategoriesKey)
	s.cache.Delete(sidebarTagsKey)
}

// get returns the cached value for key together with the generation it was
// looked up under.
func (s *Sidebar) get(key string) (uint64, any, bool) {
	if s.cache == nil {
		return 0, nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(key)
	return s.gen, v, ok
}

func (s *Sidebar) set(gen uint64, key string, v any) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.cache.Set(key, v, cache.DefaultExpiration)
}
