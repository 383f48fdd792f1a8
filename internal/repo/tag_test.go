package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/notes/internal/domain"
)

// ---- Upsert ----------------------------------------------------------------

func TestTagRepo_Upsert_Create(t *testing.T) {
	r := newTestRepos(t)

	got, err := r.tags.Upsert(context.Background(), "Rocky Mountains", "rocky-mountains")

	require.NoError(t, err)
	assert.NotZero(t, got.ID)
	assert.Equal(t, "Rocky Mountains", got.Tag)
	assert.Equal(t, "rocky-mountains", got.Slug)
}

func TestTagRepo_Upsert_IdempotentBySlug(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()

	first, err := r.tags.Upsert(ctx, "walmart", "walmart")
	require.NoError(t, err)

	// Different label, same slug: must return the original row.
	second, err := r.tags.Upsert(ctx, "Walmart", "walmart")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "same slug must return same tag")
	assert.Equal(t, "walmart", second.Tag, "label should be the original, not the new casing")
}

// ---- Lookups ---------------------------------------------------------------

func TestTagRepo_GetBySlug_NotFound(t *testing.T) {
	r := newTestRepos(t)

	_, err := r.tags.GetBySlug(context.Background(), "nonexistent-slug")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTagRepo_ListByIDs_SkipsUnknown(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	a, err := r.tags.Upsert(ctx, "A", "a")
	require.NoError(t, err)

	got, err := r.tags.ListByIDs(ctx, []int64{a.ID, 999999})

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)
}

func TestTagRepo_List_Empty(t *testing.T) {
	r := newTestRepos(t)

	got, err := r.tags.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, got)
}

// ---- Delete ----------------------------------------------------------------

func TestTagRepo_Delete_DetachesWithoutDeletingNotes(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	cat := mustCreateCategory(t, r, "Travel", "travel")
	tag, err := r.tags.Upsert(ctx, "Mountains", "mountains")
	require.NoError(t, err)

	in := noteInput(cat.ID, "Peak", true)
	in.TagIDs = []int64{tag.ID}
	note := mustCreateNote(t, r, in, "peak")

	require.NoError(t, r.tags.Delete(ctx, tag.ID))

	got, err := r.notes.GetByID(ctx, note.ID)
	require.NoError(t, err, "note must survive tag deletion")
	assert.Empty(t, got.Tags)
}

func TestTagRepo_Delete_NotFound(t *testing.T) {
	r := newTestRepos(t)

	err := r.tags.Delete(context.Background(), 999999)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTagRepo_ListWithPublishedCounts(t *testing.T) {
	r := newTestRepos(t)
	ctx := context.Background()
	cat := mustCreateCategory(t, r, "Travel", "travel")
	used, err := r.tags.Upsert(ctx, "Used", "used")
	require.NoError(t, err)
	draftOnly, err := r.tags.Upsert(ctx, "Draft Only", "draft-only")
	require.NoError(t, err)

	pub := noteInput(cat.ID, "Public", true)
	pub.TagIDs = []int64{used.ID}
	mustCreateNote(t, r, pub, "public")
	draft := noteInput(cat.ID, "Draft", false)
	draft.TagIDs = []int64{draftOnly.ID, used.ID}
	mustCreateNote(t, r, draft, "draft")

	got, err := r.tags.ListWithPublishedCounts(ctx)

	require.NoError(t, err)
	counts := map[string]int64{}
	for _, tc := range got {
		counts[tc.Slug] = tc.Total
	}
	assert.EqualValues(t, 1, counts["used"])
	assert.NotContains(t, counts, "draft-only")
}
