package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guzmanc1/RikiWiki/internal/models"
)

func setupRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	return NewRepository(db)
}

func indexedPage(url, title, tags, body string) *models.Page {
	p := models.NewPage("", url)
	p.SetTitle(title)
	p.SetTags(tags)
	p.Body = body
	return p
}

func TestUpsertPage(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	err := repo.UpsertPage(ctx, indexedPage("notes_v1", "Notes", "go, wiki", "body"))
	require.NoError(t, err)

	count, err := repo.PageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{Name: "go", Pages: 1}, {Name: "wiki", Pages: 1}}, tags)
}

func TestUpsertPageReplacesOlderVersion(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPage(ctx, indexedPage("notes_v1", "Notes", "old", "v1")))
	require.NoError(t, repo.UpsertPage(ctx, indexedPage("notes_v2", "Notes", "new", "v2")))

	count, err := repo.PageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries, err := repo.PagesForTag(ctx, "new")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "notes_v2", entries[0].URL)

	// the old tag lost its last page
	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{Name: "new", Pages: 1}}, tags)
}

func TestDeletePage(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPage(ctx, indexedPage("a_v1", "A", "shared, solo", "a")))
	require.NoError(t, repo.UpsertPage(ctx, indexedPage("b_v1", "B", "shared", "b")))

	require.NoError(t, repo.DeletePage(ctx, "a_v1"))

	count, err := repo.PageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{Name: "shared", Pages: 1}}, tags)
}

func TestPagesForTag(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPage(ctx, indexedPage("z_v1", "zulu", "greek", "z")))
	require.NoError(t, repo.UpsertPage(ctx, indexedPage("a_v1", "Alpha", "greek", "a")))

	entries, err := repo.PagesForTag(ctx, "greek")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alpha", entries[0].Title)
	assert.Equal(t, "zulu", entries[1].Title)

	entries, err = repo.PagesForTag(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRebuild(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertPage(ctx, indexedPage("stale_v1", "Stale", "gone", "old")))

	err := repo.Rebuild(ctx, []*models.Page{
		indexedPage("fresh_v1", "Fresh", "kept", "new"),
		indexedPage("other_v2", "Other", "kept", "text"),
	})
	require.NoError(t, err)

	count, err := repo.PageCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []TagCount{{Name: "kept", Pages: 2}}, tags)

	entries, err := repo.PagesForTag(ctx, "gone")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
