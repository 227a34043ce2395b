// Package catalogtest holds the behavioural tests every catalog.Store
// implementation must pass.
package catalogtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehmann314159/rango/internal/catalog"
	"github.com/lehmann314159/rango/internal/models"
)

// Run executes the suite. newStore must return an empty store for each call.
func Run(t *testing.T, newStore func(t *testing.T) catalog.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s catalog.Store)
	}{
		{"CreateCategoryDefaults", testCreateCategoryDefaults},
		{"DuplicateNameRejected", testDuplicateNameRejected},
		{"NameIsCaseSensitive", testNameIsCaseSensitive},
		{"EmptySlugRejected", testEmptySlugRejected},
		{"CategoryBySlugMissing", testCategoryBySlugMissing},
		{"CategoryByID", testCategoryByID},
		{"TopCategoriesOrdering", testTopCategoriesOrdering},
		{"LikeSequence", testLikeSequence},
		{"LikeMissingCategory", testLikeMissingCategory},
		{"ConcurrentLikes", testConcurrentLikes},
		{"CreatePageForCategory", testCreatePageForCategory},
		{"CreatePageMissingCategory", testCreatePageMissingCategory},
		{"TopPagesOrdering", testTopPagesOrdering},
		{"VisitPage", testVisitPage},
		{"SuggestCategories", testSuggestCategories},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func mustCreateCategory(t *testing.T, s catalog.Store, name string) models.Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), name)
	require.NoError(t, err, "create category %q", name)
	return c
}

func likeTimes(t *testing.T, s catalog.Store, id int64, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := s.LikeCategory(context.Background(), id)
		require.NoError(t, err)
	}
}

func testCreateCategoryDefaults(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	created := mustCreateCategory(t, s, "Other Frameworks")
	assert.NotZero(t, created.ID)
	assert.Equal(t, "other-frameworks", created.Slug)

	got, found, err := s.CategoryBySlug(ctx, "other-frameworks")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Other Frameworks", got.Name)
	assert.Zero(t, got.Likes)
	assert.Zero(t, got.Views)
}

func testDuplicateNameRejected(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	original := mustCreateCategory(t, s, "Python")
	likeTimes(t, s, original.ID, 2)

	_, err := s.CreateCategory(ctx, "Python")
	require.ErrorIs(t, err, models.ErrDuplicateName)

	got, found, err := s.CategoryBySlug(ctx, "python")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, original.ID, got.ID)
	assert.Equal(t, 2, got.Likes)
	assert.Zero(t, got.Views)
}

func testNameIsCaseSensitive(t *testing.T, s catalog.Store) {
	mustCreateCategory(t, s, "Python")

	// A different name that folds onto the same slug is refused on the slug.
	_, err := s.CreateCategory(context.Background(), "python")
	require.ErrorIs(t, err, models.ErrDuplicateSlug)
	require.False(t, errors.Is(err, models.ErrDuplicateName))
}

func testEmptySlugRejected(t *testing.T, s catalog.Store) {
	_, err := s.CreateCategory(context.Background(), "!!!")
	require.ErrorIs(t, err, models.ErrEmptySlug)

	categories, err := s.TopCategories(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func testCategoryBySlugMissing(t *testing.T, s catalog.Store) {
	got, found, err := s.CategoryBySlug(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, models.Category{}, got)
}

func testCategoryByID(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	created := mustCreateCategory(t, s, "Django")

	got, found, err := s.CategoryByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "django", got.Slug)

	_, found, err = s.CategoryByID(ctx, created.ID+100)
	require.NoError(t, err)
	assert.False(t, found)
}

func testTopCategoriesOrdering(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	likes := map[string]int{"A": 1, "B": 4, "C": 4, "D": 0, "E": 7, "F": 2, "G": 3}
	ids := map[string]int64{}
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		c := mustCreateCategory(t, s, name)
		ids[name] = c.ID
		likeTimes(t, s, c.ID, likes[name])
	}

	top, err := s.TopCategories(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 5)

	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Likes, top[i].Likes)
	}

	var names []string
	for _, c := range top {
		names = append(names, c.Name)
	}
	// B and C tie on likes; the earlier insert wins.
	if diff := cmp.Diff([]string{"E", "B", "C", "G", "F"}, names); diff != "" {
		t.Errorf("TopCategories order mismatch (-want +got):\n%s", diff)
	}

	all, err := s.TopCategories(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func testLikeSequence(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	python := mustCreateCategory(t, s, "Python")

	for want := 1; want <= 3; want++ {
		got, err := s.LikeCategory(ctx, python.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func testLikeMissingCategory(t *testing.T, s catalog.Store) {
	got, err := s.LikeCategory(context.Background(), 9999)
	require.ErrorIs(t, err, models.ErrNotFound)
	assert.Zero(t, got)
}

func testConcurrentLikes(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	c := mustCreateCategory(t, s, "Popular")

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.LikeCategory(ctx, c.ID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, found, err := s.CategoryByID(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, n, got.Likes)
}

func testCreatePageForCategory(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	python := mustCreateCategory(t, s, "Python")

	page, err := s.CreatePage(ctx, python.ID, "Official Site", "https://python.org")
	require.NoError(t, err)
	assert.NotZero(t, page.ID)
	assert.Equal(t, python.ID, page.CategoryID)

	pages, err := s.PagesForCategory(ctx, python.ID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Official Site", pages[0].Title)
	assert.Equal(t, "https://python.org", pages[0].URL)
	assert.Zero(t, pages[0].Views)
}

func testCreatePageMissingCategory(t *testing.T, s catalog.Store) {
	ctx := context.Background()

	_, err := s.CreatePage(ctx, 4242, "Official Site", "https://python.org")
	require.ErrorIs(t, err, models.ErrNotFound)

	pages, err := s.TopPages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func testTopPagesOrdering(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	c := mustCreateCategory(t, s, "Links")

	visits := []int{2, 0, 5, 1, 5, 3}
	for i, v := range visits {
		p, err := s.CreatePage(ctx, c.ID, fmt.Sprintf("page-%d", i), fmt.Sprintf("https://example.com/%d", i))
		require.NoError(t, err)
		for j := 0; j < v; j++ {
			_, err := s.VisitPage(ctx, p.ID)
			require.NoError(t, err)
		}
	}

	top, err := s.TopPages(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 5)

	var titles []string
	for _, p := range top {
		titles = append(titles, p.Title)
	}
	if diff := cmp.Diff([]string{"page-2", "page-4", "page-5", "page-0", "page-3"}, titles); diff != "" {
		t.Errorf("TopPages order mismatch (-want +got):\n%s", diff)
	}
}

func testVisitPage(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	c := mustCreateCategory(t, s, "Go")
	p, err := s.CreatePage(ctx, c.ID, "Go", "https://go.dev")
	require.NoError(t, err)

	visited, err := s.VisitPage(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, visited.Views)
	assert.Equal(t, "https://go.dev", visited.URL)

	_, err = s.VisitPage(ctx, p.ID+100)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func testSuggestCategories(t *testing.T, s catalog.Store) {
	ctx := context.Background()
	for _, name := range []string{"Python", "Pyramid", "Django", "perl_tools", "Pascal"} {
		mustCreateCategory(t, s, name)
	}

	got, err := s.SuggestCategories(ctx, "py", 8)
	require.NoError(t, err)
	var names []string
	for _, c := range got {
		names = append(names, c.Name)
	}
	if diff := cmp.Diff([]string{"Pyramid", "Python"}, names); diff != "" {
		t.Errorf("SuggestCategories mismatch (-want +got):\n%s", diff)
	}

	// "_" is matched literally, not as a wildcard.
	got, err = s.SuggestCategories(ctx, "perl_", 8)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "perl_tools", got[0].Name)

	got, err = s.SuggestCategories(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
