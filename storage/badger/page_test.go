package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/pagesearch/core"
	"github.com/poiesic/pagesearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPageRepository(t *testing.T, opts ...ConnectorOption) *PageRepository {
	t.Helper()
	_, pages, conn, err := NewMemoryRepositories(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return pages
}

func seedPages(t *testing.T, repo *PageRepository, pages ...*core.Page) {
	t.Helper()
	ctx := context.Background()
	for _, page := range pages {
		_, err := repo.UpsertPage(ctx, page)
		require.NoError(t, err)
	}
}

func mustMatcher(t *testing.T, phrase string) *core.PhraseMatcher {
	t.Helper()
	m, err := core.NewPhraseMatcher(phrase)
	require.NoError(t, err)
	return m
}

// pageRefs flattens pages into "title#page" strings for compact assertions.
func pageRefs(pages []*core.Page) []string {
	refs := make([]string, 0, len(pages))
	for _, page := range pages {
		refs = append(refs, fmt.Sprintf("%s#%d", page.BookTitle, page.PageNum))
	}
	return refs
}

func TestUpsertPage_CreateThenOverwrite(t *testing.T) {
	repo := newTestPageRepository(t)
	ctx := context.Background()

	page := &core.Page{Subject: "S", BookTitle: "A", PageNum: 3, Text: "first version"}
	outcome, err := repo.UpsertPage(ctx, page)
	require.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.Equal(t, core.PageID("S", "A", 3), outcome.ID)
	assert.Equal(t, outcome.ID, page.Id)

	outcome, err = repo.UpsertPage(ctx, &core.Page{Subject: "S", BookTitle: "A", PageNum: 3, Text: "second version"})
	require.NoError(t, err)
	assert.False(t, outcome.Created)

	stored, err := repo.GetPage(ctx, "S", "A", 3)
	require.NoError(t, err)
	assert.Equal(t, "second version", stored.Text)
}

func TestUpsertPage_InvalidInput(t *testing.T) {
	repo := newTestPageRepository(t)
	ctx := context.Background()

	tests := []struct {
		name string
		page *core.Page
	}{
		{"nil page", nil},
		{"missing subject", &core.Page{BookTitle: "A", PageNum: 1}},
		{"missing title", &core.Page{Subject: "S", PageNum: 1}},
		{"negative page", &core.Page{Subject: "S", BookTitle: "A", PageNum: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.UpsertPage(ctx, tt.page)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestUpsertPage_OverwriteUpdatesTokenIndex(t *testing.T) {
	repo := newTestPageRepository(t)
	ctx := context.Background()

	seedPages(t, repo, &core.Page{Subject: "S", BookTitle: "A", PageNum: 1, Text: "the old fox"})
	seedPages(t, repo, &core.Page{Subject: "S", BookTitle: "A", PageNum: 1, Text: "the new dog"})

	found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, "fox")})
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, "dog")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A#1"}, pageRefs(found))

	found, err = repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, "the")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A#1"}, pageRefs(found))
}

func TestUpsertPage_ConcurrentSameKey(t *testing.T) {
	repo := newTestPageRepository(t, WithRetry(20, time.Millisecond))
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	created := make([]bool, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcome, err := repo.UpsertPage(ctx, &core.Page{
				Subject:   "S",
				BookTitle: "A",
				PageNum:   7,
				Text:      fmt.Sprintf("writer%d wrote this", i),
			})
			errs[i] = err
			created[i] = outcome.Created
		}(i)
	}
	wg.Wait()

	creations := 0
	for i := 0; i < writers; i++ {
		require.NoError(t, errs[i])
		if created[i] {
			creations++
		}
	}
	assert.Equal(t, 1, creations, "exactly one writer creates the page")

	found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, "wrote")})
	require.NoError(t, err)
	require.Len(t, found, 1)

	// Only the winning text is indexed
	stored, err := repo.GetPage(ctx, "S", "A", 7)
	require.NoError(t, err)
	for i := 0; i < writers; i++ {
		token := fmt.Sprintf("writer%d", i)
		found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, token)})
		require.NoError(t, err)
		if stored.Text == token+" wrote this" {
			assert.Len(t, found, 1, token)
		} else {
			assert.Empty(t, found, token)
		}
	}
}

func TestFindPages_WholeWordCaseInsensitive(t *testing.T) {
	repo := newTestPageRepository(t)
	ctx := context.Background()

	seedPages(t, repo,
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 1, Text: "The Cat sat."},
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 2, Text: "a category of things"},
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 3, Text: "concatenate"},
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 4, Text: "CAT"},
	)

	tests := []struct {
		phrase string
		want   []string
	}{
		{"cat", []string{"A#1", "A#4"}},
		{"CAT", []string{"A#1", "A#4"}},
		{"category", []string{"A#2"}},
		{"categ", []string{}},
		{"cat sat", []string{"A#1"}},
		{"sat cat", []string{}},
		{"the cat sat.", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.phrase, func(t *testing.T) {
			found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, tt.phrase)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, pageRefs(found))
		})
	}
}

func TestFindPages_Constraints(t *testing.T) {
	repo := newTestPageRepository(t)
	ctx := context.Background()

	seedPages(t, repo,
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 10, Text: "fox ten"},
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 2, Text: "fox two"},
		&core.Page{Subject: "S", BookTitle: "B", PageNum: 1, Text: "fox in B"},
		&core.Page{Subject: "S", BookTitle: "C", PageNum: 1, Text: "fox in C"},
		&core.Page{Subject: "T", BookTitle: "A", PageNum: 1, Text: "fox in other subject"},
	)

	t.Run("titles restrict books and fix order", func(t *testing.T) {
		found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"B", "A"}, Text: mustMatcher(t, "fox")})
		require.NoError(t, err)
		assert.Equal(t, []string{"B#1", "A#2", "A#10"}, pageRefs(found))
		for _, page := range found {
			assert.Equal(t, "S", page.Subject)
		}
	})

	t.Run("repeated titles are visited once", func(t *testing.T) {
		found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"B", "B"}, Text: mustMatcher(t, "fox")})
		require.NoError(t, err)
		assert.Equal(t, []string{"B#1"}, pageRefs(found))
	})

	t.Run("unknown title", func(t *testing.T) {
		found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"Z"}, Text: mustMatcher(t, "fox")})
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("no titles", func(t *testing.T) {
		found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", Text: mustMatcher(t, "fox")})
		require.NoError(t, err)
		assert.NotNil(t, found)
		assert.Empty(t, found)
	})

	t.Run("other subject", func(t *testing.T) {
		found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "T", BookTitles: []string{"A", "B"}, Text: mustMatcher(t, "fox")})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "fox in other subject", found[0].Text)
	})
}

func TestFindPages_PhraseWithoutWordTokens(t *testing.T) {
	repo := newTestPageRepository(t)
	ctx := context.Background()

	seedPages(t, repo,
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 1, Text: "a well-known result"},
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 2, Text: "nothing here"},
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 3, Text: "x-ray"},
	)

	found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, "-")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A#1", "A#3"}, pageRefs(found))
}

func TestFindPages_SpecialCharactersAreLiteral(t *testing.T) {
	repo := newTestPageRepository(t)
	ctx := context.Background()

	seedPages(t, repo,
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 1, Text: "call f(x) now"},
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 2, Text: "call fx now"},
		&core.Page{Subject: "S", BookTitle: "A", PageNum: 3, Text: "a.b and axb"},
	)

	found, err := repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, "f(x")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A#1"}, pageRefs(found))

	found, err = repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}, Text: mustMatcher(t, "a.b")})
	require.NoError(t, err)
	assert.Equal(t, []string{"A#3"}, pageRefs(found))
}

func TestFindPages_InvalidQuery(t *testing.T) {
	repo := newTestPageRepository(t)
	ctx := context.Background()

	_, err := repo.FindPages(ctx, storage.PageQuery{BookTitles: []string{"A"}, Text: mustMatcher(t, "fox")})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = repo.FindPages(ctx, storage.PageQuery{Subject: "S", BookTitles: []string{"A"}})
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestGetPage_NotFound(t *testing.T) {
	repo := newTestPageRepository(t)

	page, err := repo.GetPage(context.Background(), "S", "A", 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, page)
}

func TestIntersectSorted(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want []int
	}{
		{"disjoint", []int{1, 3}, []int{2, 4}, []int{}},
		{"overlap", []int{1, 2, 5, 9}, []int{2, 3, 9}, []int{2, 9}},
		{"empty", []int{}, []int{1}, []int{}},
		{"equal", []int{4, 8}, []int{4, 8}, []int{4, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, intersectSorted(tt.a, tt.b))
		})
	}
}
