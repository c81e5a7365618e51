package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/pagesearch/core"
	"github.com/poiesic/pagesearch/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBookRepository(t *testing.T) *BookRepository {
	t.Helper()
	books, _, conn, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return books
}

func TestUpsertBook_CreateThenOverwrite(t *testing.T) {
	repo := newTestBookRepository(t)
	ctx := context.Background()

	book := &core.Book{Subject: "Biology", BookTitle: "Cells", FileName: "cells-v1.pdf"}
	outcome, err := repo.UpsertBook(ctx, book)
	require.NoError(t, err)
	assert.True(t, outcome.Created)
	assert.Equal(t, core.BookID("Biology", "Cells"), outcome.ID)
	assert.Equal(t, outcome.ID, book.Id)
	assert.False(t, book.ImportedAt.IsZero())
	assert.Equal(t, outcome.UpdatedAt, book.UpdatedAt)

	replacement := &core.Book{Subject: "Biology", BookTitle: "Cells", FileName: "cells-v2.pdf"}
	outcome, err = repo.UpsertBook(ctx, replacement)
	require.NoError(t, err)
	assert.False(t, outcome.Created)
	assert.Equal(t, book.Id, outcome.ID)

	stored, err := repo.GetBook(ctx, "Biology", "Cells")
	require.NoError(t, err)
	assert.Equal(t, "cells-v2.pdf", stored.FileName)
	assert.False(t, stored.UpdatedAt.Before(book.UpdatedAt))

	titles, err := repo.ListBookTitlesBySubject(ctx, "Biology")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cells"}, titles)
}

func TestUpsertBook_KeepsImportedAt(t *testing.T) {
	repo := newTestBookRepository(t)
	ctx := context.Background()

	imported := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	book := &core.Book{Subject: "Math", BookTitle: "Algebra", ImportedAt: imported}
	_, err := repo.UpsertBook(ctx, book)
	require.NoError(t, err)

	stored, err := repo.GetBook(ctx, "Math", "Algebra")
	require.NoError(t, err)
	assert.True(t, imported.Equal(stored.ImportedAt))
}

func TestUpsertBook_InvalidInput(t *testing.T) {
	repo := newTestBookRepository(t)
	ctx := context.Background()

	tests := []struct {
		name string
		book *core.Book
	}{
		{"nil book", nil},
		{"missing subject", &core.Book{BookTitle: "Cells"}},
		{"missing title", &core.Book{Subject: "Biology"}},
		{"separator in title", &core.Book{Subject: "Biology", BookTitle: "Ce\x00lls"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.UpsertBook(ctx, tt.book)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestGetBook_NotFound(t *testing.T) {
	repo := newTestBookRepository(t)

	book, err := repo.GetBook(context.Background(), "Biology", "Missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, book)
}

func TestListDistinctSubjects(t *testing.T) {
	repo := newTestBookRepository(t)
	ctx := context.Background()

	subjects, err := repo.ListDistinctSubjects(ctx)
	require.NoError(t, err)
	assert.NotNil(t, subjects)
	assert.Empty(t, subjects)

	books := []*core.Book{
		{Subject: "Math", BookTitle: "Algebra"},
		{Subject: "Biology", BookTitle: "Cells"},
		{Subject: "Biology", BookTitle: "Genetics"},
		{Subject: "Math", BookTitle: "Geometry"},
		// "Bio" is a prefix of "Biology" and must not be merged with it
		{Subject: "Bio", BookTitle: "Intro"},
	}
	for _, book := range books {
		_, err := repo.UpsertBook(ctx, book)
		require.NoError(t, err)
	}

	subjects, err = repo.ListDistinctSubjects(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Bio", "Biology", "Math"}, subjects)
}

func TestListBookTitlesBySubject(t *testing.T) {
	repo := newTestBookRepository(t)
	ctx := context.Background()

	for _, book := range []*core.Book{
		{Subject: "Biology", BookTitle: "Genetics"},
		{Subject: "Biology", BookTitle: "Cells"},
		{Subject: "Bio", BookTitle: "Intro"},
		{Subject: "Math", BookTitle: "Algebra"},
	} {
		_, err := repo.UpsertBook(ctx, book)
		require.NoError(t, err)
	}

	titles, err := repo.ListBookTitlesBySubject(ctx, "Biology")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Cells", "Genetics"}, titles)

	titles, err = repo.ListBookTitlesBySubject(ctx, "Chemistry")
	require.NoError(t, err)
	assert.NotNil(t, titles)
	assert.Empty(t, titles)
}

func TestListBooksBySubject(t *testing.T) {
	repo := newTestBookRepository(t)
	ctx := context.Background()

	for _, book := range []*core.Book{
		{Subject: "Biology", BookTitle: "Cells", FileName: "cells.pdf"},
		{Subject: "Math", BookTitle: "Algebra", FileName: "algebra.pdf"},
	} {
		_, err := repo.UpsertBook(ctx, book)
		require.NoError(t, err)
	}

	books, err := repo.ListBooksBySubject(ctx, "Biology")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Cells", books[0].BookTitle)
	assert.Equal(t, "cells.pdf", books[0].FileName)
	assert.Equal(t, core.BookID("Biology", "Cells"), books[0].Id)
}

func TestBookRepository_NotConfigured(t *testing.T) {
	repo := NewBookRepository(NewConnector("", false))
	ctx := context.Background()

	_, err := repo.UpsertBook(ctx, &core.Book{Subject: "Biology", BookTitle: "Cells"})
	assert.ErrorIs(t, err, storage.ErrNotConfigured)

	_, err = repo.ListDistinctSubjects(ctx)
	assert.ErrorIs(t, err, storage.ErrNotConfigured)
}
