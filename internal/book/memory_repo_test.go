package book

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booksvc/internal/testutil"
)

func TestMemoryRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	created, err := repo.Insert(ctx, Document{FieldID: "ignored", FieldTitle: "Dune", FieldAuthor: "Frank Herbert"})
	require.NoError(t, err)
	require.NotEqual(t, "ignored", created.ID())

	got, err := repo.FindOne(ctx, TitleIs("Dune"))
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := repo.UpdateByID(ctx, created.ID(), Document{FieldRating: 4.5, FieldID: "other"})
	require.NoError(t, err)
	assert.Equal(t, 4.5, updated[FieldRating])
	assert.Equal(t, created.ID(), updated.ID())
	assert.Equal(t, "Frank Herbert", updated[FieldAuthor])

	require.NoError(t, repo.DeleteByID(ctx, created.ID()))
	assert.ErrorIs(t, repo.DeleteByID(ctx, created.ID()), ErrNotFound)

	_, err = repo.FindOne(ctx, TitleIs("Dune"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	created, err := repo.Insert(ctx, Document{FieldTitle: "Dune", FieldGenre: []string{"Classic"}})
	require.NoError(t, err)

	created[FieldGenre].([]string)[0] = "Mutated"
	books, err := repo.Find(ctx, All())
	require.NoError(t, err)
	books[0][FieldTitle] = "Mutated"

	again, err := repo.FindOne(ctx, HasGenre("Classic"))
	require.NoError(t, err)
	assert.Equal(t, "Dune", again.Title())
}

func TestMemoryRepo_UpdateOneFirstMatch(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	first, _ := repo.Insert(ctx, Document{FieldTitle: "Twin", FieldAuthor: "A"})
	second, _ := repo.Insert(ctx, Document{FieldTitle: "Twin", FieldAuthor: "B"})

	updated, err := repo.UpdateOne(ctx, TitleIs("Twin"), Document{FieldRating: 3.0})
	require.NoError(t, err)
	assert.Equal(t, first.ID(), updated.ID())

	untouched, err := repo.FindOne(ctx, AuthorIs("B"))
	require.NoError(t, err)
	assert.Equal(t, second.ID(), untouched.ID())
	assert.NotContains(t, untouched, FieldRating)
}

func TestMemoryRepo_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Insert(ctx, Document{FieldTitle: "Concurrent", FieldAuthor: "A"})
		}()
	}
	wg.Wait()

	books, err := repo.Find(ctx, All())
	require.NoError(t, err)
	assert.Len(t, books, 50)
}

// newMemoryMux serves the book routes over an in-memory store.
func newMemoryMux(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	NewHTTPHandler(NewService(NewMemoryRepo())).Register(mux)
	return mux
}

func TestBookLifecycle(t *testing.T) {
	mux := newMemoryMux(t)

	res := testutil.Do(mux, testutil.NewRequest(http.MethodPost, "/books", testutil.TestBook()))
	testutil.AssertResponseCode(t, res.Code, http.StatusCreated)
	newBook := res.Body["newBook"].(map[string]any)
	id := newBook[FieldID].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Test Publisher", newBook["publisher"])

	res = testutil.Do(mux, testutil.NewRequest(http.MethodGet, "/books/title/Test%20Book%20Title", nil))
	testutil.AssertResponseCode(t, res.Code, http.StatusOK)
	assert.Equal(t, id, res.Body["book"].(map[string]any)[FieldID])

	for _, path := range []string{"/books/author/Test%20Author", "/books/genre/Fiction", "/books/publishedYear/2001"} {
		res = testutil.Do(mux, testutil.NewRequest(http.MethodGet, path, nil))
		testutil.AssertResponseCode(t, res.Code, http.StatusOK)
		assert.Len(t, res.Body["books"], 1, path)
	}

	res = testutil.Do(mux, testutil.NewRequest(http.MethodPost, "/books/update-rating/"+id, map[string]any{"rating": 4.5}))
	testutil.AssertResponseCode(t, res.Code, http.StatusOK)
	testutil.AssertResponseBody(t, res.Body, "message", "Book updated successfully")
	assert.Equal(t, 4.5, res.Body["updatedBook"].(map[string]any)[FieldRating])

	res = testutil.Do(mux, testutil.NewRequest(http.MethodPost, "/books/update/Test%20Book%20Title", map[string]any{"edition": "2nd"}))
	testutil.AssertResponseCode(t, res.Code, http.StatusOK)
	updated := res.Body["updatedBook"].(map[string]any)
	assert.Equal(t, "2nd", updated["edition"])
	assert.Equal(t, 4.5, updated[FieldRating])

	res = testutil.Do(mux, testutil.NewRequest(http.MethodDelete, "/books/delete/"+id, nil))
	testutil.AssertResponseCode(t, res.Code, http.StatusOK)
	testutil.AssertResponseBody(t, res.Body, "message", "Book deleted successfully")

	res = testutil.Do(mux, testutil.NewRequest(http.MethodDelete, "/books/delete/"+id, nil))
	testutil.AssertResponseCode(t, res.Code, http.StatusNotFound)
	testutil.AssertResponseBody(t, res.Body, "message", "Book not found")

	res = testutil.Do(mux, testutil.NewRequest(http.MethodGet, "/books/title/Test%20Book%20Title", nil))
	testutil.AssertResponseCode(t, res.Code, http.StatusNotFound)
}

func TestEmptyStore(t *testing.T) {
	mux := newMemoryMux(t)

	tests := []struct {
		path    string
		message string
	}{
		{path: "/books", message: "No books found"},
		{path: "/books/title/Anything", message: "Book not found"},
		{path: "/books/author/Anyone", message: "Book not found"},
		{path: "/books/genre/Fiction", message: "Books not found"},
		{path: "/books/publishedYear/2000", message: "Books not found"},
		{path: "/books/publishedYear/not-a-year", message: "Books not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			res := testutil.Do(mux, testutil.NewRequest(http.MethodGet, tt.path, nil))
			testutil.AssertResponseCode(t, res.Code, http.StatusNotFound)
			testutil.AssertResponseBody(t, res.Body, "message", tt.message)
		})
	}
}

func TestUpdateMissingBookLeavesStoreUnchanged(t *testing.T) {
	mux := newMemoryMux(t)
	res := testutil.Do(mux, testutil.NewRequest(http.MethodPost, "/books", testutil.TestBook()))
	testutil.AssertResponseCode(t, res.Code, http.StatusCreated)

	res = testutil.Do(mux, testutil.NewRequest(http.MethodPost, "/books/update-rating/no-such-id", map[string]any{"rating": 1}))
	testutil.AssertResponseCode(t, res.Code, http.StatusNotFound)
	testutil.AssertResponseBody(t, res.Body, "message", "Book does not exist")

	res = testutil.Do(mux, testutil.NewRequest(http.MethodPost, "/books/update/No%20Such%20Title", map[string]any{"rating": 1}))
	testutil.AssertResponseCode(t, res.Code, http.StatusNotFound)

	res = testutil.Do(mux, testutil.NewRequest(http.MethodGet, "/books", nil))
	books := res.Body["books"].([]any)
	require.Len(t, books, 1)
	assert.NotContains(t, books[0].(map[string]any), FieldRating)
}

func TestDuplicateTitlesReturnOne(t *testing.T) {
	mux := newMemoryMux(t)
	for _, author := range []string{"First", "Second"} {
		payload := testutil.TestBook()
		payload["author"] = author
		res := testutil.Do(mux, testutil.NewRequest(http.MethodPost, "/books", payload))
		testutil.AssertResponseCode(t, res.Code, http.StatusCreated)
	}

	res := testutil.Do(mux, testutil.NewRequest(http.MethodGet, "/books/title/Test%20Book%20Title", nil))
	testutil.AssertResponseCode(t, res.Code, http.StatusOK)
	assert.Equal(t, "Test Book Title", res.Body["book"].(map[string]any)[FieldTitle])

	res = testutil.Do(mux, testutil.NewRequest(http.MethodGet, "/books", nil))
	assert.Len(t, res.Body["books"], 2)
}

func TestCreateIgnoresCallerID(t *testing.T) {
	mux := newMemoryMux(t)
	payload := testutil.TestBook()
	payload[FieldID] = "chosen-by-caller"

	res := testutil.Do(mux, testutil.NewRequest(http.MethodPost, "/books", payload))

	testutil.AssertResponseCode(t, res.Code, http.StatusCreated)
	assert.NotEqual(t, "chosen-by-caller", res.Body["newBook"].(map[string]any)[FieldID])
}
