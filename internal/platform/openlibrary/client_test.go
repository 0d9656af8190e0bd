package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SearchBySubject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "subject:business", r.URL.Query().Get("q"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "booksvc-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"numFound":1,"docs":[{"key":"/works/OL1W","title":"Good to Great","author_name":["Jim Collins"],"first_publish_year":2001,"subject":["Business","Management"]}]}`))
	}))
	defer srv.Close()

	c := NewClient("booksvc-test", 100, 0).WithBaseURL(srv.URL)
	res, err := c.SearchBySubject(context.Background(), "business", 2)
	require.NoError(t, err)
	require.Len(t, res.Docs, 1)
	assert.Equal(t, "Good to Great", res.Docs[0].Title)
	assert.Equal(t, []string{"Jim Collins"}, res.Docs[0].AuthorNames)
	assert.Equal(t, 2001, res.Docs[0].FirstPublishYear)
	assert.Equal(t, []string{"Business", "Management"}, res.Docs[0].Subjects)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("booksvc-test", 100, 3).WithBaseURL(srv.URL)
	_, err := c.SearchBySubject(context.Background(), "business", 1)
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_StopsRetryingWhenContextDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient("booksvc-test", 100, 5).WithBaseURL(srv.URL)
	cancel()

	_, err := c.SearchBySubject(ctx, "business", 1)
	assert.ErrorIs(t, err, context.Canceled)
}
