package main

import (
	"testing"

	"booksvc/internal/book"
	"booksvc/internal/platform/openlibrary"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSearch(t *testing.T) {
	hits := []openlibrary.SearchDoc{
		{Key: "/works/OL1W", Title: "Good to Great", AuthorNames: []string{"Jim Collins", "Other"}, FirstPublishYear: 2001, Subjects: []string{"Business", "Management"}, Language: []string{"eng"}},
		{Key: "/works/OL2W", Title: "Anonymous"},
		{Key: "/works/OL3W", AuthorNames: []string{"Nobody"}},
	}

	docs := fromSearch(hits, "Business")

	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, "Good to Great", doc[book.FieldTitle])
	assert.Equal(t, "Jim Collins", doc[book.FieldAuthor])
	assert.Equal(t, []string{"Business", "Management"}, doc[book.FieldGenre])
	assert.Equal(t, 2001, doc[book.FieldPublishedYear])
	assert.Equal(t, "eng", doc["language"])
	assert.Equal(t, "/works/OL1W", doc["openLibraryKey"])
}

func TestFromSearch_CapsGenres(t *testing.T) {
	hits := []openlibrary.SearchDoc{{
		Title:       "Many Subjects",
		AuthorNames: []string{"A"},
		Subjects:    []string{"a", "b", "c", "d", "e", "f"},
	}}

	docs := fromSearch(hits, "x")

	require.Len(t, docs, 1)
	assert.Len(t, docs[0][book.FieldGenre], 5)
}

func TestSampleBooks_AreValid(t *testing.T) {
	for _, doc := range sampleBooks() {
		assert.NotEmpty(t, doc.Title())
		assert.NotEmpty(t, doc[book.FieldAuthor])
	}
}
