package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"booksvc/internal/app"
	"booksvc/internal/book"
	"booksvc/internal/config"
	"booksvc/internal/httpx"
	"booksvc/internal/platform/openlibrary"
)

func main() {
	var (
		subject = flag.String("subject", "", "Import books with this Open Library subject instead of the sample set")
		limit   = flag.Int("limit", 20, "Maximum number of books to import from Open Library")
	)
	flag.Parse()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	httpx.InitLogger(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	repo, closeStore, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = closeStore(context.Background()) }()

	docs := sampleBooks()
	if *subject != "" {
		client := openlibrary.NewClient("booksvc-seed/1.0", 1, 3)
		res, err := client.SearchBySubject(ctx, *subject, *limit)
		if err != nil {
			log.Fatalf("failed to search Open Library: %v", err)
		}
		docs = fromSearch(res.Docs, *subject)
	}

	service := book.NewService(repo)
	inserted := 0
	for _, doc := range docs {
		created, err := service.Create(ctx, doc)
		if err != nil {
			slog.Warn("skipping book", "title", doc.Title(), "err", err)
			continue
		}
		inserted++
		slog.Debug("inserted book", "id", created.ID(), "title", created.Title())
	}
	slog.Info("seed complete", "inserted", inserted, "skipped", len(docs)-inserted)
}

// fromSearch maps Open Library hits to book documents. Hits without an
// author are dropped since author is required.
func fromSearch(hits []openlibrary.SearchDoc, subject string) []book.Document {
	out := make([]book.Document, 0, len(hits))
	for _, hit := range hits {
		if hit.Title == "" || len(hit.AuthorNames) == 0 {
			continue
		}
		genres := []string{subject}
		for _, s := range hit.Subjects {
			if len(genres) == 5 {
				break
			}
			if s != subject {
				genres = append(genres, s)
			}
		}
		doc := book.Document{
			book.FieldTitle:  hit.Title,
			book.FieldAuthor: hit.AuthorNames[0],
			book.FieldGenre:  genres,
			"openLibraryKey": hit.Key,
		}
		if hit.FirstPublishYear > 0 {
			doc[book.FieldPublishedYear] = hit.FirstPublishYear
		}
		if len(hit.Language) > 0 {
			doc["language"] = hit.Language[0]
		}
		out = append(out, doc)
	}
	return out
}

func sampleBooks() []book.Document {
	return []book.Document{
		{"title": "Lean In", "author": "Sheryl Sandberg", "genre": []string{"Non-Fiction", "Business"}, "publishedYear": 2012, "rating": 4.1, "language": "English"},
		{"title": "Shoe Dog", "author": "Phil Knight", "genre": []string{"Autobiography", "Business"}, "publishedYear": 2016, "rating": 4.5, "language": "English"},
		{"title": "Harry Potter and the Philosopher's Stone", "author": "J.K. Rowling", "genre": []string{"Fantasy"}, "publishedYear": 1997, "rating": 4.5, "language": "English"},
		{"title": "Harry Potter and the Chamber of Secrets", "author": "J.K. Rowling", "genre": []string{"Fantasy"}, "publishedYear": 1998, "rating": 4.4, "language": "English"},
		{"title": "To Kill a Mockingbird", "author": "Harper Lee", "genre": []string{"Fiction", "Historical"}, "publishedYear": 1960, "rating": 4.8, "language": "English"},
		{"title": "1984", "author": "George Orwell", "genre": []string{"Fiction", "Dystopian"}, "publishedYear": 1949, "rating": 4.6, "language": "English"},
		{"title": "The Alchemist", "author": "Paulo Coelho", "genre": []string{"Fiction", "Fantasy"}, "publishedYear": 1988, "rating": 4.3, "language": "Portuguese"},
		{"title": "Zero to One", "author": "Peter Thiel", "genre": []string{"Business"}, "publishedYear": 2014, "rating": 4.2, "language": "English"},
	}
}
