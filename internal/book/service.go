package book

import (
	"context"
)

// legacyGenre is the genre the legacy genre listing always filtered on,
// whatever genre the caller asked for.
const legacyGenre = "Business"

// Service provides book-related business logic.
type Service struct {
	repo   Repository
	legacy bool
}

// Option configures a Service.
type Option func(*Service)

// WithLegacyCompat reproduces the responses of the legacy API: the
// genre listing filters on a fixed genre and an empty author listing is a
// server error.
func WithLegacyCompat(enabled bool) Option {
	return func(s *Service) {
		s.legacy = enabled
	}
}

// NewService creates a new book service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates doc and inserts it.
func (s *Service) Create(ctx context.Context, doc Document) (Document, error) {
	prepared, err := prepareNew(doc)
	if err != nil {
		return nil, err
	}
	return s.repo.Insert(ctx, prepared)
}

// List returns every book.
func (s *Service) List(ctx context.Context) ([]Document, error) {
	return s.repo.Find(ctx, All())
}

// GetByTitle returns one book with the given title. Titles are not unique;
// which match is returned is up to the store.
func (s *Service) GetByTitle(ctx context.Context, title string) (Document, error) {
	return s.repo.FindOne(ctx, TitleIs(title))
}

// ListByAuthor returns the books written by author.
func (s *Service) ListByAuthor(ctx context.Context, author string) ([]Document, error) {
	return s.repo.Find(ctx, AuthorIs(author))
}

// ListByGenre returns the books whose genre set contains genre.
func (s *Service) ListByGenre(ctx context.Context, genre string) ([]Document, error) {
	if s.legacy {
		genre = legacyGenre
	}
	return s.repo.Find(ctx, HasGenre(genre))
}

// ListByPublishedYear returns the books published in the year parsed from
// raw. A value with no leading integer matches nothing.
func (s *Service) ListByPublishedYear(ctx context.Context, raw string) ([]Document, error) {
	year, ok := ParseYear(raw)
	if !ok {
		return nil, nil
	}
	return s.repo.Find(ctx, PublishedIn(year))
}

// UpdateByID merges patch into the book with the given id.
func (s *Service) UpdateByID(ctx context.Context, id string, patch Document) (Document, error) {
	prepared, err := preparePatch(patch)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateByID(ctx, id, prepared)
}

// UpdateByTitle merges patch into one book with the given title.
func (s *Service) UpdateByTitle(ctx context.Context, title string, patch Document) (Document, error) {
	prepared, err := preparePatch(patch)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateOne(ctx, TitleIs(title), prepared)
}

// DeleteByID removes the book with the given id.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}

// Ready reports whether the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// LegacyCompat reports whether legacy responses are enabled.
func (s *Service) LegacyCompat() bool {
	return s.legacy
}
