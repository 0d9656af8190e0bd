package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"booksvc/internal/httpx"
)

const (
	msgNoBooks       = "No books found"
	msgBookNotFound  = "Book not found"
	msgBooksNotFound = "Books not found"
	msgBookNotExist  = "Book does not exist"
	msgBookUpdated   = "Book updated successfully"
	msgBookDeleted   = "Book deleted successfully"
)

type createdResponse struct {
	NewBook Document `json:"newBook"`
}

type bookResponse struct {
	Book Document `json:"book"`
}

type listResponse struct {
	Books []Document `json:"books"`
}

type updatedResponse struct {
	Message     string   `json:"message"`
	UpdatedBook Document `json:"updatedBook"`
}

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register mounts the book routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /books", httpx.Handle(h.Create))
	mux.Handle("GET /books", httpx.Handle(h.List))
	mux.Handle("GET /books/title/{title}", httpx.Handle(h.GetByTitle))
	mux.Handle("GET /books/author/{author}", httpx.Handle(h.ListByAuthor))
	mux.Handle("GET /books/genre/{genre}", httpx.Handle(h.ListByGenre))
	mux.Handle("GET /books/publishedYear/{year}", httpx.Handle(h.ListByPublishedYear))
	mux.Handle("POST /books/update-rating/{id}", httpx.Handle(h.UpdateRating))
	mux.Handle("POST /books/update/{title}", httpx.Handle(h.UpdateByTitle))
	mux.Handle("DELETE /books/delete/{id}", httpx.Handle(h.Delete))
}

// Create handles POST /books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) error {
	doc, err := decodeDocument(r)
	if err != nil {
		return err
	}
	created, err := h.service.Create(r.Context(), doc)
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusCreated, createdResponse{NewBook: created})
	return nil
}

// List handles GET /books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) error {
	books, err := h.service.List(r.Context())
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return httpx.NotFound(msgNoBooks)
	}
	httpx.JSON(w, http.StatusOK, listResponse{Books: books})
	return nil
}

// GetByTitle handles GET /books/title/{title}
func (h *HTTPHandler) GetByTitle(w http.ResponseWriter, r *http.Request) error {
	b, err := h.service.GetByTitle(r.Context(), r.PathValue("title"))
	if errors.Is(err, ErrNotFound) {
		return httpx.NotFound(msgBookNotFound)
	}
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, bookResponse{Book: b})
	return nil
}

// ListByAuthor handles GET /books/author/{author}
func (h *HTTPHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) error {
	books, err := h.service.ListByAuthor(r.Context(), r.PathValue("author"))
	if err != nil {
		return err
	}
	if len(books) == 0 {
		if h.service.LegacyCompat() {
			return &httpx.StatusError{Status: http.StatusInternalServerError, Message: msgBookNotFound}
		}
		return httpx.NotFound(msgBookNotFound)
	}
	httpx.JSON(w, http.StatusOK, listResponse{Books: books})
	return nil
}

// ListByGenre handles GET /books/genre/{genre}
func (h *HTTPHandler) ListByGenre(w http.ResponseWriter, r *http.Request) error {
	books, err := h.service.ListByGenre(r.Context(), r.PathValue("genre"))
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return httpx.NotFound(msgBooksNotFound)
	}
	httpx.JSON(w, http.StatusOK, listResponse{Books: books})
	return nil
}

// ListByPublishedYear handles GET /books/publishedYear/{year}
func (h *HTTPHandler) ListByPublishedYear(w http.ResponseWriter, r *http.Request) error {
	books, err := h.service.ListByPublishedYear(r.Context(), r.PathValue("year"))
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return httpx.NotFound(msgBooksNotFound)
	}
	httpx.JSON(w, http.StatusOK, listResponse{Books: books})
	return nil
}

// UpdateRating handles POST /books/update-rating/{id}. Any fields in the
// body are merged, not only the rating.
func (h *HTTPHandler) UpdateRating(w http.ResponseWriter, r *http.Request) error {
	patch, err := decodeDocument(r)
	if err != nil {
		return err
	}
	updated, err := h.service.UpdateByID(r.Context(), r.PathValue("id"), patch)
	if errors.Is(err, ErrNotFound) {
		return httpx.NotFound(msgBookNotExist)
	}
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, updatedResponse{Message: msgBookUpdated, UpdatedBook: updated})
	return nil
}

// UpdateByTitle handles POST /books/update/{title}
func (h *HTTPHandler) UpdateByTitle(w http.ResponseWriter, r *http.Request) error {
	patch, err := decodeDocument(r)
	if err != nil {
		return err
	}
	updated, err := h.service.UpdateByTitle(r.Context(), r.PathValue("title"), patch)
	if errors.Is(err, ErrNotFound) {
		return httpx.NotFound(msgBookNotExist)
	}
	if err != nil {
		return err
	}
	httpx.JSON(w, http.StatusOK, updatedResponse{Message: msgBookUpdated, UpdatedBook: updated})
	return nil
}

// Delete handles DELETE /books/delete/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	err := h.service.DeleteByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		return httpx.NotFound(msgBookNotFound)
	}
	if err != nil {
		return err
	}
	httpx.Message(w, http.StatusOK, msgBookDeleted)
	return nil
}

// decodeDocument reads a JSON object from the request body. An empty body
// is an empty document.
func decodeDocument(r *http.Request) (Document, error) {
	var doc Document
	err := json.NewDecoder(r.Body).Decode(&doc)
	switch {
	case errors.Is(err, io.EOF):
		return Document{}, nil
	case err != nil:
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &httpx.StatusError{Status: http.StatusRequestEntityTooLarge, Err: errors.New("request body too large")}
		}
		return nil, httpx.BadRequest(fmt.Errorf("invalid JSON body: %w", err))
	case doc == nil:
		return nil, httpx.BadRequest(errors.New("request body must be a JSON object"))
	}
	return doc, nil
}
