package book

import "errors"

// ErrNotFound is returned when no book matches an id or filter.
var ErrNotFound = errors.New("book not found")

// Field names of the known book attributes.
const (
	FieldID            = "_id"
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldGenre         = "genre"
	FieldPublishedYear = "publishedYear"
	FieldRating        = "rating"
)

// Document is a book record as stored: the known attributes plus any
// additional fields supplied by the caller, keyed by field name.
type Document map[string]any

// ID returns the store-assigned identifier, or "" for unsaved documents.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Title returns the title attribute when it is a string.
func (d Document) Title() string {
	title, _ := d[FieldTitle].(string)
	return title
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

// withoutID returns a copy of the document without its identifier. The id
// is owned by the store and never taken from caller input.
func (d Document) withoutID() Document {
	out := d.Clone()
	if out == nil {
		out = Document{}
	}
	delete(out, FieldID)
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return map[string]any(Document(val).Clone())
	case Document:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
