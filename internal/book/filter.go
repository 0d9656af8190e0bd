package book

import "reflect"

// Filter selects documents by a single field. The zero Filter matches every
// document.
type Filter struct {
	field    string
	value    any
	contains bool
}

// All matches every document.
func All() Filter {
	return Filter{}
}

// TitleIs matches documents whose title equals title.
func TitleIs(title string) Filter {
	return Filter{field: FieldTitle, value: title}
}

// AuthorIs matches documents whose author equals author.
func AuthorIs(author string) Filter {
	return Filter{field: FieldAuthor, value: author}
}

// PublishedIn matches documents whose publishedYear equals year.
func PublishedIn(year int) Filter {
	return Filter{field: FieldPublishedYear, value: year}
}

// HasGenre matches documents whose genre set contains genre.
func HasGenre(genre string) Filter {
	return Filter{field: FieldGenre, value: genre, contains: true}
}

// IsZero reports whether the filter matches every document.
func (f Filter) IsZero() bool { return f.field == "" }

func (f Filter) Field() string { return f.field }

func (f Filter) Value() any { return f.value }

// Contains reports whether the filter is a set-membership test.
func (f Filter) Contains() bool { return f.contains }

// Match reports whether doc satisfies the filter. Equality follows document
// store semantics: numbers compare by value regardless of their Go type, and
// an array field equals a scalar when it contains it.
func (f Filter) Match(doc Document) bool {
	if f.IsZero() {
		return true
	}
	got, ok := doc[f.field]
	if !ok {
		return false
	}
	if f.contains {
		return arrayContains(got, f.value)
	}
	if valuesEqual(got, f.value) {
		return true
	}
	return arrayContains(got, f.value)
}

func arrayContains(field, want any) bool {
	switch items := field.(type) {
	case []string:
		for _, item := range items {
			if valuesEqual(item, want) {
				return true
			}
		}
	case []any:
		for _, item := range items {
			if valuesEqual(item, want) {
				return true
			}
		}
	}
	return false
}

func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
