package book

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// knownFields holds the typed view of the attributes the service checks.
// Everything else in a document passes through untouched.
type knownFields struct {
	Title         string   `validate:"required"`
	Author        string   `validate:"required"`
	Genre         []string `validate:"omitempty,dive,required"`
	PublishedYear *int     `validate:"omitempty,gte=0"`
	Rating        *float64 `validate:"omitempty,gte=0,lte=10"`
}

// FieldError describes one rejected attribute.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a document's known attributes are missing
// or have the wrong type or range.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return "book validation failed: " + strings.Join(msgs, "; ")
}

// prepareNew checks and normalises a document about to be inserted.
func prepareNew(doc Document) (Document, error) {
	return prepare(doc, true)
}

// preparePatch checks and normalises a partial update. Attributes that are
// absent from the patch are not checked.
func preparePatch(patch Document) (Document, error) {
	return prepare(patch, false)
}

func prepare(doc Document, full bool) (Document, error) {
	out := doc.withoutID()
	var (
		kf   knownFields
		errs []FieldError
	)

	if v, ok := out[FieldTitle]; ok {
		s, isString := v.(string)
		if !isString {
			errs = append(errs, FieldError{FieldTitle, "title must be a string"})
		}
		kf.Title = s
	}
	if v, ok := out[FieldAuthor]; ok {
		s, isString := v.(string)
		if !isString {
			errs = append(errs, FieldError{FieldAuthor, "author must be a string"})
		}
		kf.Author = s
	}
	if v, ok := out[FieldGenre]; ok {
		genres, err := toStringSet(v)
		if err != nil {
			errs = append(errs, FieldError{FieldGenre, err.Error()})
		} else {
			kf.Genre = genres
			out[FieldGenre] = genres
		}
	}
	if v, ok := out[FieldPublishedYear]; ok {
		year, err := toInt(v)
		if err != nil {
			errs = append(errs, FieldError{FieldPublishedYear, "publishedYear " + err.Error()})
		} else {
			kf.PublishedYear = &year
			out[FieldPublishedYear] = year
		}
	}
	if v, ok := out[FieldRating]; ok {
		rating, err := toNumber(v)
		if err != nil {
			errs = append(errs, FieldError{FieldRating, "rating " + err.Error()})
		} else {
			kf.Rating = &rating
			out[FieldRating] = rating
		}
	}

	if len(errs) == 0 {
		var err error
		if full {
			err = validate.Struct(kf)
		} else {
			err = validate.StructExcept(kf, "Title", "Author")
		}
		errs = translate(err)
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return out, nil
}

func translate(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonName(fe.StructField())
		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", field)
		case "gte":
			msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
		case "lte":
			msg = fmt.Sprintf("%s must be at most %s", field, fe.Param())
		default:
			msg = fmt.Sprintf("%s is invalid", field)
		}
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}

func jsonName(structField string) string {
	// Dive errors name the element, as in Genre[0].
	structField, _, _ = strings.Cut(structField, "[")
	switch structField {
	case "Title":
		return FieldTitle
	case "Author":
		return FieldAuthor
	case "Genre":
		return FieldGenre
	case "PublishedYear":
		return FieldPublishedYear
	case "Rating":
		return FieldRating
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

// toStringSet accepts a list of strings or a single string, which is
// treated as a one-element set.
func toStringSet(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		return []string{val}, nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, errors.New("genre must contain only strings")
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, errors.New("genre must be a list of strings")
}

func toInt(v any) (int, error) {
	n, err := toNumber(v)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, errors.New("must be an integer")
	}
	return int(n), nil
}

// toNumber accepts JSON numbers and numeric strings.
func toNumber(v any) (float64, error) {
	if f, ok := toFloat(v); ok {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, errors.New("must be a finite number")
		}
		return f, nil
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, errors.New("must be a number")
}
