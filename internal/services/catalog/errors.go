package catalog

import "errors"

var (
	ErrSlugTaken        = errors.New("that slug is already taken")
	ErrCategoryNotFound = errors.New("category not found")
	ErrGenreNotFound    = errors.New("genre not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrRelationNotFound = errors.New("referenced category or genre not found")
	ErrFutureYear       = errors.New("release year is in the future")
)
