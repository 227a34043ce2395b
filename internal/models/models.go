package models

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("category with this name already exists")
	ErrDuplicateSlug = errors.New("category with this slug already exists")
	ErrEmptySlug     = errors.New("name does not produce a usable slug")
)

type Category struct {
	ID        int64
	Name      string
	Slug      string
	Views     int
	Likes     int
	CreatedAt time.Time
}

type Page struct {
	ID         int64
	CategoryID int64
	Title      string
	URL        string
	Views      int
	CreatedAt  time.Time
}

// SearchResult is one hit returned by the web search client.
type SearchResult struct {
	Title   string
	Link    string
	Summary string
}

// Limits shared by the forms and both stores.
const (
	MaxNameLength  = 128
	MaxTitleLength = 128
	MaxURLLength   = 200
)
