// Package catalog defines the storage contract the request handlers depend on.
//
// Records are returned by value; callers never share state with the store.
// Lookups that may legitimately miss report absence through a found flag,
// while mutations of a missing record fail with models.ErrNotFound.
package catalog

import (
	"context"

	"github.com/lehmann314159/rango/internal/models"
)

// Store is implemented by repository.Repository (database/sql) and
// gormstore.Store (GORM).
type Store interface {
	// CreateCategory fails with models.ErrDuplicateName,
	// models.ErrDuplicateSlug or models.ErrEmptySlug.
	CreateCategory(ctx context.Context, name string) (models.Category, error)
	CategoryBySlug(ctx context.Context, slug string) (models.Category, bool, error)
	CategoryByID(ctx context.Context, id int64) (models.Category, bool, error)
	// TopCategories orders by likes descending, then by id.
	TopCategories(ctx context.Context, limit int) ([]models.Category, error)
	SuggestCategories(ctx context.Context, prefix string, limit int) ([]models.Category, error)
	// LikeCategory increments atomically and returns the new count.
	LikeCategory(ctx context.Context, id int64) (int, error)

	// CreatePage fails with models.ErrNotFound when the category is missing.
	CreatePage(ctx context.Context, categoryID int64, title, url string) (models.Page, error)
	// TopPages orders by views descending, then by id.
	TopPages(ctx context.Context, limit int) ([]models.Page, error)
	PagesForCategory(ctx context.Context, categoryID int64) ([]models.Page, error)
	VisitPage(ctx context.Context, id int64) (models.Page, error)
}
