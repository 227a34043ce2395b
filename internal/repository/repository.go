package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/lehmann314159/rango/internal/models"
	"github.com/lehmann314159/rango/internal/slug"
)

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const categoryColumns = `id, name, slug, views, likes, created_at`
const pageColumns = `id, category_id, title, url, views, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (models.Category, error) {
	var c models.Category
	err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.Views, &c.Likes, &c.CreatedAt)
	return c, err
}

func scanPage(s scanner) (models.Page, error) {
	var p models.Page
	err := s.Scan(&p.ID, &p.CategoryID, &p.Title, &p.URL, &p.Views, &p.CreatedAt)
	return p, err
}

// Categories

func (r *Repository) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	s := slug.Make(name)
	if s == "" {
		return models.Category{}, models.ErrEmptySlug
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Category{}, err
	}
	defer tx.Rollback()

	// Report a name clash ahead of a slug clash; the constraint error alone
	// does not say which index SQLite checked first.
	var taken bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE name = ?)`, name).Scan(&taken); err != nil {
		return models.Category{}, err
	}
	if taken {
		return models.Category{}, models.ErrDuplicateName
	}

	result, err := tx.ExecContext(ctx, `INSERT INTO categories (name, slug) VALUES (?, ?)`, name, s)
	if err != nil {
		return models.Category{}, uniqueViolation(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Category{}, err
	}
	c, err := scanCategory(tx.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err != nil {
		return models.Category{}, err
	}
	return c, tx.Commit()
}

func (r *Repository) CategoryBySlug(ctx context.Context, slug string) (models.Category, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	return foundCategory(scanCategory(row))
}

func (r *Repository) CategoryByID(ctx context.Context, id int64) (models.Category, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	return foundCategory(scanCategory(row))
}

func foundCategory(c models.Category, err error) (models.Category, bool, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return models.Category{}, false, nil
	}
	if err != nil {
		return models.Category{}, false, err
	}
	return c, true, nil
}

func (r *Repository) TopCategories(ctx context.Context, limit int) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		ORDER BY likes DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

// SuggestCategories lists categories whose name starts with prefix, or every
// category when prefix is empty.
func (r *Repository) SuggestCategories(ctx context.Context, prefix string, limit int) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE LOWER(name) LIKE LOWER(?) ESCAPE '\'
		ORDER BY name
		LIMIT ?
	`, escapeLike(prefix)+"%", limit)
	if err != nil {
		return nil, err
	}
	return collectCategories(rows)
}

// LikeCategory adds one like in a single statement and returns the new total.
func (r *Repository) LikeCategory(ctx context.Context, id int64) (int, error) {
	var likes int
	err := r.db.QueryRowContext(ctx,
		`UPDATE categories SET likes = likes + 1 WHERE id = ? RETURNING likes`, id).Scan(&likes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return 0, err
	}
	return likes, nil
}

func collectCategories(rows *sql.Rows) ([]models.Category, error) {
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Pages

func (r *Repository) CreatePage(ctx context.Context, categoryID int64, title, url string) (models.Page, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Page{}, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE id = ?)`, categoryID).Scan(&exists); err != nil {
		return models.Page{}, err
	}
	if !exists {
		return models.Page{}, fmt.Errorf("category %d: %w", categoryID, models.ErrNotFound)
	}

	result, err := tx.ExecContext(ctx, `INSERT INTO pages (category_id, title, url) VALUES (?, ?, ?)`,
		categoryID, title, url)
	if err != nil {
		return models.Page{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Page{}, err
	}
	p, err := scanPage(tx.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
	if err != nil {
		return models.Page{}, err
	}
	return p, tx.Commit()
}

func (r *Repository) TopPages(ctx context.Context, limit int) ([]models.Page, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pageColumns+`
		FROM pages
		ORDER BY views DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectPages(rows)
}

func (r *Repository) PagesForCategory(ctx context.Context, categoryID int64) ([]models.Page, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+pageColumns+`
		FROM pages
		WHERE category_id = ?
		ORDER BY views DESC, id
	`, categoryID)
	if err != nil {
		return nil, err
	}
	return collectPages(rows)
}

// VisitPage counts one visit to the page and returns it with the new total.
func (r *Repository) VisitPage(ctx context.Context, id int64) (models.Page, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE pages SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return models.Page{}, err
	}
	if n, err := result.RowsAffected(); err != nil {
		return models.Page{}, err
	} else if n == 0 {
		return models.Page{}, fmt.Errorf("page %d: %w", id, models.ErrNotFound)
	}
	return scanPage(r.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE id = ?`, id))
}

func collectPages(rows *sql.Rows) ([]models.Page, error) {
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// uniqueViolation maps a UNIQUE constraint failure on categories to the
// matching sentinel error.
func uniqueViolation(err error) error {
	var se sqlite3.Error
	if !errors.As(err, &se) || se.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	switch {
	case strings.Contains(se.Error(), "categories.name"):
		return models.ErrDuplicateName
	case strings.Contains(se.Error(), "categories.slug"):
		return models.ErrDuplicateSlug
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
