// Package gormstore is the GORM-backed catalog store. It serves PostgreSQL
// as well as SQLite, selected from the database URL.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lehmann314159/rango/internal/models"
	"github.com/lehmann314159/rango/internal/slug"
)

type category struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"size:128;not null;uniqueIndex"`
	Slug      string `gorm:"size:128;not null;uniqueIndex"`
	Views     int    `gorm:"not null;default:0"`
	Likes     int    `gorm:"not null;default:0;index"`
	CreatedAt time.Time
}

func (category) TableName() string {
	return "categories"
}

type page struct {
	ID         int64    `gorm:"primaryKey"`
	CategoryID int64    `gorm:"not null;index"`
	Category   category `gorm:"constraint:OnDelete:CASCADE"`
	Title      string   `gorm:"size:128;not null"`
	URL        string   `gorm:"column:url;size:200;not null"`
	Views      int      `gorm:"not null;default:0;index"`
	CreatedAt  time.Time
}

func (page) TableName() string {
	return "pages"
}

func (c category) model() models.Category {
	return models.Category{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		Views:     c.Views,
		Likes:     c.Likes,
		CreatedAt: c.CreatedAt,
	}
}

func (p page) model() models.Page {
	return models.Page{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		Title:      p.Title,
		URL:        p.URL,
		Views:      p.Views,
		CreatedAt:  p.CreatedAt,
	}
}

type Store struct {
	db *gorm.DB
}

// Open connects to databaseURL (postgres://, postgresql:// or sqlite://path)
// and migrates the catalog tables.
func Open(databaseURL string, logger *zap.Logger) (*Store, error) {
	dialector, isSQLite, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(zapWriter{logger.Sugar()}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	if err := db.AutoMigrate(&category{}, &page{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

func dialectorFor(databaseURL string) (gorm.Dialector, bool, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL), false, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return nil, false, fmt.Errorf("sqlite database path is empty")
		}
		return sqlite.Open(path + "?_foreign_keys=on&_busy_timeout=5000"), true, nil
	}
	return nil, false, fmt.Errorf("unsupported database URL: %s", databaseURL)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	sl := slug.Make(name)
	if sl == "" {
		return models.Category{}, models.ErrEmptySlug
	}

	c := category{Name: name, Slug: sl}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&category{}).Where("name = ?", name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return models.ErrDuplicateName
		}
		if err := tx.Model(&category{}).Where("slug = ?", sl).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return models.ErrDuplicateSlug
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return models.Category{}, err
	}
	return c.model(), nil
}

func (s *Store) CategoryBySlug(ctx context.Context, slug string) (models.Category, bool, error) {
	var c category
	return foundCategory(c, s.db.WithContext(ctx).Where("slug = ?", slug).Take(&c).Error)
}

func (s *Store) CategoryByID(ctx context.Context, id int64) (models.Category, bool, error) {
	var c category
	return foundCategory(c, s.db.WithContext(ctx).Where("id = ?", id).Take(&c).Error)
}

func foundCategory(c category, err error) (models.Category, bool, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Category{}, false, nil
	}
	if err != nil {
		return models.Category{}, false, err
	}
	return c.model(), true, nil
}

func (s *Store) TopCategories(ctx context.Context, limit int) ([]models.Category, error) {
	var rows []category
	err := s.db.WithContext(ctx).Order("likes DESC").Order("id").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return categoryModels(rows), nil
}

func (s *Store) SuggestCategories(ctx context.Context, prefix string, limit int) ([]models.Category, error) {
	var rows []category
	err := s.db.WithContext(ctx).
		Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, escapeLike(prefix)+"%").
		Order("name").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return categoryModels(rows), nil
}

// LikeCategory increments and reads back inside one transaction, so the
// returned count includes exactly this like.
func (s *Store) LikeCategory(ctx context.Context, id int64) (int, error) {
	var c category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&category{}).Where("id = ?", id).UpdateColumn("likes", gorm.Expr("likes + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("category %d: %w", id, models.ErrNotFound)
		}
		return tx.Select("likes").Where("id = ?", id).Take(&c).Error
	})
	if err != nil {
		return 0, err
	}
	return c.Likes, nil
}

func categoryModels(rows []category) []models.Category {
	var out []models.Category
	for _, c := range rows {
		out = append(out, c.model())
	}
	return out
}

func (s *Store) CreatePage(ctx context.Context, categoryID int64, title, url string) (models.Page, error) {
	p := page{CategoryID: categoryID, Title: title, URL: url}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&category{}).Where("id = ?", categoryID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("category %d: %w", categoryID, models.ErrNotFound)
		}
		return tx.Omit(clause.Associations).Create(&p).Error
	})
	if err != nil {
		return models.Page{}, err
	}
	return p.model(), nil
}

func (s *Store) TopPages(ctx context.Context, limit int) ([]models.Page, error) {
	var rows []page
	err := s.db.WithContext(ctx).Order("views DESC").Order("id").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return pageModels(rows), nil
}

func (s *Store) PagesForCategory(ctx context.Context, categoryID int64) ([]models.Page, error) {
	var rows []page
	err := s.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("views DESC").Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return pageModels(rows), nil
}

func (s *Store) VisitPage(ctx context.Context, id int64) (models.Page, error) {
	var p page
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&page{}).Where("id = ?", id).UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("page %d: %w", id, models.ErrNotFound)
		}
		return tx.Where("id = ?", id).Take(&p).Error
	})
	if err != nil {
		return models.Page{}, err
	}
	return p.model(), nil
}

func pageModels(rows []page) []models.Page {
	var out []models.Page
	for _, p := range rows {
		out = append(out, p.model())
	}
	return out
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// zapWriter routes GORM's slow-query and error output through zap.
type zapWriter struct {
	*zap.SugaredLogger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	w.Warnf(format, args...)
}
