package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lehmann314159/rango/internal/catalog"
	"github.com/lehmann314159/rango/internal/forms"
	"github.com/lehmann314159/rango/internal/models"
)

// MaxSuggestions caps the category suggestion list.
const MaxSuggestions = 8

type CategoryHandler struct {
	store  catalog.Store
	tmpl   *template.Template
	logger *zap.Logger
}

func NewCategoryHandler(store catalog.Store, tmpl *template.Template, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{store: store, tmpl: tmpl, logger: logger}
}

// Show renders a category with its pages. An unknown slug renders the
// empty state with 200, not a 404.
func (h *CategoryHandler) Show(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	data := map[string]interface{}{
		"Title":    "Category",
		"Slug":     slug,
		"Category": (*models.Category)(nil),
		"Pages":    []models.Page(nil),
	}

	category, found, err := h.store.CategoryBySlug(r.Context(), slug)
	if err != nil {
		serverError(w, h.logger, "get category", err)
		return
	}
	if found {
		pages, err := h.store.PagesForCategory(r.Context(), category.ID)
		if err != nil {
			serverError(w, h.logger, "list category pages", err)
			return
		}
		data["Title"] = category.Name
		data["Category"] = &category
		data["Pages"] = pages
	}

	render(w, h.tmpl, h.logger, "category.html", data)
}

func (h *CategoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	form := forms.NewCategoryForm("")

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		form = forms.NewCategoryForm(r.FormValue("name"))
		if form.Valid() {
			category, err := h.store.CreateCategory(r.Context(), form.Name)
			if err == nil {
				h.logger.Info("Category created", zap.Int64("id", category.ID), zap.String("slug", category.Slug))
				http.Redirect(w, r, "/rango/", http.StatusSeeOther)
				return
			}
			if !form.ApplyStoreError(err) {
				serverError(w, h.logger, "create category", err)
				return
			}
		}
	}

	data := map[string]interface{}{
		"Title": "Add a Category",
		"Form":  form,
	}

	render(w, h.tmpl, h.logger, "add_category.html", data)
}

// Like answers with the new like count as plain text. A request without an
// id answers 0.
func (h *CategoryHandler) Like(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	idStr := strings.TrimSpace(r.URL.Query().Get("category_id"))
	if idStr == "" {
		w.Write([]byte("0"))
		return
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	likes, err := h.store.LikeCategory(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}
	if err != nil {
		serverError(w, h.logger, "like category", err)
		return
	}

	w.Write([]byte(strconv.Itoa(likes)))
}

// Suggest renders the category list fragment for names starting with the
// "suggestion" parameter.
func (h *CategoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("suggestion"))

	categories, err := h.store.SuggestCategories(r.Context(), prefix, MaxSuggestions)
	if err != nil {
		serverError(w, h.logger, "suggest categories", err)
		return
	}

	render(w, h.tmpl, h.logger, "category-list", map[string]interface{}{"Categories": categories})
}
