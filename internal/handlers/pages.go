package handlers

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lehmann314159/rango/internal/catalog"
	"github.com/lehmann314159/rango/internal/forms"
	"github.com/lehmann314159/rango/internal/models"
)

type PageHandler struct {
	store  catalog.Store
	tmpl   *template.Template
	logger *zap.Logger
}

func NewPageHandler(store catalog.Store, tmpl *template.Template, logger *zap.Logger) *PageHandler {
	return &PageHandler{store: store, tmpl: tmpl, logger: logger}
}

// Add shows and processes the add-page form for the category in the path.
// When the category does not exist the form still renders but nothing is
// ever saved.
func (h *PageHandler) Add(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	category, found, err := h.store.CategoryBySlug(r.Context(), slug)
	if err != nil {
		serverError(w, h.logger, "get category", err)
		return
	}
	var current *models.Category
	if found {
		current = &category
	}

	form := forms.NewPageForm("", "")

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		form = forms.NewPageForm(r.FormValue("title"), r.FormValue("url"))
		if form.Valid() && current != nil {
			page, err := h.store.CreatePage(r.Context(), current.ID, form.Title, form.URL)
			switch {
			case err == nil:
				h.logger.Info("Page created", zap.Int64("id", page.ID), zap.String("category", slug))
				http.Redirect(w, r, "/rango/category/"+url.PathEscape(slug)+"/", http.StatusSeeOther)
				return
			case errors.Is(err, models.ErrNotFound):
				current = nil
			default:
				serverError(w, h.logger, "create page", err)
				return
			}
		}
	}

	data := map[string]interface{}{
		"Title":    "Add a Page",
		"Slug":     slug,
		"Category": current,
		"Form":     form,
	}

	render(w, h.tmpl, h.logger, "add_page.html", data)
}

// QuickAdd saves a search result to a category and answers with the
// category's refreshed page list.
func (h *PageHandler) QuickAdd(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	id, err := strconv.ParseInt(strings.TrimSpace(q.Get("category_id")), 10, 64)
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	form := forms.NewPageForm(q.Get("title"), q.Get("url"))
	if !form.Valid() {
		var msgs []string
		for _, field := range []string{"title", "url"} {
			if msg := form.Errors.Get(field); msg != "" {
				msgs = append(msgs, field+": "+msg)
			}
		}
		http.Error(w, strings.Join(msgs, "; "), http.StatusBadRequest)
		return
	}

	if _, err := h.store.CreatePage(r.Context(), id, form.Title, form.URL); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		serverError(w, h.logger, "create page", err)
		return
	}

	pages, err := h.store.PagesForCategory(r.Context(), id)
	if err != nil {
		serverError(w, h.logger, "list category pages", err)
		return
	}

	render(w, h.tmpl, h.logger, "page-list", map[string]interface{}{"Pages": pages})
}

// Goto counts a visit to the page and redirects to its URL. Missing or
// unknown ids go back to the index.
func (h *PageHandler) Goto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("page_id")), 10, 64)
	if err != nil {
		http.Redirect(w, r, "/rango/", http.StatusFound)
		return
	}

	page, err := h.store.VisitPage(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		http.Redirect(w, r, "/rango/", http.StatusFound)
		return
	}
	if err != nil {
		serverError(w, h.logger, "visit page", err)
		return
	}

	http.Redirect(w, r, page.URL, http.StatusFound)
}
