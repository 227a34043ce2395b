package handlers

import (
	"context"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/lehmann314159/rango/internal/catalog"
	"github.com/lehmann314159/rango/internal/models"
)

// TopN is how many categories and pages the index lists.
const TopN = 5

// Searcher is the web search capability used by the search view.
type Searcher interface {
	Search(ctx context.Context, query string) []models.SearchResult
}

type HomeHandler struct {
	store    catalog.Store
	searcher Searcher
	tmpl     *template.Template
	logger   *zap.Logger
}

func NewHomeHandler(store catalog.Store, searcher Searcher, tmpl *template.Template, logger *zap.Logger) *HomeHandler {
	return &HomeHandler{store: store, searcher: searcher, tmpl: tmpl, logger: logger}
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.TopCategories(r.Context(), TopN)
	if err != nil {
		serverError(w, h.logger, "list top categories", err)
		return
	}

	pages, err := h.store.TopPages(r.Context(), TopN)
	if err != nil {
		serverError(w, h.logger, "list top pages", err)
		return
	}

	data := map[string]interface{}{
		"Title":      "Home",
		"Categories": categories,
		"Pages":      pages,
	}

	render(w, h.tmpl, h.logger, "index.html", data)
}

func (h *HomeHandler) About(w http.ResponseWriter, r *http.Request) {
	render(w, h.tmpl, h.logger, "about.html", map[string]interface{}{"Title": "About"})
}

// Search runs the query from a GET parameter or POSTed form field.
func (h *HomeHandler) Search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	query := r.FormValue("query")
	var results []models.SearchResult
	if query != "" {
		results = h.searcher.Search(r.Context(), query)
	}

	data := map[string]interface{}{
		"Title":   "Search",
		"Query":   query,
		"Results": results,
	}

	render(w, h.tmpl, h.logger, "search.html", data)
}

// Root sends bare requests to the application index.
func Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/rango/", http.StatusFound)
}
