package server

import (
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/lehmann314159/rango/internal/catalog"
	"github.com/lehmann314159/rango/internal/handlers"
)

// Routes wires every handler onto a ServeMux and wraps it with request
// logging.
func Routes(store catalog.Store, searcher handlers.Searcher, tmpl *template.Template, logger *zap.Logger) http.Handler {
	homeHandler := handlers.NewHomeHandler(store, searcher, tmpl, logger)
	categoryHandler := handlers.NewCategoryHandler(store, tmpl, logger)
	pageHandler := handlers.NewPageHandler(store, tmpl, logger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handlers.Root)

	// Home
	mux.HandleFunc("GET /rango/{$}", homeHandler.Index)
	mux.HandleFunc("GET /rango/about/{$}", homeHandler.About)
	mux.HandleFunc("GET /rango/search/{$}", homeHandler.Search)
	mux.HandleFunc("POST /rango/search/{$}", homeHandler.Search)

	// Categories
	mux.HandleFunc("GET /rango/category/{slug}/{$}", categoryHandler.Show)
	mux.HandleFunc("GET /rango/add_category/{$}", categoryHandler.Add)
	mux.HandleFunc("POST /rango/add_category/{$}", categoryHandler.Add)
	mux.HandleFunc("GET /rango/like/{$}", categoryHandler.Like)
	mux.HandleFunc("GET /rango/suggest/{$}", categoryHandler.Suggest)

	// Pages
	mux.HandleFunc("GET /rango/category/{slug}/add_page/{$}", pageHandler.Add)
	mux.HandleFunc("POST /rango/category/{slug}/add_page/{$}", pageHandler.Add)
	mux.HandleFunc("GET /rango/add/{$}", pageHandler.QuickAdd)
	mux.HandleFunc("GET /rango/goto/{$}", pageHandler.Goto)

	return logRequests(logger, mux)
}
