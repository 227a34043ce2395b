package handlers

import (
	"bytes"
	"html/template"
	"io/fs"
	"net/http"

	"go.uber.org/zap"
)

// ParseTemplates loads every templates/*.html file from fsys.
func ParseTemplates(fsys fs.FS) (*template.Template, error) {
	return template.New("").ParseFS(fsys, "templates/*.html")
}

// render executes into a buffer first so a template failure still yields a
// clean 500 instead of a half-written page.
func render(w http.ResponseWriter, tmpl *template.Template, logger *zap.Logger, name string, data interface{}) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		serverError(w, logger, "render "+name, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func serverError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	logger.Error("Request failed", zap.String("op", op), zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
