// Package forms validates the add-category and add-page submissions.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/lehmann314159/rango/internal/models"
	"github.com/lehmann314159/rango/internal/slug"
)

// Errors holds validation messages keyed by form field.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the first message for field, or "".
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) Any() bool {
	return len(e) > 0
}

type CategoryForm struct {
	Name   string
	Errors Errors
}

func NewCategoryForm(name string) *CategoryForm {
	return &CategoryForm{Name: strings.TrimSpace(name), Errors: Errors{}}
}

// Valid checks the name and records any problems in f.Errors.
func (f *CategoryForm) Valid() bool {
	switch {
	case f.Name == "":
		f.Errors.Add("name", "This field is required.")
	case utf8.RuneCountInString(f.Name) > models.MaxNameLength:
		f.Errors.Add("name", fmt.Sprintf("Ensure this value has at most %d characters.", models.MaxNameLength))
	case slug.Make(f.Name) == "":
		f.Errors.Add("name", "Enter a name containing at least one letter or number.")
	}
	return !f.Errors.Any()
}

type PageForm struct {
	Title  string
	URL    string
	Errors Errors
}

func NewPageForm(title, rawURL string) *PageForm {
	return &PageForm{
		Title:  strings.TrimSpace(title),
		URL:    strings.TrimSpace(rawURL),
		Errors: Errors{},
	}
}

// Valid checks title and url. A url typed without a scheme is completed
// with http:// before it is checked.
func (f *PageForm) Valid() bool {
	switch {
	case f.Title == "":
		f.Errors.Add("title", "This field is required.")
	case utf8.RuneCountInString(f.Title) > models.MaxTitleLength:
		f.Errors.Add("title", fmt.Sprintf("Ensure this value has at most %d characters.", models.MaxTitleLength))
	}

	if f.URL == "" {
		f.Errors.Add("url", "This field is required.")
		return false
	}
	if !strings.HasPrefix(f.URL, "http://") && !strings.HasPrefix(f.URL, "https://") && !strings.Contains(f.URL, "://") {
		f.URL = "http://" + f.URL
	}
	switch {
	case utf8.RuneCountInString(f.URL) > models.MaxURLLength:
		f.Errors.Add("url", fmt.Sprintf("Ensure this value has at most %d characters.", models.MaxURLLength))
	case !validURL(f.URL):
		f.Errors.Add("url", "Enter a valid URL.")
	}
	return !f.Errors.Any()
}

func validURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Hostname()
	return host != "" && !strings.ContainsAny(host, " \t")
}

// ApplyStoreError turns a create-category failure into a field error. It
// reports whether err was a validation problem.
func (f *CategoryForm) ApplyStoreError(err error) bool {
	switch {
	case errors.Is(err, models.ErrDuplicateName):
		f.Errors.Add("name", "Category with this Name already exists.")
	case errors.Is(err, models.ErrDuplicateSlug):
		f.Errors.Add("name", "A category with a similar name already exists.")
	case errors.Is(err, models.ErrEmptySlug):
		f.Errors.Add("name", "Enter a name containing at least one letter or number.")
	default:
		return false
	}
	return true
}
