package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/lehmann314159/rango/internal/database"
	"github.com/lehmann314159/rango/internal/handlers"
	"github.com/lehmann314159/rango/internal/models"
	"github.com/lehmann314159/rango/internal/repository"
	"github.com/lehmann314159/rango/internal/server"
	"github.com/lehmann314159/rango/web"
)

type fakeSearcher struct {
	results []models.SearchResult
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) []models.SearchResult {
	f.queries = append(f.queries, query)
	return f.results
}

type testApp struct {
	handler  http.Handler
	repo     *repository.Repository
	searcher *fakeSearcher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), database.FileName))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tmpl, err := handlers.ParseTemplates(web.Templates)
	require.NoError(t, err)

	repo := repository.New(db)
	searcher := &fakeSearcher{}
	return &testApp{
		handler:  server.Routes(repo, searcher, tmpl, zaptest.NewLogger(t)),
		repo:     repo,
		searcher: searcher,
	}
}

func (a *testApp) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func (a *testApp) post(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) category(t *testing.T, name string) models.Category {
	t.Helper()
	c, err := a.repo.CreateCategory(context.Background(), name)
	require.NoError(t, err)
	return c
}

func fmtID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestRootRedirects(t *testing.T) {
	app := newTestApp(t)
	rec := app.get(t, "/")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/rango/", rec.Header().Get("Location"))
}

func TestIndexEmpty(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rango says")
	assert.Contains(t, rec.Body.String(), "There are no categories present.")
	assert.Contains(t, rec.Body.String(), "There are no pages present.")
}

func TestIndexListsTopFiveCategories(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	for i, name := range []string{"Python", "Django", "Flask", "Pyramid", "Bottle", "Tornado"} {
		c := app.category(t, name)
		for j := 0; j < i; j++ {
			_, err := app.repo.LikeCategory(ctx, c.ID)
			require.NoError(t, err)
		}
	}

	body := app.get(t, "/rango/").Body.String()
	assert.NotContains(t, body, ">Python<", "least liked category should be cut")
	for _, name := range []string{"Django", "Flask", "Pyramid", "Bottle", "Tornado"} {
		assert.Contains(t, body, ">"+name+"<")
	}
	assert.Less(t, strings.Index(body, "Tornado"), strings.Index(body, "Django"))
}

func TestAbout(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/about/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This tutorial has been put together by")
}

func TestShowCategory(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")
	_, err := app.repo.CreatePage(context.Background(), python.ID, "Official Site", "https://python.org")
	require.NoError(t, err)

	rec := app.get(t, "/rango/category/python/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Python</h1>")
	assert.Contains(t, body, "Official Site")
	assert.Contains(t, body, `data-catid="1"`)
}

func TestShowCategoryWithoutPages(t *testing.T) {
	app := newTestApp(t)
	app.category(t, "Empty")

	rec := app.get(t, "/rango/category/empty/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No pages currently in category.")
}

func TestShowCategoryUnknownSlug(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/category/missing/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The specified category does not exist!")
}

func TestAddCategoryForm(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/add_category/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="category_form"`)
}

func TestAddCategory(t *testing.T) {
	app := newTestApp(t)

	rec := app.post(t, "/rango/add_category/", url.Values{"name": {"Other Frameworks"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/rango/", rec.Header().Get("Location"))

	c, found, err := app.repo.CategoryBySlug(context.Background(), "other-frameworks")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Other Frameworks", c.Name)
}

func TestAddCategoryDuplicate(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")
	_, err := app.repo.LikeCategory(context.Background(), python.ID)
	require.NoError(t, err)

	rec := app.post(t, "/rango/add_category/", url.Values{"name": {"Python"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Category with this Name already exists.")
	assert.Contains(t, rec.Body.String(), `value="Python"`)

	c, _, err := app.repo.CategoryBySlug(context.Background(), "python")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Likes)
}

func TestAddCategoryInvalid(t *testing.T) {
	app := newTestApp(t)

	rec := app.post(t, "/rango/add_category/", url.Values{"name": {"  "}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")

	categories, err := app.repo.TopCategories(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestAddPage(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")

	rec := app.post(t, "/rango/category/python/add_page/", url.Values{
		"title": {"Official Site"},
		"url":   {"https://python.org"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/rango/category/python/", rec.Header().Get("Location"))

	pages, err := app.repo.PagesForCategory(context.Background(), python.ID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "Official Site", pages[0].Title)
	assert.Equal(t, "https://python.org", pages[0].URL)
	assert.Zero(t, pages[0].Views)
}

func TestAddPageAddsScheme(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")

	rec := app.post(t, "/rango/category/python/add_page/", url.Values{
		"title": {"Docs"},
		"url":   {"docs.python.org"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	pages, err := app.repo.PagesForCategory(context.Background(), python.ID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "http://docs.python.org", pages[0].URL)
}

func TestAddPageInvalid(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")

	rec := app.post(t, "/rango/category/python/add_page/", url.Values{
		"title": {""},
		"url":   {"ftp://files.python.org"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "This field is required.")
	assert.Contains(t, body, "Enter a valid URL.")

	pages, err := app.repo.PagesForCategory(context.Background(), python.ID)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestAddPageUnknownCategory(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/category/missing/add_page/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The specified category does not exist!")

	rec = app.post(t, "/rango/category/missing/add_page/", url.Values{
		"title": {"Official Site"},
		"url":   {"https://python.org"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "The specified category does not exist!")

	pages, err := app.repo.TopPages(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestLikeCategory(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")
	target := "/rango/like/?category_id=" + url.QueryEscape(fmtID(python.ID))

	for _, want := range []string{"1", "2", "3"} {
		rec := app.get(t, target)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, want, rec.Body.String())
	}
}

func TestLikeCategoryWithoutID(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/like/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Body.String())
}

func TestLikeCategoryErrors(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/like/?category_id=999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEqual(t, "0", strings.TrimSpace(rec.Body.String()))

	rec = app.get(t, "/rango/like/?category_id=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestCategories(t *testing.T) {
	app := newTestApp(t)
	for _, name := range []string{"Python", "Pyramid", "Django"} {
		app.category(t, name)
	}

	rec := app.get(t, "/rango/suggest/?suggestion=py")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Python")
	assert.Contains(t, body, "Pyramid")
	assert.NotContains(t, body, "Django")
	assert.NotContains(t, body, "<html")
}

func TestQuickAdd(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")

	q := url.Values{
		"category_id": {fmtID(python.ID)},
		"title":       {"PyPI"},
		"url":         {"https://pypi.org"},
	}
	rec := app.get(t, "/rango/add/?"+q.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "PyPI")

	pages, err := app.repo.PagesForCategory(context.Background(), python.ID)
	require.NoError(t, err)
	require.Len(t, pages, 1)
}

func TestQuickAddErrors(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")

	rec := app.get(t, "/rango/add/?category_id=42&title=PyPI&url=https://pypi.org")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.get(t, "/rango/add/?category_id=x&title=PyPI&url=https://pypi.org")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.get(t, "/rango/add/?category_id="+fmtID(python.ID)+"&title=&url=https://pypi.org")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title")

	pages, err := app.repo.TopPages(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestGotoCountsVisit(t *testing.T) {
	app := newTestApp(t)
	python := app.category(t, "Python")
	page, err := app.repo.CreatePage(context.Background(), python.ID, "Official Site", "https://python.org")
	require.NoError(t, err)

	rec := app.get(t, "/rango/goto/?page_id="+fmtID(page.ID))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://python.org", rec.Header().Get("Location"))

	pages, err := app.repo.PagesForCategory(context.Background(), python.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pages[0].Views)
}

func TestGotoUnknownPage(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{"/rango/goto/", "/rango/goto/?page_id=77", "/rango/goto/?page_id=x"} {
		rec := app.get(t, target)
		assert.Equal(t, http.StatusFound, rec.Code, target)
		assert.Equal(t, "/rango/", rec.Header().Get("Location"), target)
	}
}

func TestSearch(t *testing.T) {
	app := newTestApp(t)
	app.searcher.results = []models.SearchResult{
		{Title: "Tango with Django", Link: "https://www.tangowithdjango.com", Summary: "A beginner's guide"},
	}

	rec := app.post(t, "/rango/search/", url.Values{"query": {"django"}})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Tango with Django")
	assert.Contains(t, body, "https://www.tangowithdjango.com")
	assert.Equal(t, []string{"django"}, app.searcher.queries)
}

func TestSearchWithoutQuery(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/search/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="search_form"`)
	assert.Empty(t, app.searcher.queries)
}

func TestSearchNoResults(t *testing.T) {
	app := newTestApp(t)

	rec := app.get(t, "/rango/search/?query=nothing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No results found.")
}
