// Package search queries the Bing Web Search API.
//
// Every failure (missing key, network, HTTP status, malformed body) is
// logged and turned into an empty result list.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/lehmann314159/rango/internal/models"
)

const (
	DefaultEndpoint = "https://api.bing.microsoft.com/v7.0/search"
	// ResultsPerPage is fixed; only the first page is ever requested.
	ResultsPerPage = 10
	keyHeader      = "Ocp-Apim-Subscription-Key"
)

var errNoKey = errors.New("bing API key not found")

type Config struct {
	Endpoint string
	// Key takes precedence over KeyFile when set.
	Key     string
	KeyFile string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, httpClient: httpClient, logger: logger}
}

type response struct {
	WebPages struct {
		Value []struct {
			Name    string `json:"name"`
			URL     string `json:"url"`
			Snippet string `json:"snippet"`
		} `json:"value"`
	} `json:"webPages"`
}

// Search returns up to ResultsPerPage results for query.
func (c *Client) Search(ctx context.Context, query string) []models.SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	results, err := c.run(ctx, query)
	if err != nil {
		c.logger.Warn("Error when querying the Bing API", zap.String("query", query), zap.Error(err))
		return nil
	}
	return results
}

func (c *Client) run(ctx context.Context, query string) ([]models.SearchResult, error) {
	key, err := c.apiKey()
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", fmt.Sprint(ResultsPerPage))
	params.Set("offset", "0")
	params.Set("textFormat", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(keyHeader, key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var results []models.SearchResult
	for _, v := range body.WebPages.Value {
		if len(results) == ResultsPerPage {
			break
		}
		results = append(results, models.SearchResult{
			Title:   PlainText(v.Name),
			Link:    v.URL,
			Summary: PlainText(v.Snippet),
		})
	}
	return results, nil
}

func (c *Client) apiKey() (string, error) {
	if key := strings.TrimSpace(c.cfg.Key); key != "" {
		return key, nil
	}
	if c.cfg.KeyFile == "" {
		return "", errNoKey
	}
	data, err := os.ReadFile(c.cfg.KeyFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errNoKey, err)
	}
	key, _, _ := strings.Cut(string(data), "\n")
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errNoKey
	}
	return key, nil
}

// PlainText drops markup such as Bing's <b> highlighting and decodes
// entities.
func PlainText(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
