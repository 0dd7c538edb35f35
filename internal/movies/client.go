// Package movies wraps the TMDB title-search and title-detail endpoints.
// The provider's schema is opaque beyond the fields consumed for display.
package movies

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.themoviedb.org/3"

// ImageBaseURL is the prefix for poster and backdrop paths.
const ImageBaseURL = "https://image.tmdb.org/t/p/w500"

// Movie is one search result.
type Movie struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	ReleaseDate  string  `json:"release_date"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
}

// SearchResult is the provider's search response envelope.
type SearchResult struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// Details is one title's detail record, with credits appended.
type Details struct {
	Movie
	Runtime int `json:"runtime"`
	Genres  []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name      string `json:"name"`
			Character string `json:"character"`
		} `json:"cast"`
	} `json:"credits"`
}

// Client calls the movie database API, keyed by an API credential.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a Client. An empty API key is rejected up front so a
// misconfigured deployment fails at startup, not on first search.
func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("movie api key is required")
	}
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// NewClientWithBaseURL creates a Client against a custom endpoint for testing.
func NewClientWithBaseURL(apiKey, baseURL string) (*Client, error) {
	c, err := NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	c.baseURL = baseURL
	return c, nil
}

// Search looks up titles matching query.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required")
	}

	u := fmt.Sprintf("%s/search/movie?api_key=%s&query=%s",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(query))

	var result SearchResult
	if err := c.get(ctx, u, &result); err != nil {
		return nil, fmt.Errorf("searching movies: %w", err)
	}
	return &result, nil
}

// Details fetches one title with its credits.
func (c *Client) Details(ctx context.Context, id int) (*Details, error) {
	u := fmt.Sprintf("%s/movie/%d?api_key=%s&append_to_response=credits",
		c.baseURL, id, url.QueryEscape(c.apiKey))

	var details Details
	if err := c.get(ctx, u, &details); err != nil {
		return nil, fmt.Errorf("loading movie details: %w", err)
	}
	return &details, nil
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling movie API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("movie API error (status %d)", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
