package adapter

import "context"

// SearchResult is one hit from the web search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchAdapter is the port for web search (Tavily).
type SearchAdapter interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}
