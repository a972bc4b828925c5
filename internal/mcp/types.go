// Package mcp exposes page search as a Model Context Protocol tool.
package mcp

// SearchPageInput defines the input parameters for the search_page tool.
type SearchPageInput struct {
	// URL is the address of the page to search. Must start with http:// or https://.
	URL string `json:"url" jsonschema:"required,description=The http(s) URL of the web page to search"`
	// Query is the natural-language search query.
	Query string `json:"query" jsonschema:"required,description=The semantic search query to run against the page content"`
}

// SearchPageOutput contains the ranked matches for a page search.
type SearchPageOutput struct {
	// Results is the list of matching passages, best first.
	Results []PageMatch `json:"results"`
	// Error carries a descriptive message when the pipeline failed;
	// the result set is empty in that case.
	Error string `json:"error,omitempty"`
}

// PageMatch represents a single passage match from semantic search.
type PageMatch struct {
	// Content is the matched passage text.
	Content string `json:"content"`
	// HTML is the serialized markup of the source element.
	HTML string `json:"html"`
	// Score is the similarity score in [0,100].
	Score float64 `json:"score"`
	// Path locates the source element, e.g. "div#main" or "p.intro".
	Path string `json:"path"`
}
