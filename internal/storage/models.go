package storage

// PageChunk represents one indexed passage from the active search request.
// The collection holds chunks from at most one URL at a time; a new search
// clears all prior chunks before inserting its own.
type PageChunk struct {
	ID        string    // UUID
	Content   string    // Passage text
	HTML      string    // Serialized markup of the source element
	URL       string    // Page the passage came from
	Path      string    // DOM locator, e.g. "div#main" or "p.intro"
	Embedding []float32 // 1536-dim vector (text-embedding-3-small)
}

// ScoredChunk is a search hit: the stored payload plus the store's
// normalized similarity against the query vector.
type ScoredChunk struct {
	Content   string
	HTML      string
	URL       string
	Path      string
	Certainty float64 // normalized similarity in [0,1]
}

// CollectionName is the single Qdrant collection holding the active index
// generation.
const CollectionName = "page_chunks"

// VectorDimension is the embedding size for text-embedding-3-small.
const VectorDimension = 1536
