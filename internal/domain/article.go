package domain

// Status is the publication lifecycle state of an article.
type Status string

const (
	// StatusDraft marks an article under editing, invisible to anonymous callers.
	StatusDraft Status = "draft"
	// StatusPublished marks an article visible and searchable.
	StatusPublished Status = "published"
	// StatusArchived marks a retired article, excluded from search.
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Article is a knowledge-base article together with its vector-store fields.
//
// The embedding fields and the in-progress flags are owned by the vector
// store; the embedding generator is their only writer and always replaces
// the whole record (last writer wins, never a field-level merge).
type Article struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Content     string
	Status      Status
	TagIDs      []string

	MetadataEmbedding []float32
	ContentEmbedding  []float32

	MetadataEmbeddingInProgress bool
	ContentEmbeddingInProgress  bool

	CreatedAt int64 // unix ms
	UpdatedAt int64 // unix ms
}

// MetadataText is the text embedded as the article's metadata vector.
func (a *Article) MetadataText() string {
	return a.Title + "\n" + a.Description
}

// Searchable reports whether the article can appear in search results:
// published with a content embedding present.
func (a *Article) Searchable() bool {
	return a.Status == StatusPublished && len(a.ContentEmbedding) > 0
}

// SearchResult is a single ranked search hit.
type SearchResult struct {
	ArticleID  string
	Title      string
	Content    string
	Similarity float64
}
