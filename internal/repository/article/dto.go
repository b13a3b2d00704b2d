package article

import (
	"encoding/json"
	"fmt"

	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// articleDoc is the JSON shape stored in Redis.
type articleDoc struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
	Status      string   `json:"status"`
	TagIDs      []string `json:"tag_ids,omitempty"`

	MetadataEmbedding []float32 `json:"metadata_embedding,omitempty"`
	ContentEmbedding  []float32 `json:"content_embedding,omitempty"`

	MetadataEmbeddingInProgress bool `json:"is_metadata_embedding_in_progress"`
	ContentEmbeddingInProgress  bool `json:"is_content_embedding_in_progress"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

func toDoc(a *domain.Article) articleDoc {
	return articleDoc{
		ID:                          a.ID,
		Slug:                        a.Slug,
		Title:                       a.Title,
		Description:                 a.Description,
		Content:                     a.Content,
		Status:                      string(a.Status),
		TagIDs:                      a.TagIDs,
		MetadataEmbedding:           a.MetadataEmbedding,
		ContentEmbedding:            a.ContentEmbedding,
		MetadataEmbeddingInProgress: a.MetadataEmbeddingInProgress,
		ContentEmbeddingInProgress:  a.ContentEmbeddingInProgress,
		CreatedAt:                   a.CreatedAt,
		UpdatedAt:                   a.UpdatedAt,
	}
}

func fromDoc(d articleDoc) domain.Article {
	return domain.Article{
		ID:                          d.ID,
		Slug:                        d.Slug,
		Title:                       d.Title,
		Description:                 d.Description,
		Content:                     d.Content,
		Status:                      domain.Status(d.Status),
		TagIDs:                      d.TagIDs,
		MetadataEmbedding:           d.MetadataEmbedding,
		ContentEmbedding:            d.ContentEmbedding,
		MetadataEmbeddingInProgress: d.MetadataEmbeddingInProgress,
		ContentEmbeddingInProgress:  d.ContentEmbeddingInProgress,
		CreatedAt:                   d.CreatedAt,
		UpdatedAt:                   d.UpdatedAt,
	}
}

// parseJSONGetResult unwraps the `$`-path array that JSON.GET returns.
func parseJSONGetResult(raw []byte) (domain.Article, error) {
	var docs []articleDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Article{}, fmt.Errorf("unmarshal article: %w", err)
	}
	if len(docs) == 0 {
		return domain.Article{}, domain.ErrArticleNotFound
	}
	return fromDoc(docs[0]), nil
}
