package article

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbase-cloud/kbsearch/internal/db"
	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// KeyPrefix namespaces all article keys.
const KeyPrefix = "kbsearch:article:"

// store is the consumer interface for article persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo is the vector store: it persists articles together with their
// embedding vectors and in-progress flags. Every mutation replaces the
// whole record so concurrent writers resolve to last-writer-wins.
type Repo struct {
	store store
}

// New creates an article repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put stores a whole article record.
func (r *Repo) Put(ctx context.Context, a *domain.Article) error {
	data, err := json.Marshal(toDoc(a))
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}
	if err := r.store.JSONSet(ctx, articleKey(a.ID), "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w: %w", a.ID, domain.ErrPersistenceFailure, err)
	}
	return nil
}

// Get returns an article by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Article, error) {
	raw, err := r.store.JSONGet(ctx, articleKey(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Article{}, domain.ErrArticleNotFound
		}
		return domain.Article{}, fmt.Errorf("json.get %s: %w: %w", id, domain.ErrPersistenceFailure, err)
	}
	return parseJSONGetResult(raw)
}

// List returns every stored article. Ranking and pagination happen in the
// use case layer; the record count of a support knowledge base stays small.
func (r *Repo) List(ctx context.Context) ([]domain.Article, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan articles: %w: %w", domain.ErrPersistenceFailure, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("mget articles: %w: %w", domain.ErrPersistenceFailure, err)
	}

	articles := make([]domain.Article, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue // deleted between SCAN and JSON.GET
		}
		a, err := parseJSONGetResult(raw)
		if err != nil {
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// Delete removes an article.
func (r *Repo) Delete(ctx context.Context, id string) error {
	exists, err := r.store.Exists(ctx, articleKey(id))
	if err != nil {
		return fmt.Errorf("check exists %s: %w: %w", id, domain.ErrPersistenceFailure, err)
	}
	if !exists {
		return domain.ErrArticleNotFound
	}
	if err := r.store.Del(ctx, articleKey(id)); err != nil {
		return fmt.Errorf("del %s: %w: %w", id, domain.ErrPersistenceFailure, err)
	}
	return nil
}

// MarkEmbeddingInProgress sets both in-progress flags on the record.
func (r *Repo) MarkEmbeddingInProgress(ctx context.Context, id string) error {
	return r.updateRecord(ctx, id, func(a *domain.Article) {
		a.MetadataEmbeddingInProgress = true
		a.ContentEmbeddingInProgress = true
	})
}

// StoreEmbeddings persists both vectors and clears both flags in a single
// whole-record write (the all-or-nothing step of a generation job).
func (r *Repo) StoreEmbeddings(ctx context.Context, id string, metadata, content []float32) error {
	return r.updateRecord(ctx, id, func(a *domain.Article) {
		a.MetadataEmbedding = metadata
		a.ContentEmbedding = content
		a.MetadataEmbeddingInProgress = false
		a.ContentEmbeddingInProgress = false
	})
}

// ClearEmbeddingInProgress resets both flags, leaving any previously stored
// vectors untouched.
func (r *Repo) ClearEmbeddingInProgress(ctx context.Context, id string) error {
	return r.updateRecord(ctx, id, func(a *domain.Article) {
		a.MetadataEmbeddingInProgress = false
		a.ContentEmbeddingInProgress = false
	})
}

// updateRecord reads the record, applies fn, and writes the whole record
// back. Updates are idempotent whole-record replacements, never field-level
// merges.
func (r *Repo) updateRecord(ctx context.Context, id string, fn func(*domain.Article)) error {
	a, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	fn(&a)
	return r.Put(ctx, &a)
}

func articleKey(id string) string {
	return KeyPrefix + id
}
