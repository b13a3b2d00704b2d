package tag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kbase-cloud/kbsearch/internal/db"
	"github.com/kbase-cloud/kbsearch/internal/domain"
)

// KeyPrefix namespaces all tag keys.
const KeyPrefix = "kbsearch:tag:"

// store is the consumer interface for tag persistence (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// tagDoc is the JSON shape stored in Redis.
type tagDoc struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

// Repo persists tags.
type Repo struct {
	store store
}

// New creates a tag repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put stores a tag record.
func (r *Repo) Put(ctx context.Context, t *domain.Tag) error {
	data, err := json.Marshal(tagDoc{ID: t.ID, Name: t.Name, Slug: t.Slug, Color: t.Color})
	if err != nil {
		return fmt.Errorf("marshal tag: %w", err)
	}
	if err := r.store.JSONSet(ctx, tagKey(t.ID), "$", data); err != nil {
		return fmt.Errorf("json.set tag %s: %w: %w", t.ID, domain.ErrPersistenceFailure, err)
	}
	return nil
}

// Get returns a tag by ID.
func (r *Repo) Get(ctx context.Context, id string) (domain.Tag, error) {
	raw, err := r.store.JSONGet(ctx, tagKey(id), "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.Tag{}, domain.ErrTagNotFound
		}
		return domain.Tag{}, fmt.Errorf("json.get tag %s: %w: %w", id, domain.ErrPersistenceFailure, err)
	}
	return parseTag(raw)
}

// List returns all tags.
func (r *Repo) List(ctx context.Context) ([]domain.Tag, error) {
	keys, err := r.store.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w: %w", domain.ErrPersistenceFailure, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	raws, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("mget tags: %w: %w", domain.ErrPersistenceFailure, err)
	}

	tags := make([]domain.Tag, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		t, err := parseTag(raw)
		if err != nil {
			continue
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// Delete removes a tag. Deleting an already-absent tag is a no-op: the
// sweeper tolerates races with concurrent sweeps.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, tagKey(id)); err != nil {
		return fmt.Errorf("del tag %s: %w: %w", id, domain.ErrPersistenceFailure, err)
	}
	return nil
}

func parseTag(raw []byte) (domain.Tag, error) {
	var docs []tagDoc
	if err := json.Unmarshal(raw, &docs); err != nil {
		return domain.Tag{}, fmt.Errorf("unmarshal tag: %w", err)
	}
	if len(docs) == 0 {
		return domain.Tag{}, domain.ErrTagNotFound
	}
	d := docs[0]
	return domain.Tag{ID: d.ID, Name: d.Name, Slug: d.Slug, Color: d.Color}, nil
}

func tagKey(id string) string {
	return KeyPrefix + id
}
