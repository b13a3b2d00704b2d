package tag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kbase-cloud/kbsearch/internal/db"
	"github.com/kbase-cloud/kbsearch/internal/domain"
)

type fakeStore struct {
	docs map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string][]byte)}
}

func (s *fakeStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	s.docs[key] = data
	return nil
}

func (s *fakeStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	data, ok := s.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append(append([]byte("["), data...), ']'), nil
}

func (s *fakeStore) JSONGetMulti(_ context.Context, keys []string) ([][]byte, error) {
	out := make([][]byte, len(keys))
	for i, key := range keys {
		if data, ok := s.docs[key]; ok {
			out[i] = append(append([]byte("["), data...), ']')
		}
	}
	return out, nil
}

func (s *fakeStore) Del(_ context.Context, key string) error {
	delete(s.docs, key)
	return nil
}

func (s *fakeStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range s.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func TestRepo_PutGetRoundTrip(t *testing.T) {
	repo := New(newFakeStore())
	ctx := context.Background()

	tg := domain.Tag{ID: "t1", Name: "Billing", Slug: "billing", Color: "#ef4444"}
	if err := repo.Put(ctx, &tg); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != tg {
		t.Errorf("round trip mismatch: %+v != %+v", got, tg)
	}
}

func TestRepo_GetMissing(t *testing.T) {
	repo := New(newFakeStore())
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrTagNotFound) {
		t.Errorf("expected ErrTagNotFound, got %v", err)
	}
}

func TestRepo_List(t *testing.T) {
	repo := New(newFakeStore())
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		tg := domain.Tag{ID: id, Name: id}
		if err := repo.Put(ctx, &tg); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}

	tags, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tags) != 3 {
		t.Errorf("expected 3 tags, got %d", len(tags))
	}
}

func TestRepo_DeleteAbsentIsNoOp(t *testing.T) {
	repo := New(newFakeStore())
	if err := repo.Delete(context.Background(), "already-gone"); err != nil {
		t.Errorf("deleting an absent tag must not error: %v", err)
	}
}
