package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/learner/internal/record"
	"github.com/matsen/learner/internal/retriever"
	"github.com/matsen/learner/internal/storage"
)

const demoRetriever = `
name = "demo"
base_url = "https://api.example.org"
pattern = '^demo:(\d+)$'
endpoint_template = "/items/{identifier}"

[response_format]
type = "json"

[resource_template]
name = "item"

[[resource_template.fields]]
name = "title"
base_type = "string"
required = true

[resource_mappings]
title = "data/name"
`

type fakeFetcher struct {
	body []byte
	err  error
}

func (f *fakeFetcher) Get(context.Context, string, map[string]string) ([]byte, error) {
	return f.body, f.err
}

type memStore struct {
	added    []*record.Record
	criteria storage.Criteria
	results  []record.Record
	err      error
}

func (m *memStore) Add(_ context.Context, rec *record.Record) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.added = append(m.added, rec)
	return "id-1", nil
}

func (m *memStore) Query(_ context.Context, c storage.Criteria) ([]record.Record, error) {
	m.criteria = c
	return m.results, m.err
}

func demoHolder(t *testing.T) *retriever.Holder {
	t.Helper()
	r, err := retriever.Parse([]byte(demoRetriever), nil)
	require.NoError(t, err)
	set, err := retriever.NewSet(r)
	require.NoError(t, err)
	return retriever.NewHolder(set)
}

func TestNew(t *testing.T) {
	t.Run("missing retrievers returns error", func(t *testing.T) {
		s, err := New(Deps{}, "test")
		require.Error(t, err)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrMissingRetrievers)
	})

	t.Run("retrievers only is valid", func(t *testing.T) {
		s, err := New(Deps{Retrievers: demoHolder(t)}, "test")
		require.NoError(t, err)
		assert.NotNil(t, s)
	})
}

func TestHandleResolve(t *testing.T) {
	s, err := New(Deps{Retrievers: demoHolder(t)}, "test")
	require.NoError(t, err)

	_, out, err := s.handleResolve(context.Background(), nil, ResolveInput{Input: " demo:42 "})
	require.NoError(t, err)
	assert.Equal(t, ResolveOutput{
		Retriever:  "demo",
		Source:     "demo",
		Identifier: "42",
		URL:        "https://api.example.org/items/42",
	}, out)

	_, _, err = s.handleResolve(context.Background(), nil, ResolveInput{Input: "nope"})
	assert.ErrorIs(t, err, retriever.ErrInvalidIdentifier)
}

func TestHandleRetrieve(t *testing.T) {
	ctx := context.Background()
	fetcher := &fakeFetcher{body: []byte(`{"data": {"name": "Widgets"}}`)}

	t.Run("returns record without saving", func(t *testing.T) {
		store := &memStore{}
		s, err := New(Deps{Retrievers: demoHolder(t), Fetcher: fetcher, Store: store}, "test")
		require.NoError(t, err)

		_, out, err := s.handleRetrieve(ctx, nil, RetrieveInput{Input: "demo:7"})
		require.NoError(t, err)
		assert.Empty(t, out.ID)
		assert.Equal(t, "Widgets", out.Record.Title())
		assert.Equal(t, "7", out.Record.SourceIdentifier())
		assert.Empty(t, store.added)
	})

	t.Run("saves when asked", func(t *testing.T) {
		store := &memStore{}
		s, err := New(Deps{Retrievers: demoHolder(t), Fetcher: fetcher, Store: store}, "test")
		require.NoError(t, err)

		_, out, err := s.handleRetrieve(ctx, nil, RetrieveInput{Input: "demo:7", Save: true})
		require.NoError(t, err)
		assert.Equal(t, "id-1", out.ID)
		assert.Len(t, store.added, 1)
	})

	t.Run("save without store fails", func(t *testing.T) {
		s, err := New(Deps{Retrievers: demoHolder(t), Fetcher: fetcher}, "test")
		require.NoError(t, err)

		_, _, err = s.handleRetrieve(ctx, nil, RetrieveInput{Input: "demo:7", Save: true})
		require.Error(t, err)
	})

	t.Run("duplicate passes through", func(t *testing.T) {
		store := &memStore{err: storage.ErrDuplicate}
		s, err := New(Deps{Retrievers: demoHolder(t), Fetcher: fetcher, Store: store}, "test")
		require.NoError(t, err)

		_, _, err = s.handleRetrieve(ctx, nil, RetrieveInput{Input: "demo:7", Save: true})
		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("fetch error passes through", func(t *testing.T) {
		boom := errors.New("connection refused")
		s, err := New(Deps{Retrievers: demoHolder(t), Fetcher: &fakeFetcher{err: boom}}, "test")
		require.NoError(t, err)

		_, _, err = s.handleRetrieve(ctx, nil, RetrieveInput{Input: "demo:7"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestHandleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("builds criteria", func(t *testing.T) {
		store := &memStore{results: []record.Record{*record.New("demo", "1", map[string]any{"title": "One"}, nil)}}
		s, err := New(Deps{Retrievers: demoHolder(t), Store: store}, "test")
		require.NoError(t, err)

		_, out, err := s.handleSearch(ctx, nil, SearchInput{Query: "one", Author: "Knuth", Before: "2020-01-02"})
		require.NoError(t, err)
		assert.Equal(t, 1, out.Count)
		assert.Equal(t, "one", store.criteria.Text)
		assert.Equal(t, "Knuth", store.criteria.Author)
		assert.Equal(t, defaultSearchLimit, store.criteria.Limit)
		assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), store.criteria.Before)
	})

	t.Run("empty result is an empty list", func(t *testing.T) {
		s, err := New(Deps{Retrievers: demoHolder(t), Store: &memStore{}}, "test")
		require.NoError(t, err)

		_, out, err := s.handleSearch(ctx, nil, SearchInput{Query: "none", Limit: 5})
		require.NoError(t, err)
		assert.NotNil(t, out.Records)
		assert.Equal(t, 0, out.Count)
	})

	t.Run("bad date", func(t *testing.T) {
		s, err := New(Deps{Retrievers: demoHolder(t), Store: &memStore{}}, "test")
		require.NoError(t, err)

		_, _, err = s.handleSearch(ctx, nil, SearchInput{Before: "last week"})
		require.Error(t, err)
	})
}
