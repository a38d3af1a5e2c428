package retriever

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	body    []byte
	err     error
	url     string
	headers map[string]string
}

func (f *fakeFetcher) Get(_ context.Context, url string, headers map[string]string) ([]byte, error) {
	f.url = url
	f.headers = headers
	return f.body, f.err
}

func TestRetrieve(t *testing.T) {
	set := loadShipped(t)
	body, err := os.ReadFile(filepath.Join("testdata", "arxiv.xml"))
	require.NoError(t, err)

	f := &fakeFetcher{body: body}
	rec, err := set.Retrieve(context.Background(), f, "https://arxiv.org/abs/2301.07041")
	require.NoError(t, err)

	assert.Equal(t, "http://export.arxiv.org/api/query?id_list=2301.07041&max_results=1", f.url)
	assert.Equal(t, "application/atom+xml", f.headers["Accept"])
	assert.Equal(t, "2301.07041", rec.SourceIdentifier())
	assert.Equal(t, "Verifiable Fully Homomorphic Encryption", rec.Title())
}

func TestRetrieveErrors(t *testing.T) {
	set := loadShipped(t)

	_, err := set.Retrieve(context.Background(), &fakeFetcher{}, "garbage")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	boom := errors.New("connection refused")
	_, err = set.Retrieve(context.Background(), &fakeFetcher{err: boom}, "2016/421")
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsDataError(err))
}
