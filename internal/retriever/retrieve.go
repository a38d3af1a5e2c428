package retriever

import (
	"context"
	"log/slog"

	"github.com/matsen/learner/internal/record"
)

// Fetcher performs the HTTP GET for a retrieval.
type Fetcher interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

// Retrieve resolves input, fetches the source's endpoint and processes the
// response into a record.
func (s *Set) Retrieve(ctx context.Context, f Fetcher, input string) (*record.Record, error) {
	m, err := s.Sanitize(input)
	if err != nil {
		return nil, err
	}
	return m.Retriever.Fetch(ctx, f, m.Identifier)
}

// Fetch retrieves and processes a record for an already extracted
// identifier.
func (r *Retriever) Fetch(ctx context.Context, f Fetcher, identifier string) (*record.Record, error) {
	url := r.EndpointURL(identifier)
	slog.Info("retrieving", "retriever", r.Name, "identifier", identifier, "url", url)

	data, err := f.Get(ctx, url, r.Headers)
	if err != nil {
		return nil, err
	}
	return r.Process(data, identifier)
}
