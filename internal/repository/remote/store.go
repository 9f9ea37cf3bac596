// Package remote reads a dictionary served by another termdex instance.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/termdex/internal/domain"
	"github.com/kailas-cloud/termdex/internal/domain/entry"
	"github.com/kailas-cloud/termdex/internal/domain/match"
	"github.com/kailas-cloud/termdex/internal/domain/query"
	"github.com/kailas-cloud/termdex/internal/transport/httpquery"
)

// DefaultTimeout bounds every request when no client is supplied.
const DefaultTimeout = 10 * time.Second

// Routes on the serving instance.
const (
	pathHealth       = "/health"
	pathDictInfos    = "/v1/dictinfos"
	pathEntries      = "/v1/entries"
	pathRefTerms     = "/v1/refterms"
	pathStoreMatches = "/v1/store/matches"
)

// Store is a read-only entry store backed by HTTP.
type Store struct {
	base   *url.URL
	client *http.Client
	logger *zap.Logger
}

// New creates a Store for the server at baseURL.
func New(baseURL string) (*Store, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: unsupported scheme", baseURL)
	}
	return &Store{
		base:   u,
		client: &http.Client{Timeout: DefaultTimeout},
		logger: zap.NewNop(),
	}, nil
}

// WithHTTPClient replaces the HTTP client.
func (s *Store) WithHTTPClient(c *http.Client) *Store {
	if c != nil {
		s.client = c
	}
	return s
}

// WithTimeout sets the client timeout.
func (s *Store) WithTimeout(d time.Duration) *Store {
	if d > 0 {
		c := *s.client
		c.Timeout = d
		s.client = &c
	}
	return s
}

// WithLogger sets the logger.
func (s *Store) WithLogger(l *zap.Logger) *Store {
	if l != nil {
		s.logger = l
	}
	return s
}

// GetDictInfos lists dictionaries.
func (s *Store) GetDictInfos(ctx context.Context, q query.DictInfoQuery) ([]entry.DictInfo, error) {
	return getItems[entry.DictInfo](ctx, s, pathDictInfos, httpquery.EncodeDictInfoQuery(q))
}

// GetEntries lists entries.
func (s *Store) GetEntries(ctx context.Context, q query.EntryQuery) ([]entry.Entry, error) {
	return getItems[entry.Entry](ctx, s, pathEntries, httpquery.EncodeEntryQuery(q))
}

// GetRefTerms lists referring terms.
func (s *Store) GetRefTerms(ctx context.Context, q query.RefTermQuery) ([]string, error) {
	return getItems[string](ctx, s, pathRefTerms, httpquery.EncodeRefTermQuery(q))
}

// FindMatches returns the server's normal matches. Fixed terms and number
// matches are left to the caller's engine.
func (s *Store) FindMatches(ctx context.Context, str string, q query.MatchQuery) ([]match.Match, error) {
	if str == "" {
		return []match.Match{}, nil
	}
	q.IDTs = nil
	v, err := httpquery.EncodeMatchQuery(str, q)
	if err != nil {
		return nil, err
	}
	return getItems[match.Match](ctx, s, pathStoreMatches, v)
}

// Ping checks that the server answers its health route.
func (s *Store) Ping(ctx context.Context) error {
	resp, err := s.get(ctx, pathHealth, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping %s: status %d", s.base, resp.StatusCode)
	}
	return nil
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func getItems[T any](ctx context.Context, s *Store, path string, v url.Values) ([]T, error) {
	resp, err := s.get(ctx, path, v)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(path, resp)
	}
	var body listResponse[T]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if body.Items == nil {
		body.Items = []T{}
	}
	return body.Items, nil
}

func (s *Store) get(ctx context.Context, path string, v url.Values) (*http.Response, error) {
	u := *s.base
	u.Path += path
	u.RawQuery = v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	s.logger.Debug("remote request",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)
	return resp, nil
}

// decodeError maps a server error back to the sentinel it was built from.
func decodeError(path string, resp *http.Response) error {
	var body errorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)

	var sentinel error
	switch body.Code {
	case "bad_request":
		sentinel = domain.ErrInvalidQuery
	case "not_found":
		sentinel = domain.ErrNotFound
	case "not_implemented":
		sentinel = domain.ErrNotImplemented
	}
	if sentinel != nil {
		return fmt.Errorf("get %s: %s: %w", path, body.Message, sentinel)
	}
	if body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, body.Message)
}
