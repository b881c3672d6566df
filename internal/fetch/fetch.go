// Package fetch downloads raw provider catalogs and shapes them into the
// provider-keyed payload the normalization pipeline consumes.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	llmcatalog "github.com/kingfs/go-llm-catalog"
)

// Endpoint locates one source's listing.
type Endpoint struct {
	Kind  llmcatalog.SourceKind
	URL   string
	Limit int
}

// Client fetches provider listings, caching every successful response body
// on disk and falling back to the cache when the network fails.
type Client struct {
	http     *resty.Client
	cacheDir string
	log      zerolog.Logger
}

// NewClient returns a Client that retries transient failures and caches
// bodies under cacheDir. An empty cacheDir disables the cache.
func NewClient(timeout time.Duration, cacheDir string, log zerolog.Logger) *Client {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Accept", "application/json")
	client.OnAfterResponse(func(c *resty.Client, r *resty.Response) error {
		log.Debug().
			Int("status", r.StatusCode()).
			Str("method", r.Request.Method).
			Str("url", r.Request.URL).
			Int("bytes", len(r.Body())).
			Dur("latency", r.Time()).
			Msg("HTTP client request")
		return nil
	})
	return &Client{http: client, cacheDir: cacheDir, log: log}
}

// Fetch downloads every endpoint concurrently and concatenates the resulting
// payloads in endpoint order. A source that fails without a usable cache is
// logged and skipped; Fetch fails only when no source produced data.
func (c *Client) Fetch(ctx context.Context, endpoints []Endpoint) (llmcatalog.Payload, error) {
	parts := make([]llmcatalog.Payload, len(endpoints))
	errs := make([]error, len(endpoints))

	g, ctx := errgroup.WithContext(ctx)
	for i, ep := range endpoints {
		g.Go(func() error {
			parts[i], errs[i] = c.FetchOne(ctx, ep)
			return nil
		})
	}
	_ = g.Wait()

	payload := llmcatalog.Payload{}
	for i, part := range parts {
		if errs[i] != nil {
			c.log.Warn().Err(errs[i]).Str("source", string(endpoints[i].Kind)).Msg("skipping source")
			continue
		}
		payload = append(payload, part...)
	}
	if len(payload) == 0 && len(endpoints) > 0 {
		return nil, fmt.Errorf("no source could be fetched: %w", errors.Join(errs...))
	}
	return payload, nil
}

// FetchOne downloads a single endpoint and converts its body to a payload.
func (c *Client) FetchOne(ctx context.Context, ep Endpoint) (llmcatalog.Payload, error) {
	body, err := c.download(ctx, ep)
	if err != nil {
		return nil, err
	}
	switch ep.Kind {
	case llmcatalog.KindOpenRouter:
		return OpenRouterPayload(body)
	case llmcatalog.KindHuggingFace:
		return HuggingFacePayload(body)
	default:
		payload := llmcatalog.ParsePayload(body)
		if len(payload) == 0 {
			return nil, fmt.Errorf("%s: response carried no providers", ep.Kind)
		}
		return payload, nil
	}
}

func (c *Client) download(ctx context.Context, ep Endpoint) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if ep.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(ep.Limit))
	}
	resp, err := req.Get(ep.URL)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("unexpected status: %s", resp.Status())
	}
	if err != nil {
		c.log.Warn().Err(err).Str("source", string(ep.Kind)).Msg("network fetch failed, trying local cache")
		cached, cacheErr := c.readCache(ep.Kind)
		if cacheErr != nil {
			return nil, fmt.Errorf("fetch %s: %w (cache: %v)", ep.Kind, err, cacheErr)
		}
		return cached, nil
	}

	body := resp.Body()
	if err := c.writeCache(ep.Kind, body); err != nil {
		c.log.Warn().Err(err).Str("source", string(ep.Kind)).Msg("failed to save raw JSON")
	}
	return body, nil
}

func (c *Client) cachePath(kind llmcatalog.SourceKind) string {
	return filepath.Join(c.cacheDir, string(kind)+".json")
}

func (c *Client) readCache(kind llmcatalog.SourceKind) ([]byte, error) {
	if c.cacheDir == "" {
		return nil, errors.New("no cache directory configured")
	}
	return os.ReadFile(c.cachePath(kind))
}

func (c *Client) writeCache(kind llmcatalog.SourceKind, body []byte) error {
	if c.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.cachePath(kind), body, 0o644)
}

// OpenRouterPayload rekeys the {"data": [...]} listing by model id under the
// "openrouter" provider key.
func OpenRouterPayload(body []byte) (llmcatalog.Payload, error) {
	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode openrouter listing: %w", err)
	}
	return listPayload("openrouter", "OpenRouter", resp.Data, "id"), nil
}

// HuggingFacePayload rekeys the hub's top-level array by model id under the
// "huggingface" provider key.
func HuggingFacePayload(body []byte) (llmcatalog.Payload, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode huggingface listing: %w", err)
	}
	return listPayload("huggingface", "Hugging Face", items, "id", "modelId"), nil
}

func listPayload(key, name string, items []json.RawMessage, idKeys ...string) llmcatalog.Payload {
	entry := llmcatalog.ProviderEntry{Key: key, Name: name, Models: make([]llmcatalog.RawRecord, 0, len(items))}
	for i, item := range items {
		var data any
		if err := json.Unmarshal(item, &data); err != nil {
			data = nil
		}
		entry.Models = append(entry.Models, llmcatalog.RawRecord{Key: recordKey(data, i, idKeys), Data: data})
	}
	return llmcatalog.Payload{entry}
}

func recordKey(data any, index int, idKeys []string) string {
	if obj, ok := data.(map[string]any); ok {
		for _, k := range idKeys {
			if id, ok := obj[k].(string); ok && id != "" {
				return id
			}
		}
	}
	return strconv.Itoa(index)
}
