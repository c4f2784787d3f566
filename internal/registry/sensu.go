package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shush-sh/shush/internal/models"
	"github.com/shush-sh/shush/pkg/config"
)

const (
	endpointSilenced = "/silenced"
	endpointClear    = "/silenced/clear"
	endpointClients  = "/clients"
	endpointResults  = "/results"

	maxResponseBytes = 8 << 20
)

// Client talks to a Sensu-compatible silence registry over HTTP. It owns all
// network resources; Close releases them.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	limiter    *RateLimiter
	retry      retryConfig
	creator    string
	now        func() time.Time
}

// NewClient creates a registry client from cfg.
func NewClient(cfg *config.Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.APIURL)
	if raw == "" {
		return nil, fmt.Errorf("registry API URL is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse registry URL %q: %w", raw, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("registry URL %q must use http or https", raw)
	}

	retry := defaultRetryConfig()
	if cfg.RetryAttempts > 0 {
		retry.maxAttempts = cfg.RetryAttempts
	}

	creator := cfg.Creator
	if creator == "" {
		creator = "shush"
	}

	return &Client{
		base: base,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: NewRateLimiter(cfg.RateLimit),
		retry:   retry,
		creator: creator,
		now:     time.Now,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// silencedEntry is the wire format of one registry silence entry. Expire is
// seconds remaining, -1 for entries that never expire.
type silencedEntry struct {
	ID              string `json:"id"`
	Subscription    string `json:"subscription"`
	Check           string `json:"check"`
	Expire          int64  `json:"expire"`
	ExpireOnResolve bool   `json:"expire_on_resolve"`
	Creator         string `json:"creator"`
	Reason          string `json:"reason"`
}

// silencePayload is the wire format for create and clear requests. An absent
// check silences every check on the subscription.
type silencePayload struct {
	Subscription    string `json:"subscription"`
	Check           string `json:"check,omitempty"`
	Expire          int64  `json:"expire,omitempty"`
	ExpireOnResolve bool   `json:"expire_on_resolve,omitempty"`
	Creator         string `json:"creator,omitempty"`
	Reason          string `json:"reason,omitempty"`
}

type clientEntry struct {
	Name          string   `json:"name"`
	InstanceID    string   `json:"instance_id"`
	Subscriptions []string `json:"subscriptions"`
}

type resultEntry struct {
	Client string `json:"client"`
	Check  struct {
		Name string `json:"name"`
	} `json:"check"`
}

// List fetches the current silence entries in scope. Entries whose expiry
// already passed are dropped: they are logically cleared.
func (c *Client) List(ctx context.Context, scope Scope) ([]models.SilenceRecord, error) {
	var entries []silencedEntry
	err := executeWithRetry(ctx, c.retry, func() error {
		return c.do(ctx, http.MethodGet, endpointSilenced, nil, &entries)
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	records := make([]models.SilenceRecord, 0, len(entries))
	for _, e := range entries {
		rec := e.toRecord(now)
		if rec.Expired(now) {
			slog.Debug("dropping stale silence entry", slog.String("id", e.ID))
			continue
		}
		if !scope.Matches(rec.Target) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Create writes rec to the registry. The registry keys entries by the
// target-derived id, so re-creating the same target replaces, never stacks.
func (c *Client) Create(ctx context.Context, rec models.SilenceRecord) error {
	payload := silencePayload{
		Subscription:    rec.Target.Subscription(),
		ExpireOnResolve: rec.ExpireOnResolve,
		Creator:         rec.Creator,
		Reason:          rec.Reason,
	}
	if payload.Creator == "" {
		payload.Creator = c.creator
	}
	if !rec.Target.AllChecks() {
		payload.Check = rec.Target.Check
	}
	if rec.ExpiresAt != nil {
		secs := int64(rec.ExpiresAt.Sub(c.now()).Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		payload.Expire = secs
	}

	return executeWithRetry(ctx, c.retry, func() error {
		return c.do(ctx, http.MethodPost, endpointSilenced, &payload, nil)
	})
}

// Delete clears the silence entry for target. Clearing an entry that is
// already gone is a success.
func (c *Client) Delete(ctx context.Context, target models.Target) error {
	payload := silencePayload{
		Subscription: target.Subscription(),
	}
	if !target.AllChecks() {
		payload.Check = target.Check
	}

	err := executeWithRetry(ctx, c.retry, func() error {
		doErr := c.do(ctx, http.MethodPost, endpointClear, &payload, nil)
		if doErr != nil && errors.Is(doErr, ErrNotFound) {
			// Delete is idempotent at the target granularity.
			return nil
		}
		return doErr
	})
	return err
}

// Snapshot fetches the known clients and check names for wildcard expansion.
func (c *Client) Snapshot(ctx context.Context) (*models.InventorySnapshot, error) {
	var clients []clientEntry
	err := executeWithRetry(ctx, c.retry, func() error {
		return c.do(ctx, http.MethodGet, endpointClients, nil, &clients)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client inventory: %w", err)
	}

	var results []resultEntry
	err = executeWithRetry(ctx, c.retry, func() error {
		return c.do(ctx, http.MethodGet, endpointResults, nil, &results)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check inventory: %w", err)
	}

	snapshot := &models.InventorySnapshot{}
	for _, cl := range clients {
		snapshot.Clients = append(snapshot.Clients, models.ClientInfo{
			Name:          cl.Name,
			InstanceID:    cl.InstanceID,
			Subscriptions: cl.Subscriptions,
		})
	}

	seen := make(map[string]struct{})
	for _, r := range results {
		name := strings.TrimSpace(r.Check.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		snapshot.Checks = append(snapshot.Checks, name)
	}

	return snapshot, nil
}

func (e silencedEntry) toRecord(now time.Time) models.SilenceRecord {
	var target models.Target
	if name, ok := strings.CutPrefix(e.Subscription, "client:"); ok {
		target = models.ClientTarget(name, e.Check)
	} else {
		target = models.SubscriptionTarget(e.Subscription, e.Check)
	}

	rec := models.SilenceRecord{
		Target:          target,
		ExpireOnResolve: e.ExpireOnResolve,
		Creator:         e.Creator,
		Reason:          e.Reason,
	}
	if e.Expire >= 0 {
		expires := now.Add(time.Duration(e.Expire) * time.Second)
		rec.ExpiresAt = &expires
	}
	return rec
}

// do issues one rate-limited HTTP request and decodes the JSON response into
// out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := contextError(ctx); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	if err := classifyStatus(resp.StatusCode, strings.TrimSpace(string(data))); err != nil {
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", path, err)
		}
	}
	return nil
}
