package rating

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/inhouse/internal/domain/model"
)

// Default endpoints of the Riot API.
const (
	DefaultAccountURL = "https://americas.api.riotgames.com"
	DefaultLeagueURL  = "https://na1.api.riotgames.com"
	DefaultTimeout    = 3 * time.Second

	soloQueue = "RANKED_SOLO_5x5"
)

// Client resolves ratings against the Riot account and league APIs.
type Client struct {
	http       *http.Client
	accountURL string
	leagueURL  string
	apiKey     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithAPIKey sets the X-Riot-Token header value.
func WithAPIKey(key string) ClientOption {
	return func(cl *Client) { cl.apiKey = key }
}

// WithBaseURLs overrides the account and league API hosts. Empty values keep
// the defaults.
func WithBaseURLs(account, league string) ClientOption {
	return func(cl *Client) {
		if account != "" {
			cl.accountURL = account
		}
		if league != "" {
			cl.leagueURL = league
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:       &http.Client{Timeout: DefaultTimeout},
		accountURL: DefaultAccountURL,
		leagueURL:  DefaultLeagueURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Lookup = (*Client)(nil)

type account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type leagueEntry struct {
	QueueType string `json:"queueType"`
	Tier      string `json:"tier"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
}

// Lookup resolves handle to its ranked solo queue rating. Handles without a
// ranked entry resolve to Default().
func (c *Client) Lookup(ctx context.Context, handle string) (model.Rating, error) {
	name, tag, err := SplitHandle(handle)
	if err != nil {
		return model.Rating{}, err
	}

	var acc account
	accountPath := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.accountURL, url.PathEscape(name), url.PathEscape(tag))
	if err := c.get(ctx, accountPath, &acc); err != nil {
		return model.Rating{}, fmt.Errorf("account %s: %w", handle, err)
	}

	var entries []leagueEntry
	leaguePath := fmt.Sprintf("%s/lol/league/v4/entries/by-puuid/%s", c.leagueURL, url.PathEscape(acc.PUUID))
	if err := c.get(ctx, leaguePath, &entries); err != nil {
		return model.Rating{}, fmt.Errorf("league %s: %w", handle, err)
	}

	for _, e := range entries {
		if e.QueueType != soloQueue {
			continue
		}
		return model.Rating{Rank: e.Tier, Tier: TierFor(e.Tier), Wins: e.Wins, Losses: e.Losses}, nil
	}
	return Default(), nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Riot-Token", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExternalServiceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return ErrHandleNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrExternalServiceUnavailable, resp.StatusCode)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrExternalServiceUnavailable, err)
	}
	return nil
}
