// Package apiclient talks to the backend that owns matchups, player
// statistics, recommendations and multi pricing.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrMalformed marks a response that decoded but is missing required fields.
var ErrMalformed = errors.New("malformed response")

// StatusError is returned for non-2xx backend responses.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: backend returned status %d", e.Endpoint, e.Code)
}

// Cache stores raw GET response bodies.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ClientConfig configures a Client.
type ClientConfig struct {
	HTTPClient   *http.Client
	BaseURL      string
	MatchupsPath string
	Timeout      time.Duration
	Cache        Cache
	CacheTTL     time.Duration
	Logger       *zap.Logger
}

// Client is a typed client for the backend API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	matchupsPath string
	cache        Cache
	cacheTTL     time.Duration
	log          *zap.Logger
}

// NewClient creates a Client. A nil HTTPClient gets one with cfg.Timeout.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	matchupsPath := cfg.MatchupsPath
	if matchupsPath == "" {
		matchupsPath = "/matchups"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.L()
	}
	return &Client{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		matchupsPath: matchupsPath,
		cache:        cfg.Cache,
		cacheTTL:     cfg.CacheTTL,
		log:          log.Named("apiclient"),
	}
}

// Matchups returns the selectable games. The body may be a bare list or a
// list wrapped in "matches" or "matchups".
func (c *Client) Matchups(ctx context.Context) ([]Matchup, error) {
	return c.matchups(ctx, false)
}

// RefreshMatchups is Matchups without the cache read. A valid list still
// replaces the cached one.
func (c *Client) RefreshMatchups(ctx context.Context) ([]Matchup, error) {
	return c.matchups(ctx, true)
}

func (c *Client) matchups(ctx context.Context, fresh bool) ([]Matchup, error) {
	const endpoint = "matchups"
	body, commit, err := c.get(ctx, endpoint, c.matchupsPath, fresh)
	if err != nil {
		return nil, err
	}

	var list []Matchup
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &list)
	} else {
		var env struct {
			Matches  *[]Matchup `json:"matches"`
			Matchups *[]Matchup `json:"matchups"`
		}
		err = json.Unmarshal(trimmed, &env)
		switch {
		case err != nil:
		case env.Matches != nil:
			list = *env.Matches
		case env.Matchups != nil:
			list = *env.Matchups
		default:
			return nil, fmt.Errorf("%s: no matches list: %w", endpoint, ErrMalformed)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: decode: %w", endpoint, err)
	}

	for i, m := range list {
		if err := m.validate(); err != nil {
			return nil, fmt.Errorf("%s[%d]: %v: %w", endpoint, i, err, ErrMalformed)
		}
	}
	commit()
	return list, nil
}

// MatchupPlayers returns every player in both squads of the named matchup.
func (c *Client) MatchupPlayers(ctx context.Context, matchup string) ([]MatchupPlayer, error) {
	const endpoint = "matchup-players"
	path := "/matchup-players?matchup=" + url.QueryEscape(matchup)
	body, commit, err := c.get(ctx, endpoint, path, false)
	if err != nil {
		return nil, err
	}

	var players []MatchupPlayer
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	for i, p := range players {
		if strings.TrimSpace(p.PlayerName) == "" || strings.TrimSpace(p.TeamName) == "" {
			return nil, fmt.Errorf("%s[%d]: missing team or player name: %w", endpoint, i, ErrMalformed)
		}
	}
	commit()
	return players, nil
}

// PlayerStats returns the per-player percentages used for lock picks.
func (c *Client) PlayerStats(ctx context.Context, player string) (*PlayerStats, error) {
	const endpoint = "player-stats"
	path := "/player-stats/" + url.PathEscape(player)
	body, commit, err := c.get(ctx, endpoint, path, false)
	if err != nil {
		return nil, err
	}

	var stats PlayerStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	commit()
	return &stats, nil
}

// TeamStats returns the full roster-with-statistics payload for a team.
func (c *Client) TeamStats(ctx context.Context, team string) (*TeamStats, error) {
	const endpoint = "team-stats"
	path := "/team-stats/" + url.PathEscape(team)
	body, commit, err := c.get(ctx, endpoint, path, false)
	if err != nil {
		return nil, err
	}

	var env struct {
		Players *[]PlayerRecord `json:"players"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	if env.Players == nil {
		return nil, fmt.Errorf("%s: no players list: %w", endpoint, ErrMalformed)
	}
	for i, p := range *env.Players {
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("%s[%d]: missing name: %w", endpoint, i, ErrMalformed)
		}
	}
	commit()
	return &TeamStats{Players: *env.Players}, nil
}

// Recommendations asks the backend for ranked legs for a winner.
func (c *Client) Recommendations(ctx context.Context, req RecommendationRequest) ([]Recommendation, error) {
	const endpoint = "recommendations"
	body, err := c.post(ctx, endpoint, "/recommendations", req)
	if err != nil {
		return nil, err
	}

	var env struct {
		Recommendations *[]Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	if env.Recommendations == nil {
		return nil, fmt.Errorf("%s: no recommendations list: %w", endpoint, ErrMalformed)
	}
	for i, r := range *env.Recommendations {
		if strings.TrimSpace(r.PlayerName) == "" || strings.TrimSpace(r.Market) == "" {
			return nil, fmt.Errorf("%s[%d]: missing player or market: %w", endpoint, i, ErrMalformed)
		}
	}
	return *env.Recommendations, nil
}

// BuildMulti prices a multi for the winner plus the selected legs.
func (c *Client) BuildMulti(ctx context.Context, req BuildMultiRequest) (*MultiBet, error) {
	const endpoint = "build-multi"
	body, err := c.post(ctx, endpoint, "/build-multi", req)
	if err != nil {
		return nil, err
	}

	var env struct {
		MultiBet *MultiBet `json:"multi_bet"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", endpoint, err)
	}
	if env.MultiBet == nil {
		return nil, fmt.Errorf("%s: no multi_bet: %w", endpoint, ErrMalformed)
	}
	return env.MultiBet, nil
}

func cacheKey(path string) string { return "multi:api:" + path }

// get serves path from the cache unless fresh is set. The returned commit
// caches a body that came from the backend; callers run it only after the
// body decoded and validated.
func (c *Client) get(ctx context.Context, endpoint, path string, fresh bool) ([]byte, func(), error) {
	key := cacheKey(path)
	if c.cache != nil && !fresh {
		body, ok, err := c.cache.Get(ctx, key)
		switch {
		case err != nil:
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		case ok:
			c.log.Debug("cache hit", zap.String("key", key))
			return body, func() {}, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(endpoint, req)
	if err != nil {
		return nil, nil, err
	}
	return body, func() { c.store(ctx, key, body) }, nil
}

func (c *Client) store(ctx context.Context, key string, body []byte) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Client) post(ctx context.Context, endpoint, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(endpoint, req)
}

func (c *Client) do(endpoint string, req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", endpoint, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", endpoint, err)
	}

	c.log.Debug("backend call",
		zap.String("endpoint", endpoint),
		zap.String("method", req.Method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	return body, nil
}
