package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"sports-odds-display/internal/odds"
)

const (
	defaultMaxRetries = 3
	maxPages          = 50
)

// FeedClient fetches match listings from the upstream odds feed
type FeedClient struct {
	baseURL string
	apiKey  string
	client  *RateLimitedClient
}

// NewFeedClient creates a new feed client
func NewFeedClient(baseURL, apiKey string, requestsPerMinute int, timeout time.Duration) *FeedClient {
	return &FeedClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  NewRateLimitedClient(requestsPerMinute, timeout, defaultMaxRetries),
	}
}

// MatchesResponse represents the feed response for match listings
type MatchesResponse struct {
	Data []Match `json:"data"`
	Meta Meta    `json:"meta"`
}

// Meta contains pagination info
type Meta struct {
	NextCursor int `json:"next_cursor"`
	PerPage    int `json:"per_page"`
	TotalCount int `json:"total_count"`
}

// Match is a single fixture with its markets
type Match struct {
	ID        string   `json:"id"`
	Sport     string   `json:"sport"`
	League    string   `json:"league"`
	HomeTeam  string   `json:"home_team"`
	AwayTeam  string   `json:"away_team"`
	StartTime string   `json:"start_time"` // ISO 8601
	Status    string   `json:"status"`
	Markets   []Market `json:"markets"`
	UpdatedAt string   `json:"updated_at"`
}

// Market is one bet type on a match (moneyline, spread, total, ...)
type Market struct {
	Key        string      `json:"key"`
	Name       string      `json:"name"`
	Line       *float64    `json:"line,omitempty"`
	Selections []Selection `json:"selections"`
}

// Selection is one outcome within a market, priced by a bookmaker
type Selection struct {
	Name      string  `json:"name"`
	Bookmaker string  `json:"bookmaker,omitempty"`
	Odds      RawOdds `json:"odds"`
}

// RawOdds holds a price exactly as the feed sent it: a JSON string such as
// "+150" or "23/25", or a bare JSON number. Its notation is unknown.
type RawOdds struct {
	Value any
}

// UnmarshalJSON accepts a string or number; anything else is kept as empty
// so one bad price does not reject the whole listing.
func (r *RawOdds) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.Value = s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			r.Value = f
		} else {
			r.Value = n
		}
		return nil
	}

	r.Value = ""
	return nil
}

// MarshalJSON writes the value back in its original JSON type.
func (r RawOdds) MarshalJSON() ([]byte, error) {
	if r.Value == nil {
		return []byte(`""`), nil
	}
	return json.Marshal(r.Value)
}

// String returns the raw value as text.
func (r RawOdds) String() string {
	switch v := r.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Resolve converts the raw value to a canonical decimal price.
func (r RawOdds) Resolve() odds.Resolution {
	return odds.ResolveValue(r.Value)
}

// GetMatches fetches all matches for a date, following pagination
func (c *FeedClient) GetMatches(ctx context.Context, date time.Time) ([]Match, error) {
	headers := map[string]string{
		"Accept": "application/json",
	}
	if c.apiKey != "" {
		headers["Authorization"] = c.apiKey
	}

	var all []Match
	cursor := 0

	for page := 0; page < maxPages; page++ {
		q := url.Values{}
		q.Set("date", date.Format("2006-01-02"))
		if cursor > 0 {
			q.Set("cursor", strconv.Itoa(cursor))
		}
		endpoint := fmt.Sprintf("%s/matches?%s", c.baseURL, q.Encode())

		body, err := c.client.Get(ctx, endpoint, headers)
		if err != nil {
			return nil, fmt.Errorf("fetching matches: %w", err)
		}

		var resp MatchesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("parsing matches response: %w", err)
		}

		all = append(all, resp.Data...)

		// Check if there are more pages
		if resp.Meta.NextCursor == 0 || resp.Meta.NextCursor == cursor {
			break
		}
		cursor = resp.Meta.NextCursor
	}

	return all, nil
}
