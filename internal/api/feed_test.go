package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"sports-odds-display/internal/odds"
)

func TestRawOddsUnmarshal(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected float64
		text     string
	}{
		{"String decimal", `"2.10"`, 2.10, "2.10"},
		{"String fractional", `"23/25"`, 1.92, "23/25"},
		{"String moneyline", `"+150"`, 2.5, "+150"},
		{"Number moneyline", `-200`, 1.5, "-200"},
		{"Bare number 150", `150`, 2.5, "150"},
		{"Number decimal", `2.5`, 2.5, "2.5"},
		{"Null", `null`, 1.0, ""},
		{"Bool", `true`, 1.0, ""},
		{"Object", `{"american": -110}`, 1.0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sel Selection
			body := fmt.Sprintf(`{"name": "x", "odds": %s}`, tt.json)
			if err := json.Unmarshal([]byte(body), &sel); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got := sel.Odds.Resolve().Decimal
			if math.Abs(got-tt.expected) > 0.0001 {
				t.Errorf("Resolve() = %v, want %v", got, tt.expected)
			}
			if sel.Odds.String() != tt.text {
				t.Errorf("String() = %q, want %q", sel.Odds.String(), tt.text)
			}
		})
	}
}

func TestRawOddsMarshalKeepsType(t *testing.T) {
	b, err := json.Marshal(Selection{Name: "a", Odds: RawOdds{Value: -110.0}})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"name":"a","odds":-110}` {
		t.Errorf("marshal = %s", b)
	}

	b, err = json.Marshal(RawOdds{Value: "+150"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"+150"` {
		t.Errorf("marshal = %s", b)
	}
}

func TestGetMatchesPaginates(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/matches" {
			t.Errorf("path = %s, want /matches", r.URL.Path)
		}
		if r.URL.Query().Get("date") != "2026-03-01" {
			t.Errorf("date = %s", r.URL.Query().Get("date"))
		}
		if r.Header.Get("Authorization") != "secret" {
			t.Errorf("missing api key header")
		}

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprint(w, `{"data":[{"id":"m1","home_team":"LAL","away_team":"BOS","markets":[{"key":"h2h","selections":[{"name":"LAL","odds":"-150"},{"name":"BOS","odds":130}]}]}],"meta":{"next_cursor":2}}`)
		case "2":
			fmt.Fprint(w, `{"data":[{"id":"m2","home_team":"ARS","away_team":"CHE","markets":[{"key":"1x2","selections":[{"name":"ARS","odds":"6/5"},{"name":"Draw","odds":3.4},{"name":"CHE","odds":"bad"}]}]}],"meta":{"next_cursor":0}}`)
		default:
			t.Errorf("unexpected cursor %s", r.URL.Query().Get("cursor"))
		}
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, "secret", 600, time.Second)
	matches, err := c.GetMatches(context.Background(), time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("GetMatches: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}

	sels := matches[0].Markets[0].Selections
	if got := sels[1].Odds.Resolve(); got.Detected != odds.NotationMoneyline || math.Abs(got.Decimal-2.3) > 1e-9 {
		t.Errorf("BOS +130 resolved to %+v", got)
	}

	sels = matches[1].Markets[0].Selections
	if got := sels[0].Odds.Resolve().Decimal; math.Abs(got-2.2) > 1e-9 {
		t.Errorf("ARS 6/5 = %v, want 2.2", got)
	}
	if got := sels[2].Odds.Resolve(); !got.Fallback {
		t.Errorf("bad odds should fall back, got %+v", got)
	}
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"data":[],"meta":{}}`)
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, "", 600, time.Second)
	c.client.baseBackoff = time.Millisecond

	matches, err := c.GetMatches(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("GetMatches: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches, want 0", len(matches))
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestGetGivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, "", 600, time.Second)
	c.client.baseBackoff = time.Millisecond

	if _, err := c.GetMatches(context.Background(), time.Now()); err == nil {
		t.Error("expected error after retries")
	}
}

func TestGetClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, "", 600, time.Second)
	if _, err := c.GetMatches(context.Background(), time.Now()); err == nil {
		t.Error("expected error for 403")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestGetHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewFeedClient(srv.URL, "", 600, time.Second)
	c.client.baseBackoff = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := c.GetMatches(ctx, time.Now()); err == nil {
		t.Error("expected context error")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("backoff did not stop on context cancellation")
	}
}

func TestRateLimiterBurst(t *testing.T) {
	rl := newRateLimiter(60) // burst of 10
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := rl.wait(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("burst tokens should be available immediately")
	}

	// Bucket empty: next wait blocks until the context gives up
	ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := rl.wait(ctx); err == nil {
		t.Error("expected wait to be cut short by context")
	}
}
