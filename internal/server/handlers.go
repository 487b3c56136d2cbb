package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sports-odds-display/internal/alerts"
	"sports-odds-display/internal/api"
	"sports-odds-display/internal/odds"
	"sports-odds-display/internal/preferences"
)

// MatchSource supplies match listings with raw odds.
type MatchSource interface {
	GetMatches(ctx context.Context, date time.Time) ([]api.Match, error)
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	store           preferences.Store
	feed            MatchSource // nil when no feed is configured
	notifier        *alerts.Notifier
	defaultNotation odds.Notation
}

// NewHandler creates a new handler
func NewHandler(store preferences.Store, feed MatchSource, notifier *alerts.Notifier, defaultNotation odds.Notation) *Handler {
	if !defaultNotation.Valid() {
		defaultNotation = odds.DefaultNotation
	}
	if notifier == nil {
		notifier = alerts.NewNotifier(0)
	}
	return &Handler{
		store:           store,
		feed:            feed,
		notifier:        notifier,
		defaultNotation: defaultNotation,
	}
}

// FormattedOdds is a single raw price rendered for display
type FormattedOdds struct {
	Raw         string        `json:"raw"`
	Decimal     float64       `json:"decimal"`
	Detected    odds.Notation `json:"detected,omitempty"`
	Notation    odds.Notation `json:"notation"`
	Display     string        `json:"display"`
	Placeholder bool          `json:"placeholder"`
}

// FormatRequest is the body of a batch format or market call
type FormatRequest struct {
	Odds      []api.RawOdds `json:"odds"`
	Notation  string        `json:"notation,omitempty"`
	VigMethod string        `json:"vig_method,omitempty"` // market only: "multiplicative" (default) or "power"
}

// Vig removal methods accepted by MarketSummary.
const (
	VigMultiplicative = "multiplicative"
	VigPower          = "power"
)

// ConvertRequest converts a typed number between notations
type ConvertRequest struct {
	Value float64 `json:"value"`
	From  string  `json:"from"`
	To    string  `json:"to"`
}

// ConvertResponse is the result of a conversion
type ConvertResponse struct {
	Value   float64       `json:"value"`
	From    odds.Notation `json:"from"`
	To      odds.Notation `json:"to"`
	Result  float64       `json:"result"`
	Display string        `json:"display"`
}

// MarketOutcome is one priced outcome with its vig-free estimate
type MarketOutcome struct {
	FormattedOdds
	ImpliedProbability float64  `json:"implied_probability"`
	FairProbability    *float64 `json:"fair_probability,omitempty"`
	FairDecimal        *float64 `json:"fair_decimal,omitempty"`
	FairDisplay        string   `json:"fair_display,omitempty"`
}

// MarketResponse summarises a full market
type MarketResponse struct {
	Notation  odds.Notation   `json:"notation"`
	VigMethod string          `json:"vig_method"`
	Overround float64         `json:"overround"`
	Outcomes  []MarketOutcome `json:"outcomes"`
}

// PreferenceResponse reports the caller's display notation
type PreferenceResponse struct {
	UserID   string        `json:"user_id"`
	Notation odds.Notation `json:"notation"`
	Stored   bool          `json:"stored"`
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "degraded",
				"service": "odds-display",
				"error":   err.Error(),
			})
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "odds-display",
	})
}

// notation picks the target notation: explicit request value, then the
// caller's stored preference, then the configured default.
func (h *Handler) notation(ctx context.Context, requested string) (odds.Notation, error) {
	if requested != "" {
		return odds.ParseNotation(requested)
	}
	return preferences.Resolve(ctx, h.store, UserID(ctx), h.defaultNotation), nil
}

// render resolves one raw value and formats it, reporting unusable input.
func (h *Handler) render(source string, raw api.RawOdds, n odds.Notation) FormattedOdds {
	res := raw.Resolve()
	if res.Fallback {
		h.notifier.MalformedOdds(source, raw.String())
	}

	return FormattedOdds{
		Raw:         raw.String(),
		Decimal:     res.Decimal,
		Detected:    res.Detected,
		Notation:    n,
		Display:     odds.Format(res.Decimal, n),
		Placeholder: res.Fallback,
	}
}

// FormatOdds renders a single raw price from the query string
func (h *Handler) FormatOdds(w http.ResponseWriter, r *http.Request) {
	n, err := h.notation(r.Context(), r.URL.Query().Get("notation"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := api.RawOdds{Value: r.URL.Query().Get("odds")}
	respondJSON(w, http.StatusOK, h.render("request", raw, n))
}

// FormatBatch renders a list of raw prices
func (h *Handler) FormatBatch(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	n, err := h.notation(r.Context(), req.Notation)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := make([]FormattedOdds, len(req.Odds))
	for i, raw := range req.Odds {
		out[i] = h.render("request", raw, n)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notation": n,
		"odds":     out,
	})
}

// ConvertOdds converts a numeric value between two notations
func (h *Handler) ConvertOdds(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	from, err := odds.ParseNotation(req.From)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("from: %v", err))
		return
	}
	to, err := odds.ParseNotation(req.To)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("to: %v", err))
		return
	}

	price := odds.Convert(req.Value, from, odds.NotationDecimal)
	respondJSON(w, http.StatusOK, ConvertResponse{
		Value:   req.Value,
		From:    from,
		To:      to,
		Result:  odds.Convert(req.Value, from, to),
		Display: odds.Format(price, to),
	})
}

// MarketSummary renders every outcome of a market with its fair price
func (h *Handler) MarketSummary(w http.ResponseWriter, r *http.Request) {
	var req FormatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if len(req.Odds) < 2 {
		respondError(w, http.StatusBadRequest, "a market needs at least two outcomes")
		return
	}

	method := req.VigMethod
	switch method {
	case "":
		method = VigMultiplicative
	case VigMultiplicative, VigPower:
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown vig method %q", req.VigMethod))
		return
	}

	n, err := h.notation(r.Context(), req.Notation)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, h.summarise("request", req.Odds, n, method))
}

func (h *Handler) summarise(source string, raws []api.RawOdds, n odds.Notation, method string) MarketResponse {
	outcomes := make([]MarketOutcome, len(raws))
	prices := make([]float64, len(raws))
	for i, raw := range raws {
		f := h.render(source, raw, n)
		outcomes[i] = MarketOutcome{
			FormattedOdds:      f,
			ImpliedProbability: odds.ImpliedProbability(f.Decimal),
		}
		prices[i] = f.Decimal
	}

	var probs, fair []float64
	if method == VigPower {
		probs = odds.RemoveVigPower(prices...)
		for _, p := range probs {
			fair = append(fair, 1.0/p)
		}
	} else {
		probs = odds.RemoveVig(prices...)
		fair = odds.FairOdds(prices...)
	}

	if probs != nil {
		for i := range outcomes {
			p, d := probs[i], fair[i]
			outcomes[i].FairProbability = &p
			outcomes[i].FairDecimal = &d
			outcomes[i].FairDisplay = odds.Format(d, n)
		}
	}

	return MarketResponse{
		Notation:  n,
		VigMethod: method,
		Overround: odds.Overround(prices...),
		Outcomes:  outcomes,
	}
}

// requireStore answers 503 when no preference store is wired.
func (h *Handler) requireStore(w http.ResponseWriter) bool {
	if h.store == nil {
		respondError(w, http.StatusServiceUnavailable, "preference store not configured")
		return false
	}
	return true
}

// GetPreference returns the caller's display notation
func (h *Handler) GetPreference(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := UserID(ctx)
	resp := PreferenceResponse{UserID: userID, Notation: h.defaultNotation}

	n, err := h.store.Get(ctx, userID)
	switch {
	case errors.Is(err, preferences.ErrNotFound):
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to retrieve preference")
		h.notifier.LogError("get preference", err)
		return
	case n.Valid():
		resp.Notation = n
		resp.Stored = true
	}

	respondJSON(w, http.StatusOK, resp)
}

// UpdatePreference stores the caller's display notation
func (h *Handler) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var update struct {
		Notation string `json:"notation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := odds.ParseNotation(update.Notation)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := UserID(ctx)
	if err := h.store.Set(ctx, userID, n); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update preference")
		h.notifier.LogError("update preference", err)
		return
	}

	respondJSON(w, http.StatusOK, PreferenceResponse{UserID: userID, Notation: n, Stored: true})
}

// ResetPreference removes the caller's stored notation
func (h *Handler) ResetPreference(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := UserID(ctx)
	if err := h.store.Delete(ctx, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reset preference")
		h.notifier.LogError("reset preference", err)
		return
	}

	respondJSON(w, http.StatusOK, PreferenceResponse{UserID: userID, Notation: h.defaultNotation})
}

// MatchListing is a feed match with every selection rendered
type MatchListing struct {
	ID        string          `json:"id"`
	Sport     string          `json:"sport,omitempty"`
	League    string          `json:"league,omitempty"`
	HomeTeam  string          `json:"home_team"`
	AwayTeam  string          `json:"away_team"`
	StartTime string          `json:"start_time,omitempty"`
	Status    string          `json:"status,omitempty"`
	Markets   []MarketListing `json:"markets"`
}

// MarketListing is one market of a match listing
type MarketListing struct {
	Key        string             `json:"key"`
	Name       string             `json:"name,omitempty"`
	Line       *float64           `json:"line,omitempty"`
	Overround  float64            `json:"overround"`
	Selections []SelectionListing `json:"selections"`
}

// SelectionListing is one rendered outcome
type SelectionListing struct {
	Name      string `json:"name"`
	Bookmaker string `json:"bookmaker,omitempty"`
	MarketOutcome
}

// ListMatches fetches the feed for a date and renders it in the caller's notation
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		respondError(w, http.StatusServiceUnavailable, "odds feed not configured")
		return
	}

	date := time.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = d
	}

	n, err := h.notation(r.Context(), r.URL.Query().Get("notation"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := h.feed.GetMatches(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to fetch odds feed")
		h.notifier.LogError("list matches", err)
		return
	}

	listings := make([]MatchListing, 0, len(matches))
	for _, m := range matches {
		listings = append(listings, h.renderMatch(m, n))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"date":     date.Format("2006-01-02"),
		"notation": n,
		"matches":  listings,
	})
}

func (h *Handler) renderMatch(m api.Match, n odds.Notation) MatchListing {
	listing := MatchListing{
		ID:        m.ID,
		Sport:     m.Sport,
		League:    m.League,
		HomeTeam:  m.HomeTeam,
		AwayTeam:  m.AwayTeam,
		StartTime: m.StartTime,
		Status:    m.Status,
		Markets:   make([]MarketListing, 0, len(m.Markets)),
	}

	source := "match " + m.ID
	for _, mk := range m.Markets {
		raws := make([]api.RawOdds, len(mk.Selections))
		for i, s := range mk.Selections {
			raws[i] = s.Odds
		}
		summary := h.summarise(source, raws, n, VigMultiplicative)

		sels := make([]SelectionListing, len(mk.Selections))
		for i, s := range mk.Selections {
			sels[i] = SelectionListing{
				Name:          s.Name,
				Bookmaker:     s.Bookmaker,
				MarketOutcome: summary.Outcomes[i],
			}
		}

		listing.Markets = append(listing.Markets, MarketListing{
			Key:        mk.Key,
			Name:       mk.Name,
			Line:       mk.Line,
			Overround:  summary.Overround,
			Selections: sels,
		})
	}
	return listing
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
