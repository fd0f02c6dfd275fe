package entities

// PriceQuote is the market data for one coin id. A nil field means the API
// did not return it
type PriceQuote struct {
	Price     *float64 `json:"usd,omitempty"`
	Change24h *float64 `json:"usd_24h_change,omitempty"`
}

// SearchResult is one candidate coin returned by a free-text search
type SearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank,omitempty"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}

// ImageURL prefers the large icon and falls back to the thumbnail
func (r SearchResult) ImageURL() string {
	if r.Large != "" {
		return r.Large
	}
	return r.Thumb
}

// Token converts the search result into a token ready to be held
func (r SearchResult) Token() Token {
	return Token{
		ID:     r.ID,
		Name:   r.Name,
		Symbol: r.Symbol,
		Image:  r.ImageURL(),
	}
}
