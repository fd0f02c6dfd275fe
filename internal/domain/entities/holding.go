package entities

// Holding is one portfolio entry
type Holding struct {
	ID           string  `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Symbol       string  `json:"symbol" db:"symbol"`
	Image        string  `json:"image" db:"image"`
	Quantity     float64 `json:"quantity" db:"quantity"`
	Invested     float64 `json:"invested" db:"invested"`
	BuyPrice     float64 `json:"buyPrice" db:"buy_price"`
	CurrentPrice float64 `json:"currentPrice" db:"current_price"`
	Change24h    float64 `json:"change24h" db:"change_24h"`
}

// HoldingField names the user-editable numeric fields of a Holding
type HoldingField string

const (
	FieldQuantity HoldingField = "quantity"
	FieldInvested HoldingField = "invested"
	FieldBuyPrice HoldingField = "buyPrice"
)

// Valid reports whether f is one of the editable fields
func (f HoldingField) Valid() bool {
	switch f {
	case FieldQuantity, FieldInvested, FieldBuyPrice:
		return true
	}
	return false
}

// Token is the identity of a coin as returned by a search, before it is held
type Token struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Image        string  `json:"image"`
	CurrentPrice float64 `json:"current_price"`
}

// NewHolding creates a holding for token with zeroed user figures
func NewHolding(t Token) Holding {
	return Holding{
		ID:           t.ID,
		Name:         t.Name,
		Symbol:       t.Symbol,
		Image:        t.Image,
		CurrentPrice: t.CurrentPrice,
	}
}
