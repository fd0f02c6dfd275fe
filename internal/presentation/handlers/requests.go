package handlers

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
)

// AddHoldingRequest is the body of POST /portfolio/holdings
type AddHoldingRequest struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	Image        string  `json:"image"`
	CurrentPrice float64 `json:"current_price"`
}

func (req *AddHoldingRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ID, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Name, validation.Length(0, 200)),
		validation.Field(&req.Symbol, validation.Length(0, 50)),
		validation.Field(&req.Image, is.URL),
		validation.Field(&req.CurrentPrice, validation.Min(0.0)),
	)
}

// Token converts the request into the token to hold
func (req *AddHoldingRequest) Token() entities.Token {
	return entities.Token{
		ID:           req.ID,
		Name:         req.Name,
		Symbol:       req.Symbol,
		Image:        req.Image,
		CurrentPrice: req.CurrentPrice,
	}
}

// UpdateHoldingRequest is the body of PATCH /portfolio/holdings/{id}. Value
// may be a JSON number or a numeric string
type UpdateHoldingRequest struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

func (req *UpdateHoldingRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Field,
			validation.Required,
			validation.In(
				string(entities.FieldQuantity),
				string(entities.FieldInvested),
				string(entities.FieldBuyPrice),
			),
		),
	)
}
