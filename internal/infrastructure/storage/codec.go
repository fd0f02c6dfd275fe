// Package storage persists the portfolio in a key-value shape: the holdings
// list as one JSON document and the last refresh time as epoch milliseconds
package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/bimakw/coin-tracker/internal/domain/entities"
	"github.com/bimakw/coin-tracker/internal/domain/valuation"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EncodeHoldings serializes holdings as a JSON array
func EncodeHoldings(holdings []entities.Holding) ([]byte, error) {
	if holdings == nil {
		holdings = []entities.Holding{}
	}
	data, err := json.Marshal(holdings)
	if err != nil {
		return nil, fmt.Errorf("failed to encode holdings: %w", err)
	}
	return data, nil
}

// DecodeHoldings parses a JSON array of holdings. Numeric fields may be
// numbers or numeric strings, as older clients stored raw form input; anything
// else counts as 0. Empty input is an empty list
func DecodeHoldings(data []byte) ([]entities.Holding, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return []entities.Holding{}, nil
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode holdings: %w", err)
	}

	holdings := make([]entities.Holding, 0, len(raw))
	for _, r := range raw {
		holdings = append(holdings, entities.Holding{
			ID:           stringField(r["id"]),
			Name:         stringField(r["name"]),
			Symbol:       stringField(r["symbol"]),
			Image:        stringField(r["image"]),
			Quantity:     valuation.Coerce(r["quantity"]),
			Invested:     valuation.Coerce(r["invested"]),
			BuyPrice:     valuation.Coerce(r["buyPrice"]),
			CurrentPrice: valuation.Coerce(r["currentPrice"]),
			Change24h:    valuation.Coerce(r["change24h"]),
		})
	}
	return holdings, nil
}

// EncodeTimestamp formats t as epoch milliseconds, "0" for the zero time
func EncodeTimestamp(t time.Time) []byte {
	return []byte(strconv.FormatInt(entities.Millis(t), 10))
}

// DecodeTimestamp parses epoch milliseconds. Empty or unparsable input is
// treated as never refreshed
func DecodeTimestamp(data []byte) time.Time {
	ms, ok := valuation.ParseNumber(strings.Trim(string(data), "\" \n"))
	if !ok {
		return time.Time{}
	}
	return entities.TimeFromMillis(int64(ms))
}

func stringField(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}
