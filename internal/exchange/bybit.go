package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	bybit_api "github.com/bybit-exchange/bybit.go.api"

	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// Config holds the Bybit connection settings.
type Config struct {
	APIKey    string
	APISecret string
	Category  string // "spot" or "linear"
	Testnet   bool
	Demo      bool // demo trading environment
}

// BybitExecutor places orders through the Bybit v5 unified trading API.
type BybitExecutor struct {
	client   *bybit_api.Client
	category string
}

// NewBybitExecutor creates an executor against mainnet, testnet, or the
// demo environment.
func NewBybitExecutor(config Config) *BybitExecutor {
	var baseURL string
	if config.Demo {
		baseURL = "https://api-demo.bybit.com"
	} else if config.Testnet {
		baseURL = bybit_api.TESTNET
	} else {
		baseURL = bybit_api.MAINNET
	}

	category := config.Category
	if category == "" {
		category = "spot"
	}

	return &BybitExecutor{
		client: bybit_api.NewBybitHttpClient(
			config.APIKey,
			config.APISecret,
			bybit_api.WithBaseURL(baseURL),
		),
		category: category,
	}
}

// PlaceOrder submits a limit order at the proposed entry price and returns
// the exchange order ID.
func (e *BybitExecutor) PlaceOrder(ctx context.Context, symbol string, side types.Side, quantity, price float64) (string, error) {
	bybitSide := "Buy"
	if side == types.SideShort {
		bybitSide = "Sell"
	}

	params := map[string]interface{}{
		"category":    e.category,
		"symbol":      symbol,
		"side":        bybitSide,
		"orderType":   "Limit",
		"qty":         strconv.FormatFloat(quantity, 'f', -1, 64),
		"price":       strconv.FormatFloat(price, 'f', -1, 64),
		"timeInForce": "GTC",
	}

	result, err := e.client.NewUtaBybitServiceWithParams(params).PlaceOrder(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to place order: %w", err)
	}

	return parseOrderID(result)
}

// CancelOrder cancels an open order by ID.
func (e *BybitExecutor) CancelOrder(ctx context.Context, symbol, orderID string) error {
	params := map[string]interface{}{
		"category": e.category,
		"symbol":   symbol,
		"orderId":  orderID,
	}

	result, err := e.client.NewUtaBybitServiceWithParams(params).CancelOrder(ctx)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	_, err = parseOrderID(result)
	return err
}

// parseOrderID extracts the order ID from a v5 API response.
func parseOrderID(response interface{}) (string, error) {
	serverResp, ok := response.(*bybit_api.ServerResponse)
	if !ok {
		return "", fmt.Errorf("invalid response type")
	}
	if serverResp.RetCode != 0 {
		return "", fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode)
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	var orderResult struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(resultBytes, &orderResult); err != nil {
		return "", fmt.Errorf("failed to unmarshal order result: %w", err)
	}
	if orderResult.OrderID == "" {
		return "", fmt.Errorf("response carried no order ID")
	}

	return orderResult.OrderID, nil
}
