package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tradesentry/signal-sentry-bot/pkg/types"
)

// Public ticker stream endpoints.
const (
	StreamURLSpot    = "wss://stream.bybit.com/v5/public/spot"
	StreamURLLinear  = "wss://stream.bybit.com/v5/public/linear"
	StreamURLTestnet = "wss://stream-testnet.bybit.com/v5/public/spot"
)

// PriceStream delivers live ticker prices over a WebSocket connection.
// Each received price is handed to the callback registered in Run.
type PriceStream struct {
	url     string
	conn    *websocket.Conn
	mu      sync.Mutex
	running bool
}

// NewPriceStream dials the stream endpoint.
func NewPriceStream(url string) (*PriceStream, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to price stream: %w", err)
	}

	return &PriceStream{
		url:     url,
		conn:    conn,
		running: true,
	}, nil
}

// Subscribe requests ticker updates for a symbol.
func (s *PriceStream) Subscribe(symbol string) error {
	msg := map[string]interface{}{
		"op":   "subscribe",
		"args": []string{"tickers." + symbol},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal subscribe message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}
	return nil
}

// tickerMessage is the subset of the ticker push payload we consume.
type tickerMessage struct {
	Topic string `json:"topic"`
	Data  struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
		Volume24h string `json:"volume24h"`
	} `json:"data"`
}

// Run reads ticker messages and invokes the callback until the context is
// cancelled or the connection drops. It keeps the connection alive with
// periodic pings.
func (s *PriceStream) Run(ctx context.Context, onTicker func(types.Ticker)) error {
	go s.keepAlive(ctx)

	for {
		select {
		case <-ctx.Done():
			return s.Close()
		default:
		}

		if err := s.conn.SetReadDeadline(time.Now().Add(60 * time.Second)); err != nil {
			return err
		}
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("price stream read failed: %w", err)
		}

		var msg tickerMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue // ignore heartbeats and ack frames
		}
		if msg.Data.Symbol == "" || msg.Data.LastPrice == "" {
			continue
		}

		price, err := strconv.ParseFloat(msg.Data.LastPrice, 64)
		if err != nil || price <= 0 {
			continue
		}
		volume, _ := strconv.ParseFloat(msg.Data.Volume24h, 64)

		onTicker(types.Ticker{
			Symbol:    msg.Data.Symbol,
			Price:     price,
			Volume:    volume,
			Timestamp: time.Now(),
		})
	}
}

// keepAlive pings the server every 20 seconds as the v5 stream requires.
func (s *PriceStream) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping, _ := json.Marshal(map[string]string{"op": "ping"})
			s.mu.Lock()
			running := s.running
			if running {
				s.conn.WriteMessage(websocket.TextMessage, ping) //nolint:errcheck
			}
			s.mu.Unlock()
			if !running {
				return
			}
		}
	}
}

// Close shuts the connection down.
func (s *PriceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	return s.conn.Close()
}
