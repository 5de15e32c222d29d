package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"betting-market/internal/models"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// BinanceFeed streams a bookTicker from the Binance WebSocket API and serves
// the cached mid price. Reads fail once the stream goes stale.
type BinanceFeed struct {
	handle string
	symbol string

	mu         sync.RWMutex
	price      decimal.Decimal
	lastUpdate time.Time
}

const binanceStaleAfter = 10 * time.Second

// NewBinanceFeed maps a feed handle (e.g. "SOL/USD") to a Binance stream
// symbol (e.g. "solusdt").
func NewBinanceFeed(handle, symbol string) *BinanceFeed {
	return &BinanceFeed{handle: handle, symbol: symbol}
}

type binanceBookTicker struct {
	BestBidPrice string `json:"b"`
	BestAskPrice string `json:"a"`
}

// Run connects and keeps the stream alive until ctx is cancelled.
func (f *BinanceFeed) Run(ctx context.Context) error {
	wsURL := fmt.Sprintf("wss://stream.binance.com:9443/ws/%s@bookTicker", f.symbol)

	for {
		if err := f.connect(ctx, wsURL); err != nil {
			log.Printf("[BinanceFeed] %s disconnected: %v", f.symbol, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			log.Printf("[BinanceFeed] %s reconnecting...", f.symbol)
		}
	}
}

func (f *BinanceFeed) connect(ctx context.Context, wsURL string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		conn.SetReadDeadline(time.Now().Add(binanceStaleAfter))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var ticker binanceBookTicker
		if err := json.Unmarshal(msg, &ticker); err != nil {
			continue
		}

		bid, err1 := decimal.NewFromString(ticker.BestBidPrice)
		ask, err2 := decimal.NewFromString(ticker.BestAskPrice)
		if err1 != nil || err2 != nil {
			continue
		}

		mid := bid.Add(ask).Div(decimal.NewFromInt(2))

		f.mu.Lock()
		f.price = mid
		f.lastUpdate = time.Now()
		f.mu.Unlock()
	}
}

// Read returns the cached mid price for the feed's handle
func (f *BinanceFeed) Read(ctx context.Context, handle string) (decimal.Decimal, error) {
	if handle != f.handle {
		return decimal.Zero, fmt.Errorf("%w: feed serves %q, not %q", models.ErrInvalidOracle, f.handle, handle)
	}

	f.mu.RLock()
	price := f.price
	lastUpdate := f.lastUpdate
	f.mu.RUnlock()

	if lastUpdate.IsZero() || time.Since(lastUpdate) > binanceStaleAfter {
		return decimal.Zero, fmt.Errorf("%w: %s stream is stale", models.ErrInvalidOracle, f.symbol)
	}
	if price.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: no price for %s", models.ErrInvalidOracle, f.symbol)
	}

	return price, nil
}
