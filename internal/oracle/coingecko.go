package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"betting-market/internal/models"

	"github.com/shopspring/decimal"
)

// CoinGeckoFeed reads spot prices from the CoinGecko simple-price API.
// Values are cached briefly so close/settle snapshots taken back to back
// don't hammer the API.
type CoinGeckoFeed struct {
	mu        sync.RWMutex
	prices    map[string]decimal.Decimal
	lastFetch map[string]time.Time

	// handle -> CoinGecko coin id, e.g. "SOL/USD" -> "solana"
	coinIDs map[string]string
	client  *http.Client
}

const coinGeckoCacheTTL = 5 * time.Second

func NewCoinGeckoFeed(coinIDs map[string]string) *CoinGeckoFeed {
	return &CoinGeckoFeed{
		prices:    make(map[string]decimal.Decimal),
		lastFetch: make(map[string]time.Time),
		coinIDs:   coinIDs,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Read returns the latest USD price for a handle such as "SOL/USD"
func (f *CoinGeckoFeed) Read(ctx context.Context, handle string) (decimal.Decimal, error) {
	coinID, ok := f.coinIDs[handle]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unsupported pair %q", models.ErrInvalidOracle, handle)
	}

	f.mu.RLock()
	price, hasPrice := f.prices[handle]
	fetched, hasFetch := f.lastFetch[handle]
	f.mu.RUnlock()

	if hasPrice && hasFetch && time.Since(fetched) < coinGeckoCacheTTL {
		return price, nil
	}

	price, err := f.fetch(ctx, handle, coinID)
	if err != nil {
		return decimal.Zero, err
	}
	return price, nil
}

func (f *CoinGeckoFeed) fetch(ctx context.Context, handle, coinID string) (decimal.Decimal, error) {
	url := fmt.Sprintf("https://api.coingecko.com/api/v3/simple/price?ids=%s&vs_currencies=usd", coinID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrInvalidOracle, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Printf("[CoinGeckoFeed] request failed for %s: %v", handle, err)
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrInvalidOracle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: coingecko returned %d", models.ErrInvalidOracle, resp.StatusCode)
	}

	// Response: {"solana":{"usd":195.83}}
	var result map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrInvalidOracle, err)
	}

	raw, ok := result[coinID]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no usd price for %s", models.ErrInvalidOracle, coinID)
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil || price.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: unparsable price %q", models.ErrInvalidOracle, raw.String())
	}

	f.mu.Lock()
	f.prices[handle] = price
	f.lastFetch[handle] = time.Now()
	f.mu.Unlock()

	return price, nil
}
