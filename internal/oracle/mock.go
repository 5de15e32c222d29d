package oracle

import (
	"context"
	"fmt"
	"sync"

	"betting-market/internal/models"

	"github.com/shopspring/decimal"
)

// MockFeed is a scriptable feed for tests.
type MockFeed struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	fail   bool
}

func NewMockFeed() *MockFeed {
	return &MockFeed{prices: make(map[string]decimal.Decimal)}
}

// SetPrice sets the value returned for a handle
func (m *MockFeed) SetPrice(handle string, price decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[handle] = price
}

// Fail makes every subsequent Read return an oracle error
func (m *MockFeed) Fail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *MockFeed) Read(ctx context.Context, handle string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail {
		return decimal.Zero, fmt.Errorf("%w: mock feed failure", models.ErrInvalidOracle)
	}

	price, ok := m.prices[handle]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no mock price for %q", models.ErrInvalidOracle, handle)
	}
	return price, nil
}
