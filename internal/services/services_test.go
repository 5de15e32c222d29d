package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"betting-market/internal/database"
	"betting-market/internal/models"
	"betting-market/internal/oracle"
	"betting-market/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	adminWallet = "admin-wallet"
	alice       = "alice-wallet"
	bob         = "bob-wallet"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	// A pooled second connection would see its own empty :memory: database
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return db
}

// fakeLedger records escrow transfers and can be scripted to fail.
type fakeLedger struct {
	mu          sync.Mutex
	collected   map[string]uint64
	depositSigs map[string]string
	disbursed   map[string]uint64
	failNext    bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		collected:   make(map[string]uint64),
		depositSigs: make(map[string]string),
		disbursed:   make(map[string]uint64),
	}
}

func (f *fakeLedger) Collect(ctx context.Context, from, depositTxSig string, amount uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return "", fmt.Errorf("transfer rejected")
	}
	f.collected[from] += amount
	f.depositSigs[from] = depositTxSig
	return depositTxSig, nil
}

func (f *fakeLedger) Disburse(ctx context.Context, to string, amount uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return "", fmt.Errorf("transfer rejected")
	}
	f.disbursed[to] += amount
	return fmt.Sprintf("disburse:%s:%d", to, amount), nil
}

func (f *fakeLedger) totalDisbursed() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total uint64
	for _, amount := range f.disbursed {
		total += amount
	}
	return total
}

// testEnv wires the three services over one in-memory database.
type testEnv struct {
	repo    *repository.Repository
	ledger  *fakeLedger
	feed    *oracle.MockFeed
	markets *MarketService
	bets    *BetService
	payouts *PayoutService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	repo := repository.NewRepository(db)
	locks := NewMarketLocks()
	ledger := newFakeLedger()
	feed := oracle.NewMockFeed()

	env := &testEnv{
		repo:    repo,
		ledger:  ledger,
		feed:    feed,
		markets: NewMarketService(repo, feed, locks, adminWallet),
		bets:    NewBetService(repo, ledger, locks),
		payouts: NewPayoutService(repo, ledger, locks),
	}

	// Pin the clock inside every market's bet window
	now := time.Unix(2000, 0)
	env.markets.SetClock(func() time.Time { return now })
	env.bets.SetClock(func() time.Time { return now })
	return env
}

func yesNoRequest(id string) *models.CreateMarketRequest {
	return &models.CreateMarketRequest{
		ID:            id,
		Title:         "Will it happen?",
		MarketType:    models.MarketTypeCustom,
		OpenTime:      1000,
		CloseTime:     3000,
		SettleTime:    4000,
		ServiceFeeBps: 500,
		MinBet:        10,
		MaxBet:        1000,
		TotalMaxBet:   5000,
		Outcomes:      []string{"Yes", "No"},
	}
}

// createConfirmedYesNo runs the full lifecycle with alice on Yes and bob on No.
func createConfirmedYesNo(t *testing.T, env *testEnv, id string, aliceStake, bobStake uint64) {
	t.Helper()
	ctx := context.Background()

	if _, err := env.markets.CreateMarket(ctx, adminWallet, yesNoRequest(id)); err != nil {
		t.Fatalf("CreateMarket failed: %v", err)
	}
	if aliceStake > 0 {
		if _, err := env.bets.PlaceBet(ctx, id, alice, 0, aliceStake, "dep-alice"); err != nil {
			t.Fatalf("alice PlaceBet failed: %v", err)
		}
	}
	if bobStake > 0 {
		if _, err := env.bets.PlaceBet(ctx, id, bob, 1, bobStake, "dep-bob"); err != nil {
			t.Fatalf("bob PlaceBet failed: %v", err)
		}
	}
	if err := env.markets.CloseMarket(ctx, adminWallet, id); err != nil {
		t.Fatalf("CloseMarket failed: %v", err)
	}
	if err := env.markets.SettleMarket(ctx, adminWallet, id); err != nil {
		t.Fatalf("SettleMarket failed: %v", err)
	}
	if err := env.markets.ConfirmWinner(ctx, adminWallet, id, 0); err != nil {
		t.Fatalf("ConfirmWinner failed: %v", err)
	}
}
