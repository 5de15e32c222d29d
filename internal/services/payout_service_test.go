package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"betting-market/internal/models"
)

func TestClaimPaysParimutuelShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// 100 on Yes against 300 on No at a 5% fee:
	// raw = 100 + floor(100*300/100) = 400, fee = 20, payout = 380
	createConfirmedYesNo(t, env, "payout-1", 100, 300)

	payout, err := env.payouts.Claim(ctx, "payout-1", alice)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if payout != 380 {
		t.Errorf("expected payout 380, got %d", payout)
	}
	if got := env.ledger.disbursed[alice]; got != 380 {
		t.Errorf("expected 380 disbursed to alice, got %d", got)
	}

	position, err := env.repo.GetPosition(ctx, "payout-1", alice)
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if !position.Claimed {
		t.Error("expected position to be marked claimed")
	}

	var treasury models.Treasury
	if err := env.repo.DB().First(&treasury).Error; err != nil {
		t.Fatalf("failed to load treasury: %v", err)
	}
	if treasury.Amount != 20 {
		t.Errorf("expected treasury to hold the 20 fee, got %d", treasury.Amount)
	}

	var records []models.TreasuryTransaction
	if err := env.repo.DB().Where("market_id = ? AND transaction_type IN ?", "payout-1",
		[]models.TreasuryTransactionType{models.TreasuryTransactionTypePayout, models.TreasuryTransactionTypeFee}).
		Find(&records).Error; err != nil {
		t.Fatalf("failed to load treasury transactions: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected a payout and a fee record, got %d records", len(records))
	}
	for _, record := range records {
		if record.Status != models.TreasuryTransactionStatusConfirmed {
			t.Errorf("%s record not confirmed: %s", record.TransactionType, record.Status)
		}
		if record.TransactionType == models.TreasuryTransactionTypePayout &&
			(record.TxSignature == nil || *record.TxSignature == "") {
			t.Error("payout record missing disburse signature")
		}
	}
}

func TestClaimDisburseFailureCannotDoublePay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createConfirmedYesNo(t, env, "payout-7", 100, 300)

	// The claim commits before the vault transfer runs; a failed transfer
	// must leave the position closed with the payout record pending, never
	// reopen it for a second full payout.
	env.ledger.failNext = true
	if _, err := env.payouts.Claim(ctx, "payout-7", alice); err == nil {
		t.Fatal("expected transfer failure")
	}

	position, err := env.repo.GetPosition(ctx, "payout-7", alice)
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if !position.Claimed {
		t.Error("position must stay claimed after a failed disburse")
	}

	if _, err := env.payouts.Claim(ctx, "payout-7", alice); !errors.Is(err, models.ErrAlreadyClaimed) {
		t.Errorf("expected ErrAlreadyClaimed on retry, got %v", err)
	}
	if total := env.ledger.totalDisbursed(); total != 0 {
		t.Errorf("vault disbursed %d on a failed claim", total)
	}

	var record models.TreasuryTransaction
	if err := env.repo.DB().Where("market_id = ? AND transaction_type = ?", "payout-7",
		models.TreasuryTransactionTypePayout).First(&record).Error; err != nil {
		t.Fatalf("failed to load payout record: %v", err)
	}
	if record.Status != models.TreasuryTransactionStatusPending {
		t.Errorf("payout record should stay PENDING for reconciliation, got %s", record.Status)
	}
	if record.Amount != 380 {
		t.Errorf("pending payout record holds %d, want 380", record.Amount)
	}
}

func TestClaimTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createConfirmedYesNo(t, env, "payout-2", 100, 300)

	if _, err := env.payouts.Claim(ctx, "payout-2", alice); err != nil {
		t.Fatalf("first Claim failed: %v", err)
	}
	if _, err := env.payouts.Claim(ctx, "payout-2", alice); !errors.Is(err, models.ErrAlreadyClaimed) {
		t.Errorf("expected ErrAlreadyClaimed, got %v", err)
	}
	if got := env.ledger.disbursed[alice]; got != 380 {
		t.Errorf("expected a single 380 disbursement, got %d", got)
	}
}

func TestClaimWithNoWinningStake(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	createConfirmedYesNo(t, env, "payout-3", 100, 300)

	// bob backed the losing outcome
	if _, err := env.payouts.Claim(ctx, "payout-3", bob); !errors.Is(err, models.ErrNothingToClaim) {
		t.Errorf("expected ErrNothingToClaim for losing bettor, got %v", err)
	}
	position, err := env.repo.GetPosition(ctx, "payout-3", bob)
	if err != nil {
		t.Fatalf("GetPosition failed: %v", err)
	}
	if position.Claimed {
		t.Error("losing claim must not close the position")
	}

	// a wallet with no position at all
	if _, err := env.payouts.Claim(ctx, "payout-3", "stranger-wallet"); !errors.Is(err, models.ErrNothingToClaim) {
		t.Errorf("expected ErrNothingToClaim for unknown wallet, got %v", err)
	}
	if total := env.ledger.totalDisbursed(); total != 0 {
		t.Errorf("expected no disbursements, got %d", total)
	}
}

func TestClaimBeforeConfirmation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.markets.CreateMarket(ctx, adminWallet, yesNoRequest("payout-4")); err != nil {
		t.Fatalf("CreateMarket failed: %v", err)
	}
	if _, err := env.bets.PlaceBet(ctx, "payout-4", alice, 0, 100, "dep-alice"); err != nil {
		t.Fatalf("PlaceBet failed: %v", err)
	}

	if _, err := env.payouts.Claim(ctx, "payout-4", alice); !errors.Is(err, models.ErrMarketNotConfirmed) {
		t.Errorf("expected ErrMarketNotConfirmed on open market, got %v", err)
	}

	if err := env.markets.CloseMarket(ctx, adminWallet, "payout-4"); err != nil {
		t.Fatalf("CloseMarket failed: %v", err)
	}
	if err := env.markets.SettleMarket(ctx, adminWallet, "payout-4"); err != nil {
		t.Fatalf("SettleMarket failed: %v", err)
	}
	if _, err := env.payouts.Claim(ctx, "payout-4", alice); !errors.Is(err, models.ErrMarketNotConfirmed) {
		t.Errorf("expected ErrMarketNotConfirmed on settled market, got %v", err)
	}
}

func TestClaimOnEmptyWinningPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Nobody backed Yes, the confirmed outcome
	createConfirmedYesNo(t, env, "payout-5", 0, 300)

	if _, err := env.payouts.Claim(ctx, "payout-5", bob); !errors.Is(err, models.ErrEmptyWinningPool) {
		t.Errorf("expected ErrEmptyWinningPool, got %v", err)
	}
}

func TestClaimsConservePool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const carol = "carol-wallet"

	// Uneven winning stakes so the floor rounding leaves a residue
	if _, err := env.markets.CreateMarket(ctx, adminWallet, yesNoRequest("payout-6")); err != nil {
		t.Fatalf("CreateMarket failed: %v", err)
	}
	if _, err := env.bets.PlaceBet(ctx, "payout-6", alice, 0, 333, "dep-alice"); err != nil {
		t.Fatalf("alice PlaceBet failed: %v", err)
	}
	if _, err := env.bets.PlaceBet(ctx, "payout-6", bob, 0, 334, "dep-bob"); err != nil {
		t.Fatalf("bob PlaceBet failed: %v", err)
	}
	if _, err := env.bets.PlaceBet(ctx, "payout-6", carol, 1, 999, "dep-carol"); err != nil {
		t.Fatalf("carol PlaceBet failed: %v", err)
	}
	if err := env.markets.CloseMarket(ctx, adminWallet, "payout-6"); err != nil {
		t.Fatalf("CloseMarket failed: %v", err)
	}
	if err := env.markets.SettleMarket(ctx, adminWallet, "payout-6"); err != nil {
		t.Fatalf("SettleMarket failed: %v", err)
	}
	if err := env.markets.ConfirmWinner(ctx, adminWallet, "payout-6", 0); err != nil {
		t.Fatalf("ConfirmWinner failed: %v", err)
	}

	for _, wallet := range []string{alice, bob} {
		if _, err := env.payouts.Claim(ctx, "payout-6", wallet); err != nil {
			t.Fatalf("Claim for %s failed: %v", wallet, err)
		}
	}

	var treasury models.Treasury
	if err := env.repo.DB().First(&treasury).Error; err != nil {
		t.Fatalf("failed to load treasury: %v", err)
	}

	totalPool := uint64(333 + 334 + 999)
	paid := env.ledger.totalDisbursed() + treasury.Amount
	if paid > totalPool {
		t.Errorf("payouts plus fees %d exceed total pool %d", paid, totalPool)
	}
	if residue := totalPool - paid; residue > 2 {
		t.Errorf("expected at most one unit of rounding residue per claim, got %d", residue)
	}
}

func TestComputePayout(t *testing.T) {
	tests := []struct {
		name        string
		userWin     uint64
		winningPool uint64
		totalPool   uint64
		feeBps      uint16
		payout      uint64
		fee         uint64
	}{
		{"even split with fee", 100, 100, 400, 500, 380, 20},
		{"zero fee", 100, 100, 400, 0, 400, 0},
		{"floored share", 1, 3, 10, 500, 3, 0},
		{"no losing pool", 250, 500, 500, 500, 238, 12},
		{"sole winner takes all", math.MaxUint64, math.MaxUint64, math.MaxUint64, 0, math.MaxUint64, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payout, fee, err := computePayout(tt.userWin, tt.winningPool, tt.totalPool, tt.feeBps)
			if err != nil {
				t.Fatalf("computePayout failed: %v", err)
			}
			if payout != tt.payout || fee != tt.fee {
				t.Errorf("got payout=%d fee=%d, want payout=%d fee=%d", payout, fee, tt.payout, tt.fee)
			}
		})
	}
}

func TestComputePayoutRejectsInconsistentPools(t *testing.T) {
	if _, _, err := computePayout(10, 0, 100, 500); !errors.Is(err, models.ErrEmptyWinningPool) {
		t.Errorf("expected ErrEmptyWinningPool, got %v", err)
	}
	if _, _, err := computePayout(200, 100, 400, 500); !errors.Is(err, models.ErrNumericalOverflow) {
		t.Errorf("expected ErrNumericalOverflow for stake above pool, got %v", err)
	}
	if _, _, err := computePayout(100, 500, 400, 500); !errors.Is(err, models.ErrNumericalOverflow) {
		t.Errorf("expected ErrNumericalOverflow for pool above total, got %v", err)
	}
}
