package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/big"

	"betting-market/internal/models"
	"betting-market/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PayoutService settles claims on confirmed markets. Winners split the losing
// pool proportionally to their stake on the winning outcome, net of the
// service fee. All share arithmetic is exact integer ratio math with floor
// rounding, so the residue always stays with the treasury and the sum of
// payouts plus fees never exceeds the total pool.
type PayoutService struct {
	repo   *repository.Repository
	ledger ValueTransfer
	locks  *MarketLocks
}

func NewPayoutService(repo *repository.Repository, ledger ValueTransfer, locks *MarketLocks) *PayoutService {
	return &PayoutService{
		repo:   repo,
		ledger: ledger,
		locks:  locks,
	}
}

// Claim pays out a bettor's share of a confirmed market and closes the
// position. A second claim on the same position always fails.
//
// The claim commits before any funds move: the position is marked claimed
// and a PENDING payout record is written in one transaction, then the vault
// transfer runs and flips the record to CONFIRMED. A transfer failure leaves
// the position claimed and the record PENDING for operator reconciliation;
// the vault can never pay the same position twice.
func (ps *PayoutService) Claim(ctx context.Context, marketID, bettor string) (uint64, error) {
	unlock := ps.locks.Lock(marketID)
	defer unlock()

	var payout uint64
	var payoutRecordID uuid.UUID
	err := ps.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		market, err := ps.repo.GetMarketForUpdate(tx, marketID)
		if err != nil {
			return err
		}
		if market.Status != models.MarketStatusConfirmed {
			return models.ErrMarketNotConfirmed
		}
		if market.WinningOutcome == nil {
			return models.ErrNoWinnerChosen
		}

		position, err := ps.repo.GetPositionForUpdate(tx, marketID, bettor)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrNothingToClaim
		}
		if err != nil {
			return err
		}
		if position.Claimed {
			return models.ErrAlreadyClaimed
		}

		w := int(*market.WinningOutcome)
		winningPool := market.AmountsPerOutcome[w]
		if winningPool == 0 {
			return models.ErrEmptyWinningPool
		}

		userWinAmount := position.AmountsPerOutcome[w]
		if userWinAmount == 0 {
			return models.ErrNothingToClaim
		}

		totalPool := market.AmountsPerOutcome.Sum()
		finalPayout, serviceFee, err := computePayout(userWinAmount, winningPool, totalPool, market.ServiceFeeBps)
		if err != nil {
			return err
		}

		position.Claimed = true
		if err := ps.repo.SavePosition(tx, position); err != nil {
			return fmt.Errorf("failed to close position: %w", err)
		}

		treasury, err := ps.repo.GetTreasuryForUpdate(tx)
		if err != nil {
			return fmt.Errorf("failed to load treasury: %w", err)
		}
		if treasury.Amount, err = checkedAdd(treasury.Amount, serviceFee); err != nil {
			return err
		}
		if err := ps.repo.SaveTreasury(tx, treasury); err != nil {
			return fmt.Errorf("failed to accrue fee: %w", err)
		}

		payoutRecordID = uuid.New()
		records := []*models.TreasuryTransaction{
			{
				ID:              payoutRecordID,
				MarketID:        marketID,
				TransactionType: models.TreasuryTransactionTypePayout,
				Status:          models.TreasuryTransactionStatusPending,
				Wallet:          bettor,
				Amount:          finalPayout,
			},
			{
				ID:              uuid.New(),
				MarketID:        marketID,
				TransactionType: models.TreasuryTransactionTypeFee,
				Status:          models.TreasuryTransactionStatusConfirmed,
				Amount:          serviceFee,
			},
		}
		for _, record := range records {
			if err := ps.repo.CreateTreasuryTransaction(tx, record); err != nil {
				return fmt.Errorf("failed to record payout: %w", err)
			}
		}

		payout = finalPayout
		return nil
	})
	if err != nil {
		return 0, err
	}

	txSig, err := ps.ledger.Disburse(ctx, bettor, payout)
	if err != nil {
		log.Printf("[PayoutService] Payout %s for %s on market %s stayed PENDING: %v",
			payoutRecordID, bettor, marketID, err)
		return 0, fmt.Errorf("failed to disburse payout: %w", err)
	}

	if err := ps.repo.ConfirmTreasuryTransaction(ctx, payoutRecordID, txSig); err != nil {
		// Funds already moved; the record stays PENDING with the claim intact
		log.Printf("[PayoutService] Failed to confirm payout record %s (tx %s): %v", payoutRecordID, txSig, err)
	}

	log.Printf("[PayoutService] %s claimed %d from market %s: %s", bettor, payout, marketID, txSig)
	return payout, nil
}

// computePayout computes the parimutuel payout for one position:
//
//	share  = floor(userWin * losingPool / winningPool)
//	raw    = userWin + share
//	fee    = floor(raw * feeBps / 10000)
//	payout = raw - fee
//
// The intermediate products exceed 64 bits for large pools, so the ratio is
// taken over big integers and floored, never via floating point.
func computePayout(userWin, winningPool, totalPool uint64, feeBps uint16) (payout, fee uint64, err error) {
	if winningPool == 0 {
		return 0, 0, models.ErrEmptyWinningPool
	}
	if userWin > winningPool || winningPool > totalPool {
		return 0, 0, models.ErrNumericalOverflow
	}

	losingPool := totalPool - winningPool

	share := new(big.Int).Mul(
		new(big.Int).SetUint64(userWin),
		new(big.Int).SetUint64(losingPool),
	)
	share.Quo(share, new(big.Int).SetUint64(winningPool))

	raw := new(big.Int).Add(share, new(big.Int).SetUint64(userWin))

	feeBig := new(big.Int).Mul(raw, big.NewInt(int64(feeBps)))
	feeBig.Quo(feeBig, big.NewInt(models.FeeDenominator))

	payoutBig := new(big.Int).Sub(raw, feeBig)
	if payoutBig.Sign() < 0 {
		return 0, 0, models.ErrNumericalUnderflow
	}
	if !payoutBig.IsUint64() || !feeBig.IsUint64() {
		return 0, 0, models.ErrNumericalOverflow
	}
	if payoutBig.Uint64() > math.MaxUint64-feeBig.Uint64() {
		return 0, 0, models.ErrNumericalOverflow
	}

	return payoutBig.Uint64(), feeBig.Uint64(), nil
}
