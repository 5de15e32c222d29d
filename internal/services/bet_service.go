package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"betting-market/internal/models"
	"betting-market/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BetService applies stakes to market pools. Each bet is all-or-nothing:
// the escrow collect and both pool increments commit in one transaction,
// serialized per market.
type BetService struct {
	repo   *repository.Repository
	ledger ValueTransfer
	locks  *MarketLocks
	now    func() time.Time
}

func NewBetService(repo *repository.Repository, ledger ValueTransfer, locks *MarketLocks) *BetService {
	return &BetService{
		repo:   repo,
		ledger: ledger,
		locks:  locks,
		now:    time.Now,
	}
}

// SetClock overrides the wall-clock source, for tests.
func (bs *BetService) SetClock(now func() time.Time) {
	bs.now = now
}

// PlaceBet stakes amount on one outcome of an open market
func (bs *BetService) PlaceBet(
	ctx context.Context,
	marketID, bettor string,
	outcomeIndex uint8,
	amount uint64,
	depositTxSig string,
) (*models.Position, error) {
	unlock := bs.locks.Lock(marketID)
	defer unlock()

	var position *models.Position
	err := bs.repo.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		market, err := bs.repo.GetMarketForUpdate(tx, marketID)
		if err != nil {
			return err
		}

		if market.Status != models.MarketStatusOpened {
			return models.ErrMarketNotOpen
		}

		now := uint64(bs.now().Unix())
		if now < market.OpenTime || now > market.CloseTime {
			return models.ErrOutsideBetWindow
		}
		if int(outcomeIndex) >= len(market.Outcomes) {
			return models.ErrInvalidOutcomeIndex
		}
		if amount < market.MinBet || amount > market.MaxBet {
			return models.ErrBetAmountOutOfRange
		}

		newTotal, err := checkedAdd(market.TotalBetAmount, amount)
		if err != nil {
			return err
		}
		if newTotal > market.TotalMaxBet {
			return models.ErrMaxPoolExceeded
		}

		// The deposit already happened client-side; Collect only verifies
		// it on-chain, so a failed or missing deposit rolls the whole bet
		// back without any value having moved.
		txSig, err := bs.ledger.Collect(ctx, bettor, depositTxSig, amount)
		if err != nil {
			return fmt.Errorf("failed to collect stake: %w", err)
		}

		if market.AmountsPerOutcome[outcomeIndex], err = checkedAdd(market.AmountsPerOutcome[outcomeIndex], amount); err != nil {
			return err
		}
		market.TotalBetAmount = newTotal
		if err := bs.repo.SaveMarket(tx, market); err != nil {
			return fmt.Errorf("failed to update market pools: %w", err)
		}

		position, err = bs.repo.GetPositionForUpdate(tx, marketID, bettor)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			position = &models.Position{
				ID:                uuid.New(),
				MarketID:          marketID,
				Bettor:            bettor,
				AmountsPerOutcome: make(models.AmountVec, len(market.Outcomes)),
				TotalBetAmount:    0,
				Claimed:           false,
			}
			if err := bs.repo.CreatePosition(tx, position); err != nil {
				return fmt.Errorf("failed to create position: %w", err)
			}
		} else if err != nil {
			return err
		}

		if position.AmountsPerOutcome[outcomeIndex], err = checkedAdd(position.AmountsPerOutcome[outcomeIndex], amount); err != nil {
			return err
		}
		if position.TotalBetAmount, err = checkedAdd(position.TotalBetAmount, amount); err != nil {
			return err
		}
		if err := bs.repo.SavePosition(tx, position); err != nil {
			return fmt.Errorf("failed to update position: %w", err)
		}

		record := &models.TreasuryTransaction{
			ID:              uuid.New(),
			MarketID:        marketID,
			TransactionType: models.TreasuryTransactionTypeDeposit,
			Status:          models.TreasuryTransactionStatusConfirmed,
			Wallet:          bettor,
			Amount:          amount,
			TxSignature:     &txSig,
		}
		if err := bs.repo.CreateTreasuryTransaction(tx, record); err != nil {
			return fmt.Errorf("failed to record deposit: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BetService] %s staked %d on outcome %d of market %s", bettor, amount, outcomeIndex, marketID)
	return position, nil
}

// GetPosition retrieves a bettor's position on a market
func (bs *BetService) GetPosition(ctx context.Context, marketID, bettor string) (*models.Position, error) {
	position, err := bs.repo.GetPosition(ctx, marketID, bettor)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrPositionNotFound
	}
	if err != nil {
		return nil, err
	}
	return position, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, models.ErrNumericalOverflow
	}
	return a + b, nil
}
